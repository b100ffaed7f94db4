/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

// Package sharding runs a parsed statement through condition optimization, routing and rewriting,
// and merges the shard results of the execution units it produced.
package sharding

import (
	"context"
	"time"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/logging"
	"github.com/endink/go-sharding-core/merging"
	"github.com/endink/go-sharding-core/rewriting"
	"github.com/endink/go-sharding-core/routing"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/endink/go-sharding-core/telemetry"
	"github.com/pingcap/errors"
	"go.opentelemetry.io/otel/attribute"
)

var logger = logging.GetLogger("sharding")

// Plan is a statement prepared for execution on the shards.
type Plan struct {
	Statement  statement.Statement
	Parameters []interface{}
	Conditions *condition.ShardingConditions
	Routing    *routing.RoutingResult
	// Insert is set for INSERT statements.
	Insert *routing.InsertOptimizeResult
	Units  []*rewriting.ExecutionUnit
}

// GeneratedKeys are the keys generated for the value groups of an INSERT, nil when the statement supplied them.
func (p *Plan) GeneratedKeys() []interface{} {
	if p.Insert == nil || p.Insert.GeneratedKey == nil || !p.Insert.GeneratedKey.Generated {
		return nil
	}
	return p.Insert.GeneratedKey.Values
}

// Engine shards statements of one rule, it is safe for concurrent use.
type Engine struct {
	rule    *rule.ShardingRule
	router  *routing.Router
	metrics *telemetry.PipelineMetrics
}

func NewEngine(shardingRule *rule.ShardingRule) *Engine {
	return &Engine{
		rule:    shardingRule,
		router:  routing.NewRouter(shardingRule),
		metrics: telemetry.NewPipelineMetrics(),
	}
}

func (e *Engine) Rule() *rule.ShardingRule {
	return e.rule
}

// Shard routes the statement and rewrites it for every routing unit, hints may be nil.
func (e *Engine) Shard(ctx context.Context, stmt statement.Statement, params []interface{}, hints *routing.Hints) (*Plan, error) {
	plan := &Plan{Statement: stmt, Parameters: params}
	if s, ok := stmt.(*statement.SelectStatement); ok {
		if err := s.Prepare(); err != nil {
			return nil, err
		}
	}

	var err error
	if insert, ok := stmt.(*statement.InsertStatement); ok && e.rule.IsShardingTable(insert.Table) {
		if plan.Insert, err = routing.OptimizeInsert(e.rule, insert, params); err != nil {
			return nil, errors.Annotatef(err, "optimize '%s'", stmt.SQL())
		}
		plan.Conditions = plan.Insert.Conditions
	} else if plan.Conditions, err = condition.Optimize(stmt.Where(), params); err != nil {
		return nil, errors.Annotatef(err, "optimize '%s'", stmt.SQL())
	}

	attrs := []attribute.KeyValue{telemetry.AttrStatementType.String(stmt.Kind().String())}
	start := time.Now()
	if plan.Routing, err = e.router.Route(stmt, plan.Conditions, hints); err != nil {
		return nil, err
	}
	attrs = append(attrs, telemetry.AttrRouteEngine.String(plan.Routing.Engine.String()))
	e.metrics.RouteDuration.RecordLatency(ctx, start, attrs...)
	e.metrics.RouteUnits.Record(ctx, int64(len(plan.Routing.Units)), attrs...)
	if plan.Insert != nil {
		plan.Insert.BindDataNodes(plan.Routing)
	}

	start = time.Now()
	plan.Units, err = rewriting.Rewrite(&rewriting.Context{
		Rule:       e.rule,
		Statement:  stmt,
		Parameters: params,
		Insert:     plan.Insert,
		Routing:    plan.Routing,
	})
	if err != nil {
		return nil, err
	}
	e.metrics.RewriteDuration.RecordLatency(ctx, start, attrs...)
	logger.Debugf("'%s' sharded to %d execution unit(s)", stmt.SQL(), len(plan.Units))
	return plan, nil
}

// Merge merges the query results of the plan, one per execution unit in the order of plan.Units.
func (e *Engine) Merge(ctx context.Context, plan *Plan, results []merging.QueryResult) (merging.MergedResult, error) {
	if len(results) != len(plan.Units) {
		return nil, errors.Errorf("%d query results for %d execution units", len(results), len(plan.Units))
	}
	merged, err := merging.Merge(plan.Statement, plan.Parameters, results, merging.WithEncryptRule(e.rule.EncryptRule()))
	if err != nil {
		return nil, err
	}
	strategy := merging.SelectStrategy(plan.Statement, len(results))
	return &countedResult{
		MergedResult: merged,
		ctx:          ctx,
		counter:      e.metrics.MergeRows,
		attrs:        []attribute.KeyValue{telemetry.AttrMergeStrategy.String(string(strategy))},
	}, nil
}

// GeneratedKeyResult replaces the keys the shards report for an INSERT with the generated ones.
func (e *Engine) GeneratedKeyResult(plan *Plan, reported merging.MergedResult) merging.MergedResult {
	return merging.NewGeneratedKeyDecorator(reported, plan.GeneratedKeys())
}

type countedResult struct {
	merging.MergedResult
	ctx     context.Context
	counter telemetry.Int64Counter
	attrs   []attribute.KeyValue
}

func (r *countedResult) Next() (bool, error) {
	ok, err := r.MergedResult.Next()
	if ok {
		r.counter.Add(r.ctx, 1, r.attrs...)
	}
	return ok, err
}
