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

package routing

import (
	"strings"
	"time"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/logging"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

var (
	ErrUnsupportedMultiTableDML = core.NewConfigurationError("multi-table dml without binding relation is not supported")
	ErrNoCommonDataSource       = core.NewConfigurationError("logic tables have no data source in common")
)

// CartesianWarnThreshold is the unit count above which a cartesian route is logged as a warning.
var CartesianWarnThreshold = 64

var logger = logging.GetLogger("routing")

// Router computes the routing result of statements, it is safe for concurrent use.
type Router struct {
	rule         *rule.ShardingRule
	checker      *Checker
	cartesianLog *logging.ThrottledLogger
}

func NewRouter(shardingRule *rule.ShardingRule) *Router {
	return &Router{
		rule:         shardingRule,
		checker:      NewChecker(shardingRule),
		cartesianLog: logging.NewThrottledLogger("routing", nil, 10*time.Second),
	}
}

// Route selects a routing engine for the statement and runs it.
// conditions may be nil, hints are only consumed by hint strategies.
func (r *Router) Route(stmt statement.Statement, conditions *condition.ShardingConditions, hints *Hints) (*RoutingResult, error) {
	if err := r.checker.Check(stmt); err != nil {
		return nil, err
	}
	result, err := r.route(stmt, conditions, hints)
	if err != nil {
		return nil, errors.Annotatef(err, "route '%s'", stmt.SQL())
	}
	if len(result.Units) == 0 {
		return nil, errors.Annotatef(core.NewConsistencyError("routing result is empty"), "route '%s'", stmt.SQL())
	}
	logger.Debugf("route '%s' by %s engine, %d unit(s)", stmt.SQL(), result.Engine, len(result.Units))
	return result, nil
}

func (r *Router) route(stmt statement.Statement, conditions *condition.ShardingConditions, hints *Hints) (*RoutingResult, error) {
	tables := stmt.Tables()
	switch stmt.Kind() {
	case statement.KindTCL:
		return r.databaseBroadcast(tables), nil
	case statement.KindDDL, statement.KindDCL:
		if len(tables) == 0 {
			return r.databaseBroadcast(tables), nil
		}
		return r.tableBroadcast(tables)
	case statement.KindDAL:
		if len(tables) == 0 {
			return r.databaseBroadcast(tables), nil
		}
		return r.unicast(tables)
	}

	if r.rule.IsAllBroadcastTables(tables) {
		if stmt.Kind().IsWrite() {
			return r.databaseBroadcast(tables), nil
		}
		return r.unicast(tables)
	}
	if len(tables) == 0 || conditions.IsAlwaysFalse() {
		return r.unicast(tables)
	}

	shardingTables := r.shardingTables(tables)
	if len(shardingTables) == 0 {
		return r.defaultDataSource(tables)
	}
	if len(shardingTables) == 1 || r.rule.IsAllBindingTables(shardingTables) {
		return r.standard(stmt, shardingTables, conditions, hints)
	}
	if stmt.Kind().IsWrite() {
		return nil, errors.Annotatef(ErrUnsupportedMultiTableDML, "tables [%s]", strings.Join(shardingTables, ", "))
	}
	return r.cartesian(shardingTables, conditions, hints)
}

func (r *Router) shardingTables(tables []string) []string {
	var list []string
	for _, t := range tables {
		if r.rule.IsShardingTable(t) && !core.ContainsStringIgnoreCase(list, t) {
			list = append(list, t)
		}
	}
	return list
}
