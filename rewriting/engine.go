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

package rewriting

import (
	"sort"
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/logging"
	"github.com/endink/go-sharding-core/routing"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
	"go.uber.org/zap/zapcore"
)

var logger = logging.GetLogger("rewriting")

var (
	ErrTokenOverlap    = core.NewConsistencyError("sql tokens overlap")
	ErrTokenOutOfRange = core.NewConsistencyError("sql token is out of the sql text")
)

// Context is everything the engine needs to rewrite one statement.
type Context struct {
	Rule       *rule.ShardingRule
	Statement  statement.Statement
	Parameters []interface{}
	// Insert is the optimized INSERT, nil for other statements.
	Insert  *routing.InsertOptimizeResult
	Routing *routing.RoutingResult
}

type segment struct {
	text string
	ph   placeholder
}

// Engine rewrites a logic statement into the sql of every routing unit.
// Tokens are validated and converted once, units are rendered from the same segments.
type Engine struct {
	ctx      *Context
	params   *ParameterBuilder
	segments []segment
	rowCount int64
	offset   int64
}

func NewEngine(ctx *Context) (*Engine, error) {
	e := &Engine{
		ctx:    ctx,
		params: NewParameterBuilder(ctx.Parameters, ctx.Insert),
	}
	if err := e.revisePagination(); err != nil {
		return nil, err
	}
	if err := e.buildSegments(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) revisePagination() error {
	s, ok := e.ctx.Statement.(*statement.SelectStatement)
	if !ok || s.Pagination == nil {
		return nil
	}
	p := s.Pagination
	rowCount, err := p.RevisedRowCount(s, e.ctx.Parameters)
	if err != nil {
		return errors.Annotate(err, "revise row count")
	}
	e.rowCount = rowCount
	e.offset = p.RevisedOffset()
	if p.Offset != nil && p.Offset.IsParameter() {
		e.params.replacePagination(p.Offset.ParamIndex, e.offset)
	}
	if p.RowCount != nil && p.RowCount.IsParameter() {
		e.params.replacePagination(p.RowCount.ParamIndex, e.rowCount)
	}
	return nil
}

type orderedToken struct {
	token statement.SQLToken
	order int
}

func (e *Engine) buildSegments() error {
	sql := e.ctx.Statement.SQL()
	tokens := e.collectTokens()
	ordered := make([]orderedToken, len(tokens))
	for i, t := range tokens {
		ordered[i] = orderedToken{token: t, order: i}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].token, ordered[j].token
		if a.StartIndex() != b.StartIndex() {
			return a.StartIndex() < b.StartIndex()
		}
		_, aa := a.(statement.Attachable)
		_, ba := b.(statement.Attachable)
		return aa && !ba
	})

	cursor := 0
	for _, o := range ordered {
		t := o.token
		start := t.StartIndex()
		stop := start - 1
		if s, ok := t.(statement.Substitutable); ok {
			stop = s.StopIndex()
			if start < 0 || stop < start || stop >= len(sql) {
				return errors.Annotatef(ErrTokenOutOfRange, "%T [%d, %d], sql length %d", t, start, stop, len(sql))
			}
		} else if start < 0 || start > len(sql) {
			return errors.Annotatef(ErrTokenOutOfRange, "%T at %d, sql length %d", t, start, len(sql))
		}
		if start < cursor {
			return errors.Annotatef(ErrTokenOverlap, "%T at %d, previous token ends at %d", t, start, cursor-1)
		}
		ph, err := e.newPlaceholder(t, sql[start:stop+1])
		if err != nil {
			return err
		}
		if start > cursor {
			e.segments = append(e.segments, segment{text: sql[cursor:start]})
		}
		e.segments = append(e.segments, segment{ph: ph})
		cursor = stop + 1
	}
	if cursor < len(sql) {
		e.segments = append(e.segments, segment{text: sql[cursor:]})
	}
	return nil
}

// collectTokens adds the tokens derived from pagination and the optimized INSERT to the statement tokens.
func (e *Engine) collectTokens() []statement.SQLToken {
	tokens := append([]statement.SQLToken(nil), e.ctx.Statement.Tokens()...)
	has := func(match func(statement.SQLToken) bool) bool {
		for _, t := range tokens {
			if match(t) {
				return true
			}
		}
		return false
	}
	switch s := e.ctx.Statement.(type) {
	case *statement.SelectStatement:
		p := s.Pagination
		if p == nil {
			break
		}
		if p.Offset != nil && !p.Offset.IsParameter() && p.Offset.Start >= 0 &&
			!has(func(t statement.SQLToken) bool { _, ok := t.(*statement.OffsetToken); return ok }) {
			tokens = append(tokens, statement.NewOffsetToken(p.Offset.Start, p.Offset.Stop))
		}
		if p.RowCount != nil && !p.RowCount.IsParameter() && p.RowCount.Start >= 0 &&
			!has(func(t statement.SQLToken) bool { _, ok := t.(*statement.RowCountToken); return ok }) {
			tokens = append(tokens, statement.NewRowCountToken(p.RowCount.Start, p.RowCount.Stop))
		}
	case *statement.InsertStatement:
		insert := e.ctx.Insert
		if insert == nil {
			break
		}
		if !s.SetForm && s.ValuesStart >= 0 &&
			!has(func(t statement.SQLToken) bool { _, ok := t.(*statement.InsertValuesToken); return ok }) {
			tokens = append(tokens, statement.NewInsertValuesToken(s.ValuesStart, s.ValuesStop))
		}
		if len(insert.AppendedColumns) > 0 && s.ColumnsEnd >= 0 {
			if s.SetForm {
				tokens = append(tokens, statement.NewInsertSetAddItemsToken(s.ColumnsEnd+1, insert.AppendedColumns...))
			} else {
				tokens = append(tokens, statement.NewInsertColumnsToken(s.ColumnsEnd, insert.AppendedColumns...))
			}
		}
	}
	return tokens
}

// Rewrite renders the sql and parameters of one routing unit.
func (e *Engine) Rewrite(unit *routing.RoutingUnit) (*SQLUnit, error) {
	single := e.ctx.Routing == nil || e.ctx.Routing.IsSingleUnit()
	if s, ok := e.ctx.Statement.(*statement.SelectStatement); ok && s.NeedsAllRows() {
		single = false
	}
	var sb strings.Builder
	for _, s := range e.segments {
		if s.ph == nil {
			sb.WriteString(s.text)
			continue
		}
		text, err := s.ph.render(e, unit, single)
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
	}
	return &SQLUnit{SQL: sb.String(), Parameters: e.params.Build(unit, single)}, nil
}

// Generate rewrites the statement for every unit of the routing result.
func (e *Engine) Generate() ([]*ExecutionUnit, error) {
	if e.ctx.Routing == nil {
		return nil, errors.Annotate(core.NewConsistencyError("statement was not routed"), "rewrite")
	}
	units := make([]*ExecutionUnit, 0, len(e.ctx.Routing.Units))
	for _, u := range e.ctx.Routing.Units {
		sqlUnit, err := e.Rewrite(u)
		if err != nil {
			return nil, errors.Annotatef(err, "rewrite for %s", u)
		}
		units = append(units, &ExecutionUnit{DataSourceName: u.DataSourceName, SQLUnit: sqlUnit})
	}
	if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		for _, u := range units {
			logger.Debugf("rewritten %s", u)
		}
	}
	return units, nil
}

// Rewrite is a shortcut for NewEngine then Generate.
func Rewrite(ctx *Context) ([]*ExecutionUnit, error) {
	e, err := NewEngine(ctx)
	if err != nil {
		return nil, err
	}
	return e.Generate()
}
