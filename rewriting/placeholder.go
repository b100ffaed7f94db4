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
	"strconv"
	"strings"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/routing"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

var ErrNoInsertValues = core.NewConsistencyError("routing unit writes no value group")

// placeholder renders the text of a token for one routing unit.
type placeholder interface {
	render(e *Engine, unit *routing.RoutingUnit, single bool) (string, error)
}

// fixedPlaceholder renders the same text for every unit.
type fixedPlaceholder string

func (p fixedPlaceholder) render(*Engine, *routing.RoutingUnit, bool) (string, error) {
	return string(p), nil
}

type tablePlaceholder struct {
	table string
	quote string
}

func (p *tablePlaceholder) render(_ *Engine, unit *routing.RoutingUnit, _ bool) (string, error) {
	name := p.table
	if unit != nil {
		if actual, ok := unit.ActualTable(p.table); ok {
			name = actual
		}
	}
	return p.quote + name + p.quote, nil
}

// paginationPlaceholder keeps the original text for a single unit.
type paginationPlaceholder struct {
	original string
	revised  string
}

func (p *paginationPlaceholder) render(_ *Engine, _ *routing.RoutingUnit, single bool) (string, error) {
	if single {
		return p.original, nil
	}
	return p.revised, nil
}

type insertValuesPlaceholder struct {
	groups []*routing.InsertValue
}

func (p *insertValuesPlaceholder) render(_ *Engine, unit *routing.RoutingUnit, _ bool) (string, error) {
	var sb strings.Builder
	for _, g := range p.groups {
		if !g.Includes(unit) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		sb.WriteString(joinLiterals(g.Values))
		sb.WriteString(")")
	}
	if sb.Len() == 0 {
		return "", errors.Annotatef(ErrNoInsertValues, "unit %s", unit)
	}
	return sb.String(), nil
}

// setItemsPlaceholder appends the appended cells of the single group of an INSERT ... SET.
type setItemsPlaceholder struct {
	columns []string
	group   *routing.InsertValue
	offset  int
}

func (p *setItemsPlaceholder) render(*Engine, *routing.RoutingUnit, bool) (string, error) {
	var sb strings.Builder
	for i, c := range p.columns {
		sb.WriteString(", ")
		sb.WriteString(c)
		sb.WriteString(" = ")
		if p.offset+i < len(p.group.Values) {
			sb.WriteString(FormatLiteral(p.group.Values[p.offset+i]))
		} else {
			sb.WriteString("NULL")
		}
	}
	return sb.String(), nil
}

func joinLiterals(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatLiteral(v)
	}
	return strings.Join(parts, ", ")
}

// newPlaceholder converts a token to a placeholder, original is the text the token covers.
func (e *Engine) newPlaceholder(token statement.SQLToken, original string) (placeholder, error) {
	switch t := token.(type) {
	case *statement.TableToken:
		return &tablePlaceholder{table: t.Table, quote: t.Quote}, nil
	case *statement.RowCountToken:
		return &paginationPlaceholder{original: original, revised: strconv.FormatInt(e.rowCount, 10)}, nil
	case *statement.OffsetToken:
		return &paginationPlaceholder{original: original, revised: strconv.FormatInt(e.offset, 10)}, nil
	case *statement.AggregationDistinctToken:
		if t.Alias == "" {
			return fixedPlaceholder(t.Column), nil
		}
		return fixedPlaceholder(t.Column + " AS " + t.Alias), nil
	case *statement.SelectItemsToken:
		return fixedPlaceholder(", " + strings.Join(t.Items, ", ")), nil
	case *statement.OrderByToken:
		return fixedPlaceholder(" ORDER BY " + strings.Join(t.Items, ", ")), nil
	case *statement.GroupByItemsToken:
		if t.NewClause {
			return fixedPlaceholder(" GROUP BY " + strings.Join(t.Items, ", ")), nil
		}
		return fixedPlaceholder(", " + strings.Join(t.Items, ", ")), nil
	case *statement.InsertColumnsToken:
		return fixedPlaceholder(", " + strings.Join(t.Columns, ", ")), nil
	case *statement.InsertValuesToken:
		if e.ctx.Insert == nil {
			return fixedPlaceholder(original), nil
		}
		return &insertValuesPlaceholder{groups: e.ctx.Insert.Values}, nil
	case *statement.InsertSetAddItemsToken:
		insert := e.ctx.Insert
		if insert == nil || len(insert.Values) == 0 {
			return nil, errors.Annotate(core.NewConsistencyError("insert set items without value group"), "rewrite")
		}
		return &setItemsPlaceholder{
			columns: t.Columns,
			group:   insert.Values[0],
			offset:  len(insert.Columns) - len(insert.AppendedColumns),
		}, nil
	case *statement.EncryptColumnToken:
		return e.encryptPlaceholder(t)
	}
	return nil, errors.Annotatef(core.NewConsistencyError("unsupported sql token"), "%T at %d", token, token.StartIndex())
}

func (e *Engine) encryptPlaceholder(t *statement.EncryptColumnToken) (placeholder, error) {
	if e.ctx.Rule == nil {
		return nil, errors.Annotate(core.NewConsistencyError("encrypt token without sharding rule"), "rewrite")
	}
	ec, ok := e.ctx.Rule.EncryptRule().FindColumn(t.Table, t.Column)
	if !ok {
		return nil, errors.Annotatef(core.NewConsistencyError("column is not encrypted"), "'%s.%s'", t.Table, t.Column)
	}
	if t.InWhere {
		values := make([]string, len(t.Values))
		for i, v := range t.Values {
			s, err := e.encryptValue(v, ec.QueryValue, nil)
			if err != nil {
				return nil, errors.Annotatef(err, "query value of '%s.%s'", t.Table, t.Column)
			}
			values[i] = s
		}
		if t.Operator == condition.OpIn {
			return fixedPlaceholder(ec.QueryColumn() + " IN (" + strings.Join(values, ", ") + ")"), nil
		}
		if len(values) != 1 {
			return nil, errors.Annotatef(core.NewConsistencyError("encrypted predicate takes one value"), "'%s.%s' %s", t.Table, t.Column, t.Operator)
		}
		return fixedPlaceholder(ec.QueryColumn() + " " + t.Operator.String() + " " + values[0]), nil
	}

	if len(t.Values) != 1 {
		return nil, errors.Annotatef(core.NewConsistencyError("encrypted assignment takes one value"), "'%s.%s'", t.Table, t.Column)
	}
	// values of an INSERT were encrypted when the value groups were resolved
	_, insert := e.ctx.Statement.(*statement.InsertStatement)
	if insert && e.ctx.Insert != nil {
		if isMarker(t.Values[0]) {
			return fixedPlaceholder(t.Column + " = ?"), nil
		}
		s, err := e.encryptValue(t.Values[0], ec.Encryptor.Encrypt, nil)
		if err != nil {
			return nil, errors.Annotatef(err, "encrypt '%s.%s'", t.Table, t.Column)
		}
		return fixedPlaceholder(t.Column + " = " + s), nil
	}

	var assisted func(interface{}) (interface{}, error)
	if ec.AssistedQueryColumn != "" {
		assisted = ec.QueryValue
	}
	cipher, err := e.encryptValue(t.Values[0], ec.Encryptor.Encrypt, assisted)
	if err != nil {
		return nil, errors.Annotatef(err, "encrypt '%s.%s'", t.Table, t.Column)
	}
	text := t.Column + " = " + cipher
	if assisted != nil {
		digest := "?"
		if !isMarker(t.Values[0]) {
			if digest, err = e.encryptValue(t.Values[0], assisted, nil); err != nil {
				return nil, errors.Annotatef(err, "assisted query value of '%s.%s'", t.Table, t.Column)
			}
		}
		text += ", " + ec.AssistedQueryColumn + " = " + digest
	}
	return fixedPlaceholder(text), nil
}

// encryptValue renders an encrypted literal, a marker renders as '?' and its parameter is replaced.
// When extra is set the value it produces is bound right after a marker parameter.
func (e *Engine) encryptValue(v interface{}, encrypt func(interface{}) (interface{}, error), extra func(interface{}) (interface{}, error)) (string, error) {
	if m, ok := marker(v); ok {
		plain, err := condition.ResolveValue(m, e.ctx.Parameters)
		if err != nil {
			return "", err
		}
		cipher, err := encrypt(plain)
		if err != nil {
			return "", err
		}
		e.params.Replace(m.Index, cipher)
		if extra != nil {
			x, err := extra(plain)
			if err != nil {
				return "", err
			}
			e.params.Add(m.Index, x)
		}
		return "?", nil
	}
	switch v.(type) {
	case condition.Expression, *condition.Expression:
		return "", errors.Annotatef(routing.ErrEncryptExpression, "%v", v)
	}
	cipher, err := encrypt(v)
	if err != nil {
		return "", err
	}
	return FormatLiteral(cipher), nil
}

func marker(v interface{}) (condition.ParamMarker, bool) {
	switch m := v.(type) {
	case condition.ParamMarker:
		return m, true
	case *condition.ParamMarker:
		return *m, true
	}
	return condition.ParamMarker{}, false
}

func isMarker(v interface{}) bool {
	_, ok := marker(v)
	return ok
}
