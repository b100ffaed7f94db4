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

package statement

import (
	"fmt"

	"github.com/endink/go-sharding-core/condition"
)

// SQLToken is an edit anchored at a character offset of the original sql.
type SQLToken interface {
	StartIndex() int
}

// Substitutable tokens replace [StartIndex, StopIndex] (inclusive).
type Substitutable interface {
	SQLToken
	StopIndex() int
}

// Attachable tokens insert text at StartIndex and consume nothing.
type Attachable interface {
	SQLToken
	Attach()
}

type span struct {
	Start int
	Stop  int
}

func (s span) StartIndex() int {
	return s.Start
}

func (s span) StopIndex() int {
	return s.Stop
}

type anchor struct {
	Start int
}

func (a anchor) StartIndex() int {
	return a.Start
}

func (a anchor) Attach() {}

// TableToken is a logic table name, Quote is the identifier quote found in the sql if any.
type TableToken struct {
	span
	Table string
	Quote string
}

func NewTableToken(start, stop int, table string, quote string) *TableToken {
	return &TableToken{span: span{start, stop}, Table: table, Quote: quote}
}

func (t *TableToken) String() string {
	return fmt.Sprintf("table(%d,%d,%s)", t.Start, t.Stop, t.Table)
}

type RowCountToken struct {
	span
}

func NewRowCountToken(start, stop int) *RowCountToken {
	return &RowCountToken{span{start, stop}}
}

type OffsetToken struct {
	span
}

func NewOffsetToken(start, stop int) *OffsetToken {
	return &OffsetToken{span{start, stop}}
}

// AggregationDistinctToken replaces an aggregation like COUNT(DISTINCT col) with the bare column.
type AggregationDistinctToken struct {
	span
	Column string
	Alias  string
}

func NewAggregationDistinctToken(start, stop int, column string, alias string) *AggregationDistinctToken {
	return &AggregationDistinctToken{span: span{start, stop}, Column: column, Alias: alias}
}

// EncryptColumnToken covers a predicate or SET assignment on an encrypted column.
// In a where clause Operator is OpEqual or OpIn, an assignment is always OpEqual.
type EncryptColumnToken struct {
	span
	Table    string
	Column   string
	Operator condition.Operator
	Values   []interface{}
	InWhere  bool
}

func NewEncryptColumnToken(start, stop int, table, column string, op condition.Operator, inWhere bool, values ...interface{}) *EncryptColumnToken {
	return &EncryptColumnToken{
		span:     span{start, stop},
		Table:    table,
		Column:   column,
		Operator: op,
		Values:   values,
		InWhere:  inWhere,
	}
}

// InsertValuesToken covers every value group of an INSERT ... VALUES statement.
type InsertValuesToken struct {
	span
}

func NewInsertValuesToken(start, stop int) *InsertValuesToken {
	return &InsertValuesToken{span{start, stop}}
}

// SelectItemsToken appends derived select items after the select list.
type SelectItemsToken struct {
	anchor
	Items []string
}

func NewSelectItemsToken(start int, items ...string) *SelectItemsToken {
	return &SelectItemsToken{anchor: anchor{start}, Items: items}
}

// OrderByToken attaches an ORDER BY clause, used when shards must sort by the group key.
type OrderByToken struct {
	anchor
	Items []string
}

func NewOrderByToken(start int, items ...string) *OrderByToken {
	return &OrderByToken{anchor: anchor{start}, Items: items}
}

// GroupByItemsToken attaches columns to a GROUP BY, or a whole clause when NewClause is set.
type GroupByItemsToken struct {
	anchor
	Items     []string
	NewClause bool
}

func NewGroupByItemsToken(start int, newClause bool, items ...string) *GroupByItemsToken {
	return &GroupByItemsToken{anchor: anchor{start}, Items: items, NewClause: newClause}
}

// InsertColumnsToken appends columns to the column list, it sits on the closing parenthesis.
type InsertColumnsToken struct {
	anchor
	Columns []string
}

func NewInsertColumnsToken(start int, columns ...string) *InsertColumnsToken {
	return &InsertColumnsToken{anchor: anchor{start}, Columns: columns}
}

// InsertSetAddItemsToken appends assignments to an INSERT ... SET statement.
type InsertSetAddItemsToken struct {
	anchor
	Columns []string
}

func NewInsertSetAddItemsToken(start int, columns ...string) *InsertSetAddItemsToken {
	return &InsertSetAddItemsToken{anchor: anchor{start}, Columns: columns}
}
