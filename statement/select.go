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
	"strings"
	"sync"
)

type AggregationType int

const (
	AggregationNone AggregationType = iota
	AggregationCount
	AggregationSum
	AggregationAvg
	AggregationMax
	AggregationMin
)

func (a AggregationType) String() string {
	switch a {
	case AggregationCount:
		return "COUNT"
	case AggregationSum:
		return "SUM"
	case AggregationAvg:
		return "AVG"
	case AggregationMax:
		return "MAX"
	case AggregationMin:
		return "MIN"
	}
	return ""
}

// SelectItem is one expression of the select list.
type SelectItem struct {
	// Expression is the text as written, e.g. 'COUNT(DISTINCT order_id)'.
	Expression string
	Alias      string
	// Index is the zero based column of the item in a shard result, -1 means it is resolved by Label at merge time.
	Index       int
	Aggregation AggregationType
	// Argument is the text inside an aggregation, without DISTINCT.
	Argument string
	// Distinct marks an aggregation over distinct values.
	Distinct bool
	Star     bool
	// Start and Stop locate the item in the sql, -1 when unknown.
	Start int
	Stop  int
	// Derived holds the COUNT and SUM items computing an AVG.
	Derived []*SelectItem
}

func NewColumnItem(expression string, alias string) *SelectItem {
	return &SelectItem{Expression: expression, Alias: alias, Index: -1, Start: -1, Stop: -1}
}

func NewStarItem() *SelectItem {
	return &SelectItem{Expression: "*", Star: true, Index: -1, Start: -1, Stop: -1}
}

// NewAggregationItem creates an item like SUM(price), start and stop locate the whole item text.
func NewAggregationItem(aggregation AggregationType, argument string, distinct bool, alias string, start, stop int) *SelectItem {
	inner := argument
	if distinct {
		inner = "DISTINCT " + argument
	}
	return &SelectItem{
		Expression:  fmt.Sprintf("%s(%s)", aggregation, inner),
		Alias:       alias,
		Index:       -1,
		Aggregation: aggregation,
		Argument:    argument,
		Distinct:    distinct,
		Start:       start,
		Stop:        stop,
	}
}

// Label is the column label a shard reports for the item.
func (s *SelectItem) Label() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Expression
}

func (s *SelectItem) IsAggregation() bool {
	return s.Aggregation != AggregationNone
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderItem is one ORDER BY or GROUP BY item.
type OrderItem struct {
	// Column is the expression as written, possibly qualified like 'o.user_id'.
	Column    string
	Direction Direction
	// Index is the zero based column of the item in a shard result, -1 means it is resolved by Label.
	Index int
	// Label is the column label holding the value, set when the statement is prepared.
	Label string
}

func NewOrderItem(column string, direction Direction) *OrderItem {
	return &OrderItem{Column: column, Direction: direction, Index: -1}
}

// Name is the column without qualifier.
func (o *OrderItem) Name() string {
	if i := strings.LastIndex(o.Column, "."); i >= 0 {
		return o.Column[i+1:]
	}
	return o.Column
}

func (o *OrderItem) String() string {
	return o.Column + " " + o.Direction.String()
}

// SelectStatement carries what routing, rewriting and merging need to know about a query.
type SelectStatement struct {
	Common
	Items    []*SelectItem
	GroupBy  []*OrderItem
	OrderBy  []*OrderItem
	Distinct bool
	// Pagination is nil without LIMIT or row number bounds.
	Pagination *Pagination
	// ItemsStop is the offset of the last character of the select list.
	ItemsStop int
	// GroupByStop is the offset of the last character of the GROUP BY list, -1 without GROUP BY.
	GroupByStop int
	// ClauseInsert is where a new GROUP BY clause can be attached, -1 when not known.
	ClauseInsert int

	prepareOnce sync.Once
	prepareErr  error
	derivedSeq  int
}

func NewSelect(sql string, tables ...string) *SelectStatement {
	return &SelectStatement{
		Common:       Common{Type: KindSelect, Text: sql, TableNames: tables},
		ItemsStop:    -1,
		GroupByStop:  -1,
		ClauseInsert: -1,
	}
}

func (s *SelectStatement) HasStar() bool {
	for _, item := range s.Items {
		if item.Star {
			return true
		}
	}
	return false
}

// AggregationItems returns the aggregations of the select list, derived items excluded.
func (s *SelectStatement) AggregationItems() []*SelectItem {
	var list []*SelectItem
	for _, item := range s.Items {
		if item.IsAggregation() && !isDerivedAlias(item.Alias) {
			list = append(list, item)
		}
	}
	return list
}

func (s *SelectStatement) HasAggregationDistinct() bool {
	for _, item := range s.AggregationItems() {
		if item.Distinct {
			return true
		}
	}
	return false
}

// IsSameGroupByAndOrderBy reports whether rows ordered by ORDER BY are also grouped, so groups can be merged as streams.
func (s *SelectStatement) IsSameGroupByAndOrderBy() bool {
	if len(s.GroupBy) == 0 || len(s.GroupBy) != len(s.OrderBy) {
		return false
	}
	for i, g := range s.GroupBy {
		o := s.OrderBy[i]
		if !strings.EqualFold(g.Column, o.Column) || g.Direction != o.Direction {
			return false
		}
	}
	return true
}
