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

package condition

import (
	"fmt"
	"strings"

	"github.com/endink/go-sharding-core/core"
)

// RouteValue is the set of values one column is restricted to within a ShardingCondition.
type RouteValue interface {
	fmt.Stringer
	Table() string
	Column() string
}

type ListRouteValue struct {
	table  string
	column string
	values []interface{}
}

func NewListRouteValue(table string, column string, values ...interface{}) *ListRouteValue {
	return &ListRouteValue{
		table:  table,
		column: column,
		values: values,
	}
}

func (l *ListRouteValue) Table() string {
	return l.table
}

func (l *ListRouteValue) Column() string {
	return l.column
}

func (l *ListRouteValue) Values() []interface{} {
	return l.values
}

func (l *ListRouteValue) String() string {
	values := make([]string, len(l.values))
	for i, v := range l.values {
		values[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s in (%s)", qualifiedName(l.table, l.column), strings.Join(values, ", "))
}

type RangeRouteValue struct {
	table  string
	column string
	rng    core.Range
}

func NewRangeRouteValue(table string, column string, r core.Range) *RangeRouteValue {
	return &RangeRouteValue{
		table:  table,
		column: column,
		rng:    r,
	}
}

func (r *RangeRouteValue) Table() string {
	return r.table
}

func (r *RangeRouteValue) Column() string {
	return r.column
}

func (r *RangeRouteValue) Range() core.Range {
	return r.rng
}

func (r *RangeRouteValue) String() string {
	return fmt.Sprintf("%s in [%s]", qualifiedName(r.table, r.column), r.rng)
}

func qualifiedName(table, column string) string {
	if table == "" {
		return column
	}
	return table + "." + column
}

// MatchTable reports whether a route value applies to the logic table, an empty table applies to every table.
func MatchTable(v RouteValue, logicTable string) bool {
	return v.Table() == "" || strings.EqualFold(v.Table(), logicTable)
}
