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
	"strings"

	"github.com/endink/go-sharding-core/core"
)

// ShardingCondition is one AND group of route values.
type ShardingCondition struct {
	RouteValues []RouteValue
	// AlwaysFalse is set when the constraints of the group contradict each other.
	AlwaysFalse bool
}

func NewShardingCondition(values ...RouteValue) *ShardingCondition {
	return &ShardingCondition{RouteValues: values}
}

// Values returns the route values of the column that apply to the logic table.
func (c *ShardingCondition) Values(logicTable string, columns ...string) []RouteValue {
	var r []RouteValue
	for _, v := range c.RouteValues {
		if MatchTable(v, logicTable) && core.ContainsStringIgnoreCase(columns, v.Column()) {
			r = append(r, v)
		}
	}
	return r
}

// BindingValues returns the route values of the columns for tables bound to each other.
// Values of the first table come first, a later table only contributes columns no earlier table restricts.
func (c *ShardingCondition) BindingValues(logicTables []string, columns ...string) []RouteValue {
	var r []RouteValue
	var covered []string
	for _, table := range logicTables {
		var added []string
		for _, v := range c.Values(table, columns...) {
			if core.ContainsStringIgnoreCase(covered, v.Column()) || containsRouteValue(r, v) {
				continue
			}
			r = append(r, v)
			added = append(added, v.Column())
		}
		covered = append(covered, added...)
	}
	return r
}

func containsRouteValue(values []RouteValue, v RouteValue) bool {
	for _, e := range values {
		if e == v {
			return true
		}
	}
	return false
}

func (c *ShardingCondition) String() string {
	if c.AlwaysFalse {
		return "<always false>"
	}
	parts := make([]string, len(c.RouteValues))
	for i, v := range c.RouteValues {
		parts[i] = v.String()
	}
	return strings.Join(parts, " and ")
}

// ShardingConditions is an OR list, an empty list means no restriction.
type ShardingConditions struct {
	Conditions []*ShardingCondition
}

func NewShardingConditions(conditions ...*ShardingCondition) *ShardingConditions {
	return &ShardingConditions{Conditions: conditions}
}

func (s *ShardingConditions) IsEmpty() bool {
	return s == nil || len(s.Conditions) == 0
}

// IsAlwaysFalse reports whether the statement can not match any row.
func (s *ShardingConditions) IsAlwaysFalse() bool {
	if s.IsEmpty() {
		return false
	}
	for _, c := range s.Conditions {
		if !c.AlwaysFalse {
			return false
		}
	}
	return true
}

// HasColumns reports whether any group restricts one of the columns of the logic table.
func (s *ShardingConditions) HasColumns(logicTable string, columns ...string) bool {
	if s.IsEmpty() {
		return false
	}
	for _, c := range s.Conditions {
		if len(c.Values(logicTable, columns...)) > 0 {
			return true
		}
	}
	return false
}

func (s *ShardingConditions) String() string {
	if s.IsEmpty() {
		return "<none>"
	}
	parts := make([]string, len(s.Conditions))
	for i, c := range s.Conditions {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, " or ")
}
