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
)

type Operator int

const (
	OpEqual Operator = iota
	OpIn
	OpBetween
	OpGreaterThan
	OpGreaterEqual
	OpLessThan
	OpLessEqual
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpIn:
		return "IN"
	case OpBetween:
		return "BETWEEN"
	case OpGreaterThan:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessEqual:
		return "<="
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// ParamMarker refers to the parameter at Index (zero based) of the statement parameters.
type ParamMarker struct {
	Index int
}

func (p ParamMarker) String() string {
	return fmt.Sprintf("?%d", p.Index)
}

// Expression is a value that can only be computed by the database, e.g. NOW(), it never takes part in routing.
type Expression struct {
	Text string
}

func (e Expression) String() string {
	return e.Text
}

// Condition is one predicate of a where clause, values are literals, ParamMarker or Expression.
type Condition struct {
	Table    string
	Column   string
	Operator Operator
	Values   []interface{}
}

func NewCondition(table string, column string, op Operator, values ...interface{}) *Condition {
	return &Condition{
		Table:    table,
		Column:   column,
		Operator: op,
		Values:   values,
	}
}

func Equal(table string, column string, value interface{}) *Condition {
	return NewCondition(table, column, OpEqual, value)
}

func In(table string, column string, values ...interface{}) *Condition {
	return NewCondition(table, column, OpIn, values...)
}

func Between(table string, column string, lower interface{}, upper interface{}) *Condition {
	return NewCondition(table, column, OpBetween, lower, upper)
}

func (c *Condition) String() string {
	values := make([]string, len(c.Values))
	for i, v := range c.Values {
		values[i] = fmt.Sprint(v)
	}
	name := c.Column
	if c.Table != "" {
		name = c.Table + "." + c.Column
	}
	return fmt.Sprintf("%s %s (%s)", name, c.Operator, strings.Join(values, ", "))
}

// AndCondition is a conjunction of predicates.
type AndCondition []*Condition

// OrCondition is a where clause in disjunctive normal form.
type OrCondition []AndCondition

func And(conditions ...*Condition) AndCondition {
	return conditions
}

func Or(groups ...AndCondition) OrCondition {
	return groups
}
