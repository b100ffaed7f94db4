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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeEqualAndIn(t *testing.T) {
	where := Or(And(Equal("t_order", "user_id", 1), In("t_order", "order_id", 1, 3, 3)))
	sc, err := Optimize(where, nil)
	require.Nil(t, err)
	require.Equal(t, 1, len(sc.Conditions))

	c := sc.Conditions[0]
	assert.False(t, c.AlwaysFalse)
	require.Equal(t, 2, len(c.RouteValues))
	assert.Equal(t, []interface{}{1}, c.RouteValues[0].(*ListRouteValue).Values())
	assert.Equal(t, []interface{}{1, 3}, c.RouteValues[1].(*ListRouteValue).Values())
}

func TestOptimizeParameters(t *testing.T) {
	where := Or(And(Equal("t_order", "order_id", ParamMarker{Index: 1})))
	sc, err := Optimize(where, []interface{}{"x", int64(10)})
	require.Nil(t, err)
	assert.Equal(t, []interface{}{int64(10)}, sc.Conditions[0].RouteValues[0].(*ListRouteValue).Values())

	_, err = Optimize(where, []interface{}{"x"})
	assert.NotNil(t, err)
}

func TestOptimizeContradiction(t *testing.T) {
	where := Or(And(Equal("t_order", "order_id", 1), Equal("t_order", "order_id", 2)))
	sc, err := Optimize(where, nil)
	require.Nil(t, err)
	assert.True(t, sc.Conditions[0].AlwaysFalse)
	assert.True(t, sc.IsAlwaysFalse())
}

func TestOptimizeListWithRange(t *testing.T) {
	where := Or(And(In("", "order_id", 1, 5, 9), Between("", "order_id", 2, 8)))
	sc, err := Optimize(where, nil)
	require.Nil(t, err)
	assert.Equal(t, []interface{}{5}, sc.Conditions[0].RouteValues[0].(*ListRouteValue).Values())

	where = Or(And(In("", "order_id", 1, 9), Between("", "order_id", 2, 8)))
	sc, err = Optimize(where, nil)
	require.Nil(t, err)
	assert.True(t, sc.Conditions[0].AlwaysFalse)
}

func TestOptimizeRanges(t *testing.T) {
	where := Or(And(
		NewCondition("", "order_id", OpGreaterEqual, 10),
		NewCondition("", "order_id", OpLessThan, 20),
	))
	sc, err := Optimize(where, nil)
	require.Nil(t, err)
	r := sc.Conditions[0].RouteValues[0].(*RangeRouteValue).Range()
	assert.Equal(t, 10, r.LowerBound())
	assert.Equal(t, 20, r.UpperBound())

	where = Or(And(Between("", "order_id", 30, 20)))
	sc, err = Optimize(where, nil)
	require.Nil(t, err)
	assert.True(t, sc.Conditions[0].AlwaysFalse)
}

func TestOptimizeSkipsExpressions(t *testing.T) {
	where := Or(
		And(Equal("", "create_time", Expression{Text: "NOW()"})),
		And(Equal("", "order_id", 1)),
	)
	sc, err := Optimize(where, nil)
	require.Nil(t, err)
	require.Equal(t, 2, len(sc.Conditions))
	assert.Equal(t, 0, len(sc.Conditions[0].RouteValues))
	assert.False(t, sc.IsAlwaysFalse())
	assert.True(t, sc.HasColumns("t_order", "ORDER_ID"))
	assert.False(t, sc.HasColumns("t_order", "user_id"))
}

func TestEmptyConditions(t *testing.T) {
	sc, err := Optimize(nil, nil)
	require.Nil(t, err)
	assert.True(t, sc.IsEmpty())
	assert.False(t, sc.IsAlwaysFalse())
}

func TestBindingValues(t *testing.T) {
	c := NewShardingCondition(
		NewListRouteValue("t_order_item", "user_id", 2),
		NewListRouteValue("t_order", "order_id", 1),
		NewListRouteValue("t_order_item", "order_id", 3),
		NewListRouteValue("", "status", "x"),
	)

	values := c.BindingValues([]string{"t_order", "t_order_item"}, "user_id", "order_id", "status")
	require.Len(t, values, 3)
	assert.Equal(t, "t_order.order_id in (1)", values[0].String())
	assert.Equal(t, "status in (x)", values[1].String())
	assert.Equal(t, "t_order_item.user_id in (2)", values[2].String())

	assert.Empty(t, c.BindingValues([]string{"t_user"}, "user_id"))
}
