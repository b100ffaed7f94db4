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
	"testing"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/statement"
	"github.com/endink/go-sharding-core/testkit/fixture"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeInsertGeneratedKey(t *testing.T) {
	r := fixture.OrderRule(t)
	stmt := statement.NewInsert("INSERT INTO t_order (user_id, status) VALUES (?, ?), (?, ?)", "t_order", "user_id", "status")
	stmt.AddValues(condition.ParamMarker{Index: 0}, condition.ParamMarker{Index: 1})
	stmt.AddValues(condition.ParamMarker{Index: 2}, condition.ParamMarker{Index: 3})
	params := []interface{}{1, "a", 2, "b"}

	result, err := OptimizeInsert(r, stmt, params)
	require.Nil(t, err)
	assert.Equal(t, []string{"user_id", "status", "order_id"}, result.Columns)
	assert.Equal(t, []string{"order_id"}, result.AppendedColumns)
	require.NotNil(t, result.GeneratedKey)
	assert.True(t, result.GeneratedKey.Generated)
	require.Len(t, result.GeneratedKey.Values, 2)

	first := result.Values[0]
	assert.Len(t, first.Values, 3)
	assert.Equal(t, []interface{}{1, "a", result.GeneratedKey.Values[0]}, first.Parameters)
	require.Len(t, result.Conditions.Conditions, 2)
	assert.Len(t, result.Conditions.Conditions[0].RouteValues, 2)

	routed, err := NewRouter(r).Route(stmt, result.Conditions, nil)
	require.Nil(t, err)
	require.Len(t, routed.ConditionNodes, 2)
	result.BindDataNodes(routed)
	assert.Equal(t, "ds_1", first.DataNodes[0].DataSourceName)
	assert.Equal(t, "ds_0", result.Values[1].DataNodes[0].DataSourceName)
}

func TestOptimizeInsertKeyPresent(t *testing.T) {
	r := fixture.OrderRule(t)
	stmt := statement.NewInsert("INSERT INTO t_order (user_id, order_id) VALUES (1, 3)", "t_order", "user_id", "order_id")
	stmt.AddValues(1, 3)

	result, err := OptimizeInsert(r, stmt, nil)
	require.Nil(t, err)
	assert.False(t, result.GeneratedKey.Generated)
	assert.Equal(t, []interface{}{3}, result.GeneratedKey.Values)
	assert.Empty(t, result.AppendedColumns)

	routed, err := NewRouter(r).Route(stmt, result.Conditions, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1]"}, unitStrings(routed))
}

func TestOptimizeInsertMissingShardingValue(t *testing.T) {
	r := fixture.OrderRule(t)
	stmt := statement.NewInsert("INSERT INTO t_order_item (status) VALUES ('x')", "t_order_item", "status")
	stmt.AddValues("x")

	result, err := OptimizeInsert(r, stmt, nil)
	require.Nil(t, err)
	routed, err := NewRouter(r).Route(stmt, result.Conditions, nil)
	require.Nil(t, err)
	assert.Len(t, routed.Units, 4)
	require.Len(t, routed.ConditionNodes, 1)
	assert.Len(t, routed.ConditionNodes[0], 4)

	result.BindDataNodes(routed)
	for _, u := range routed.Units {
		assert.True(t, result.Values[0].Includes(u), "unit %s", u)
	}
}

func TestOptimizeInsertValueCountMismatch(t *testing.T) {
	r := fixture.OrderRule(t)
	stmt := statement.NewInsert("INSERT INTO t_order (user_id, order_id) VALUES (1)", "t_order", "user_id", "order_id")
	stmt.AddValues(1)

	_, err := OptimizeInsert(r, stmt, nil)
	require.NotNil(t, err)
	assert.Equal(t, ErrColumnCountMismatch, errors.Cause(err))

	stmt = statement.NewInsert("INSERT INTO t_order (user_id) VALUES (1, 2)", "t_order", "user_id")
	stmt.AddValues(1, 2)
	assert.Equal(t, ErrColumnCountMismatch, errors.Cause(NewChecker(r).Check(stmt)))
}

func TestOptimizeInsertMissingParameter(t *testing.T) {
	r := fixture.OrderRule(t)
	stmt := statement.NewInsert("INSERT INTO t_order (user_id) VALUES (?)", "t_order", "user_id")
	stmt.AddValues(condition.ParamMarker{Index: 0})
	_, err := OptimizeInsert(r, stmt, nil)
	assert.True(t, core.IsDataError(err))
}
