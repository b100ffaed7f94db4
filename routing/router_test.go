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
	"math"
	"testing"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/endink/go-sharding-core/testkit"
	"github.com/endink/go-sharding-core/testkit/fixture"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optimize(t *testing.T, where condition.OrCondition, params ...interface{}) *condition.ShardingConditions {
	c, err := condition.Optimize(where, params)
	require.Nil(t, err)
	return c
}

func unitStrings(result *RoutingResult) []string {
	list := make([]string, len(result.Units))
	for i, u := range result.Units {
		list[i] = u.String()
	}
	return list
}

func TestRouteSingleUnit(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order WHERE user_id = 1 AND order_id = 1", "t_order")
	where := condition.Or(condition.And(condition.Equal("", "user_id", 1), condition.Equal("", "order_id", 1)))

	result, err := router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, EngineStandard, result.Engine)
	testkit.MustMatch(t, []*RoutingUnit{
		{DataSourceName: "ds_1", TableUnits: []TableUnit{{LogicTable: "t_order", ActualTable: "t_order_1"}}},
	}, result.Units)
	assert.True(t, result.IsSingleUnit())
}

func TestRouteTableStrategyOnly(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order WHERE order_id IN (1, 3)", "t_order")
	where := condition.Or(condition.And(condition.In("", "order_id", 1, 3)))

	result, err := router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_0[t_order->t_order_1]", "ds_1[t_order->t_order_1]"}, unitStrings(result))
	assert.Equal(t, []string{"ds_0", "ds_1"}, result.DataSourceNames())
}

func TestRouteNoCondition(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	result, err := router.Route(statement.NewSelect("SELECT * FROM t_order", "t_order"), nil, nil)
	require.Nil(t, err)
	assert.Len(t, result.Units, 4)
}

func TestRouteOrConditionsUnion(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	where := condition.Or(
		condition.And(condition.Equal("", "user_id", 1), condition.Equal("", "order_id", 1)),
		condition.And(condition.Equal("", "user_id", 2), condition.Equal("", "order_id", 2)),
		condition.And(condition.Equal("", "user_id", 3), condition.Equal("", "order_id", 5)),
	)
	result, err := router.Route(statement.NewSelect("SELECT * FROM t_order WHERE ...", "t_order"), optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1]", "ds_0[t_order->t_order_0]"}, unitStrings(result))
}

func TestRouteBindingTables(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order o JOIN t_order_item i ON o.order_id = i.order_id", "t_order", "t_order_item")

	result, err := router.Route(stmt, nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineStandard, result.Engine)
	require.Len(t, result.Units, 4)
	for _, u := range result.Units {
		order, _ := u.ActualTable("t_order")
		item, _ := u.ActualTable("t_order_item")
		assert.Equal(t, order[len(order)-1], item[len(item)-1])
	}

	where := condition.Or(condition.And(condition.Equal("t_order", "order_id", 1), condition.Equal("t_order", "user_id", 1)))
	result, err = router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1, t_order_item->t_order_item_1]"}, unitStrings(result))
}

func TestRouteBindingTablesByMemberValues(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order o JOIN t_order_item i ON o.order_id = i.order_id", "t_order", "t_order_item")

	where := condition.Or(condition.And(condition.Equal("t_order_item", "user_id", 1), condition.Equal("t_order_item", "order_id", 1)))
	result, err := router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1, t_order_item->t_order_item_1]"}, unitStrings(result))

	where = condition.Or(condition.And(condition.Equal("t_order", "user_id", 1), condition.Equal("t_order_item", "order_id", 2)))
	result, err = router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_0, t_order_item->t_order_item_0]"}, unitStrings(result))

	where = condition.Or(condition.And(
		condition.Equal("t_order", "user_id", 1), condition.Equal("t_order", "order_id", 1),
		condition.Equal("t_order_item", "order_id", 2)))
	result, err = router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1, t_order_item->t_order_item_1]"}, unitStrings(result))
}

func TestRouteRangeAtInt64Bounds(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order WHERE user_id = 1 AND order_id BETWEEN -5 AND 9223372036854775807", "t_order")
	where := condition.Or(condition.And(condition.Equal("", "user_id", 1), condition.Between("", "order_id", int64(-5), int64(math.MaxInt64))))

	result, err := router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_0]", "ds_1[t_order->t_order_1]"}, unitStrings(result))

	where = condition.Or(condition.And(condition.Equal("", "user_id", 1), condition.Between("", "order_id", int64(math.MaxInt64), int64(math.MaxInt64))))
	result, err = router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_order->t_order_1]"}, unitStrings(result))
}

func TestRouteNoMatchingShard(t *testing.T) {
	algorithm, err := rule.NewShardingAlgorithm("boundary-range", core.NewPropertiesFromMap(map[string]string{"sharding-boundaries": "10, 20"}))
	require.Nil(t, err)
	strategy, err := rule.NewStandardStrategy("amount", algorithm)
	require.Nil(t, err)
	tr, err := rule.NewTableRuleFromExpression("t_bill", "ds_0.t_bill_${0..1}", rule.WithTableStrategy(strategy))
	require.Nil(t, err)
	r, err := rule.NewShardingRule([]string{"ds_0"}, []*rule.TableRule{tr})
	require.Nil(t, err)
	router := NewRouter(r)
	stmt := statement.NewSelect("SELECT * FROM t_bill WHERE amount ...", "t_bill")

	result, err := router.Route(stmt, optimize(t, condition.Or(condition.And(condition.Equal("", "amount", 15)))), nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_0[t_bill->t_bill_1]"}, unitStrings(result))

	for _, where := range []condition.OrCondition{
		condition.Or(condition.And(condition.Equal("", "amount", 25))),
		condition.Or(condition.And(condition.Between("", "amount", 25, 30))),
	} {
		_, err = router.Route(stmt, optimize(t, where), nil)
		require.NotNil(t, err, "%v", where)
		assert.Equal(t, rule.ErrNoMatchingShard, errors.Cause(err))
		assert.True(t, core.IsConfigurationError(err))
	}
}

func TestRouteCartesian(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	stmt := statement.NewSelect("SELECT * FROM t_order, t_user", "t_order", "t_user")
	where := condition.Or(condition.And(condition.Equal("t_order", "user_id", 1), condition.Equal("t_order", "order_id", 1)))

	result, err := router.Route(stmt, optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, EngineCartesian, result.Engine)
	assert.Equal(t, []string{
		"ds_1[t_order->t_order_1, t_user->t_user_0]",
		"ds_1[t_order->t_order_1, t_user->t_user_1]",
	}, unitStrings(result))

	result, err = router.Route(stmt, nil, nil)
	require.Nil(t, err)
	assert.Len(t, result.Units, 8)
}

func TestRouteMultiTableWriteRejected(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	_, err := router.Route(statement.NewUpdate("UPDATE t_order, t_user SET ...", "t_order", "t_user"), nil, nil)
	assert.True(t, core.IsConfigurationError(err))
}

func TestRouteAlwaysFalse(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	where := condition.Or(condition.And(condition.Equal("", "order_id", 1), condition.Equal("", "order_id", 2)))
	result, err := router.Route(statement.NewSelect("SELECT * FROM t_order WHERE order_id = 1 AND order_id = 2", "t_order"), optimize(t, where), nil)
	require.Nil(t, err)
	assert.Equal(t, EngineUnicast, result.Engine)
	assert.Equal(t, []string{"ds_0[t_order->t_order_0]"}, unitStrings(result))
}

func TestRouteBroadcast(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))

	result, err := router.Route(statement.NewGeneral(statement.KindDDL, "ALTER TABLE t_order ADD c INT", "t_order"), nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineTableBroadcast, result.Engine)
	assert.Len(t, result.Units, 4)

	result, err = router.Route(statement.NewGeneral(statement.KindTCL, "COMMIT"), nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineDatabaseBroadcast, result.Engine)
	assert.Equal(t, []string{"ds_0[]", "ds_1[]"}, unitStrings(result))

	result, err = router.Route(statement.NewUpdate("UPDATE t_config SET v = 1", "t_config"), nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineDatabaseBroadcast, result.Engine)
	assert.Equal(t, []string{"ds_0[t_config->t_config]", "ds_1[t_config->t_config]"}, unitStrings(result))

	result, err = router.Route(statement.NewSelect("SELECT * FROM t_config", "t_config"), nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineUnicast, result.Engine)
	assert.Equal(t, []string{"ds_0[t_config->t_config]"}, unitStrings(result))
}

func TestRouteUnmanaged(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	result, err := router.Route(statement.NewSelect("SELECT * FROM t_other", "t_other"), nil, nil)
	require.Nil(t, err)
	assert.Equal(t, EngineDefaultDataSource, result.Engine)
	assert.Equal(t, []string{"ds_0[t_other->t_other]"}, unitStrings(result))

	router = NewRouter(fixture.OrderRule(t, rule.WithDefaultRoutePolicy(rule.RejectUnmanaged)))
	_, err = router.Route(statement.NewSelect("SELECT * FROM t_other", "t_other"), nil, nil)
	assert.True(t, core.IsConfigurationError(err))
}

func TestRouteHints(t *testing.T) {
	hint, err := rule.NewShardingAlgorithm("hint-inline", core.NewPropertiesFromMap(map[string]string{"algorithm-expression": "ds_${value % 2}"}))
	require.Nil(t, err)
	strategy, err := rule.NewHintStrategy(hint)
	require.Nil(t, err)
	tr, err := rule.NewTableRuleFromExpression("t_log", "ds_${0..1}.t_log", rule.WithDatabaseStrategy(strategy))
	require.Nil(t, err)
	r, err := rule.NewShardingRule([]string{"ds_0", "ds_1"}, []*rule.TableRule{tr})
	require.Nil(t, err)

	result, err := NewRouter(r).Route(statement.NewSelect("SELECT * FROM t_log", "t_log"), nil, &Hints{DatabaseValues: []interface{}{3}})
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1[t_log->t_log]"}, unitStrings(result))
}

func TestRouteSchemaQualified(t *testing.T) {
	router := NewRouter(fixture.OrderRule(t))
	_, err := router.Route(statement.NewSelect("SELECT * FROM db.t_order", "db.t_order"), nil, nil)
	assert.True(t, core.IsConfigurationError(err))
}

func TestRoutingResultDedup(t *testing.T) {
	r := newRoutingResult(EngineStandard)
	assert.True(t, r.Add(NewRoutingUnit("ds_0", TableUnit{"t", "t_0"})))
	assert.False(t, r.Add(NewRoutingUnit("DS_0", TableUnit{"T", "T_0"})))
	assert.True(t, r.Add(NewRoutingUnit("ds_0", TableUnit{"t", "t_1"})))
	assert.Len(t, r.Units, 2)
}
