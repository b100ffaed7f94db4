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

// Package fixture builds the sharding rules shared by tests of the routing, rewriting and sharding packages.
package fixture

import (
	"testing"

	"github.com/endink/go-sharding-core/core"
	_ "github.com/endink/go-sharding-core/driver"
	"github.com/endink/go-sharding-core/rule"
	"github.com/stretchr/testify/require"
)

// ModStrategy shards on column with value % 2.
func ModStrategy(t testing.TB, column string) rule.ShardingStrategy {
	algorithm, err := rule.NewShardingAlgorithm("mod", core.NewPropertiesFromMap(map[string]string{"sharding-count": "2"}))
	require.Nil(t, err)
	s, err := rule.NewStandardStrategy(column, algorithm)
	require.Nil(t, err)
	return s
}

func table(t testing.TB, logic string, nodes string, opts ...rule.TableRuleOption) *rule.TableRule {
	r, err := rule.NewTableRuleFromExpression(logic, nodes, opts...)
	require.Nil(t, err)
	return r
}

// OrderRule returns a rule of two data sources ds_0 and ds_1 with:
//
//	t_order, t_order_item: 2 x 2, database by user_id % 2, table by order_id % 2, bound together
//	t_user: 2 x 2, database and table by user_id % 2
//	t_config: broadcast
//
// t_order generates order_id with an increment generator starting at 100 when the column is missing.
func OrderRule(t testing.TB, opts ...rule.RuleOption) *rule.ShardingRule {
	keygen, err := rule.NewKeyGenerator("increment", core.NewPropertiesFromMap(map[string]string{"initial-value": "100"}))
	require.Nil(t, err)

	order := table(t, "t_order", "ds_${0..1}.t_order_${0..1}",
		rule.WithDatabaseStrategy(ModStrategy(t, "user_id")),
		rule.WithTableStrategy(ModStrategy(t, "order_id")),
		rule.WithKeyGenerator("order_id", keygen))
	item := table(t, "t_order_item", "ds_${0..1}.t_order_item_${0..1}",
		rule.WithDatabaseStrategy(ModStrategy(t, "user_id")),
		rule.WithTableStrategy(ModStrategy(t, "order_id")))
	user := table(t, "t_user", "ds_${0..1}.t_user_${0..1}",
		rule.WithDatabaseStrategy(ModStrategy(t, "user_id")),
		rule.WithTableStrategy(ModStrategy(t, "user_id")))

	options := append([]rule.RuleOption{
		rule.WithBindingTables("t_order", "t_order_item"),
		rule.WithBroadcastTables("t_config"),
		rule.WithDefaultDataSource("ds_0"),
	}, opts...)
	r, err := rule.NewShardingRule([]string{"ds_0", "ds_1"}, []*rule.TableRule{order, item, user}, options...)
	require.Nil(t, err)
	return r
}
