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
	"strings"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

// standard routes a single sharding table, or tables of one binding group driven by the first table.
func (r *Router) standard(stmt statement.Statement, tables []string, conditions *condition.ShardingConditions, hints *Hints) (*RoutingResult, error) {
	result, err := r.routeTables(tables, conditions, hints, stmt != nil && stmt.Kind() == statement.KindInsert)
	if err != nil {
		return nil, err
	}
	result.Engine = EngineStandard
	return result, nil
}

func (r *Router) routeTables(tables []string, conditions *condition.ShardingConditions, hints *Hints, insert bool) (*RoutingResult, error) {
	driving, _ := r.rule.TableRule(tables[0])
	nodes, perCondition, err := r.resolveDataNodes(driving, tables, conditions, hints)
	if err != nil {
		return nil, err
	}

	var group *rule.BindingTableGroup
	if len(tables) > 1 {
		group, _ = r.rule.BindingGroup(driving.LogicTable)
	}

	result := newRoutingResult(EngineStandard)
	for _, node := range nodes {
		unit := NewRoutingUnit(node.DataSourceName, TableUnit{LogicTable: driving.LogicTable, ActualTable: node.TableName})
		for _, other := range tables[1:] {
			actual, err := group.BindingActualTable(node.DataSourceName, other, driving.LogicTable, node.TableName)
			if err != nil {
				return nil, err
			}
			unit.TableUnits = append(unit.TableUnits, TableUnit{LogicTable: other, ActualTable: actual})
		}
		result.Add(unit)
	}
	if insert {
		result.ConditionNodes = perCondition
	}
	return result, nil
}

// resolveDataNodes unions the data nodes of every sharding condition in first seen order,
// perCondition holds the nodes of each condition. Route values of every table in tables
// drive t, the tables after t are bound to it.
func (r *Router) resolveDataNodes(t *rule.TableRule, tables []string, conditions *condition.ShardingConditions, hints *Hints) ([]rule.DataNode, [][]rule.DataNode, error) {
	groups := []*condition.ShardingCondition{nil}
	if !conditions.IsEmpty() {
		groups = conditions.Conditions
	}

	var all []rule.DataNode
	perCondition := make([][]rule.DataNode, 0, len(groups))
	for _, sc := range groups {
		if sc != nil && sc.AlwaysFalse {
			perCondition = append(perCondition, nil)
			continue
		}
		nodes, err := r.routeCondition(t, tables, sc, hints)
		if err != nil {
			return nil, nil, err
		}
		perCondition = append(perCondition, nodes)
		for _, n := range nodes {
			all = appendDataNode(all, n)
		}
	}
	return all, perCondition, nil
}

func (r *Router) routeCondition(t *rule.TableRule, tables []string, sc *condition.ShardingCondition, hints *Hints) ([]rule.DataNode, error) {
	var dbHints, tableHints []interface{}
	if hints != nil {
		dbHints, tableHints = hints.DatabaseValues, hints.TableValues
	}

	dbStrategy := r.rule.DatabaseStrategy(t)
	dataSources, err := dbStrategy.DoSharding(t.ActualDataSourceNames(), routeValues(tables, sc, dbStrategy, dbHints))
	if err != nil {
		return nil, errors.Annotatef(err, "route data source of '%s'", t.LogicTable)
	}
	if len(dataSources) == 0 {
		return nil, errors.Annotatef(rule.ErrNoMatchingShard, "no data source of '%s' matches %s", t.LogicTable, sc)
	}

	tableStrategy := r.rule.TableStrategy(t)
	tableValues := routeValues(tables, sc, tableStrategy, tableHints)
	var nodes []rule.DataNode
	for _, ds := range dataSources {
		tables, err := tableStrategy.DoSharding(t.ActualTableNames(ds), tableValues)
		if err != nil {
			return nil, errors.Annotatef(err, "route table of '%s' in '%s'", t.LogicTable, ds)
		}
		if len(tables) == 0 {
			return nil, errors.Annotatef(rule.ErrNoMatchingShard, "no table of '%s' in '%s' matches %s", t.LogicTable, ds, sc)
		}
		for _, table := range tables {
			nodes = appendDataNode(nodes, rule.NewDataNode(ds, table))
		}
	}
	return nodes, nil
}

func routeValues(tables []string, sc *condition.ShardingCondition, strategy rule.ShardingStrategy, hints []interface{}) []condition.RouteValue {
	var values []condition.RouteValue
	if sc != nil {
		values = sc.BindingValues(tables, strategy.ShardingColumns()...)
	}
	if len(hints) > 0 {
		values = append(values, condition.NewListRouteValue("", rule.HintColumn, hints...))
	}
	return values
}

func appendDataNode(nodes []rule.DataNode, node rule.DataNode) []rule.DataNode {
	for _, n := range nodes {
		if n.Equals(node) {
			return nodes
		}
	}
	return append(nodes, node)
}

func sameNameUnits(tables []string) []TableUnit {
	units := make([]TableUnit, 0, len(tables))
	for _, t := range tables {
		if !containsLogic(units, t) {
			units = append(units, TableUnit{LogicTable: t, ActualTable: t})
		}
	}
	return units
}

func containsLogic(units []TableUnit, logic string) bool {
	for _, u := range units {
		if strings.EqualFold(u.LogicTable, logic) {
			return true
		}
	}
	return false
}
