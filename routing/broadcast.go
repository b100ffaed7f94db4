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

// databaseBroadcast targets every data source, table names are unchanged.
func (r *Router) databaseBroadcast(tables []string) *RoutingResult {
	result := newRoutingResult(EngineDatabaseBroadcast)
	for _, ds := range r.rule.DataSourceNames() {
		result.Add(NewRoutingUnit(ds, sameNameUnits(tables)...))
	}
	return result
}

// tableBroadcast targets every data node of every table.
// Broadcast tables exist on every data source, unmanaged tables follow the default route policy.
func (r *Router) tableBroadcast(tables []string) (*RoutingResult, error) {
	result := newRoutingResult(EngineTableBroadcast)
	for _, t := range tables {
		if tr, ok := r.rule.TableRule(t); ok {
			for _, node := range tr.DataNodes {
				result.Add(NewRoutingUnit(node.DataSourceName, TableUnit{LogicTable: tr.LogicTable, ActualTable: node.TableName}))
			}
			continue
		}
		if r.rule.IsBroadcastTable(t) {
			for _, ds := range r.rule.DataSourceNames() {
				result.Add(NewRoutingUnit(ds, TableUnit{LogicTable: t, ActualTable: t}))
			}
			continue
		}
		ds, err := r.rule.FindDataSourceForUnmanaged([]string{t})
		if err != nil {
			return nil, err
		}
		result.Add(NewRoutingUnit(ds, TableUnit{LogicTable: t, ActualTable: t}))
	}
	return result, nil
}
