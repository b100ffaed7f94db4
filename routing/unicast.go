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

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

// unicast targets one data source shared by all tables, with the first actual table of each sharding table.
func (r *Router) unicast(tables []string) (*RoutingResult, error) {
	candidates := r.rule.DataSourceNames()
	for _, t := range tables {
		if tr, ok := r.rule.TableRule(t); ok {
			candidates = intersectNames(candidates, tr.ActualDataSourceNames())
			continue
		}
		if !r.rule.IsBroadcastTable(t) {
			ds, err := r.rule.FindDataSourceForUnmanaged([]string{t})
			if err != nil {
				return nil, err
			}
			candidates = intersectNames(candidates, []string{ds})
		}
	}
	if len(candidates) == 0 {
		return nil, errors.Annotatef(ErrNoCommonDataSource, "tables [%s]", strings.Join(tables, ", "))
	}

	ds := candidates[0]
	if def := r.rule.DefaultDataSource(); def != "" && core.ContainsStringIgnoreCase(candidates, def) {
		ds = def
	}
	unit := NewRoutingUnit(ds)
	for _, t := range tables {
		if containsLogic(unit.TableUnits, t) {
			continue
		}
		if tr, ok := r.rule.TableRule(t); ok {
			unit.TableUnits = append(unit.TableUnits, TableUnit{LogicTable: tr.LogicTable, ActualTable: tr.ActualTableNames(ds)[0]})
		} else {
			unit.TableUnits = append(unit.TableUnits, TableUnit{LogicTable: t, ActualTable: t})
		}
	}
	result := newRoutingResult(EngineUnicast)
	result.Add(unit)
	return result, nil
}

// defaultDataSource routes tables unknown to the rule by the default route policy.
func (r *Router) defaultDataSource(tables []string) (*RoutingResult, error) {
	ds, err := r.rule.FindDataSourceForUnmanaged(tables)
	if err != nil {
		return nil, err
	}
	result := newRoutingResult(EngineDefaultDataSource)
	result.Add(NewRoutingUnit(ds, sameNameUnits(tables)...))
	return result, nil
}

func intersectNames(a []string, b []string) []string {
	var r []string
	for _, n := range a {
		if core.ContainsStringIgnoreCase(b, n) {
			r = append(r, n)
		}
	}
	return r
}
