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
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
	"github.com/scylladb/go-set/strset"
)

// cartesian routes every binding group (or single table) on its own, then combines
// the table units of every group within each data source all groups share.
func (r *Router) cartesian(tables []string, conditions *condition.ShardingConditions, hints *Hints) (*RoutingResult, error) {
	var results []*RoutingResult
	var routed []string
	for _, t := range tables {
		if core.ContainsStringIgnoreCase(routed, t) {
			continue
		}
		group := []string{t}
		if g, ok := r.rule.BindingGroup(t); ok {
			for _, other := range tables {
				if !strings.EqualFold(other, t) && g.Contains(other) {
					group = append(group, other)
				}
			}
		}
		routed = append(routed, group...)
		res, err := r.routeTables(group, conditions, hints, false)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if len(results) == 1 {
		return results[0], nil
	}

	common := lowerSet(results[0].DataSourceNames())
	for _, res := range results[1:] {
		common = strset.Intersection(common, lowerSet(res.DataSourceNames()))
	}
	if common.IsEmpty() {
		return nil, errors.Annotatef(ErrNoCommonDataSource, "tables [%s]", strings.Join(tables, ", "))
	}

	result := newRoutingResult(EngineCartesian)
	for _, ds := range results[0].DataSourceNames() {
		if !common.Has(strings.ToLower(ds)) {
			continue
		}
		lists := make([][]interface{}, len(results))
		for i, res := range results {
			for _, u := range res.Units {
				if strings.EqualFold(u.DataSourceName, ds) {
					lists[i] = append(lists[i], u.TableUnits)
				}
			}
		}
		for _, combination := range core.Permute(lists) {
			unit := NewRoutingUnit(ds)
			for _, c := range combination {
				unit.TableUnits = append(unit.TableUnits, c.([]TableUnit)...)
			}
			result.Add(unit)
		}
	}
	if len(result.Units) > CartesianWarnThreshold {
		r.cartesianLog.Warningf("cartesian route of [%s] produced %d units", strings.Join(tables, ", "), len(result.Units))
	}
	return result, nil
}

func lowerSet(names []string) *strset.Set {
	set := strset.NewWithSize(len(names))
	for _, n := range names {
		set.Add(strings.ToLower(n))
	}
	return set
}
