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

package merging

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

// aggregationColumn is an aggregation of the select list and the columns merged into it.
type aggregationColumn struct {
	index       int
	sources     []int
	aggregation statement.AggregationType
	distinct    bool
}

func resolveAggregations(stmt *statement.SelectStatement, sample QueryResult) ([]aggregationColumn, error) {
	resolve := func(item *statement.SelectItem) (int, error) {
		if item.Index >= 0 {
			return item.Index, nil
		}
		return labelIndex(sample, item.Label())
	}
	var columns []aggregationColumn
	for _, item := range stmt.Items {
		if !item.IsAggregation() {
			continue
		}
		index, err := resolve(item)
		if err != nil {
			return nil, errors.Annotatef(err, "aggregation '%s'", item.Expression)
		}
		c := aggregationColumn{index: index, sources: []int{index}, aggregation: item.Aggregation, distinct: item.Distinct}
		if item.Aggregation == statement.AggregationAvg && !item.Distinct {
			if len(item.Derived) != 2 {
				return nil, errors.Annotatef(ErrColumnLabelNotFound, "derived columns of '%s'", item.Expression)
			}
			c.sources = make([]int, 2)
			for i, d := range item.Derived {
				if c.sources[i], err = resolve(d); err != nil {
					return nil, errors.Annotatef(err, "aggregation '%s'", item.Expression)
				}
			}
		}
		columns = append(columns, c)
	}
	return columns, nil
}

// group is the representative row of a group and the aggregations merged so far.
type group struct {
	row   []interface{}
	units []AggregationUnit
}

func newGroup(row []interface{}, aggregations []aggregationColumn) *group {
	g := &group{row: row, units: make([]AggregationUnit, len(aggregations))}
	for i, a := range aggregations {
		g.units[i] = NewAggregationUnit(a.aggregation, a.distinct)
	}
	return g
}

func (g *group) merge(row []interface{}, aggregations []aggregationColumn) error {
	for i, a := range aggregations {
		values := make([]interface{}, len(a.sources))
		for j, s := range a.sources {
			if s >= len(row) {
				return errors.Errorf("column index %d out of range, column count: %d", s, len(row))
			}
			values[j] = row[s]
		}
		if err := g.units[i].Merge(values); err != nil {
			return err
		}
	}
	return nil
}

// finish writes the aggregation results into the representative row.
func (g *group) finish(aggregations []aggregationColumn) []interface{} {
	for i, a := range aggregations {
		g.row[a.index] = g.units[i].Result()
	}
	return g.row
}

func rowKey(row []interface{}, keys []orderKey) []interface{} {
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		if k.index < len(row) {
			values[i] = row[k.index]
		}
	}
	return values
}

// newGroupByMemoryMergedResult drains every query result and groups rows in memory,
// groups are returned sorted by orderKeys, or by groupKeys when there is no ORDER BY.
func newGroupByMemoryMergedResult(results []QueryResult, columns int, groupKeys, orderKeys []orderKey, aggregations []aggregationColumn) (*memoryMergedResult, error) {
	var compareErr error
	groups := treemap.NewWith(func(a, b interface{}) int {
		r, err := compareKeys(groupKeys, a.([]interface{}), b.([]interface{}))
		if err != nil && compareErr == nil {
			compareErr = err
		}
		return r
	})
	for i, r := range results {
		for {
			ok, err := r.Next()
			if err != nil {
				return nil, errors.Annotatef(err, "query result %d", i)
			}
			if !ok {
				break
			}
			row, err := readRow(r, columns)
			if err != nil {
				return nil, err
			}
			key := rowKey(row, groupKeys)
			var g *group
			if found, ok := groups.Get(key); ok {
				g = found.(*group)
			} else {
				g = newGroup(row, aggregations)
				groups.Put(key, g)
			}
			if compareErr != nil {
				return nil, compareErr
			}
			if err = g.merge(row, aggregations); err != nil {
				return nil, err
			}
		}
	}

	rows := make([][]interface{}, 0, groups.Size())
	for _, v := range groups.Values() {
		rows = append(rows, v.(*group).finish(aggregations))
	}
	if len(rows) == 0 && len(groupKeys) == 0 && len(aggregations) > 0 {
		rows = append(rows, emptyAggregationRow(columns, aggregations))
	}
	if len(orderKeys) > 0 {
		var sortErr error
		sort.SliceStable(rows, func(i, j int) bool {
			r, err := compareKeys(orderKeys, rowKey(rows[i], orderKeys), rowKey(rows[j], orderKeys))
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return r < 0
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}
	return newMemoryMergedResult(rows), nil
}

// emptyAggregationRow is the single row an aggregation without GROUP BY returns over no rows.
func emptyAggregationRow(columns int, aggregations []aggregationColumn) []interface{} {
	row := make([]interface{}, columns)
	for _, a := range aggregations {
		if a.index < columns {
			row[a.index] = NewAggregationUnit(a.aggregation, a.distinct).Result()
		}
	}
	return row
}

// groupByStreamMergedResult aggregates groups of rows sorted by the group keys.
type groupByStreamMergedResult struct {
	cursor
	stream       *orderByStreamMergedResult
	groupKeys    []orderKey
	aggregations []aggregationColumn
	columns      int
	row          []interface{}
	pending      bool
}

func newGroupByStreamMergedResult(results []QueryResult, columns int, groupKeys []orderKey, aggregations []aggregationColumn) (*groupByStreamMergedResult, error) {
	stream, err := newOrderByStreamMergedResult(results, groupKeys)
	if err != nil {
		return nil, err
	}
	m := &groupByStreamMergedResult{stream: stream, groupKeys: groupKeys, aggregations: aggregations, columns: columns}
	if m.pending, err = stream.Next(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *groupByStreamMergedResult) Next() (bool, error) {
	if m.state == exhausted || !m.pending {
		return m.moved(false, nil)
	}
	first, err := readRow(m.stream, m.columns)
	if err != nil {
		return m.moved(false, err)
	}
	key := m.stream.currentKey()
	g := newGroup(first, m.aggregations)
	for {
		row := first
		if row == nil {
			if row, err = readRow(m.stream, m.columns); err != nil {
				return m.moved(false, err)
			}
		}
		first = nil
		if err = g.merge(row, m.aggregations); err != nil {
			return m.moved(false, err)
		}
		if m.pending, err = m.stream.Next(); err != nil {
			return m.moved(false, err)
		}
		if !m.pending {
			break
		}
		r, err := compareKeys(m.groupKeys, key, m.stream.currentKey())
		if err != nil {
			return m.moved(false, err)
		}
		if r != 0 {
			break
		}
	}
	m.row = g.finish(m.aggregations)
	return m.moved(true, nil)
}

func (m *groupByStreamMergedResult) GetValue(index int) (interface{}, error) {
	if err := m.checkActive(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.row) {
		return nil, errors.Errorf("column index %d out of range, column count: %d", index, len(m.row))
	}
	return m.row[index], nil
}
