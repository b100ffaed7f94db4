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
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

// orderKey is a resolved ORDER BY or GROUP BY item.
type orderKey struct {
	index int
	desc  bool
}

// resolveOrderKeys resolves the column of every item, items with index -1 are found by label.
func resolveOrderKeys(items []*statement.OrderItem, sample QueryResult) ([]orderKey, error) {
	keys := make([]orderKey, len(items))
	for i, item := range items {
		index := item.Index
		if index < 0 {
			label := item.Label
			if label == "" {
				label = item.Column
			}
			var err error
			if index, err = labelIndex(sample, label); err != nil {
				return nil, err
			}
		}
		keys[i] = orderKey{index: index, desc: item.Direction == statement.Desc}
	}
	return keys, nil
}

func keyValues(r interface {
	GetValue(int) (interface{}, error)
}, keys []orderKey) ([]interface{}, error) {
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		v, err := r.GetValue(k.index)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// compareKeys compares two key tuples, nil sorts first in ascending order.
func compareKeys(keys []orderKey, a, b []interface{}) (int, error) {
	for i, k := range keys {
		r, err := comparison.Compare(a[i], b[i])
		if err != nil {
			return 0, errors.Annotatef(ErrAggregationValueNotComparable, "order by column %d: %v", k.index, err)
		}
		if r != 0 {
			if k.desc {
				return -r, nil
			}
			return r, nil
		}
	}
	return 0, nil
}

// orderByValue is a query result positioned on a row, with the sort key of that row.
type orderByValue struct {
	result QueryResult
	// position of the result in the merge, breaks ties
	position int
	values   []interface{}
}

// orderByStreamMergedResult merges query results each sorted by the keys.
type orderByStreamMergedResult struct {
	cursor
	keys    []orderKey
	heap    *binaryheap.Heap
	current *orderByValue
	err     error
}

func newOrderByStreamMergedResult(results []QueryResult, keys []orderKey) (*orderByStreamMergedResult, error) {
	m := &orderByStreamMergedResult{keys: keys}
	m.heap = binaryheap.NewWith(func(a, b interface{}) int {
		x, y := a.(*orderByValue), b.(*orderByValue)
		r, err := compareKeys(m.keys, x.values, y.values)
		if err != nil && m.err == nil {
			m.err = err
		}
		if r != 0 {
			return r
		}
		return x.position - y.position
	})
	for i, r := range results {
		if err := m.push(&orderByValue{result: r, position: i}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// push advances the result and queues it when it has a row.
func (m *orderByStreamMergedResult) push(v *orderByValue) error {
	ok, err := v.result.Next()
	if err != nil {
		return errors.Annotatef(err, "query result %d", v.position)
	}
	if !ok {
		return nil
	}
	if v.values, err = keyValues(v.result, m.keys); err != nil {
		return err
	}
	m.heap.Push(v)
	return m.err
}

func (m *orderByStreamMergedResult) Next() (bool, error) {
	if m.state == exhausted {
		return false, nil
	}
	if m.current != nil {
		if err := m.push(m.current); err != nil {
			return m.moved(false, err)
		}
		m.current = nil
	}
	top, ok := m.heap.Pop()
	if m.err != nil {
		return m.moved(false, m.err)
	}
	if !ok {
		return m.moved(false, nil)
	}
	m.current = top.(*orderByValue)
	return m.moved(true, nil)
}

func (m *orderByStreamMergedResult) GetValue(index int) (interface{}, error) {
	if err := m.checkActive(); err != nil {
		return nil, err
	}
	return m.current.result.GetValue(index)
}

// currentKey is the sort key of the current row.
func (m *orderByStreamMergedResult) currentKey() []interface{} {
	return m.current.values
}
