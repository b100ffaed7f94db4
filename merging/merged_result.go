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
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

var (
	ErrCursorNotActive               = core.NewConsistencyError("merged result is not positioned on a row")
	ErrAggregationValueNotComparable = core.NewDataError("aggregation value is not comparable")
	ErrColumnLabelNotFound           = core.NewConsistencyError("column label not found in query result")
)

// QueryResult is the cursor of one shard, it starts before the first row.
type QueryResult interface {
	Next() (bool, error)
	GetValue(index int) (interface{}, error)
	ColumnCount() int
	ColumnLabel(index int) (string, error)
}

// MergedResult is the single cursor handed back to the client.
type MergedResult interface {
	Next() (bool, error)
	GetValue(index int) (interface{}, error)
}

type cursorState int

const (
	unopened cursorState = iota
	active
	exhausted
)

// cursor tracks the state of a merged result, Next is the only transition.
type cursor struct {
	state cursorState
}

func (c *cursor) moved(ok bool, err error) (bool, error) {
	if err != nil || !ok {
		c.state = exhausted
		return false, err
	}
	c.state = active
	return true, nil
}

func (c *cursor) checkActive() error {
	if c.state != active {
		return ErrCursorNotActive
	}
	return nil
}

// memoryMergedResult iterates materialised rows.
type memoryMergedResult struct {
	cursor
	rows  [][]interface{}
	index int
}

func newMemoryMergedResult(rows [][]interface{}) *memoryMergedResult {
	return &memoryMergedResult{rows: rows, index: -1}
}

func (m *memoryMergedResult) Next() (bool, error) {
	if m.state == exhausted {
		return false, nil
	}
	m.index++
	return m.moved(m.index < len(m.rows), nil)
}

func (m *memoryMergedResult) GetValue(index int) (interface{}, error) {
	if err := m.checkActive(); err != nil {
		return nil, err
	}
	row := m.rows[m.index]
	if index < 0 || index >= len(row) {
		return nil, errors.Errorf("column index %d out of range, column count: %d", index, len(row))
	}
	return row[index], nil
}

// iteratorMergedResult returns the rows of every query result one result after another.
type iteratorMergedResult struct {
	cursor
	results []QueryResult
	current int
}

func newIteratorMergedResult(results []QueryResult) *iteratorMergedResult {
	return &iteratorMergedResult{results: results}
}

func (m *iteratorMergedResult) Next() (bool, error) {
	if m.state == exhausted {
		return false, nil
	}
	for m.current < len(m.results) {
		ok, err := m.results[m.current].Next()
		if err != nil {
			return m.moved(false, errors.Annotatef(err, "query result %d", m.current))
		}
		if ok {
			return m.moved(true, nil)
		}
		m.current++
	}
	return m.moved(false, nil)
}

func (m *iteratorMergedResult) GetValue(index int) (interface{}, error) {
	if err := m.checkActive(); err != nil {
		return nil, err
	}
	return m.results[m.current].GetValue(index)
}

func readRow(r interface {
	GetValue(int) (interface{}, error)
}, columns int) ([]interface{}, error) {
	row := make([]interface{}, columns)
	for i := range row {
		v, err := r.GetValue(i)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// labelIndex finds the column with the label, ignoring case and a table qualifier of the label.
func labelIndex(r QueryResult, label string) (int, error) {
	name := label
	if i := lastDot(label); i >= 0 {
		name = label[i+1:]
	}
	for i := 0; i < r.ColumnCount(); i++ {
		l, err := r.ColumnLabel(i)
		if err != nil {
			return -1, err
		}
		if equalFold(l, label) || equalFold(l, name) {
			return i, nil
		}
	}
	return -1, errors.Annotatef(ErrColumnLabelNotFound, "'%s'", label)
}
