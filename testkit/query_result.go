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

package testkit

import (
	"github.com/pingcap/errors"
)

var ErrNoCurrentRow = errors.New("memory query result has no current row")

// MemoryQueryResult is an in-memory shard cursor, it can be configured to fail after some rows.
type MemoryQueryResult struct {
	labels  []string
	rows    [][]interface{}
	index   int
	failAt  int
	failErr error
}

func NewMemoryQueryResult(labels []string, rows ...[]interface{}) *MemoryQueryResult {
	return &MemoryQueryResult{
		labels: labels,
		rows:   rows,
		index:  -1,
		failAt: -1,
	}
}

// FailAt makes the n-th call of Next (zero based) return err.
func (r *MemoryQueryResult) FailAt(n int, err error) *MemoryQueryResult {
	r.failAt = n
	r.failErr = err
	return r
}

func (r *MemoryQueryResult) Next() (bool, error) {
	if r.failAt >= 0 && r.index+1 == r.failAt {
		return false, r.failErr
	}
	if r.index < len(r.rows) {
		r.index++
	}
	return r.index < len(r.rows), nil
}

func (r *MemoryQueryResult) GetValue(index int) (interface{}, error) {
	if r.index < 0 || r.index >= len(r.rows) {
		return nil, ErrNoCurrentRow
	}
	row := r.rows[r.index]
	if index < 0 || index >= len(row) {
		return nil, errors.Errorf("column index %d out of range, column count: %d", index, len(row))
	}
	return row[index], nil
}

func (r *MemoryQueryResult) ColumnCount() int {
	return len(r.labels)
}

func (r *MemoryQueryResult) ColumnLabel(index int) (string, error) {
	if index < 0 || index >= len(r.labels) {
		return "", errors.Errorf("column index %d out of range, column count: %d", index, len(r.labels))
	}
	return r.labels[index], nil
}

// Row is a shortcut to build a row literal.
func Row(values ...interface{}) []interface{} {
	return values
}
