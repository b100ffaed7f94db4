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

package statement

import (
	"math"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

var ErrInvalidPaginationValue = core.NewDataError("pagination value must be a non negative integer")

// PaginationValue is a LIMIT or row number literal, or a parameter marker when ParamIndex >= 0.
type PaginationValue struct {
	Value      int64
	ParamIndex int
	// Start and Stop locate a literal in the sql.
	Start int
	Stop  int
}

func LiteralValue(value int64, start, stop int) *PaginationValue {
	return &PaginationValue{Value: value, ParamIndex: -1, Start: start, Stop: stop}
}

func ParamValue(index int) *PaginationValue {
	return &PaginationValue{ParamIndex: index, Start: -1, Stop: -1}
}

func (p *PaginationValue) IsParameter() bool {
	return p.ParamIndex >= 0
}

func (p *PaginationValue) Resolve(params []interface{}) (int64, error) {
	if !p.IsParameter() {
		return p.Value, nil
	}
	v, err := condition.ResolveValue(condition.ParamMarker{Index: p.ParamIndex}, params)
	if err != nil {
		return 0, err
	}
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, errors.Annotatef(ErrInvalidPaginationValue, "parameter %d: %v", p.ParamIndex, v)
		}
		n = int64(t)
	default:
		return 0, errors.Annotatef(ErrInvalidPaginationValue, "parameter %d: %v (%T)", p.ParamIndex, v, v)
	}
	if n < 0 {
		return 0, errors.Annotatef(ErrInvalidPaginationValue, "parameter %d: %d", p.ParamIndex, n)
	}
	return n, nil
}

// Pagination is MySQL style LIMIT offset, row count, or row number bounds when RowNumber is set.
// With row number bounds RowCount is the upper bound of the row number.
type Pagination struct {
	Offset   *PaginationValue
	RowCount *PaginationValue
	// RowNumber marks bounds like 'rownum > 2 AND rownum <= 5'.
	RowNumber bool
	// RowCountInclusive tells whether the upper row number bound is included.
	RowCountInclusive bool
}

func (p *Pagination) ActualOffset(params []interface{}) (int64, error) {
	if p == nil || p.Offset == nil {
		return 0, nil
	}
	return p.Offset.Resolve(params)
}

// ActualRowCount returns ok=false when there is no row count.
func (p *Pagination) ActualRowCount(params []interface{}) (int64, bool, error) {
	if p == nil || p.RowCount == nil {
		return 0, false, nil
	}
	n, err := p.RowCount.Resolve(params)
	return n, err == nil, err
}

// RevisedOffset is the offset every shard applies when more than one shard is queried.
func (p *Pagination) RevisedOffset() int64 {
	return 0
}

// RevisedRowCount is the row count every shard applies when more than one shard is queried.
// It is math.MaxInt32 when the merge needs every row of every shard.
func (p *Pagination) RevisedRowCount(stmt *SelectStatement, params []interface{}) (int64, error) {
	if stmt != nil && stmt.NeedsAllRows() {
		return math.MaxInt32, nil
	}
	rowCount, ok, err := p.ActualRowCount(params)
	if err != nil || !ok {
		return rowCount, err
	}
	if p.RowNumber {
		return rowCount, nil
	}
	offset, err := p.ActualOffset(params)
	if err != nil {
		return 0, err
	}
	return offset + rowCount, nil
}

// NeedsAllRows reports whether a LIMIT can not be pushed down to the shards,
// which is the case when groups are merged in memory.
func (s *SelectStatement) NeedsAllRows() bool {
	if s.HasAggregationDistinct() {
		return true
	}
	return len(s.GroupBy) > 0 && len(s.OrderBy) > 0 && !s.IsSameGroupByAndOrderBy()
}
