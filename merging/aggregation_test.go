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
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeAll(t *testing.T, unit AggregationUnit, values ...interface{}) interface{} {
	for _, v := range values {
		require.Nil(t, unit.Merge([]interface{}{v}))
	}
	return unit.Result()
}

func TestSumUnit(t *testing.T) {
	assert.Equal(t, int64(6), mergeAll(t, NewAggregationUnit(statement.AggregationSum, false), 1, int64(2), uint8(3)))
	assert.Nil(t, mergeAll(t, NewAggregationUnit(statement.AggregationSum, false), nil))

	d, ok := mergeAll(t, NewAggregationUnit(statement.AggregationSum, false), 1, 1.5, "2.25").(*apd.Decimal)
	require.True(t, ok)
	assert.Equal(t, "4.75", d.String())

	err := NewAggregationUnit(statement.AggregationSum, false).Merge([]interface{}{"abc"})
	assert.True(t, core.IsDataError(err))
}

func TestCountUnit(t *testing.T) {
	assert.Equal(t, int64(0), NewAggregationUnit(statement.AggregationCount, false).Result())
	assert.Equal(t, int64(9), mergeAll(t, NewAggregationUnit(statement.AggregationCount, false), int64(4), []byte("5"), nil))
}

func TestExtremeUnits(t *testing.T) {
	assert.Equal(t, 9, mergeAll(t, NewAggregationUnit(statement.AggregationMax, false), 3, nil, 9, int64(5)))
	assert.Equal(t, "a", mergeAll(t, NewAggregationUnit(statement.AggregationMin, false), "b", "a", "c"))

	unit := NewAggregationUnit(statement.AggregationMax, false)
	require.Nil(t, unit.Merge([]interface{}{"a"}))
	err := unit.Merge([]interface{}{1})
	assert.Equal(t, ErrAggregationValueNotComparable, errors.Cause(err))
	assert.True(t, core.IsDataError(err))
}

func TestAvgUnit(t *testing.T) {
	unit := NewAggregationUnit(statement.AggregationAvg, false)
	assert.Nil(t, unit.Result())
	require.Nil(t, unit.Merge([]interface{}{int64(2), int64(3)}))
	require.Nil(t, unit.Merge([]interface{}{int64(1), "1.5"}))
	assert.Equal(t, "1.5000", unit.Result().(*apd.Decimal).String())
}

func TestDistinctUnits(t *testing.T) {
	assert.Equal(t, int64(3), mergeAll(t, NewAggregationUnit(statement.AggregationCount, true), 1, int64(1), 2, "x", nil, "x"))
	assert.Equal(t, int64(3), mergeAll(t, NewAggregationUnit(statement.AggregationSum, true), 1, 2, 2, 1.0))
	avg := mergeAll(t, NewAggregationUnit(statement.AggregationAvg, true), 1, 2, 2, 6)
	assert.Equal(t, "3.0000", avg.(*apd.Decimal).String())
}
