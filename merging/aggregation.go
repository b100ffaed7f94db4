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
	"github.com/cockroachdb/apd/v3"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

// AvgScale is the number of fractional digits of an AVG result.
const AvgScale = 4

// AggregationUnit accumulates the values shards return for one aggregation.
// AVG is merged from the [count, sum] pair of its derived columns, the others from one value.
type AggregationUnit interface {
	Merge(values []interface{}) error
	Result() interface{}
}

func NewAggregationUnit(aggregation statement.AggregationType, distinct bool) AggregationUnit {
	var unit AggregationUnit
	switch aggregation {
	case statement.AggregationCount:
		unit = &countUnit{}
	case statement.AggregationSum:
		unit = &sumUnit{}
	case statement.AggregationAvg:
		unit = &avgUnit{}
	case statement.AggregationMax:
		unit = &extremeUnit{max: true}
	case statement.AggregationMin:
		unit = &extremeUnit{}
	default:
		return nil
	}
	if distinct {
		return &distinctUnit{aggregation: aggregation, inner: unit, seen: make(map[string]struct{})}
	}
	return unit
}

type countUnit struct {
	count apd.Decimal
}

func (u *countUnit) Merge(values []interface{}) error {
	if len(values) == 0 || values[0] == nil {
		return nil
	}
	d, _, err := toDecimal(values[0])
	if err != nil {
		return errors.Annotate(err, "merge COUNT")
	}
	_, err = decimalContext.Add(&u.count, &u.count, d)
	return errors.Trace(err)
}

func (u *countUnit) Result() interface{} {
	return integerOrDecimal(&u.count)
}

type sumUnit struct {
	sum       apd.Decimal
	merged    bool
	fractions bool
}

func (u *sumUnit) Merge(values []interface{}) error {
	if len(values) == 0 || values[0] == nil {
		return nil
	}
	d, integral, err := toDecimal(values[0])
	if err != nil {
		return errors.Annotate(err, "merge SUM")
	}
	if !integral {
		u.fractions = true
	}
	u.merged = true
	_, err = decimalContext.Add(&u.sum, &u.sum, d)
	return errors.Trace(err)
}

func (u *sumUnit) Result() interface{} {
	if !u.merged {
		return nil
	}
	if u.fractions {
		return &u.sum
	}
	return integerOrDecimal(&u.sum)
}

type avgUnit struct {
	count apd.Decimal
	sum   apd.Decimal
}

func (u *avgUnit) Merge(values []interface{}) error {
	if len(values) < 2 || values[0] == nil || values[1] == nil {
		return nil
	}
	count, _, err := toDecimal(values[0])
	if err != nil {
		return errors.Annotate(err, "merge AVG count")
	}
	sum, _, err := toDecimal(values[1])
	if err != nil {
		return errors.Annotate(err, "merge AVG sum")
	}
	if _, err = decimalContext.Add(&u.count, &u.count, count); err != nil {
		return errors.Trace(err)
	}
	_, err = decimalContext.Add(&u.sum, &u.sum, sum)
	return errors.Trace(err)
}

// Result is sum / count rounded to AvgScale digits, nil when nothing was counted.
func (u *avgUnit) Result() interface{} {
	if u.count.IsZero() {
		return nil
	}
	avg := &apd.Decimal{}
	if _, err := decimalContext.Quo(avg, &u.sum, &u.count); err != nil {
		return nil
	}
	result := &apd.Decimal{}
	if _, err := decimalContext.Quantize(result, avg, -AvgScale); err != nil {
		return avg
	}
	return result
}

type extremeUnit struct {
	max   bool
	value interface{}
}

func (u *extremeUnit) Merge(values []interface{}) error {
	if len(values) == 0 || values[0] == nil {
		return nil
	}
	if u.value == nil {
		u.value = values[0]
		return nil
	}
	r, err := comparison.Compare(values[0], u.value)
	if err != nil {
		return errors.Annotatef(ErrAggregationValueNotComparable, "%v and %v", values[0], u.value)
	}
	if (u.max && r > 0) || (!u.max && r < 0) {
		u.value = values[0]
	}
	return nil
}

func (u *extremeUnit) Result() interface{} {
	return u.value
}

// distinctUnit merges every distinct value once, shards return one row per value.
type distinctUnit struct {
	aggregation statement.AggregationType
	inner       AggregationUnit
	seen        map[string]struct{}
}

func (u *distinctUnit) Merge(values []interface{}) error {
	if len(values) == 0 || values[0] == nil {
		return nil
	}
	v := values[0]
	if !comparison.IsCompareSupported(v) {
		return errors.Annotatef(ErrAggregationValueNotComparable, "%v (%T)", v, v)
	}
	key := comparison.Key(v)
	if _, ok := u.seen[key]; ok {
		return nil
	}
	u.seen[key] = struct{}{}
	switch u.aggregation {
	case statement.AggregationCount:
		return u.inner.Merge([]interface{}{int64(1)})
	case statement.AggregationAvg:
		return u.inner.Merge([]interface{}{int64(1), v})
	}
	return u.inner.Merge(values)
}

func (u *distinctUnit) Result() interface{} {
	return u.inner.Result()
}
