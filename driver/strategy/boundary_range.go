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

package strategy

import (
	"sort"
	"strconv"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const (
	BoundaryRangeAlgorithmName = "boundary-range"
	BoundariesProperty         = "sharding-boundaries"
)

var _ rule.PreciseShardingAlgorithm = &BoundaryRangeAlgorithm{}
var _ rule.RangeShardingAlgorithm = &BoundaryRangeAlgorithm{}

// BoundaryRangeAlgorithm splits values by ascending boundaries, with boundaries [10, 20]
// partition 0 holds values below 10, partition 1 holds [10, 20) and partition 2 the rest.
type BoundaryRangeAlgorithm struct {
	boundaries []interface{}
}

func NewBoundaryRangeAlgorithm(boundaries ...interface{}) (*BoundaryRangeAlgorithm, error) {
	sorted := make([]interface{}, len(boundaries))
	copy(sorted, boundaries)
	var cmpErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		r, err := comparison.Compare(sorted[i], sorted[j])
		if err != nil {
			cmpErr = err
		}
		return r < 0
	})
	if cmpErr != nil {
		return nil, errors.Annotate(core.NewConfigurationError(cmpErr.Error()), "boundaries of boundary-range algorithm")
	}
	return &BoundaryRangeAlgorithm{boundaries: sorted}, nil
}

func (b *BoundaryRangeAlgorithm) Name() string {
	return BoundaryRangeAlgorithmName
}

func (b *BoundaryRangeAlgorithm) partition(value interface{}) (int64, error) {
	var index int64
	for _, boundary := range b.boundaries {
		r, err := comparison.Compare(value, boundary)
		if err != nil {
			return 0, errors.Annotate(core.NewDataError(err.Error()), "boundary-range sharding")
		}
		if r < 0 {
			break
		}
		index++
	}
	return index, nil
}

func (b *BoundaryRangeAlgorithm) DoPreciseSharding(available []string, _ string, value interface{}) (string, error) {
	index, err := b.partition(value)
	if err != nil {
		return "", err
	}
	return targetByIndex(available, index)
}

func (b *BoundaryRangeAlgorithm) DoRangeSharding(available []string, _ string, r core.Range) ([]string, bool, error) {
	first := int64(0)
	last := int64(len(b.boundaries))
	var err error
	if r.HasLower() {
		if first, err = b.partition(r.LowerBound()); err != nil {
			return nil, false, err
		}
	}
	if r.HasUpper() {
		if last, err = b.partition(r.UpperBound()); err != nil {
			return nil, false, err
		}
	}
	indexes := make([]int64, 0, last-first+1)
	for i := first; i <= last; i++ {
		indexes = append(indexes, i)
	}
	return targetsByIndexes(available, indexes), true, nil
}

type boundaryRangeFactory struct{}

func (boundaryRangeFactory) GetName() string {
	return BoundaryRangeAlgorithmName
}

func (boundaryRangeFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	list := props.GetList(BoundariesProperty)
	if len(list) == 0 {
		return nil, core.NewConfigurationError("property 'sharding-boundaries' is required by boundary-range algorithm")
	}
	boundaries := make([]interface{}, len(list))
	for i, s := range list {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			boundaries[i] = v
		} else if f, err := strconv.ParseFloat(s, 64); err == nil {
			boundaries[i] = f
		} else {
			boundaries[i] = s
		}
	}
	return NewBoundaryRangeAlgorithm(boundaries...)
}
