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
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
)

const (
	ModAlgorithmName      = "mod"
	ShardingCountProperty = "sharding-count"
)

var _ rule.PreciseShardingAlgorithm = &ModAlgorithm{}
var _ rule.RangeShardingAlgorithm = &ModAlgorithm{}

// ModAlgorithm picks the target whose trailing number is value % sharding-count.
type ModAlgorithm struct {
	count int64
}

func NewModAlgorithm(count int64) *ModAlgorithm {
	return &ModAlgorithm{count: count}
}

func (m *ModAlgorithm) Name() string {
	return ModAlgorithmName
}

func (m *ModAlgorithm) DoPreciseSharding(available []string, _ string, value interface{}) (string, error) {
	v, err := toInt64(value)
	if err != nil {
		return "", err
	}
	return targetByIndex(available, positiveMod(v, m.count))
}

// DoRangeSharding enumerates closed integer ranges shorter than the sharding count.
func (m *ModAlgorithm) DoRangeSharding(available []string, _ string, r core.Range) ([]string, bool, error) {
	if !r.HasLower() || !r.HasUpper() {
		return nil, false, nil
	}
	lower, err := toInt64(r.LowerBound())
	if err != nil {
		return nil, false, nil
	}
	upper, err := toInt64(r.UpperBound())
	if err != nil {
		return nil, false, nil
	}
	span, ok := rangeSpan(lower, upper)
	if !ok || span >= m.count-1 {
		return nil, false, nil
	}
	indexes := make([]int64, 0, span+1)
	for i := int64(0); i <= span; i++ {
		indexes = append(indexes, positiveMod(lower+i, m.count))
	}
	return targetsByIndexes(available, indexes), true, nil
}

// rangeSpan returns upper - lower, ok is false when it is negative or overflows.
func rangeSpan(lower, upper int64) (int64, bool) {
	if upper < lower {
		return 0, false
	}
	span := upper - lower
	if span < 0 {
		return 0, false
	}
	return span, true
}

type modFactory struct{}

func (modFactory) GetName() string {
	return ModAlgorithmName
}

func (modFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	count, err := shardingCount(props, ModAlgorithmName)
	if err != nil {
		return nil, err
	}
	return NewModAlgorithm(count), nil
}
