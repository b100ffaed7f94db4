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
	"github.com/cespare/xxhash/v2"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/endink/go-sharding-core/rule"
)

const HashModAlgorithmName = "hash-mod"

var _ rule.PreciseShardingAlgorithm = &HashModAlgorithm{}

// HashModAlgorithm hashes any comparable value with xxhash, equal values of different go types hash the same.
type HashModAlgorithm struct {
	count int64
}

func NewHashModAlgorithm(count int64) *HashModAlgorithm {
	return &HashModAlgorithm{count: count}
}

func (h *HashModAlgorithm) Name() string {
	return HashModAlgorithmName
}

func (h *HashModAlgorithm) Index(value interface{}) int64 {
	sum := xxhash.Sum64String(comparison.Key(value))
	return int64(sum % uint64(h.count))
}

func (h *HashModAlgorithm) DoPreciseSharding(available []string, _ string, value interface{}) (string, error) {
	return targetByIndex(available, h.Index(value))
}

type hashModFactory struct{}

func (hashModFactory) GetName() string {
	return HashModAlgorithmName
}

func (hashModFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	count, err := shardingCount(props, HashModAlgorithmName)
	if err != nil {
		return nil, err
	}
	return NewHashModAlgorithm(count), nil
}
