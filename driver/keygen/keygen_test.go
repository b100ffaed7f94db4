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

package keygen

import (
	"testing"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeUnique(t *testing.T) {
	g, err := rule.NewKeyGenerator("snowflake", core.NewPropertiesFromMap(map[string]string{"worker-id": "3"}))
	require.Nil(t, err)

	seen := make(map[int64]struct{})
	var last int64
	for i := 0; i < 1000; i++ {
		k, err := g.NextKey()
		require.Nil(t, err)
		v := k.(int64)
		_, dup := seen[v]
		assert.False(t, dup)
		assert.True(t, v > last)
		seen[v] = struct{}{}
		last = v
	}
}

func TestSnowflakeInvalidWorker(t *testing.T) {
	_, err := NewSnowflake(1 << 20)
	assert.True(t, core.IsConfigurationError(err))
}

func TestUUID(t *testing.T) {
	g, err := rule.NewKeyGenerator("uuid", core.EmptyProperties)
	require.Nil(t, err)
	k, err := g.NextKey()
	require.Nil(t, err)
	assert.Len(t, k.(string), 32)
}

func TestIncrement(t *testing.T) {
	g, err := rule.NewKeyGenerator("increment", core.NewPropertiesFromMap(map[string]string{"initial-value": "10"}))
	require.Nil(t, err)
	k1, _ := g.NextKey()
	k2, _ := g.NextKey()
	assert.Equal(t, int64(10), k1)
	assert.Equal(t, int64(11), k2)
}
