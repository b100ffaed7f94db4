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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedProvider string

func (n namedProvider) GetName() string {
	return string(n)
}

func TestRegisterAndLoad(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Register(ShardingAlgorithm, namedProvider("mod")))
	assert.Nil(t, r.Register(KeyGenerator, namedProvider("mod")))

	p, ok := r.TryLoad(ShardingAlgorithm, " MOD ")
	assert.True(t, ok)
	assert.Equal(t, "mod", p.GetName())

	_, ok = r.TryLoad(Encryptor, "mod")
	assert.False(t, ok)

	assert.NotNil(t, r.Register(ShardingAlgorithm, namedProvider(" ")))
	assert.Equal(t, []string{"mod"}, r.Names(KeyGenerator))
}

func TestLoadOrStore(t *testing.T) {
	r := NewRegistry()
	created := 0
	creation := func() Provider {
		created++
		return namedProvider("uuid")
	}

	_, loaded := r.LoadOrStore(KeyGenerator, "uuid", creation)
	assert.False(t, loaded)
	_, loaded = r.LoadOrStore(KeyGenerator, "uuid", creation)
	assert.True(t, loaded)
	assert.Equal(t, 1, created)

	r.Delete(KeyGenerator, "uuid")
	assert.Nil(t, r.Load(KeyGenerator, "uuid"))
}
