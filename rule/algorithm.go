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

package rule

import (
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/provider"
)

// ShardingAlgorithm is implemented by every algorithm, the capabilities are
// PreciseShardingAlgorithm, RangeShardingAlgorithm, ComplexShardingAlgorithm and HintShardingAlgorithm.
type ShardingAlgorithm interface {
	Name() string
}

type PreciseShardingAlgorithm interface {
	ShardingAlgorithm
	// DoPreciseSharding returns the target for one value, it should be one of available.
	DoPreciseSharding(available []string, column string, value interface{}) (string, error)
}

type RangeShardingAlgorithm interface {
	ShardingAlgorithm
	// DoRangeSharding returns the targets a range may fall in, ok is false when the algorithm can not decide.
	DoRangeSharding(available []string, column string, r core.Range) (targets []string, ok bool, err error)
}

type ComplexShardingAlgorithm interface {
	ShardingAlgorithm
	// DoComplexSharding receives one value per sharding column and returns the target.
	DoComplexSharding(available []string, values map[string]interface{}) (string, error)
}

type HintShardingAlgorithm interface {
	ShardingAlgorithm
	DoHintSharding(available []string, value interface{}) (string, error)
}

// ShardingAlgorithmFactory is registered in the provider registry under provider.ShardingAlgorithm.
type ShardingAlgorithmFactory interface {
	provider.Provider
	Create(props core.Properties) (ShardingAlgorithm, error)
}

type KeyGenerator interface {
	Type() string
	NextKey() (interface{}, error)
}

// KeyGeneratorFactory is registered in the provider registry under provider.KeyGenerator.
type KeyGeneratorFactory interface {
	provider.Provider
	Create(props core.Properties) (KeyGenerator, error)
}

type Encryptor interface {
	Type() string
	Encrypt(plain interface{}) (interface{}, error)
	Decrypt(cipher interface{}) (interface{}, error)
}

// QueryAssistedEncryptor produces a deterministic value stored in the assisted query column.
type QueryAssistedEncryptor interface {
	Encryptor
	QueryAssistedEncrypt(plain interface{}) (interface{}, error)
}

// EncryptorFactory is registered in the provider registry under provider.Encryptor.
type EncryptorFactory interface {
	provider.Provider
	Create(props core.Properties) (Encryptor, error)
}

func loadFactory(tp provider.Type, name string) (provider.Provider, error) {
	p, ok := provider.DefaultRegistry().TryLoad(tp, name)
	if !ok {
		return nil, core.NewConfigurationError(tp.String() + " '" + name + "' is not registered")
	}
	return p, nil
}

// NewShardingAlgorithm creates an algorithm registered with the name.
func NewShardingAlgorithm(name string, props core.Properties) (ShardingAlgorithm, error) {
	p, err := loadFactory(provider.ShardingAlgorithm, name)
	if err != nil {
		return nil, err
	}
	f, ok := p.(ShardingAlgorithmFactory)
	if !ok {
		return nil, core.NewConfigurationError("provider '" + name + "' is not a sharding algorithm factory")
	}
	return f.Create(props)
}

func NewKeyGenerator(name string, props core.Properties) (KeyGenerator, error) {
	p, err := loadFactory(provider.KeyGenerator, name)
	if err != nil {
		return nil, err
	}
	f, ok := p.(KeyGeneratorFactory)
	if !ok {
		return nil, core.NewConfigurationError("provider '" + name + "' is not a key generator factory")
	}
	return f.Create(props)
}

func NewEncryptor(name string, props core.Properties) (Encryptor, error) {
	p, err := loadFactory(provider.Encryptor, name)
	if err != nil {
		return nil, err
	}
	f, ok := p.(EncryptorFactory)
	if !ok {
		return nil, core.NewConfigurationError("provider '" + name + "' is not an encryptor factory")
	}
	return f.Create(props)
}
