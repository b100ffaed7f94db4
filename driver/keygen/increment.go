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
	"sync/atomic"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
)

const (
	IncrementType        = "increment"
	InitialValueProperty = "initial-value"
)

var _ rule.KeyGenerator = &Increment{}

// Increment is a process local counter, mostly useful in tests.
type Increment struct {
	current int64
}

func NewIncrement(initial int64) *Increment {
	return &Increment{current: initial - 1}
}

func (i *Increment) Type() string {
	return IncrementType
}

func (i *Increment) NextKey() (interface{}, error) {
	return atomic.AddInt64(&i.current, 1), nil
}

type incrementFactory struct{}

func (incrementFactory) GetName() string {
	return IncrementType
}

func (incrementFactory) Create(props core.Properties) (rule.KeyGenerator, error) {
	initial, err := props.GetInt64(InitialValueProperty, 1)
	if err != nil {
		return nil, err
	}
	return NewIncrement(initial), nil
}
