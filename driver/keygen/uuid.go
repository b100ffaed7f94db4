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
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/google/uuid"
)

const UUIDType = "uuid"

var _ rule.KeyGenerator = UUID{}

// UUID generates random keys without dashes.
type UUID struct{}

func (UUID) Type() string {
	return UUIDType
}

func (UUID) NextKey() (interface{}, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

type uuidFactory struct{}

func (uuidFactory) GetName() string {
	return UUIDType
}

func (uuidFactory) Create(_ core.Properties) (rule.KeyGenerator, error) {
	return UUID{}, nil
}
