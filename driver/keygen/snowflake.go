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
	"github.com/bwmarrin/snowflake"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const (
	SnowflakeType    = "snowflake"
	WorkerIdProperty = "worker-id"
)

var _ rule.KeyGenerator = &Snowflake{}

// Snowflake generates time ordered int64 keys, worker-id must be unique per process.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(workerId int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(workerId)
	if err != nil {
		return nil, errors.Annotatef(core.NewConfigurationError(err.Error()), "snowflake worker id %d", workerId)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Type() string {
	return SnowflakeType
}

func (s *Snowflake) NextKey() (interface{}, error) {
	return s.node.Generate().Int64(), nil
}

type snowflakeFactory struct{}

func (snowflakeFactory) GetName() string {
	return SnowflakeType
}

func (snowflakeFactory) Create(props core.Properties) (rule.KeyGenerator, error) {
	workerId, err := props.GetInt64(WorkerIdProperty, 0)
	if err != nil {
		return nil, err
	}
	return NewSnowflake(workerId)
}
