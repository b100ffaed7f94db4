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

package core

import (
	"github.com/pingcap/errors"
)

type ErrorClass int

const (
	// ClassConfiguration covers rules that can not serve a statement, e.g. an unmatched shard
	ClassConfiguration ErrorClass = iota
	// ClassConsistency covers broken internal invariants, e.g. overlapping sql tokens
	ClassConsistency
	// ClassData covers values a statement produced that can not be processed, e.g. a non-comparable aggregation value
	ClassData
)

func (c ErrorClass) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassConsistency:
		return "consistency"
	case ClassData:
		return "data"
	}
	return "unknown"
}

// ShardingError is the root cause of every error raised by the sharding pipeline.
// Use errors.Annotatef on a ShardingError to add statement context, the class survives errors.Cause.
type ShardingError struct {
	Class   ErrorClass
	Message string
}

func (e *ShardingError) Error() string {
	return e.Message
}

func NewConfigurationError(message string) *ShardingError {
	return &ShardingError{Class: ClassConfiguration, Message: message}
}

func NewConsistencyError(message string) *ShardingError {
	return &ShardingError{Class: ClassConsistency, Message: message}
}

func NewDataError(message string) *ShardingError {
	return &ShardingError{Class: ClassData, Message: message}
}

func ClassOf(err error) (ErrorClass, bool) {
	if err == nil {
		return 0, false
	}
	if se, ok := errors.Cause(err).(*ShardingError); ok {
		return se.Class, true
	}
	return 0, false
}

func IsConfigurationError(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == ClassConfiguration
}

func IsConsistencyError(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == ClassConsistency
}

func IsDataError(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == ClassData
}
