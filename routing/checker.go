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

package routing

import (
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

var (
	ErrSchemaQualifiedTable = core.NewConfigurationError("schema qualified table names are not supported")
	ErrColumnCountMismatch  = core.NewConfigurationError("column count does not match value count")
)

// Checker rejects statements the routing engines can not serve before any routing happens.
type Checker struct {
	rule *rule.ShardingRule
}

func NewChecker(shardingRule *rule.ShardingRule) *Checker {
	return &Checker{rule: shardingRule}
}

func (c *Checker) Check(stmt statement.Statement) error {
	for _, t := range stmt.Tables() {
		if strings.Contains(t, ".") {
			return errors.Annotatef(ErrSchemaQualifiedTable, "table '%s'", t)
		}
	}
	if insert, ok := stmt.(*statement.InsertStatement); ok {
		return checkValueCount(insert)
	}
	return nil
}

func checkValueCount(insert *statement.InsertStatement) error {
	for i, group := range insert.ValueGroups {
		if len(insert.Columns) > 0 && len(group) != len(insert.Columns) {
			return errors.Annotatef(ErrColumnCountMismatch, "value group %d has %d values for %d columns", i, len(group), len(insert.Columns))
		}
	}
	return nil
}
