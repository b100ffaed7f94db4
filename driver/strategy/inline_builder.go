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
	"fmt"
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/script"
	"github.com/pingcap/errors"
)

const (
	ShardingColumnPropertyName = "sharding-columns"
	ExpressionPropertyName     = "expression"
)

type InlineBuilder struct {
	ShardingColumns string `yaml:"sharding-columns"`
	Expression      string `yaml:"expression"`
}

func (i *InlineBuilder) Build() (*Inline, error) {
	columns, err := i.loadShardingColumns()
	if err != nil {
		return nil, err
	}

	expr, err := i.loadExpression(columns)
	if err != nil {
		return nil, err
	}
	return &Inline{
		Columns:    columns,
		Expression: expr,
	}, nil
}

func (i *InlineBuilder) loadShardingColumns() ([]string, error) {
	if i.ShardingColumns == "" {
		return nil, core.NewConfigurationError(fmt.Sprintf("configuration property '%s' missed for inline strategy", ShardingColumnPropertyName))
	}

	columns := core.DistinctSliceAndTrim(strings.Split(i.ShardingColumns, ","))
	if len(columns) == 0 {
		return nil, core.NewConfigurationError(fmt.Sprintf("invalid configuration property '%s' for inline strategy, columns can not be parsed", ShardingColumnPropertyName))
	}
	for _, c := range columns {
		if err := core.ValidateIdentifier(c); err != nil {
			return nil, errors.Annotatef(core.NewConfigurationError(err.Error()), "sharding column '%s'", c)
		}
	}
	return columns, nil
}

func (i *InlineBuilder) loadExpression(shardingColumns []string) (script.InlineExpression, error) {
	if i.Expression == "" {
		return nil, core.NewConfigurationError(fmt.Sprintf("configuration property '%s' missed for inline strategy", ExpressionPropertyName))
	}

	expr, err := script.NewInlineExpression(i.Expression, shardingColumns...)
	if err != nil {
		mainInfo := fmt.Sprintf("invalid configuration property '%s' for inline strategy", ExpressionPropertyName)
		return nil, core.NewConfigurationError(fmt.Sprint(mainInfo, core.LineSeparator, err))
	}

	return expr, nil
}
