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
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/script"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const InlineAlgorithmName = "inline"

var _ rule.PreciseShardingAlgorithm = &Inline{}
var _ rule.ComplexShardingAlgorithm = &Inline{}

// Inline evaluates an expression like 't_order_${order_id % 2}' with the sharding values as variables.
type Inline struct {
	Columns    []string
	Expression script.InlineExpression
}

func (i *Inline) Name() string {
	return InlineAlgorithmName
}

func (i *Inline) GetShardingColumns() []string {
	return i.Columns
}

func (i *Inline) IsShardingColumn(column string) bool {
	return core.ContainsStringIgnoreCase(i.Columns, column)
}

func (i *Inline) DoPreciseSharding(_ []string, column string, value interface{}) (string, error) {
	name := column
	for _, c := range i.Columns {
		if strings.EqualFold(c, column) {
			name = c
			break
		}
	}
	return i.eval(script.NewVariable(name, value))
}

func (i *Inline) DoComplexSharding(_ []string, values map[string]interface{}) (string, error) {
	vars := make([]*script.Variable, 0, len(values))
	for _, c := range i.Columns {
		v, ok := lookupIgnoreCase(values, c)
		if !ok {
			return "", errors.Annotatef(core.NewDataError("sharding value is missing"), "column '%s' of expression '%s'", c, i.Expression.RawExpression())
		}
		vars = append(vars, script.NewVariable(c, v))
	}
	return i.eval(vars...)
}

func (i *Inline) eval(vars ...*script.Variable) (string, error) {
	target, err := i.Expression.FlatScalar(vars...)
	if err != nil {
		return "", errors.Annotate(core.NewDataError(err.Error()), "inline sharding")
	}
	return target, nil
}

func lookupIgnoreCase(values map[string]interface{}, column string) (interface{}, bool) {
	if v, ok := values[column]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

type inlineFactory struct{}

func (inlineFactory) GetName() string {
	return InlineAlgorithmName
}

func (inlineFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	builder := &InlineBuilder{}
	if err := props.PopulateValue(builder); err != nil {
		return nil, errors.Trace(err)
	}
	return builder.Build()
}
