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
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/script"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const (
	HintInlineAlgorithmName = "hint-inline"
	// HintValueVariable is the variable holding the hint value in the expression, e.g. 'ds_${value % 2}'.
	HintValueVariable = "value"
)

var _ rule.HintShardingAlgorithm = &HintInline{}

type HintInline struct {
	expression script.InlineExpression
}

func NewHintInline(expression string) (*HintInline, error) {
	expr, err := script.NewInlineExpression(expression, HintValueVariable)
	if err != nil {
		return nil, errors.Annotate(core.NewConfigurationError(err.Error()), "hint-inline expression")
	}
	return &HintInline{expression: expr}, nil
}

func (h *HintInline) Name() string {
	return HintInlineAlgorithmName
}

func (h *HintInline) DoHintSharding(_ []string, value interface{}) (string, error) {
	target, err := h.expression.FlatScalar(script.NewVariable(HintValueVariable, value))
	if err != nil {
		return "", errors.Annotate(core.NewDataError(err.Error()), "hint sharding")
	}
	return target, nil
}

type hintInlineFactory struct{}

func (hintInlineFactory) GetName() string {
	return HintInlineAlgorithmName
}

func (hintInlineFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	expression := props.GetString(AlgorithmExpressionProperty, props.GetString(ExpressionPropertyName, ""))
	if expression == "" {
		return nil, core.NewConfigurationError("property 'algorithm-expression' is required by hint-inline algorithm")
	}
	return NewHintInline(expression)
}
