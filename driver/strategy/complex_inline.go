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
	"math"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/cespare/xxhash/v2"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const (
	ComplexInlineAlgorithmName  = "complex-inline"
	AlgorithmExpressionProperty = "algorithm-expression"
)

var _ rule.ComplexShardingAlgorithm = &ComplexInline{}

// ComplexInline evaluates a govaluate expression over several sharding columns, e.g.
// parse("t_order_", mod(user_id + order_id, 4)).
type ComplexInline struct {
	columns    []string
	expression *govaluate.EvaluableExpression
	raw        string
}

var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"parse": func(args ...interface{}) (interface{}, error) {
		sb := strings.Builder{}
		for _, arg := range args {
			sb.WriteString(formatValue(arg))
		}
		return sb.String(), nil
	},
	"hashcode": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("hashcode requires exactly one argument")
		}
		return float64(xxhash.Sum64String(comparison.Key(args[0])) % math.MaxInt32), nil
	},
	"mod": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.New("mod requires exactly two arguments")
		}
		a, err := toInt64(args[0])
		if err != nil {
			return nil, err
		}
		b, err := toInt64(args[1])
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, errors.New("mod by zero")
		}
		return float64(positiveMod(a, b)), nil
	},
}

func NewComplexInline(columns []string, expression string) (*ComplexInline, error) {
	cols := core.DistinctSliceAndTrim(columns)
	if len(cols) == 0 {
		return nil, core.NewConfigurationError("complex-inline algorithm requires sharding columns")
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, expressionFunctions)
	if err != nil {
		return nil, errors.Annotatef(core.NewConfigurationError(err.Error()), "complex-inline expression '%s'", expression)
	}
	return &ComplexInline{columns: cols, expression: expr, raw: expression}, nil
}

func (c *ComplexInline) Name() string {
	return ComplexInlineAlgorithmName
}

func (c *ComplexInline) DoComplexSharding(_ []string, values map[string]interface{}) (string, error) {
	params := make(map[string]interface{}, len(c.columns))
	for _, column := range c.columns {
		v, ok := lookupIgnoreCase(values, column)
		if !ok {
			return "", errors.Annotatef(core.NewDataError("sharding value is missing"), "column '%s' of expression '%s'", column, c.raw)
		}
		params[column] = evaluableValue(v)
	}
	result, err := c.expression.Evaluate(params)
	if err != nil {
		return "", errors.Annotatef(core.NewDataError(err.Error()), "evaluate '%s'", c.raw)
	}
	return formatValue(result), nil
}

// evaluableValue converts numbers to float64, the only numeric type the evaluator accepts.
func evaluableValue(v interface{}) interface{} {
	if comparison.IsNumber(v) {
		if i, err := toInt64(v); err == nil {
			return float64(i)
		}
		switch f := v.(type) {
		case float32:
			return float64(f)
		case float64:
			return f
		}
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

type complexInlineFactory struct{}

func (complexInlineFactory) GetName() string {
	return ComplexInlineAlgorithmName
}

func (complexInlineFactory) Create(props core.Properties) (rule.ShardingAlgorithm, error) {
	expression := props.GetString(AlgorithmExpressionProperty, "")
	if expression == "" {
		return nil, core.NewConfigurationError("property 'algorithm-expression' is required by complex-inline algorithm")
	}
	return NewComplexInline(props.GetList(ShardingColumnPropertyName), expression)
}
