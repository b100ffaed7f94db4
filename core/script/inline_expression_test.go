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

package script

import (
	"testing"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/testkit"
	"github.com/stretchr/testify/assert"
)

func TestFlatNoScript(t *testing.T) {
	expr := "ds_1,ds_2, ds_3"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 3, len(list))
	assert.True(t, core.StringSliceEqual(list, []string{"ds_1", "ds_2", "ds_3"}))
}

func TestFlatOneDepth(t *testing.T) {
	expr := "ds_${range(1,3)}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 3, len(list))
	testkit.AssertStrArrayEquals(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatRangeSyntax(t *testing.T) {
	list := FlatInlineExpression("ds_${0..1}.t_order_${0..1}", t)
	assert.Equal(t, []string{"ds_0.t_order_0", "ds_0.t_order_1", "ds_1.t_order_0", "ds_1.t_order_1"}, list)

	list = FlatInlineExpression("ds_$->{0..1}", t)
	assert.Equal(t, []string{"ds_0", "ds_1"}, list)
}

func TestFlatTwoDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 6, len(list))
	assert.Equal(t, "ds_1_t2", list[0])
	assert.Equal(t, "ds_3_t3", list[5])
}

func TestFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 24, len(list))
}

func TestMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]},es_${range(2,4)}_t${range(2,3)}_b${[5,6,7,8]}, ts_${range(3,5)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 72, len(list))
}

func TestDuplexMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}, ds_${range(3,4)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 32, len(list))
}

func TestFlatWithVariables(t *testing.T) {
	expr, err := NewInlineExpression("t_order_${order_id % 2}", "order_id")
	assert.Nil(t, err)

	v, err := expr.FlatScalar(NewVariable("order_id", 3))
	assert.Nil(t, err)
	assert.Equal(t, "t_order_1", v)

	v, err = expr.FlatScalar(NewVariable("order_id", int32(4)))
	assert.Nil(t, err)
	assert.Equal(t, "t_order_0", v)

	v, err = expr.FlatScalar(NewVariable("order_id", uint64(7)))
	assert.Nil(t, err)
	assert.Equal(t, "t_order_1", v)
}

func TestFlatSharedAcrossGoroutines(t *testing.T) {
	expr, err := NewInlineExpression("ds_${user_id % 4}", "user_id")
	assert.Nil(t, err)

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func(id int) {
			v, _ := expr.FlatScalar(NewVariable("user_id", id))
			done <- v
		}(i)
	}
	results := make(map[string]int)
	for i := 0; i < 8; i++ {
		results[<-done]++
	}
	assert.Equal(t, 4, len(results))
	assert.Equal(t, 2, results["ds_0"])
}

func TestSyntaxError(t *testing.T) {
	_, err := NewInlineExpression("ds_${0..1")
	assert.NotNil(t, err)

	_, err = NewInlineExpression("ds_$0")
	assert.NotNil(t, err)

	_, err = NewInlineExpression("ds_${}")
	assert.NotNil(t, err)
}

func GetInlineExpression(expression string, t *testing.T) InlineExpression {
	v, err := NewInlineExpression(expression)
	assert.Nil(t, err, "create inline expression fault: %s", expression)
	return v
}

func FlatInlineExpression(expression string, t *testing.T) []string {
	expr := GetInlineExpression(expression, t)
	list, err := expr.Flat()
	assert.Nil(t, err, "flat inline expression fault: %s", expression)
	return list
}
