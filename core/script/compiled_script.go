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
	"fmt"
	"reflect"

	"github.com/d5/tengo/v2"
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

type CompiledScript interface {
	Run() ([]string, error)
	RunWith(variables map[string]interface{}) ([]string, error)
}

type tengoScript struct {
	raw       string
	compiled  *tengo.Compiled
	resultVar string
}

func (script *tengoScript) Run() ([]string, error) {
	return script.RunWith(nil)
}

// RunWith executes a private copy of the compiled program, the script itself is never mutated.
func (script *tengoScript) RunWith(variables map[string]interface{}) ([]string, error) {
	c := script.compiled.Clone()
	for name, value := range variables {
		if err := c.Set(name, ScriptValue(value)); err != nil {
			return nil, errors.Annotatef(err, "set variable '%s' to script fault", name)
		}
	}
	if err := c.Run(); err != nil {
		return nil, errors.Trace(err)
	}

	v := c.Get(script.resultVar)
	golangValue := v.Value()
	if golangValue == nil {
		return nil, invalidReturnTypeError(script.raw, v)
	}
	switch reflect.TypeOf(golangValue).Kind() {
	case reflect.Array, reflect.Slice:
		if array, ok := golangValue.([]interface{}); ok {
			return stringArray(array), nil
		}
		return nil, invalidReturnTypeError(script.raw, v)
	case reflect.Int,
		reflect.Float32,
		reflect.Float64,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint64,
		reflect.String:
		return []string{fmt.Sprint(golangValue)}, nil
	default:
		return nil, invalidReturnTypeError(script.raw, v)
	}
}

func stringArray(array []interface{}) []string {
	list := make([]string, len(array))
	for i, v := range array {
		list[i] = fmt.Sprint(v)
	}
	return list
}

func invalidReturnTypeError(raw string, v *tengo.Variable) error {
	return errors.New(fmt.Sprint("script return invalid type, excepted array that element is number or string, and primitive number or string", core.LineSeparator, "script: ", raw, core.LineSeparator, "return type:", v.ValueType()))
}

func ParseScript(script string, variables ...string) (CompiledScript, error) {
	parser, err := NewScriptParser(script)
	if err != nil {
		return nil, err
	}
	for _, name := range variables {
		if err := parser.Var(name, nil); err != nil {
			return nil, err
		}
	}
	return parser.Compile()
}
