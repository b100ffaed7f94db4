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
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

var _ InlineExpression = &inlineExpr{}

// InlineExpression expands expressions like 'ds_${0..1}.t_order_${[0,1]}' into names,
// groups separated by ',' are flattened one after another and duplicates are removed.
type InlineExpression interface {
	Flat(variables ...*Variable) ([]string, error)
	FlatScalar(variables ...*Variable) (string, error)
	RawExpression() string
	VariableNames() []string
}

type Variable struct {
	Name  string
	Value interface{}
}

func NewVariable(name string, value interface{}) *Variable {
	return &Variable{Name: name, Value: value}
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s=%v", v.Name, v.Value)
}

type inlineExpr struct {
	expression string
	segments   []*inlineSegmentGroup
	varsNames  []string
}

func (i *inlineExpr) RawExpression() string {
	return i.expression
}

func (i *inlineExpr) VariableNames() []string {
	return i.varsNames
}

func (i *inlineExpr) FlatScalar(variables ...*Variable) (string, error) {
	list, err := i.Flat(variables...)
	if err != nil {
		return "", err
	}
	switch len(list) {
	case 0:
		return "", nil
	case 1:
		return list[0], nil
	}
	return "", i.wrapExecuteError(errors.Errorf("expression produced %d values, one expected", len(list)), variables...)
}

func (i *inlineExpr) Flat(variables ...*Variable) ([]string, error) {
	var vars map[string]interface{}
	if len(variables) > 0 {
		vars = make(map[string]interface{}, len(variables))
		for _, v := range variables {
			vars[v.Name] = v.Value
		}
	}

	set := make(map[string]struct{})
	list := make([]string, 0)
	for _, g := range i.segments {
		var current []string
		for _, s := range g.segments {
			if s.script != nil {
				l, err := s.script.RunWith(vars)
				if err != nil {
					return nil, i.wrapExecuteError(err, variables...)
				}
				current = product(current, flatFill(s.prefix, l))
			} else if s.prefix != "" {
				current = product(current, []string{s.prefix})
			}
		}

		for _, c := range current {
			if _, ok := set[c]; !ok {
				set[c] = core.Nothing
				list = append(list, c)
			}
		}
	}
	return list, nil
}

func varsArray(vars []*Variable) []interface{} {
	r := make([]interface{}, len(vars))
	for i, variable := range vars {
		r[i] = variable
	}
	return r
}

func (i *inlineExpr) wrapExecuteError(e error, vars ...*Variable) error {
	sb := core.NewStringBuilder()
	sb.WriteLine("inline expression fault.")
	sb.WriteLine("Script: ", i.expression)
	sb.Write("Variables: ")
	if len(vars) > 0 {
		sb.WriteJoin(", ", varsArray(vars)...)
	} else {
		sb.Write("<none>")
	}
	sb.WriteLine()
	sb.WriteLine("Error:")
	sb.Write(e.Error())
	return errors.New(sb.String())
}

// NewInlineExpression parses the expression, every script segment may reference the given variable names.
func NewInlineExpression(expression string, variableNames ...string) (InlineExpression, error) {
	expr := &inlineExpr{expression: strings.TrimSpace(expression), varsNames: variableNames}
	segments, err := splitSegments(expr.expression, variableNames...)
	if err != nil {
		return nil, err
	}
	expr.segments = segments
	return expr, nil
}

// FlatInline is a shortcut to expand an expression without variables.
func FlatInline(expression string) ([]string, error) {
	expr, err := NewInlineExpression(expression)
	if err != nil {
		return nil, err
	}
	return expr.Flat()
}
