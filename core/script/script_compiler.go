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
	"regexp"

	"github.com/d5/tengo/v2"
	"github.com/pingcap/errors"
)

const resultVar = "_r"

var rangeSyntax = regexp.MustCompile(`^\s*(-?\d+)\s*\.\.\s*(-?\d+)\s*$`)

type Compiler interface {
	Var(name string, value interface{}) error
	Compile() (CompiledScript, error)
}

type scriptParser struct {
	script *tengo.Script
	raw    string
}

func (s *scriptParser) Compile() (CompiledScript, error) {
	c, err := s.script.Compile()
	if err != nil {
		return nil, errors.Annotatef(err, "compile script '%s' fault", s.raw)
	}
	return &tengoScript{
		raw:       s.raw,
		compiled:  c,
		resultVar: resultVar,
	}, nil
}

func (s *scriptParser) Var(name string, value interface{}) error {
	if err := s.script.Add(name, ScriptValue(value)); err != nil {
		return fmt.Errorf("add variable '%s' to compile fault, %s", name, err)
	}
	return nil
}

// NewScriptParser accepts any tengo expression, '1..3' is a shorthand of 'range(1,3)'.
func NewScriptParser(script string) (Compiler, error) {
	content := fmt.Sprintf("%s:=%s", resultVar, expandRangeSyntax(script))
	s := tengo.NewScript([]byte(content))
	if err := s.Add("range", RangeFunction); err != nil {
		return nil, err
	}
	return &scriptParser{
		raw:    script,
		script: s,
	}, nil
}

func expandRangeSyntax(script string) string {
	if m := rangeSyntax.FindStringSubmatch(script); m != nil {
		return fmt.Sprintf("range(%s,%s)", m[1], m[2])
	}
	return script
}
