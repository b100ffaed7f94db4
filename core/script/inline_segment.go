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
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

type inlineSegmentGroup struct {
	segments []*inlineSegment
}

type inlineSegment struct {
	rawScript string
	prefix    string
	script    CompiledScript
}

type splitContext struct {
	prefix    *strings.Builder
	rawScript *strings.Builder
	variables []string
	segments  []*inlineSegment
}

func (seg *inlineSegment) isBlank() bool {
	return strings.TrimSpace(seg.prefix) == "" && strings.TrimSpace(seg.rawScript) == ""
}

// splitSegments accepts both '${...}' and '$->{...}' script blocks.
func splitSegments(exp string, variables ...string) ([]*inlineSegmentGroup, error) {
	isScript := false
	depth := 0
	expLen := len(exp)
	groups := make([]*inlineSegmentGroup, 0)

	syntaxError := func(message string, index int) error {
		var sb = core.NewStringBuilder()
		sb.WriteLine("inline expression syntax error")
		sb.WriteLine(message)
		sb.WriteLineF("expression: %s", exp)
		if index >= 0 {
			sb.WriteLineF("char index: %d", index)
		}
		return errors.New(sb.String())
	}

	context := &splitContext{
		prefix:    &strings.Builder{},
		rawScript: &strings.Builder{},
		variables: variables,
	}

	prefix := context.prefix
	rawScript := context.rawScript
	for i := 0; i < expLen; i++ {
		char := exp[i]
		switch char {
		case '$':
			if isScript {
				return nil, syntaxError("should not appear symbol '$'", i)
			}
			if i < (expLen-1) && exp[i+1] == '{' {
				i++
			} else if i < (expLen-3) && exp[i+1:i+4] == "->{" {
				i += 3
			} else {
				return nil, syntaxError("'{' symbol is missing after the symbol '$'", i)
			}
			isScript = true
			depth = 0
		case '{':
			if isScript {
				depth++
				rawScript.WriteByte(char)
			} else {
				prefix.WriteByte(char)
			}
		case '}':
			if isScript {
				if depth > 0 {
					depth--
					rawScript.WriteByte(char)
					continue
				}
				isScript = false
				if err := context.flushSegment(true); err != nil {
					return nil, syntaxError(err.Error(), i)
				}
			} else {
				prefix.WriteByte(char)
			}
		case ',':
			if !isScript {
				g, err := context.flushGroup()
				if err != nil {
					return nil, syntaxError(err.Error(), i)
				}
				if g != nil {
					groups = append(groups, g)
				}
			} else {
				rawScript.WriteByte(char)
			}
		default:
			if isScript {
				rawScript.WriteByte(char)
			} else {
				prefix.WriteByte(char)
			}
		}
	}

	if isScript {
		return nil, syntaxError("symbol '}' used to end the script are missing", -1)
	}

	g, err := context.flushGroup()
	if err != nil {
		return nil, syntaxError(err.Error(), expLen)
	}
	if g != nil {
		groups = append(groups, g)
	}
	return groups, nil
}

func (context *splitContext) flushGroup() (*inlineSegmentGroup, error) {
	if err := context.flushSegment(false); err != nil {
		return nil, err
	}
	if len(context.segments) == 0 {
		return nil, nil
	}
	g := &inlineSegmentGroup{
		segments: context.segments,
	}
	context.segments = nil
	return g, nil
}

// flushSegment closes the pending text, withScript marks the end of a script block.
func (context *splitContext) flushSegment(withScript bool) error {
	seg := &inlineSegment{
		prefix:    context.prefix.String(),
		rawScript: strings.TrimSpace(context.rawScript.String()),
	}
	if len(context.segments) == 0 {
		seg.prefix = strings.TrimLeft(seg.prefix, " \t\r\n")
	}
	if !withScript {
		seg.prefix = strings.TrimRight(seg.prefix, " \t\r\n")
	}

	if withScript && seg.rawScript == "" {
		return errors.New("script block can not be empty")
	}

	if !seg.isBlank() {
		if seg.rawScript != "" {
			s, err := ParseScript(seg.rawScript, context.variables...)
			if err != nil {
				return err
			}
			seg.script = s
		}
		context.segments = append(context.segments, seg)
	}

	context.prefix.Reset()
	context.rawScript.Reset()
	return nil
}
