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

package rewriting

import (
	"github.com/endink/go-sharding-core/routing"
)

// ParameterBuilder derives the bind values of every routing unit from the statement parameters.
type ParameterBuilder struct {
	original []interface{}
	replaced map[int]interface{}
	added    map[int][]interface{}
	// revised pagination values, used only when more than one unit is executed
	paginations map[int]interface{}
	insert      *routing.InsertOptimizeResult
	insertUsed  map[int]bool
}

func NewParameterBuilder(params []interface{}, insert *routing.InsertOptimizeResult) *ParameterBuilder {
	b := &ParameterBuilder{
		original:    params,
		replaced:    make(map[int]interface{}),
		added:       make(map[int][]interface{}),
		paginations: make(map[int]interface{}),
		insert:      insert,
		insertUsed:  make(map[int]bool),
	}
	if insert != nil {
		for _, v := range insert.Values {
			for _, i := range v.ParameterIndexes {
				b.insertUsed[i] = true
			}
		}
	}
	return b
}

// Replace sets the value bound to the parameter at index for every unit.
func (b *ParameterBuilder) Replace(index int, value interface{}) {
	b.replaced[index] = value
}

// Add binds extra values right after the parameter at index.
func (b *ParameterBuilder) Add(index int, values ...interface{}) {
	b.added[index] = append(b.added[index], values...)
}

func (b *ParameterBuilder) replacePagination(index int, value interface{}) {
	b.paginations[index] = value
}

// Build returns the parameters of the unit, single tells whether the unit is the only one executed.
func (b *ParameterBuilder) Build(unit *routing.RoutingUnit, single bool) []interface{} {
	out := make([]interface{}, 0, len(b.original))
	if b.insert != nil {
		for _, v := range b.insert.Values {
			if v.Includes(unit) {
				out = append(out, v.Parameters...)
			}
		}
	}
	for i, p := range b.original {
		if b.insertUsed[i] {
			continue
		}
		if r, ok := b.replaced[i]; ok {
			p = r
		}
		if r, ok := b.paginations[i]; ok && !single {
			p = r
		}
		out = append(out, p)
		out = append(out, b.added[i]...)
	}
	return out
}
