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

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/config"
)

func TestPropertiesFromYaml(t *testing.T) {
	yaml := `
props:
  sharding-count: 4
  algorithm-expression: t_${id % 4}
  sharding-boundaries: 10, 20,30
`
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)))
	assert.Nil(t, err)

	value := provider.Get("props")
	props, err := NewProperties(&value)
	assert.Nil(t, err)

	count, err := props.GetInt("sharding-count", 0)
	assert.Nil(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, "t_${id % 4}", props.GetString("algorithm-expression", ""))
	assert.Equal(t, []string{"10", "20", "30"}, props.GetList("sharding-boundaries"))
	assert.Equal(t, "x", props.GetString("missing", "x"))
}

func TestPropertiesFromMap(t *testing.T) {
	props := NewPropertiesFromMap(map[string]string{"worker-id": "12", "bad": "x1"})

	v, err := props.GetInt64("worker-id", 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(12), v)

	_, err = props.GetInt("bad", 0)
	assert.NotNil(t, err)

	var s struct {
		WorkerId string `yaml:"worker-id"`
	}
	assert.Nil(t, props.PopulateValue(&s))
	assert.Equal(t, "12", s.WorkerId)
}
