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
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"go.uber.org/config"
)

// Properties holds the free-form settings of a pluggable algorithm.
type Properties interface {
	GetValues() map[string]string
	PopulateValue(instance interface{}) error
	GetString(key string, defaultValue string) string
	GetInt(key string, defaultValue int) (int, error)
	GetInt64(key string, defaultValue int64) (int64, error)
	GetList(key string) []string
}

var EmptyProperties Properties = NewPropertiesFromMap(nil)

func NewProperties(value *config.Value) (Properties, error) {
	values := make(map[string]string)
	if value.HasValue() {
		if err := value.Populate(&values); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return &properties{
		values:   values,
		rawValue: value,
	}, nil
}

func NewPropertiesFromMap(values map[string]string) Properties {
	v := make(map[string]string, len(values))
	for key, value := range values {
		v[key] = value
	}
	return &properties{values: v}
}

type properties struct {
	values   map[string]string
	rawValue *config.Value
}

func (props *properties) GetValues() map[string]string {
	return props.values
}

func (props *properties) PopulateValue(instance interface{}) error {
	if props.rawValue != nil {
		return props.rawValue.Populate(instance)
	}
	provider, err := config.NewYAML(config.Static(props.values))
	if err != nil {
		return errors.Trace(err)
	}
	return provider.Get(config.Root).Populate(instance)
}

func (props *properties) GetString(key string, defaultValue string) string {
	if v, ok := props.values[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

func (props *properties) GetInt(key string, defaultValue int) (int, error) {
	v, err := props.GetInt64(key, int64(defaultValue))
	return int(v), err
}

func (props *properties) GetInt64(key string, defaultValue int64) (int64, error) {
	v := props.GetString(key, "")
	if v == "" {
		return defaultValue, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Annotatef(err, "property '%s' must be an integer, got '%s'", key, v)
	}
	return i, nil
}

// GetList splits a comma separated property value.
func (props *properties) GetList(key string) []string {
	v := props.GetString(key, "")
	if v == "" {
		return nil
	}
	return DistinctSliceAndTrim(strings.Split(v, ","))
}
