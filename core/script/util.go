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
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// ScriptValue converts a runtime value into one of the types the script engine accepts.
func ScriptValue(value interface{}) interface{} {
	switch v := value.(type) {
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return uintValue(v)
	case float32:
		return float64(v)
	case *apd.Decimal:
		if v == nil {
			return nil
		}
		if i, err := v.Int64(); err == nil {
			var check apd.Decimal
			check.SetInt64(i)
			if check.Cmp(v) == 0 {
				return i
			}
		}
		f, _ := v.Float64()
		return f
	case []byte:
		return string(v)
	case time.Time:
		return v
	}
	return value
}

func uintValue(u uint64) interface{} {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return float64(u)
}

// product concatenates every prefix with every suffix, prefixes change slowest.
func product(prefix []string, suffix []string) []string {
	if len(prefix) == 0 {
		return suffix
	}
	r := make([]string, 0, len(prefix)*len(suffix))
	for _, p := range prefix {
		for _, v := range suffix {
			r = append(r, p+v)
		}
	}
	return r
}

func flatFill(prefix string, suffix []string) []string {
	if prefix == "" {
		return suffix
	}
	r := make([]string, len(suffix))
	for i, v := range suffix {
		r[i] = prefix + v
	}
	return r
}
