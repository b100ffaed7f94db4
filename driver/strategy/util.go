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
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

var suffixNumber = regexp.MustCompile(`(\d+)$`)

// suffixIndex returns the trailing number of a target name, 't_order_12' gives 12.
func suffixIndex(target string) (int64, bool) {
	m := suffixNumber.FindString(target)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(m, 10, 64)
	return v, err == nil
}

// targetByIndex finds the candidate whose trailing number equals the index.
func targetByIndex(available []string, index int64) (string, error) {
	for _, a := range available {
		if i, ok := suffixIndex(a); ok && i == index {
			return a, nil
		}
	}
	return "", errors.Annotatef(rule.ErrNoMatchingShard, "no target ends with %d in [%s]", index, strings.Join(available, ", "))
}

func targetsByIndexes(available []string, indexes []int64) []string {
	var r []string
	for _, a := range available {
		if i, ok := suffixIndex(a); ok {
			for _, idx := range indexes {
				if idx == i {
					r = append(r, a)
					break
				}
			}
		}
	}
	return r
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case *apd.Decimal:
		if v == nil {
			break
		}
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	}
	return 0, errors.Annotatef(core.NewDataError("sharding value is not an integer"), "value: %v (%T)", value, value)
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, core.NewDataError(fmt.Sprintf("sharding value %d overflows int64", v))
	}
	return int64(v), nil
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, core.NewDataError(fmt.Sprintf("sharding value %v is not an integer", f))
	}
	return int64(f), nil
}

func positiveMod(v int64, n int64) int64 {
	return ((v % n) + n) % n
}

func shardingCount(props core.Properties, name string) (int64, error) {
	count, err := props.GetInt64(ShardingCountProperty, 0)
	if err != nil {
		return 0, err
	}
	if count <= 0 {
		return 0, errors.Annotatef(core.NewConfigurationError("property 'sharding-count' must be greater than 0"), "algorithm '%s'", name)
	}
	return count, nil
}
