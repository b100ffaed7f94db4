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

package testkit

import (
	"fmt"

	"github.com/emirpasic/gods/utils"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/stretchr/testify/assert"
)

func AssertStrArrayEquals(t assert.TestingT, excepted []string, actual []string, msgAndArgs ...interface{}) bool {
	return AssertArrayEquals(t, toInterfaces(excepted), toInterfaces(actual), msgAndArgs...)
}

// AssertArrayEquals compares two arrays ignoring order, duplicates must occur the same number of times.
// Values are matched by natural ordering so 1 and int64(1) are equal.
func AssertArrayEquals(t assert.TestingT, excepted []interface{}, actual []interface{}, msgAndArgs ...interface{}) bool {
	counts := make(map[string]int, len(excepted))
	for _, e := range excepted {
		counts[comparison.Key(e)]++
	}
	for _, a := range actual {
		counts[comparison.Key(a)]--
	}
	for _, c := range counts {
		if c != 0 {
			return assert.Fail(t, describeDifference(excepted, actual), msgAndArgs...)
		}
	}
	return true
}

func describeDifference(excepted []interface{}, actual []interface{}) string {
	sb := core.NewStringBuilder()
	sb.WriteLine("arrays are not the same")
	sb.Write("excepted: ")
	writeSorted(sb, excepted)
	sb.WriteLine()
	sb.Write("actual:   ")
	writeSorted(sb, actual)
	sb.WriteLine()
	return sb.String()
}

func writeSorted(sb *core.StringBuilder, values []interface{}) {
	if len(values) == 0 {
		sb.Write("<empty array>")
		return
	}
	sorted := append([]interface{}(nil), values...)
	utils.Sort(sorted, func(a, b interface{}) int {
		i, err := comparison.Compare(a, b)
		if err != nil {
			return utils.StringComparator(fmt.Sprint(a), fmt.Sprint(b))
		}
		return i
	})
	sb.WriteJoin(", ", sorted...)
}

func toInterfaces(values []string) []interface{} {
	r := make([]interface{}, len(values))
	for i, value := range values {
		r[i] = value
	}
	return r
}
