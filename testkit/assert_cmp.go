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
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ignoreUnexported skips unexported struct fields, e.g. the dedup index of a routing result.
var ignoreUnexported = cmp.FilterPath(func(path cmp.Path) bool {
	sf, ok := path.Last().(cmp.StructField)
	if !ok {
		return false
	}
	r := []rune(sf.Name())
	return len(r) > 0 && !unicode.IsUpper(r[0])
}, cmp.Ignore())

// MustMatch fails the test with a (-want +got) diff when the values differ.
// Unexported fields are ignored, nil and empty slices or maps are equal.
func MustMatch(t testing.TB, want, got interface{}, opts ...cmp.Option) {
	t.Helper()
	diffOpts := append([]cmp.Option{ignoreUnexported, cmpopts.EquateEmpty()}, opts...)
	if diff := cmp.Diff(want, got, diffOpts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
