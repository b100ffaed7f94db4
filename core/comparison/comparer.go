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

package comparison

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/pingcap/errors"
)

var ErrNotComparable = errors.New("values are not comparable")

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindUint
	kindFloat
	kindDecimal
	kindString
	kindTime
	kindInvalid
)

type normalized struct {
	kind valueKind
	i    int64
	u    uint64
	f    float64
	d    *apd.Decimal
	s    string
	t    time.Time
	b    bool
}

func normalize(v interface{}) normalized {
	switch value := v.(type) {
	case nil:
		return normalized{kind: kindNull}
	case bool:
		return normalized{kind: kindBool, b: value}
	case int:
		return normalized{kind: kindInt, i: int64(value)}
	case int8:
		return normalized{kind: kindInt, i: int64(value)}
	case int16:
		return normalized{kind: kindInt, i: int64(value)}
	case int32:
		return normalized{kind: kindInt, i: int64(value)}
	case int64:
		return normalized{kind: kindInt, i: value}
	case uint:
		return fromUint(uint64(value))
	case uint8:
		return fromUint(uint64(value))
	case uint16:
		return fromUint(uint64(value))
	case uint32:
		return fromUint(uint64(value))
	case uint64:
		return fromUint(value)
	case float32:
		return normalized{kind: kindFloat, f: float64(value)}
	case float64:
		return normalized{kind: kindFloat, f: value}
	case *apd.Decimal:
		if value == nil {
			return normalized{kind: kindNull}
		}
		return normalized{kind: kindDecimal, d: value}
	case apd.Decimal:
		return normalized{kind: kindDecimal, d: &value}
	case string:
		return normalized{kind: kindString, s: value}
	case []byte:
		if value == nil {
			return normalized{kind: kindNull}
		}
		return normalized{kind: kindString, s: string(value)}
	case time.Time:
		return normalized{kind: kindTime, t: value}
	}
	return normalized{kind: kindInvalid}
}

func fromUint(u uint64) normalized {
	if u <= math.MaxInt64 {
		return normalized{kind: kindInt, i: int64(u)}
	}
	return normalized{kind: kindUint, u: u}
}

func (n normalized) isNumber() bool {
	return n.kind == kindInt || n.kind == kindUint || n.kind == kindFloat || n.kind == kindDecimal
}

func (n normalized) decimal() *apd.Decimal {
	switch n.kind {
	case kindInt:
		return apd.New(n.i, 0)
	case kindUint:
		d := &apd.Decimal{}
		d.Coeff.SetUint64(n.u)
		return d
	case kindFloat:
		d := &apd.Decimal{}
		_, _ = d.SetFloat64(n.f)
		return d
	}
	return n.d
}

// IsCompareSupported reports whether the value takes part in natural ordering.
func IsCompareSupported(value interface{}) bool {
	return normalize(value).kind != kindInvalid
}

// IsNumber reports whether the value is one of the numeric kinds (ints, floats, decimals).
func IsNumber(value interface{}) bool {
	return normalize(value).isNumber()
}

// Compare orders two runtime values. Numeric kinds compare by value across go types,
// strings compare with []byte, nil is smaller than any other value.
func Compare(a, b interface{}) (int, error) {
	na, nb := normalize(a), normalize(b)
	if na.kind == kindInvalid || nb.kind == kindInvalid {
		return 0, notComparable(a, b)
	}
	if na.kind == kindNull || nb.kind == kindNull {
		switch {
		case na.kind == nb.kind:
			return 0, nil
		case na.kind == kindNull:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if na.isNumber() && nb.isNumber() {
		return compareNumber(na, nb), nil
	}

	if na.kind != nb.kind {
		return 0, notComparable(a, b)
	}

	switch na.kind {
	case kindString:
		return strings.Compare(na.s, nb.s), nil
	case kindTime:
		if na.t.Before(nb.t) {
			return -1, nil
		} else if na.t.After(nb.t) {
			return 1, nil
		}
		return 0, nil
	case kindBool:
		if na.b == nb.b {
			return 0, nil
		} else if !na.b {
			return -1, nil
		}
		return 1, nil
	}
	return 0, notComparable(a, b)
}

func compareNumber(a, b normalized) int {
	if a.kind == kindInt && b.kind == kindInt {
		return compareInt64(a.i, b.i)
	}
	if a.kind == kindFloat && b.kind == kindFloat {
		return compareFloat64(a.f, b.f)
	}
	if (a.kind == kindFloat && (math.IsNaN(a.f) || math.IsInf(a.f, 0))) ||
		(b.kind == kindFloat && (math.IsNaN(b.f) || math.IsInf(b.f, 0))) {
		return compareFloat64(toFloat(a), toFloat(b))
	}
	return a.decimal().Cmp(b.decimal())
}

func toFloat(n normalized) float64 {
	switch n.kind {
	case kindInt:
		return float64(n.i)
	case kindUint:
		return float64(n.u)
	case kindFloat:
		return n.f
	}
	f, _ := n.d.Float64()
	return f
}

func compareInt64(x, y int64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func compareFloat64(x, y float64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

// Equals reports a == b under natural ordering, non-comparable values are never equal.
func Equals(a, b interface{}) bool {
	r, err := Compare(a, b)
	return err == nil && r == 0
}

func Min(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return a, nil
	}
	return b, nil
}

func Max(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r >= 0 {
		return a, nil
	}
	return b, nil
}

// CompareSlice compares two tuples element by element, a shorter prefix sorts first.
func CompareSlice(a, b []interface{}) (int, error) {
	size := len(a)
	if len(b) < size {
		size = len(b)
	}
	for i := 0; i < size; i++ {
		r, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if r != 0 {
			return r, nil
		}
	}
	return compareInt64(int64(len(a)), int64(len(b))), nil
}

// Key returns a string that is equal for values that compare equal, used to deduplicate values.
func Key(value interface{}) string {
	n := normalize(value)
	switch n.kind {
	case kindNull:
		return "n:"
	case kindBool:
		return fmt.Sprint("b:", n.b)
	case kindInt, kindUint, kindFloat, kindDecimal:
		if n.kind == kindFloat && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
			return fmt.Sprint("f:", n.f)
		}
		d := &apd.Decimal{}
		d.Reduce(n.decimal())
		return "d:" + d.Text('f')
	case kindString:
		return "s:" + n.s
	case kindTime:
		return "t:" + n.t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("x:%#v", value)
}

func notComparable(a, b interface{}) error {
	var buf bytes.Buffer
	buf.WriteString("values have different types cannot be compared")
	buf.WriteString(fmt.Sprintf(", a: %#v (%T), b: %#v (%T)", a, a, b, b))
	return errors.Annotate(ErrNotComparable, buf.String())
}
