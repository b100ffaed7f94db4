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

package merging

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

var errNotNumber = core.NewDataError("aggregation value is not a number")

// decimalContext is used for every arithmetic of aggregation results.
var decimalContext = apd.BaseContext.WithPrecision(65)

// toDecimal converts a numeric cell, integral tells whether the value had an integer type.
func toDecimal(v interface{}) (d *apd.Decimal, integral bool, err error) {
	switch t := v.(type) {
	case int:
		return apd.New(int64(t), 0), true, nil
	case int8:
		return apd.New(int64(t), 0), true, nil
	case int16:
		return apd.New(int64(t), 0), true, nil
	case int32:
		return apd.New(int64(t), 0), true, nil
	case int64:
		return apd.New(t, 0), true, nil
	case uint:
		return fromUint64(uint64(t)), true, nil
	case uint8:
		return fromUint64(uint64(t)), true, nil
	case uint16:
		return fromUint64(uint64(t)), true, nil
	case uint32:
		return fromUint64(uint64(t)), true, nil
	case uint64:
		return fromUint64(t), true, nil
	case float32:
		d = &apd.Decimal{}
		_, err = d.SetFloat64(float64(t))
		return d, false, errors.Trace(err)
	case float64:
		d = &apd.Decimal{}
		_, err = d.SetFloat64(t)
		return d, false, errors.Trace(err)
	case *apd.Decimal:
		return t, false, nil
	case apd.Decimal:
		return &t, false, nil
	case string:
		return parseDecimal(t)
	case []byte:
		return parseDecimal(string(t))
	}
	return nil, false, errors.Annotatef(errNotNumber, "%v (%T)", v, v)
}

func fromUint64(u uint64) *apd.Decimal {
	d := &apd.Decimal{}
	d.Coeff.SetUint64(u)
	return d
}

func parseDecimal(s string) (*apd.Decimal, bool, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, false, errors.Annotatef(errNotNumber, "'%s'", s)
	}
	return d, d.Exponent >= 0, nil
}

// integerOrDecimal returns an int64 when the decimal is integral and fits, the decimal otherwise.
func integerOrDecimal(d *apd.Decimal) interface{} {
	if i, err := d.Int64(); err == nil {
		return i
	}
	return d
}

func lastDot(s string) int {
	return strings.LastIndex(s, ".")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.Trim(a, "`"), strings.Trim(b, "`"))
}
