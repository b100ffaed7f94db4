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

package condition

import (
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/comparison"
	"github.com/pingcap/errors"
)

var ErrParameterNotFound = core.NewDataError("parameter marker refers to a missing parameter")

// Optimize resolves parameter markers and merges the predicates of every AND group into route values.
// Predicates on the same column are intersected, a group whose predicates contradict is marked AlwaysFalse.
// Open bounds (>, <) become closed ranges, which routes to a superset of the exact shards.
func Optimize(where OrCondition, params []interface{}) (*ShardingConditions, error) {
	result := &ShardingConditions{}
	for _, and := range where {
		c, err := optimizeAnd(and, params)
		if err != nil {
			return nil, err
		}
		result.Conditions = append(result.Conditions, c)
	}
	return result, nil
}

func optimizeAnd(and AndCondition, params []interface{}) (*ShardingCondition, error) {
	var keys []string
	merged := make(map[string]RouteValue)
	sc := &ShardingCondition{}

	for _, cond := range and {
		if cond == nil {
			continue
		}
		v, routable, err := toRouteValue(cond, params)
		if err != nil {
			return nil, err
		}
		if !routable {
			continue
		}
		if v == nil {
			sc.AlwaysFalse = true
			continue
		}

		key := strings.ToLower(cond.Table) + "." + strings.ToLower(cond.Column)
		existing, ok := merged[key]
		if !ok {
			keys = append(keys, key)
			merged[key] = v
			continue
		}
		m := mergeRouteValue(existing, v)
		if m == nil {
			sc.AlwaysFalse = true
			continue
		}
		merged[key] = m
	}

	if sc.AlwaysFalse {
		return sc, nil
	}
	for _, key := range keys {
		sc.RouteValues = append(sc.RouteValues, merged[key])
	}
	return sc, nil
}

// ResolveValue replaces a parameter marker with its parameter, other values are returned as is.
func ResolveValue(value interface{}, params []interface{}) (interface{}, error) {
	if m, ok := value.(ParamMarker); ok {
		if m.Index < 0 || m.Index >= len(params) {
			return nil, errors.Annotatef(ErrParameterNotFound, "parameter index: %d, parameter count: %d", m.Index, len(params))
		}
		return params[m.Index], nil
	}
	if m, ok := value.(*ParamMarker); ok {
		return ResolveValue(*m, params)
	}
	return value, nil
}

func isExpression(v interface{}) bool {
	switch v.(type) {
	case Expression, *Expression:
		return true
	}
	return false
}

// toRouteValue returns routable=false for predicates that can not narrow shards, a nil value means always false.
func toRouteValue(cond *Condition, params []interface{}) (RouteValue, bool, error) {
	values := make([]interface{}, 0, len(cond.Values))
	for _, raw := range cond.Values {
		if isExpression(raw) {
			return nil, false, nil
		}
		v, err := ResolveValue(raw, params)
		if err != nil {
			return nil, false, err
		}
		if !comparison.IsCompareSupported(v) {
			return nil, false, nil
		}
		values = append(values, v)
	}

	switch cond.Operator {
	case OpEqual, OpIn:
		list := make([]interface{}, 0, len(values))
		for _, v := range values {
			if v != nil {
				list = appendDistinct(list, v)
			}
		}
		if len(list) == 0 {
			return nil, true, nil
		}
		return NewListRouteValue(cond.Table, cond.Column, list...), true, nil
	case OpBetween:
		if len(values) != 2 {
			return nil, false, nil
		}
		return rangeValue(cond, values[0], values[1])
	case OpGreaterThan, OpGreaterEqual:
		if len(values) != 1 {
			return nil, false, nil
		}
		return rangeValue(cond, values[0], nil)
	case OpLessThan, OpLessEqual:
		if len(values) != 1 {
			return nil, false, nil
		}
		return rangeValue(cond, nil, values[0])
	}
	return nil, false, nil
}

func rangeValue(cond *Condition, lower, upper interface{}) (RouteValue, bool, error) {
	if lower == nil && upper == nil {
		return nil, true, nil
	}
	r, err := core.NewRange(lower, upper)
	if err != nil {
		if errors.Cause(err) == core.ErrRangeInvalidBound {
			return nil, true, nil
		}
		return nil, false, nil
	}
	return NewRangeRouteValue(cond.Table, cond.Column, r), true, nil
}

func appendDistinct(list []interface{}, v interface{}) []interface{} {
	for _, e := range list {
		if comparison.Equals(e, v) {
			return list
		}
	}
	return append(list, v)
}

// mergeRouteValue intersects two values of one column, nil means the intersection is empty.
// Values that can not be compared keep the first restriction.
func mergeRouteValue(a, b RouteValue) RouteValue {
	switch av := a.(type) {
	case *ListRouteValue:
		switch bv := b.(type) {
		case *ListRouteValue:
			var values []interface{}
			for _, v := range av.values {
				for _, other := range bv.values {
					if r, err := comparison.Compare(v, other); err != nil {
						return a
					} else if r == 0 {
						values = append(values, v)
						break
					}
				}
			}
			if len(values) == 0 {
				return nil
			}
			return NewListRouteValue(av.table, av.column, values...)
		case *RangeRouteValue:
			return intersectListRange(av, bv)
		}
	case *RangeRouteValue:
		switch bv := b.(type) {
		case *ListRouteValue:
			return intersectListRange(bv, av)
		case *RangeRouteValue:
			r, err := av.rng.Intersect(bv.rng)
			if err != nil {
				return a
			}
			if r == nil {
				return nil
			}
			return NewRangeRouteValue(av.table, av.column, r)
		}
	}
	return a
}

func intersectListRange(list *ListRouteValue, rng *RangeRouteValue) RouteValue {
	var values []interface{}
	for _, v := range list.values {
		ok, err := rng.rng.Contains(v)
		if err != nil {
			return list
		}
		if ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return NewListRouteValue(list.table, list.column, values...)
}
