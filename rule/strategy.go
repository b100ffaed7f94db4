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

package rule

import (
	"strings"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

var (
	ErrNoMatchingShard           = core.NewConfigurationError("no matching shard for the sharding condition")
	ErrRoutedTargetNotConfigured = core.NewConfigurationError("the routed target is not a configured data source or table")
)

// HintColumn is the column name of route values supplied by hints instead of the statement.
const HintColumn = "__hint__"

// ShardingStrategy narrows candidate targets (data sources or actual tables) with the route values of one AND group.
// A strategy that gets no route value for its columns returns every candidate.
type ShardingStrategy interface {
	ShardingColumns() []string
	DoSharding(available []string, values []condition.RouteValue) ([]string, error)
}

// NoneStrategy never narrows, the table is not sharded on this level.
type NoneStrategy struct{}

func (NoneStrategy) ShardingColumns() []string {
	return nil
}

func (NoneStrategy) DoSharding(available []string, _ []condition.RouteValue) ([]string, error) {
	return available, nil
}

type StandardStrategy struct {
	column    string
	precise   PreciseShardingAlgorithm
	rangeAlgo RangeShardingAlgorithm
}

// NewStandardStrategy uses the algorithm for equal and IN values, and also for ranges if it supports them.
func NewStandardStrategy(column string, algorithm ShardingAlgorithm) (*StandardStrategy, error) {
	if strings.TrimSpace(column) == "" {
		return nil, core.NewConfigurationError("sharding column of standard strategy can not be empty")
	}
	precise, ok := algorithm.(PreciseShardingAlgorithm)
	if !ok {
		return nil, errors.Annotatef(core.NewConfigurationError("algorithm can not be used by standard strategy"), "algorithm '%s'", algorithm.Name())
	}
	s := &StandardStrategy{column: strings.TrimSpace(column), precise: precise}
	if r, ok := algorithm.(RangeShardingAlgorithm); ok {
		s.rangeAlgo = r
	}
	return s, nil
}

func (s *StandardStrategy) ShardingColumns() []string {
	return []string{s.column}
}

func (s *StandardStrategy) DoSharding(available []string, values []condition.RouteValue) ([]string, error) {
	var result []string
	matched := false
	for _, v := range values {
		if !strings.EqualFold(v.Column(), s.column) {
			continue
		}
		targets, err := s.doSharding(available, v)
		if err != nil {
			return nil, err
		}
		if !matched {
			result = targets
			matched = true
		} else {
			result = intersectTargets(result, targets)
		}
	}
	if !matched {
		return available, nil
	}
	return orderByAvailable(available, result), nil
}

func (s *StandardStrategy) doSharding(available []string, v condition.RouteValue) ([]string, error) {
	switch value := v.(type) {
	case *condition.ListRouteValue:
		var targets []string
		for _, item := range value.Values() {
			t, err := s.precise.DoPreciseSharding(available, s.column, item)
			if err != nil {
				return nil, errors.Annotatef(err, "sharding column '%s' with value '%v'", s.column, item)
			}
			target, err := checkTarget(available, t)
			if err != nil {
				return nil, err
			}
			targets = appendTarget(targets, target)
		}
		return targets, nil
	case *condition.RangeRouteValue:
		if s.rangeAlgo == nil {
			return available, nil
		}
		targets, ok, err := s.rangeAlgo.DoRangeSharding(available, s.column, value.Range())
		if err != nil {
			return nil, errors.Annotatef(err, "sharding column '%s' with range %s", s.column, value.Range())
		}
		if !ok {
			return available, nil
		}
		var checked []string
		for _, t := range targets {
			target, err := checkTarget(available, t)
			if err != nil {
				return nil, err
			}
			checked = appendTarget(checked, target)
		}
		return checked, nil
	}
	return available, nil
}

type ComplexStrategy struct {
	columns   []string
	algorithm ComplexShardingAlgorithm
}

func NewComplexStrategy(columns []string, algorithm ShardingAlgorithm) (*ComplexStrategy, error) {
	cols := core.DistinctSliceAndTrim(columns)
	if len(cols) == 0 {
		return nil, core.NewConfigurationError("sharding columns of complex strategy can not be empty")
	}
	complexAlgo, ok := algorithm.(ComplexShardingAlgorithm)
	if !ok {
		return nil, errors.Annotatef(core.NewConfigurationError("algorithm can not be used by complex strategy"), "algorithm '%s'", algorithm.Name())
	}
	return &ComplexStrategy{columns: cols, algorithm: complexAlgo}, nil
}

func (s *ComplexStrategy) ShardingColumns() []string {
	return s.columns
}

// DoSharding needs an equal or IN value for every column, otherwise all candidates are returned.
func (s *ComplexStrategy) DoSharding(available []string, values []condition.RouteValue) ([]string, error) {
	lists := make([][]interface{}, len(s.columns))
	for i, column := range s.columns {
		var list *condition.ListRouteValue
		for _, v := range values {
			if strings.EqualFold(v.Column(), column) {
				l, ok := v.(*condition.ListRouteValue)
				if !ok {
					return available, nil
				}
				list = l
			}
		}
		if list == nil {
			return available, nil
		}
		lists[i] = list.Values()
	}

	var targets []string
	for _, combination := range core.Permute(lists) {
		shardingValues := make(map[string]interface{}, len(s.columns))
		for i, column := range s.columns {
			shardingValues[column] = combination[i]
		}
		t, err := s.algorithm.DoComplexSharding(available, shardingValues)
		if err != nil {
			return nil, errors.Annotatef(err, "sharding columns '%s'", strings.Join(s.columns, ", "))
		}
		target, err := checkTarget(available, t)
		if err != nil {
			return nil, err
		}
		targets = appendTarget(targets, target)
	}
	return orderByAvailable(available, targets), nil
}

// HintStrategy takes the route values of HintColumn, which come from the caller instead of the statement.
type HintStrategy struct {
	algorithm HintShardingAlgorithm
}

func NewHintStrategy(algorithm ShardingAlgorithm) (*HintStrategy, error) {
	h, ok := algorithm.(HintShardingAlgorithm)
	if !ok {
		return nil, errors.Annotatef(core.NewConfigurationError("algorithm can not be used by hint strategy"), "algorithm '%s'", algorithm.Name())
	}
	return &HintStrategy{algorithm: h}, nil
}

func (s *HintStrategy) ShardingColumns() []string {
	return []string{HintColumn}
}

func (s *HintStrategy) DoSharding(available []string, values []condition.RouteValue) ([]string, error) {
	var targets []string
	matched := false
	for _, v := range values {
		list, ok := v.(*condition.ListRouteValue)
		if !ok || v.Column() != HintColumn {
			continue
		}
		matched = true
		for _, item := range list.Values() {
			t, err := s.algorithm.DoHintSharding(available, item)
			if err != nil {
				return nil, errors.Annotatef(err, "hint value '%v'", item)
			}
			target, err := checkTarget(available, t)
			if err != nil {
				return nil, err
			}
			targets = appendTarget(targets, target)
		}
	}
	if !matched {
		return available, nil
	}
	return orderByAvailable(available, targets), nil
}

func checkTarget(available []string, target string) (string, error) {
	for _, a := range available {
		if strings.EqualFold(a, target) {
			return a, nil
		}
	}
	return "", errors.Annotatef(ErrRoutedTargetNotConfigured, "target '%s' is not in [%s]", target, strings.Join(available, ", "))
}

func appendTarget(targets []string, target string) []string {
	if core.ContainsString(targets, target) {
		return targets
	}
	return append(targets, target)
}

func intersectTargets(a []string, b []string) []string {
	var r []string
	for _, t := range a {
		if core.ContainsString(b, t) {
			r = append(r, t)
		}
	}
	return r
}

func orderByAvailable(available []string, targets []string) []string {
	r := make([]string, 0, len(targets))
	for _, a := range available {
		if core.ContainsString(targets, a) {
			r = append(r, a)
		}
	}
	return r
}
