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
	"github.com/endink/go-sharding-core/logging"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

var logger = logging.GetLogger("merging")

// Strategy is the way query results of a statement are merged.
type Strategy string

const (
	StrategyIterator      Strategy = "iterator"
	StrategyOrderByStream Strategy = "order-by-stream"
	StrategyGroupByStream Strategy = "group-by-stream"
	StrategyGroupByMemory Strategy = "group-by-memory"
	StrategyDistinct      Strategy = "distinct"
)

// SelectStrategy chooses how results of count shards are merged.
func SelectStrategy(stmt statement.Statement, count int) Strategy {
	s, ok := stmt.(*statement.SelectStatement)
	if !ok {
		return StrategyIterator
	}
	distinctAggregation := s.HasAggregationDistinct()
	if count <= 1 && !distinctAggregation {
		return StrategyIterator
	}
	switch {
	case len(s.GroupBy) > 0 || len(s.AggregationItems()) > 0:
		if len(s.GroupBy) > 0 && s.IsSameGroupByAndOrderBy() && !distinctAggregation {
			return StrategyGroupByStream
		}
		return StrategyGroupByMemory
	case s.Distinct:
		return StrategyDistinct
	case len(s.OrderBy) > 0:
		return StrategyOrderByStream
	}
	return StrategyIterator
}

type options struct {
	encryptRule *rule.EncryptRule
}

type Option func(*options)

// WithEncryptRule decrypts the encrypted columns of the merged rows.
func WithEncryptRule(e *rule.EncryptRule) Option {
	return func(o *options) {
		o.encryptRule = e
	}
}

// Merge combines the query results of every shard into one cursor.
// Results must be given in the order of the execution units they came from.
func Merge(stmt statement.Statement, params []interface{}, results []QueryResult, opts ...Option) (MergedResult, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if len(results) == 0 {
		return newMemoryMergedResult(nil), nil
	}
	s, ok := stmt.(*statement.SelectStatement)
	if !ok {
		return newIteratorMergedResult(results), nil
	}
	if err := s.Prepare(); err != nil {
		return nil, err
	}

	strategy := SelectStrategy(s, len(results))
	logger.Debugf("merge %d query results with %s", len(results), strategy)
	merged, err := build(s, strategy, results)
	if err != nil {
		return nil, errors.Annotatef(err, "merge with %s", strategy)
	}
	if merged, err = decoratePagination(s, params, len(results), merged); err != nil {
		return nil, err
	}
	if !o.encryptRule.IsEmpty() {
		if encryptors := encryptColumns(s, o.encryptRule, results[0]); len(encryptors) > 0 {
			merged = NewEncryptDecorator(merged, encryptors)
		}
	}
	return merged, nil
}

func build(s *statement.SelectStatement, strategy Strategy, results []QueryResult) (MergedResult, error) {
	sample := results[0]
	columns := sample.ColumnCount()
	switch strategy {
	case StrategyOrderByStream:
		keys, err := resolveOrderKeys(s.OrderBy, sample)
		if err != nil {
			return nil, err
		}
		return newOrderByStreamMergedResult(results, keys)
	case StrategyGroupByStream, StrategyGroupByMemory:
		groupKeys, err := resolveOrderKeys(s.GroupBy, sample)
		if err != nil {
			return nil, err
		}
		aggregations, err := resolveAggregations(s, sample)
		if err != nil {
			return nil, err
		}
		if strategy == StrategyGroupByStream {
			return newGroupByStreamMergedResult(results, columns, groupKeys, aggregations)
		}
		orderKeys, err := resolveOrderKeys(s.OrderBy, sample)
		if err != nil {
			return nil, err
		}
		if len(orderKeys) == 0 {
			orderKeys = groupKeys
		}
		return newGroupByMemoryMergedResult(results, columns, groupKeys, orderKeys, aggregations)
	case StrategyDistinct:
		distinct := s.ColumnCount()
		if distinct < 0 || distinct > columns {
			distinct = columns
		}
		keys := make([]orderKey, distinct)
		for i := range keys {
			keys[i] = orderKey{index: i}
		}
		orderKeys, err := resolveOrderKeys(s.OrderBy, sample)
		if err != nil {
			return nil, err
		}
		return newGroupByMemoryMergedResult(results, columns, keys, orderKeys, nil)
	}
	return newIteratorMergedResult(results), nil
}

// decoratePagination applies the pagination of the statement when the shards returned revised pages.
func decoratePagination(s *statement.SelectStatement, params []interface{}, count int, merged MergedResult) (MergedResult, error) {
	p := s.Pagination
	if p == nil || (count <= 1 && !s.NeedsAllRows()) {
		return merged, nil
	}
	offset, err := p.ActualOffset(params)
	if err != nil {
		return nil, err
	}
	rowCount, hasRowCount, err := p.ActualRowCount(params)
	if err != nil {
		return nil, err
	}
	if p.RowNumber {
		return NewRowNumberDecorator(merged, offset, rowCount, hasRowCount, p.RowCountInclusive), nil
	}
	return NewLimitDecorator(merged, offset, rowCount, hasRowCount), nil
}

func encryptColumns(s *statement.SelectStatement, e *rule.EncryptRule, sample QueryResult) map[int]rule.Encryptor {
	encryptors := make(map[int]rule.Encryptor)
	for _, table := range s.Tables() {
		for _, c := range e.Columns(table) {
			if index, err := labelIndex(sample, c.Column); err == nil {
				encryptors[index] = c.Encryptor
			}
		}
	}
	return encryptors
}
