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

package statement

import (
	"fmt"
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

const (
	avgDerivedCount      = "AVG_DERIVED_COUNT_"
	avgDerivedSum        = "AVG_DERIVED_SUM_"
	orderByDerived       = "ORDER_BY_DERIVED_"
	groupByDerived       = "GROUP_BY_DERIVED_"
	distinctDerived      = "AGGREGATION_DISTINCT_DERIVED_"
	derivedAliasPrefixes = "AVG_DERIVED_|ORDER_BY_DERIVED_|GROUP_BY_DERIVED_"
)

var ErrMissingTokenPosition = core.NewConsistencyError("statement has no position to attach derived sql")

func isDerivedAlias(alias string) bool {
	upper := strings.ToUpper(alias)
	for _, prefix := range strings.Split(derivedAliasPrefixes, "|") {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// IsDerived reports whether the item was added for merging and must not be returned to the client.
func (s *SelectItem) IsDerived() bool {
	return isDerivedAlias(s.Alias)
}

// Prepare resolves item indexes and derives the select items, GROUP BY and ORDER BY attachments
// and aggregation distinct tokens shards need so their results can be merged.
// The statement is changed in place exactly once, later and concurrent calls wait for the first
// one and return its error. A statement shared between goroutines must not be modified otherwise.
func (s *SelectStatement) Prepare() error {
	s.prepareOnce.Do(func() {
		s.prepareErr = s.prepare()
	})
	return s.prepareErr
}

func (s *SelectStatement) prepare() error {

	star := false
	for i, item := range s.Items {
		if item.Star {
			star = true
		}
		if star {
			item.Index = -1
		} else {
			item.Index = i
		}
	}

	var derived []string
	if err := s.deriveAggregations(&derived); err != nil {
		return err
	}
	for _, item := range s.OrderBy {
		s.resolveOrderItem(item, orderByDerived, &derived)
	}
	for _, item := range s.GroupBy {
		s.resolveOrderItem(item, groupByDerived, &derived)
	}

	if len(derived) > 0 {
		if s.ItemsStop < 0 {
			return errors.Annotatef(ErrMissingTokenPosition, "select items of '%s'", s.Text)
		}
		s.AddToken(NewSelectItemsToken(s.ItemsStop+1, derived...))
	}

	if len(s.GroupBy) > 0 && len(s.OrderBy) == 0 {
		if s.GroupByStop < 0 {
			return errors.Annotatef(ErrMissingTokenPosition, "group by of '%s'", s.Text)
		}
		items := make([]string, len(s.GroupBy))
		for i, g := range s.GroupBy {
			items[i] = g.String()
			copied := *g
			s.OrderBy = append(s.OrderBy, &copied)
		}
		s.AddToken(NewOrderByToken(s.GroupByStop+1, items...))
	}
	return nil
}

func (s *SelectStatement) nextDerivedAlias(prefix string) string {
	alias := fmt.Sprintf("%s%d", prefix, s.derivedSeq)
	s.derivedSeq++
	return alias
}

func (s *SelectStatement) appendDerived(expression string, alias string, aggregation AggregationType, argument string, derived *[]string) *SelectItem {
	item := &SelectItem{
		Expression:  expression,
		Alias:       alias,
		Index:       -1,
		Aggregation: aggregation,
		Argument:    argument,
		Start:       -1,
		Stop:        -1,
	}
	if !s.HasStar() {
		item.Index = len(s.Items)
	}
	s.Items = append(s.Items, item)
	*derived = append(*derived, expression+" AS "+alias)
	return item
}

func (s *SelectStatement) deriveAggregations(derived *[]string) error {
	var distinctColumns []string
	for _, item := range s.AggregationItems() {
		switch {
		case item.Distinct:
			if item.Start < 0 || item.Stop < item.Start {
				return errors.Annotatef(ErrMissingTokenPosition, "aggregation '%s'", item.Expression)
			}
			if item.Alias == "" {
				item.Alias = s.nextDerivedAlias(distinctDerived)
			}
			s.AddToken(NewAggregationDistinctToken(item.Start, item.Stop, item.Argument, item.Alias))
			if !core.ContainsStringIgnoreCase(distinctColumns, item.Argument) {
				distinctColumns = append(distinctColumns, item.Argument)
			}
		case item.Aggregation == AggregationAvg:
			seq := s.derivedSeq
			s.derivedSeq++
			count := s.appendDerived(fmt.Sprintf("COUNT(%s)", item.Argument), fmt.Sprintf("%s%d", avgDerivedCount, seq), AggregationCount, item.Argument, derived)
			sum := s.appendDerived(fmt.Sprintf("SUM(%s)", item.Argument), fmt.Sprintf("%s%d", avgDerivedSum, seq), AggregationSum, item.Argument, derived)
			item.Derived = []*SelectItem{count, sum}
		}
	}

	if len(distinctColumns) == 0 {
		return nil
	}
	// shards return one row per distinct value, the merge counts them
	if len(s.GroupBy) > 0 {
		if s.GroupByStop < 0 {
			return errors.Annotatef(ErrMissingTokenPosition, "group by of '%s'", s.Text)
		}
		s.AddToken(NewGroupByItemsToken(s.GroupByStop+1, false, distinctColumns...))
		return nil
	}
	if s.ClauseInsert < 0 {
		return errors.Annotatef(ErrMissingTokenPosition, "group by clause of '%s'", s.Text)
	}
	s.AddToken(NewGroupByItemsToken(s.ClauseInsert, true, distinctColumns...))
	return nil
}

func (s *SelectStatement) findItem(o *OrderItem) *SelectItem {
	for _, item := range s.Items {
		if item.Star {
			continue
		}
		if item.Alias != "" && (strings.EqualFold(item.Alias, o.Column) || strings.EqualFold(item.Alias, o.Name())) {
			return item
		}
		if strings.EqualFold(item.Expression, o.Column) {
			return item
		}
		qualifiedBoth := strings.Contains(o.Column, ".") && strings.Contains(item.Expression, ".")
		if item.Alias == "" && !qualifiedBoth && strings.EqualFold(lastSegment(item.Expression), o.Name()) {
			return item
		}
	}
	return nil
}

func (s *SelectStatement) resolveOrderItem(o *OrderItem, prefix string, derived *[]string) {
	if item := s.findItem(o); item != nil {
		o.Index = item.Index
		o.Label = item.Label()
		return
	}
	if s.HasStar() {
		o.Index = -1
		o.Label = o.Name()
		return
	}
	item := s.appendDerived(o.Column, s.nextDerivedAlias(prefix), AggregationNone, "", derived)
	o.Index = item.Index
	o.Label = item.Alias
}

func lastSegment(expression string) string {
	if i := strings.LastIndex(expression, "."); i >= 0 {
		return expression[i+1:]
	}
	return expression
}

// ColumnCount is the number of columns returned to the client, derived columns excluded.
// It is -1 when the select list contains a star.
func (s *SelectStatement) ColumnCount() int {
	if s.HasStar() {
		return -1
	}
	n := 0
	for _, item := range s.Items {
		if !item.IsDerived() {
			n++
		}
	}
	return n
}
