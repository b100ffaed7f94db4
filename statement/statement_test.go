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
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	assert.True(t, KindInsert.IsWrite())
	assert.False(t, KindSelect.IsWrite())
	assert.True(t, KindSelect.IsDML())
	assert.False(t, KindDDL.IsDML())
	assert.Equal(t, "tcl", KindTCL.String())
}

func TestPrepareAvg(t *testing.T) {
	sql := "SELECT user_id, AVG(price) FROM t_order GROUP BY user_id"
	s := NewSelect(sql, "t_order")
	avg := NewAggregationItem(AggregationAvg, "price", false, "", 16, 25)
	s.Items = []*SelectItem{NewColumnItem("user_id", ""), avg}
	s.GroupBy = []*OrderItem{NewOrderItem("user_id", Asc)}
	s.ItemsStop = 25
	s.GroupByStop = len(sql) - 1

	require.Nil(t, s.Prepare())
	require.Len(t, avg.Derived, 2)
	assert.Equal(t, "AVG_DERIVED_COUNT_0", avg.Derived[0].Alias)
	assert.Equal(t, 2, avg.Derived[0].Index)
	assert.Equal(t, 3, avg.Derived[1].Index)
	assert.Equal(t, 0, s.GroupBy[0].Index)
	assert.Equal(t, 2, s.ColumnCount())

	require.Len(t, s.OrderBy, 1)
	assert.True(t, s.IsSameGroupByAndOrderBy())
	assert.False(t, s.NeedsAllRows())

	tokens := s.Tokens()
	require.Len(t, tokens, 2)
	items := tokens[0].(*SelectItemsToken)
	assert.Equal(t, 26, items.StartIndex())
	assert.Equal(t, []string{"COUNT(price) AS AVG_DERIVED_COUNT_0", "SUM(price) AS AVG_DERIVED_SUM_0"}, items.Items)
	orderBy := tokens[1].(*OrderByToken)
	assert.Equal(t, len(sql), orderBy.StartIndex())
	assert.Equal(t, []string{"user_id ASC"}, orderBy.Items)

	require.Nil(t, s.Prepare())
	assert.Len(t, s.Tokens(), 2)
	assert.Len(t, s.AggregationItems(), 1)
}

func TestPrepareOrderByDerived(t *testing.T) {
	s := NewSelect("SELECT order_id FROM t_order ORDER BY o.user_id DESC, order_id", "t_order")
	s.Items = []*SelectItem{NewColumnItem("order_id", "")}
	s.OrderBy = []*OrderItem{NewOrderItem("o.user_id", Desc), NewOrderItem("order_id", Asc)}
	s.ItemsStop = 14

	require.Nil(t, s.Prepare())
	assert.Equal(t, 1, s.OrderBy[0].Index)
	assert.True(t, strings.HasPrefix(s.OrderBy[0].Label, "ORDER_BY_DERIVED_"))
	assert.Equal(t, 0, s.OrderBy[1].Index)
	assert.Equal(t, 1, s.ColumnCount())
	assert.Equal(t, []string{"o.user_id AS ORDER_BY_DERIVED_0"}, s.Tokens()[0].(*SelectItemsToken).Items)
}

func TestPrepareStar(t *testing.T) {
	s := NewSelect("SELECT * FROM t_order ORDER BY user_id", "t_order")
	s.Items = []*SelectItem{NewStarItem()}
	s.OrderBy = []*OrderItem{NewOrderItem("user_id", Asc)}
	s.ItemsStop = 7

	require.Nil(t, s.Prepare())
	assert.Equal(t, -1, s.OrderBy[0].Index)
	assert.Equal(t, "user_id", s.OrderBy[0].Label)
	assert.Empty(t, s.Tokens())
	assert.Equal(t, -1, s.ColumnCount())
}

func TestPrepareAggregationDistinct(t *testing.T) {
	sql := "SELECT COUNT(DISTINCT order_id) FROM t_order"
	s := NewSelect(sql, "t_order")
	s.Items = []*SelectItem{NewAggregationItem(AggregationCount, "order_id", true, "", 7, 30)}
	s.ItemsStop = 30
	s.ClauseInsert = len(sql)

	require.Nil(t, s.Prepare())
	assert.True(t, s.HasAggregationDistinct())
	assert.True(t, s.NeedsAllRows())
	tokens := s.Tokens()
	require.Len(t, tokens, 2)
	d := tokens[0].(*AggregationDistinctToken)
	assert.Equal(t, "order_id", d.Column)
	assert.Equal(t, "AGGREGATION_DISTINCT_DERIVED_0", d.Alias)
	g := tokens[1].(*GroupByItemsToken)
	assert.True(t, g.NewClause)
	assert.Equal(t, []string{"order_id"}, g.Items)
}

func TestPrepareMissingPosition(t *testing.T) {
	s := NewSelect("SELECT AVG(price) FROM t_order", "t_order")
	s.Items = []*SelectItem{NewAggregationItem(AggregationAvg, "price", false, "", 7, 16)}
	err := s.Prepare()
	assert.True(t, core.IsConsistencyError(err))

	items := len(s.Items)
	assert.Equal(t, err, s.Prepare())
	assert.Len(t, s.Items, items)
}

func TestPrepareConcurrently(t *testing.T) {
	sql := "SELECT user_id, AVG(price) FROM t_order GROUP BY user_id"
	s := NewSelect(sql, "t_order")
	s.Items = []*SelectItem{NewColumnItem("user_id", ""), NewAggregationItem(AggregationAvg, "price", false, "", 16, 25)}
	s.GroupBy = []*OrderItem{NewOrderItem("user_id", Asc)}
	s.ItemsStop = 25
	s.GroupByStop = len(sql) - 1

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Nil(t, s.Prepare())
		}()
	}
	wg.Wait()
	assert.Len(t, s.Tokens(), 2)
	assert.Len(t, s.OrderBy, 1)
	assert.Len(t, s.Items[1].Derived, 2)
}

func TestPagination(t *testing.T) {
	s := NewSelect("SELECT * FROM t_order LIMIT ?, ?", "t_order")
	p := &Pagination{Offset: ParamValue(0), RowCount: ParamValue(1)}
	s.Pagination = p

	params := []interface{}{2, int64(3)}
	offset, err := p.ActualOffset(params)
	require.Nil(t, err)
	assert.Equal(t, int64(2), offset)
	rc, ok, err := p.ActualRowCount(params)
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), rc)

	revised, err := p.RevisedRowCount(s, params)
	require.Nil(t, err)
	assert.Equal(t, int64(5), revised)
	assert.Equal(t, int64(0), p.RevisedOffset())

	_, err = p.ActualOffset([]interface{}{"x"})
	assert.True(t, core.IsDataError(err))
	_, err = p.ActualOffset([]interface{}{-1})
	assert.True(t, core.IsDataError(err))
	_, err = p.ActualOffset(nil)
	assert.True(t, core.IsDataError(err))
}

func TestRowNumberPagination(t *testing.T) {
	p := &Pagination{Offset: LiteralValue(2, -1, -1), RowCount: LiteralValue(5, -1, -1), RowNumber: true, RowCountInclusive: true}
	revised, err := p.RevisedRowCount(nil, nil)
	require.Nil(t, err)
	assert.Equal(t, int64(5), revised)
}

func TestPaginationMaxRowCount(t *testing.T) {
	s := NewSelect("SELECT user_id, COUNT(*) FROM t_order GROUP BY user_id ORDER BY COUNT(*) LIMIT 1", "t_order")
	s.GroupBy = []*OrderItem{NewOrderItem("user_id", Asc)}
	s.OrderBy = []*OrderItem{NewOrderItem("COUNT(*)", Asc)}
	s.Pagination = &Pagination{RowCount: LiteralValue(1, -1, -1)}
	revised, err := s.Pagination.RevisedRowCount(s, nil)
	require.Nil(t, err)
	assert.Equal(t, int64(math.MaxInt32), revised)
}

func TestInsert(t *testing.T) {
	s := NewInsert("INSERT INTO t_order (user_id, status) VALUES (?, ?)", "t_order", "user_id", "status")
	s.AddValues(condition.ParamMarker{Index: 0}, condition.ParamMarker{Index: 1})
	assert.Equal(t, 1, s.ColumnIndex("STATUS"))
	assert.Equal(t, -1, s.ColumnIndex("order_id"))
	assert.Equal(t, []string{"t_order"}, s.Tables())
	assert.Equal(t, KindInsert, s.Kind())
}
