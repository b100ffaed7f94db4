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

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
)

// TableRule maps a logic table to its data nodes, it is immutable once created.
type TableRule struct {
	LogicTable        string
	DataNodes         []DataNode
	DatabaseStrategy  ShardingStrategy
	TableStrategy     ShardingStrategy
	GenerateKeyColumn string
	KeyGenerator      KeyGenerator

	dataSources []string
	tables      map[string][]string
}

type TableRuleOption func(r *TableRule)

// WithDatabaseStrategy sets the strategy for data sources, nil falls back to the default of the sharding rule.
func WithDatabaseStrategy(s ShardingStrategy) TableRuleOption {
	return func(r *TableRule) {
		r.DatabaseStrategy = s
	}
}

func WithTableStrategy(s ShardingStrategy) TableRuleOption {
	return func(r *TableRule) {
		r.TableStrategy = s
	}
}

func WithKeyGenerator(column string, generator KeyGenerator) TableRuleOption {
	return func(r *TableRule) {
		r.GenerateKeyColumn = strings.TrimSpace(column)
		r.KeyGenerator = generator
	}
}

func NewTableRule(logicTable string, dataNodes []DataNode, opts ...TableRuleOption) (*TableRule, error) {
	logic := strings.TrimSpace(logicTable)
	if logic == "" {
		return nil, core.NewConfigurationError("logic table name can not be empty")
	}
	if len(dataNodes) == 0 {
		return nil, errors.Annotatef(core.NewConfigurationError("table rule has no data node"), "logic table '%s'", logic)
	}

	r := &TableRule{
		LogicTable: logic,
		DataNodes:  make([]DataNode, 0, len(dataNodes)),
		tables:     make(map[string][]string),
	}
	for _, node := range dataNodes {
		if r.DataNodeIndex(node) >= 0 {
			return nil, errors.Annotatef(core.NewConfigurationError("duplicate data node"), "logic table '%s', data node '%s'", logic, node)
		}
		r.DataNodes = append(r.DataNodes, node)
		key := strings.ToLower(node.DataSourceName)
		if _, ok := r.tables[key]; !ok {
			r.dataSources = append(r.dataSources, node.DataSourceName)
		}
		r.tables[key] = append(r.tables[key], node.TableName)
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.GenerateKeyColumn != "" && r.KeyGenerator == nil {
		return nil, errors.Annotatef(core.NewConfigurationError("key generator is missing"), "logic table '%s', column '%s'", logic, r.GenerateKeyColumn)
	}
	return r, nil
}

// NewTableRuleFromExpression expands the data nodes from an inline expression.
func NewTableRuleFromExpression(logicTable string, dataNodes string, opts ...TableRuleOption) (*TableRule, error) {
	nodes, err := ParseDataNodes(dataNodes)
	if err != nil {
		return nil, err
	}
	return NewTableRule(logicTable, nodes, opts...)
}

// ActualDataSourceNames returns data sources in the order they first appear in the data nodes.
func (r *TableRule) ActualDataSourceNames() []string {
	return r.dataSources
}

func (r *TableRule) ActualTableNames(dataSource string) []string {
	return r.tables[strings.ToLower(dataSource)]
}

// ActualTableIndex returns the shard index of the actual table within the data source, -1 if absent.
func (r *TableRule) ActualTableIndex(dataSource string, actualTable string) int {
	for i, t := range r.ActualTableNames(dataSource) {
		if strings.EqualFold(t, actualTable) {
			return i
		}
	}
	return -1
}

func (r *TableRule) DataNodeIndex(node DataNode) int {
	for i, n := range r.DataNodes {
		if n.Equals(node) {
			return i
		}
	}
	return -1
}

func (r *TableRule) ContainsDataSource(dataSource string) bool {
	_, ok := r.tables[strings.ToLower(dataSource)]
	return ok
}

func (r *TableRule) ContainsActualTable(actualTable string) bool {
	for _, n := range r.DataNodes {
		if strings.EqualFold(n.TableName, actualTable) {
			return true
		}
	}
	return false
}

// IsGenerateKeyColumn reports whether the column is the generated key column.
func (r *TableRule) IsGenerateKeyColumn(column string) bool {
	return r.GenerateKeyColumn != "" && strings.EqualFold(r.GenerateKeyColumn, column)
}
