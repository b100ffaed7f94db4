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

var ErrBindingTableNotFound = core.NewConsistencyError("binding actual table can not be found")

// BindingTableGroup holds logic tables that shard identically, the first table drives the group.
type BindingTableGroup struct {
	rules []*TableRule
}

// NewBindingTableGroup validates that every member has the data sources of the first member
// and the same count of actual tables per data source.
func NewBindingTableGroup(rules ...*TableRule) (*BindingTableGroup, error) {
	if len(rules) == 0 {
		return nil, core.NewConfigurationError("binding table group can not be empty")
	}
	first := rules[0]
	for _, r := range rules[1:] {
		if len(r.ActualDataSourceNames()) != len(first.ActualDataSourceNames()) {
			return nil, incongruent(first, r)
		}
		for _, ds := range first.ActualDataSourceNames() {
			if !r.ContainsDataSource(ds) || len(r.ActualTableNames(ds)) != len(first.ActualTableNames(ds)) {
				return nil, incongruent(first, r)
			}
		}
	}
	return &BindingTableGroup{rules: rules}, nil
}

func incongruent(first *TableRule, other *TableRule) error {
	return errors.Annotatef(core.NewConfigurationError("binding tables must have congruent data nodes"),
		"'%s' and '%s' have different data sources or different table counts per data source", first.LogicTable, other.LogicTable)
}

func (g *BindingTableGroup) LogicTables() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.LogicTable
	}
	return names
}

func (g *BindingTableGroup) Contains(logicTable string) bool {
	return g.rule(logicTable) != nil
}

func (g *BindingTableGroup) rule(logicTable string) *TableRule {
	for _, r := range g.rules {
		if strings.EqualFold(r.LogicTable, logicTable) {
			return r
		}
	}
	return nil
}

// BindingActualTable returns the actual table of logicTable that has the shard index of otherActual in otherLogic.
func (g *BindingTableGroup) BindingActualTable(dataSource string, logicTable string, otherLogic string, otherActual string) (string, error) {
	target := g.rule(logicTable)
	other := g.rule(otherLogic)
	if target == nil || other == nil {
		return "", errors.Annotatef(ErrBindingTableNotFound, "'%s' and '%s' are not in the same binding group", logicTable, otherLogic)
	}
	index := other.ActualTableIndex(dataSource, otherActual)
	tables := target.ActualTableNames(dataSource)
	if index < 0 || index >= len(tables) {
		return "", errors.Annotatef(ErrBindingTableNotFound, "data source '%s', table '%s' bound to '%s'", dataSource, logicTable, otherActual)
	}
	return tables[index], nil
}
