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
	"github.com/scylladb/go-set/strset"
	"go.uber.org/multierr"
)

// DefaultRoutePolicy decides where a statement goes when none of its tables is managed by the rule.
type DefaultRoutePolicy int

const (
	// RouteToDefaultDataSource uses the configured default data source.
	RouteToDefaultDataSource DefaultRoutePolicy = iota
	// RouteToFirstDataSource uses the first configured data source.
	RouteToFirstDataSource
	// RejectUnmanaged fails statements on tables unknown to the rule.
	RejectUnmanaged
)

var ErrUnmanagedTable = core.NewConfigurationError("table is not managed by the sharding rule")

func (p DefaultRoutePolicy) String() string {
	switch p {
	case RouteToDefaultDataSource:
		return "default-data-source"
	case RouteToFirstDataSource:
		return "first-data-source"
	case RejectUnmanaged:
		return "reject"
	}
	return "unknown"
}

func ParseDefaultRoutePolicy(text string) (DefaultRoutePolicy, error) {
	switch core.TrimAndLower(text) {
	case "", "default-data-source":
		return RouteToDefaultDataSource, nil
	case "first-data-source":
		return RouteToFirstDataSource, nil
	case "reject":
		return RejectUnmanaged, nil
	}
	return RejectUnmanaged, errors.Annotatef(core.NewConfigurationError("unknown default route policy"), "'%s'", text)
}

type ShardingRule struct {
	dataSourceNames         []string
	tableRules              map[string]*TableRule
	tableOrder              []string
	bindingGroups           []*BindingTableGroup
	broadcastTables         *strset.Set
	broadcastOrder          []string
	defaultDataSource       string
	defaultRoutePolicy      DefaultRoutePolicy
	defaultDatabaseStrategy ShardingStrategy
	defaultTableStrategy    ShardingStrategy
	encryptRule             *EncryptRule

	bindingNames [][]string
	errs         error
}

type RuleOption func(r *ShardingRule)

// WithBindingTables adds one binding group, the first table drives the group.
func WithBindingTables(logicTables ...string) RuleOption {
	return func(r *ShardingRule) {
		r.bindingNames = append(r.bindingNames, core.DistinctSliceAndTrim(logicTables))
	}
}

func WithBroadcastTables(logicTables ...string) RuleOption {
	return func(r *ShardingRule) {
		for _, t := range core.DistinctSliceAndTrim(logicTables) {
			if !r.broadcastTables.Has(strings.ToLower(t)) {
				r.broadcastTables.Add(strings.ToLower(t))
				r.broadcastOrder = append(r.broadcastOrder, t)
			}
		}
	}
}

func WithDefaultDataSource(name string) RuleOption {
	return func(r *ShardingRule) {
		r.defaultDataSource = strings.TrimSpace(name)
	}
}

func WithDefaultRoutePolicy(policy DefaultRoutePolicy) RuleOption {
	return func(r *ShardingRule) {
		r.defaultRoutePolicy = policy
	}
}

func WithDefaultDatabaseStrategy(s ShardingStrategy) RuleOption {
	return func(r *ShardingRule) {
		r.defaultDatabaseStrategy = s
	}
}

func WithDefaultTableStrategy(s ShardingStrategy) RuleOption {
	return func(r *ShardingRule) {
		r.defaultTableStrategy = s
	}
}

func WithEncryptRule(e *EncryptRule) RuleOption {
	return func(r *ShardingRule) {
		r.encryptRule = e
	}
}

// NewShardingRule validates the whole configuration and reports every problem found in one configuration error.
func NewShardingRule(dataSourceNames []string, tables []*TableRule, opts ...RuleOption) (*ShardingRule, error) {
	r := &ShardingRule{
		dataSourceNames:         core.DistinctSliceAndTrim(dataSourceNames),
		tableRules:              make(map[string]*TableRule, len(tables)),
		broadcastTables:         strset.New(),
		defaultDatabaseStrategy: NoneStrategy{},
		defaultTableStrategy:    NoneStrategy{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(r.dataSourceNames) == 0 {
		r.fail(errors.New("at least one data source is required"))
	}
	dsSet := strset.New()
	for _, ds := range r.dataSourceNames {
		dsSet.Add(strings.ToLower(ds))
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		key := strings.ToLower(t.LogicTable)
		if _, ok := r.tableRules[key]; ok {
			r.fail(errors.Errorf("duplicate table rule '%s'", t.LogicTable))
			continue
		}
		for _, ds := range t.ActualDataSourceNames() {
			if !dsSet.Has(strings.ToLower(ds)) {
				r.fail(errors.Errorf("table '%s' uses unknown data source '%s'", t.LogicTable, ds))
			}
		}
		if r.broadcastTables.Has(key) {
			r.fail(errors.Errorf("table '%s' can not be both sharding table and broadcast table", t.LogicTable))
		}
		r.tableRules[key] = t
		r.tableOrder = append(r.tableOrder, key)
	}

	r.buildBindingGroups()

	if r.defaultDataSource != "" && !dsSet.Has(strings.ToLower(r.defaultDataSource)) {
		r.fail(errors.Errorf("default data source '%s' is not configured", r.defaultDataSource))
	}
	if r.defaultDatabaseStrategy == nil {
		r.defaultDatabaseStrategy = NoneStrategy{}
	}
	if r.defaultTableStrategy == nil {
		r.defaultTableStrategy = NoneStrategy{}
	}

	if r.errs != nil {
		return nil, errors.Annotate(core.NewConfigurationError(r.errs.Error()), "invalid sharding rule")
	}
	return r, nil
}

func (r *ShardingRule) fail(err error) {
	r.errs = multierr.Append(r.errs, err)
}

func (r *ShardingRule) buildBindingGroups() {
	bound := strset.New()
	for _, names := range r.bindingNames {
		if len(names) == 0 {
			continue
		}
		rules := make([]*TableRule, 0, len(names))
		for _, name := range names {
			tr, ok := r.TableRule(name)
			if !ok {
				r.fail(errors.Errorf("binding table '%s' has no table rule", name))
				continue
			}
			if bound.Has(strings.ToLower(name)) {
				r.fail(errors.Errorf("table '%s' belongs to more than one binding group", name))
				continue
			}
			bound.Add(strings.ToLower(name))
			rules = append(rules, tr)
		}
		if len(rules) != len(names) {
			continue
		}
		g, err := NewBindingTableGroup(rules...)
		if err != nil {
			r.fail(err)
			continue
		}
		r.bindingGroups = append(r.bindingGroups, g)
	}
}

func (r *ShardingRule) DataSourceNames() []string {
	return r.dataSourceNames
}

func (r *ShardingRule) TableRule(logicTable string) (*TableRule, bool) {
	t, ok := r.tableRules[strings.ToLower(strings.TrimSpace(logicTable))]
	return t, ok
}

func (r *ShardingRule) TableRules() []*TableRule {
	list := make([]*TableRule, len(r.tableOrder))
	for i, key := range r.tableOrder {
		list[i] = r.tableRules[key]
	}
	return list
}

func (r *ShardingRule) BindingGroups() []*BindingTableGroup {
	return r.bindingGroups
}

func (r *ShardingRule) BroadcastTables() []string {
	return r.broadcastOrder
}

func (r *ShardingRule) DefaultDataSource() string {
	return r.defaultDataSource
}

func (r *ShardingRule) DefaultRoutePolicy() DefaultRoutePolicy {
	return r.defaultRoutePolicy
}

func (r *ShardingRule) EncryptRule() *EncryptRule {
	return r.encryptRule
}

func (r *ShardingRule) IsShardingTable(logicTable string) bool {
	_, ok := r.TableRule(logicTable)
	return ok
}

func (r *ShardingRule) IsBroadcastTable(logicTable string) bool {
	return r.broadcastTables.Has(strings.ToLower(strings.TrimSpace(logicTable)))
}

// IsAllBroadcastTables is false for an empty list.
func (r *ShardingRule) IsAllBroadcastTables(logicTables []string) bool {
	if len(logicTables) == 0 {
		return false
	}
	for _, t := range logicTables {
		if !r.IsBroadcastTable(t) {
			return false
		}
	}
	return true
}

// IsManagedTable reports whether the rule knows the table as sharding or broadcast table.
func (r *ShardingRule) IsManagedTable(logicTable string) bool {
	return r.IsShardingTable(logicTable) || r.IsBroadcastTable(logicTable)
}

func (r *ShardingRule) BindingGroup(logicTable string) (*BindingTableGroup, bool) {
	for _, g := range r.bindingGroups {
		if g.Contains(logicTable) {
			return g, true
		}
	}
	return nil, false
}

// IsAllBindingTables reports whether every table is in one and the same binding group.
func (r *ShardingRule) IsAllBindingTables(logicTables []string) bool {
	if len(logicTables) == 0 {
		return false
	}
	g, ok := r.BindingGroup(logicTables[0])
	if !ok {
		return false
	}
	for _, t := range logicTables[1:] {
		if !g.Contains(t) {
			return false
		}
	}
	return true
}

// DatabaseStrategy returns the strategy of the table or the default one.
func (r *ShardingRule) DatabaseStrategy(t *TableRule) ShardingStrategy {
	if t != nil && t.DatabaseStrategy != nil {
		return t.DatabaseStrategy
	}
	return r.defaultDatabaseStrategy
}

func (r *ShardingRule) TableStrategy(t *TableRule) ShardingStrategy {
	if t != nil && t.TableStrategy != nil {
		return t.TableStrategy
	}
	return r.defaultTableStrategy
}

// IsShardingColumn reports whether the column is used by the database or table strategy of the table.
func (r *ShardingRule) IsShardingColumn(column string, logicTable string) bool {
	t, ok := r.TableRule(logicTable)
	if !ok {
		return false
	}
	return core.ContainsStringIgnoreCase(r.DatabaseStrategy(t).ShardingColumns(), column) ||
		core.ContainsStringIgnoreCase(r.TableStrategy(t).ShardingColumns(), column)
}

// GenerateKeyColumn returns the generated key column of the table if any.
func (r *ShardingRule) GenerateKeyColumn(logicTable string) (string, bool) {
	t, ok := r.TableRule(logicTable)
	if !ok || t.GenerateKeyColumn == "" {
		return "", false
	}
	return t.GenerateKeyColumn, true
}

func (r *ShardingRule) GenerateKey(logicTable string) (interface{}, error) {
	t, ok := r.TableRule(logicTable)
	if !ok || t.KeyGenerator == nil {
		return nil, errors.Annotatef(core.NewConfigurationError("table has no key generator"), "logic table '%s'", logicTable)
	}
	return t.KeyGenerator.NextKey()
}

// FindDataSourceForUnmanaged applies the default route policy.
func (r *ShardingRule) FindDataSourceForUnmanaged(logicTables []string) (string, error) {
	switch r.defaultRoutePolicy {
	case RouteToDefaultDataSource:
		if r.defaultDataSource != "" {
			return r.defaultDataSource, nil
		}
	case RouteToFirstDataSource:
		if len(r.dataSourceNames) > 0 {
			return r.dataSourceNames[0], nil
		}
	}
	return "", errors.Annotatef(ErrUnmanagedTable, "tables [%s], default route policy: %s", strings.Join(logicTables, ", "), r.defaultRoutePolicy)
}
