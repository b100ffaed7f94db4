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

package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
	"go.uber.org/config"
	"go.uber.org/multierr"
)

// Manager exposes the loaded settings and the sharding rule built from them.
type Manager interface {
	GetSettings() *Settings
	// ShardingRule builds the rule on first call, later calls return the same rule or error.
	ShardingRule() (*rule.ShardingRule, error)
}

type cnfManager struct {
	yaml     *config.YAML
	settings *Settings

	once sync.Once
	rule *rule.ShardingRule
	err  error
}

func (m *cnfManager) GetSettings() *Settings {
	return m.settings
}

func (m *cnfManager) ShardingRule() (*rule.ShardingRule, error) {
	m.once.Do(func() {
		m.rule, m.err = m.buildRule()
	})
	return m.rule, m.err
}

func (m *cnfManager) value(path ...string) *config.Value {
	v := m.yaml.Get(strings.Join(path, "."))
	return &v
}

func (m *cnfManager) properties(path ...string) (core.Properties, error) {
	return core.NewProperties(m.value(path...))
}

func sortedKeys(size int, each func(add func(string))) []string {
	keys := make([]string, 0, size)
	each(func(k string) {
		keys = append(keys, k)
	})
	sort.Strings(keys)
	return keys
}

func (m *cnfManager) buildRule() (*rule.ShardingRule, error) {
	s := m.settings
	var errs error

	tableNames := sortedKeys(len(s.Rule.Tables), func(add func(string)) {
		for k := range s.Rule.Tables {
			add(k)
		}
	})
	tables := make([]*rule.TableRule, 0, len(tableNames))
	for _, name := range tableNames {
		t, err := m.buildTable(name, s.Rule.Tables[name])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		tables = append(tables, t)
	}

	policy, err := rule.ParseDefaultRoutePolicy(s.DefaultRoutePolicy)
	errs = multierr.Append(errs, err)

	opts := []rule.RuleOption{
		rule.WithDefaultDataSource(s.DefaultDataSource),
		rule.WithDefaultRoutePolicy(policy),
		rule.WithBroadcastTables(s.Rule.BroadcastTables...),
	}
	for _, group := range s.Rule.BindingTables {
		opts = append(opts, rule.WithBindingTables(strings.Split(group, ",")...))
	}

	dbStrategy, err := m.buildStrategy(s.Rule.DefaultDatabaseStrategy, "rule", "default-database-strategy")
	errs = multierr.Append(errs, err)
	tableStrategy, err := m.buildStrategy(s.Rule.DefaultTableStrategy, "rule", "default-table-strategy")
	errs = multierr.Append(errs, err)
	opts = append(opts, rule.WithDefaultDatabaseStrategy(dbStrategy), rule.WithDefaultTableStrategy(tableStrategy))

	encrypt, err := m.buildEncryptRule()
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if encrypt != nil {
		opts = append(opts, rule.WithEncryptRule(encrypt))
	}

	if errs != nil {
		return nil, errors.Annotate(core.NewConfigurationError(formatErrors(errs)), "invalid configuration")
	}
	return rule.NewShardingRule(s.DataSources, tables, opts...)
}

func formatErrors(err error) string {
	sb := core.NewStringBuilder()
	for _, e := range multierr.Errors(err) {
		sb.WriteLine(e.Error())
	}
	return strings.TrimSpace(sb.String())
}

func (m *cnfManager) buildTable(name string, settings *TableSettings) (*rule.TableRule, error) {
	if settings == nil {
		return nil, errors.Errorf("table '%s' has no settings", name)
	}
	base := []string{"rule", "tables", name}
	var opts []rule.TableRuleOption

	dbStrategy, err := m.buildStrategy(settings.DatabaseStrategy, append(base, "database-strategy")...)
	if err != nil {
		return nil, errors.Annotatef(err, "table '%s'", name)
	}
	if dbStrategy != nil {
		opts = append(opts, rule.WithDatabaseStrategy(dbStrategy))
	}
	tableStrategy, err := m.buildStrategy(settings.TableStrategy, append(base, "table-strategy")...)
	if err != nil {
		return nil, errors.Annotatef(err, "table '%s'", name)
	}
	if tableStrategy != nil {
		opts = append(opts, rule.WithTableStrategy(tableStrategy))
	}

	if kg := settings.KeyGenerator; kg != nil {
		props, err := m.properties(append(base, "key-generator", "props")...)
		if err != nil {
			return nil, errors.Annotatef(err, "key generator of table '%s'", name)
		}
		generator, err := rule.NewKeyGenerator(core.TrimAndLower(kg.Type), props)
		if err != nil {
			return nil, errors.Annotatef(err, "key generator of table '%s'", name)
		}
		opts = append(opts, rule.WithKeyGenerator(kg.Column, generator))
	}

	nodes := settings.DataNodes
	if strings.TrimSpace(nodes) == "" {
		// a table without data nodes lives in every data source under its logic name
		nodes = strings.Join(m.settings.DataSources, "."+name+",") + "." + name
	}
	return rule.NewTableRuleFromExpression(name, nodes, opts...)
}

// buildStrategy returns nil when the settings are absent so the default of the rule applies.
func (m *cnfManager) buildStrategy(settings *StrategySettings, path ...string) (rule.ShardingStrategy, error) {
	if settings == nil {
		return nil, nil
	}
	kinds := settings.kinds()
	if len(kinds) != 1 {
		return nil, errors.Errorf("'%s' requires exactly one of inline, standard, complex, hint or none, got [%s]",
			strings.Join(path, "."), strings.Join(kinds, ", "))
	}

	switch {
	case settings.None != nil:
		return rule.NoneStrategy{}, nil
	case settings.Inline != nil:
		columns := core.DistinctSliceAndTrim(strings.Split(settings.Inline.ShardingColumn, ","))
		algorithm, err := rule.NewShardingAlgorithm("inline", core.NewPropertiesFromMap(map[string]string{
			"sharding-columns": strings.Join(columns, ","),
			"expression":       settings.Inline.Expression,
		}))
		if err != nil {
			return nil, errors.Annotatef(err, "'%s'", strings.Join(path, "."))
		}
		if len(columns) > 1 {
			return rule.NewComplexStrategy(columns, algorithm)
		}
		return rule.NewStandardStrategy(settings.Inline.ShardingColumn, algorithm)
	case settings.Standard != nil:
		algorithm, err := m.buildAlgorithm(settings.Standard, nil, append(path, "standard")...)
		if err != nil {
			return nil, err
		}
		return rule.NewStandardStrategy(settings.Standard.ShardingColumn, algorithm)
	case settings.Complex != nil:
		columns := core.DistinctSliceAndTrim(strings.Split(core.IfBlankAndTrim(settings.Complex.ShardingColumns, settings.Complex.ShardingColumn), ","))
		algorithm, err := m.buildAlgorithm(settings.Complex, columns, append(path, "complex")...)
		if err != nil {
			return nil, err
		}
		return rule.NewComplexStrategy(columns, algorithm)
	default:
		algorithm, err := m.buildAlgorithm(settings.Hint, nil, append(path, "hint")...)
		if err != nil {
			return nil, err
		}
		return rule.NewHintStrategy(algorithm)
	}
}

// buildAlgorithm passes the strategy columns to the algorithm unless its props name them.
func (m *cnfManager) buildAlgorithm(settings *AlgorithmSettings, columns []string, path ...string) (rule.ShardingAlgorithm, error) {
	name := core.TrimAndLower(settings.Algorithm)
	if name == "" {
		return nil, errors.Errorf("'%s' has no algorithm", strings.Join(path, "."))
	}
	props, err := m.properties(append(path, "props")...)
	if err != nil {
		return nil, errors.Annotatef(err, "'%s'", strings.Join(path, "."))
	}
	if len(columns) > 0 && props.GetString("sharding-columns", "") == "" {
		values := make(map[string]string, len(props.GetValues())+1)
		for k, v := range props.GetValues() {
			values[k] = v
		}
		values["sharding-columns"] = strings.Join(columns, ",")
		props = core.NewPropertiesFromMap(values)
	}
	algorithm, err := rule.NewShardingAlgorithm(name, props)
	if err != nil {
		return nil, errors.Annotatef(err, "'%s'", strings.Join(path, "."))
	}
	return algorithm, nil
}

func (m *cnfManager) buildEncryptRule() (*rule.EncryptRule, error) {
	s := m.settings.Encrypt
	if len(s.Tables) == 0 {
		return nil, nil
	}

	encryptors := make(map[string]rule.Encryptor, len(s.Encryptors))
	var errs error
	for name, e := range s.Encryptors {
		if e == nil {
			errs = multierr.Append(errs, errors.Errorf("encryptor '%s' has no settings", name))
			continue
		}
		props, err := m.properties("encrypt", "encryptors", name, "props")
		if err == nil {
			encryptors[name], err = rule.NewEncryptor(core.TrimAndLower(e.Type), props)
		}
		if err != nil {
			errs = multierr.Append(errs, errors.Annotatef(err, "encryptor '%s'", name))
		}
	}

	er := rule.NewEncryptRule()
	tables := sortedKeys(len(s.Tables), func(add func(string)) {
		for k := range s.Tables {
			add(k)
		}
	})
	for _, table := range tables {
		t := s.Tables[table]
		if t == nil {
			continue
		}
		columns := sortedKeys(len(t.Columns), func(add func(string)) {
			for k := range t.Columns {
				add(k)
			}
		})
		for _, column := range columns {
			c := t.Columns[column]
			if c == nil {
				continue
			}
			encryptor, ok := encryptors[c.Encryptor]
			if !ok {
				errs = multierr.Append(errs, errors.Errorf("column '%s.%s' uses unknown encryptor '%s'", table, column, c.Encryptor))
				continue
			}
			errs = multierr.Append(errs, er.AddColumn(&rule.EncryptColumn{
				Table:               table,
				Column:              column,
				AssistedQueryColumn: strings.TrimSpace(c.AssistedQueryColumn),
				Encryptor:           encryptor,
			}))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return er, nil
}
