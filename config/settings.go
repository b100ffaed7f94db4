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

// Settings is the raw shape of the configuration file, see Manager.ShardingRule for the built rule.
type Settings struct {
	DataSources        []string        `yaml:"data-sources"`
	DefaultDataSource  string          `yaml:"default-data-source"`
	DefaultRoutePolicy string          `yaml:"default-route-policy"`
	Rule               RuleSettings    `yaml:"rule"`
	Encrypt            EncryptSettings `yaml:"encrypt"`
}

type RuleSettings struct {
	Tables                  map[string]*TableSettings `yaml:"tables"`
	BindingTables           []string                  `yaml:"binding-tables"`
	BroadcastTables         []string                  `yaml:"broadcast-tables"`
	DefaultDatabaseStrategy *StrategySettings         `yaml:"default-database-strategy"`
	DefaultTableStrategy    *StrategySettings         `yaml:"default-table-strategy"`
}

type TableSettings struct {
	DataNodes        string                `yaml:"data-nodes"`
	DatabaseStrategy *StrategySettings     `yaml:"database-strategy"`
	TableStrategy    *StrategySettings     `yaml:"table-strategy"`
	KeyGenerator     *KeyGeneratorSettings `yaml:"key-generator"`
}

// StrategySettings holds exactly one of its members.
type StrategySettings struct {
	Inline   *InlineSettings    `yaml:"inline"`
	Standard *AlgorithmSettings `yaml:"standard"`
	Complex  *AlgorithmSettings `yaml:"complex"`
	Hint     *AlgorithmSettings `yaml:"hint"`
	None     *struct{}          `yaml:"none"`
}

type InlineSettings struct {
	ShardingColumn string `yaml:"sharding-column"`
	Expression     string `yaml:"expression"`
}

type AlgorithmSettings struct {
	ShardingColumn  string            `yaml:"sharding-column"`
	ShardingColumns string            `yaml:"sharding-columns"`
	Algorithm       string            `yaml:"algorithm"`
	Props           map[string]string `yaml:"props"`
}

type KeyGeneratorSettings struct {
	Column string            `yaml:"column"`
	Type   string            `yaml:"type"`
	Props  map[string]string `yaml:"props"`
}

type EncryptSettings struct {
	Encryptors map[string]*EncryptorSettings    `yaml:"encryptors"`
	Tables     map[string]*EncryptTableSettings `yaml:"tables"`
}

type EncryptorSettings struct {
	Type  string            `yaml:"type"`
	Props map[string]string `yaml:"props"`
}

type EncryptTableSettings struct {
	Columns map[string]*EncryptColumnSettings `yaml:"columns"`
}

type EncryptColumnSettings struct {
	Encryptor           string `yaml:"encryptor"`
	AssistedQueryColumn string `yaml:"assisted-query-column"`
}

func (s *StrategySettings) kinds() []string {
	var kinds []string
	if s.Inline != nil {
		kinds = append(kinds, "inline")
	}
	if s.Standard != nil {
		kinds = append(kinds, "standard")
	}
	if s.Complex != nil {
		kinds = append(kinds, "complex")
	}
	if s.Hint != nil {
		kinds = append(kinds, "hint")
	}
	if s.None != nil {
		kinds = append(kinds, "none")
	}
	return kinds
}
