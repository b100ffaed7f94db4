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
	"strings"
	"testing"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	_ "github.com/endink/go-sharding-core/driver"
	"github.com/endink/go-sharding-core/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
)

const TestYAML = `
data-sources: [ds_0, ds_1]
default-data-source: ds_1
default-route-policy: first-data-source

rule:
  tables:
    t_order:
      data-nodes: ds_${0..1}.t_order_${0..1}
      database-strategy:
        inline:
          sharding-column: user_id
          expression: ds_${user_id % 2}
      table-strategy:
        standard:
          sharding-column: order_id
          algorithm: mod
          props:
            sharding-count: 2
      key-generator:
        column: order_id
        type: snowflake
        props:
          worker-id: 1
    t_order_item:
      data-nodes: ds_${0..1}.t_order_item_${0..1}
      database-strategy:
        inline:
          sharding-column: user_id
          expression: ds_${user_id % 2}
      table-strategy:
        inline:
          sharding-column: order_id
          expression: t_order_item_${order_id % 2}
    t_product:
      database-strategy:
        none: {}
  binding-tables: [ "t_order, t_order_item" ]
  broadcast-tables: [ t_config ]
  default-database-strategy:
    none: {}

encrypt:
  encryptors:
    aes_enc:
      type: aes
      props:
        aes-key-value: "123456"
    md5_enc:
      type: md5
  tables:
    t_user:
      columns:
        pwd:
          encryptor: aes_enc
          assisted-query-column: pwd_assisted
        mobile:
          encryptor: md5_enc
`

func newTestManager(yamlContent string, t *testing.T) Manager {
	r := strings.NewReader(yamlContent)
	opt := config.Source(r)
	permissive := config.Permissive()
	yml, err := config.NewYAML(opt, permissive)
	assert.Nil(t, err, "yml bad format")

	m, err := NewManagerFromYAML(yml)
	assert.Nil(t, err, "create config manager fault")
	return m
}

func mustRule(t *testing.T, yamlContent string) *rule.ShardingRule {
	m := newTestManager(yamlContent, t)
	r, err := m.ShardingRule()
	require.Nil(t, err)
	return r
}

func TestNewManager(t *testing.T) {
	newTestManager(TestYAML, t)
}

func TestLoadSettings(t *testing.T) {
	m := newTestManager(TestYAML, t)
	settings := m.GetSettings()

	assert.Equal(t, 2, len(settings.DataSources))
	assert.Equal(t, "ds_1", settings.DefaultDataSource)
	assert.Equal(t, 3, len(settings.Rule.Tables))
	assert.Equal(t, "2", settings.Rule.Tables["t_order"].TableStrategy.Standard.Props["sharding-count"])
	assert.NotNil(t, settings.Rule.Tables["t_product"].DatabaseStrategy.None)
	assert.Equal(t, "pwd_assisted", settings.Encrypt.Tables["t_user"].Columns["pwd"].AssistedQueryColumn)
}

func TestBuildShardingRule(t *testing.T) {
	r := mustRule(t, TestYAML)

	assert.Equal(t, []string{"ds_0", "ds_1"}, r.DataSourceNames())
	assert.Equal(t, "ds_1", r.DefaultDataSource())
	assert.Equal(t, rule.RouteToFirstDataSource, r.DefaultRoutePolicy())
	assert.True(t, r.IsBroadcastTable("t_config"))
	assert.True(t, r.IsAllBindingTables([]string{"t_order", "t_order_item"}))

	order, ok := r.TableRule("t_order")
	require.True(t, ok)
	assert.Equal(t, 4, len(order.DataNodes))
	assert.Equal(t, "order_id", order.GenerateKeyColumn)
	require.NotNil(t, order.KeyGenerator)
	assert.Equal(t, "snowflake", core.TrimAndLower(order.KeyGenerator.Type()))

	dbs, err := order.DatabaseStrategy.DoSharding(order.ActualDataSourceNames(), []condition.RouteValue{
		condition.NewListRouteValue("t_order", "user_id", 3),
	})
	require.Nil(t, err)
	assert.Equal(t, []string{"ds_1"}, dbs)

	tables, err := order.TableStrategy.DoSharding(order.ActualTableNames("ds_1"), []condition.RouteValue{
		condition.NewListRouteValue("t_order", "order_id", 10, 11),
	})
	require.Nil(t, err)
	assert.Equal(t, []string{"t_order_0", "t_order_1"}, tables)

	product, ok := r.TableRule("t_product")
	require.True(t, ok)
	assert.Equal(t, []string{"ds_0", "ds_1"}, product.ActualDataSourceNames())
	assert.Equal(t, []string{"t_product"}, product.ActualTableNames("ds_0"))
}

func TestBuildEncryptRule(t *testing.T) {
	r := mustRule(t, TestYAML)

	pwd, ok := r.EncryptRule().FindColumn("t_user", "pwd")
	require.True(t, ok)
	assert.Equal(t, "pwd_assisted", pwd.QueryColumn())

	mobile, ok := r.EncryptRule().FindColumn("T_USER", "MOBILE")
	require.True(t, ok)
	assert.Equal(t, "mobile", mobile.QueryColumn())
}

func TestShardingRuleIsBuiltOnce(t *testing.T) {
	m := newTestManager(TestYAML, t)
	first, err := m.ShardingRule()
	require.Nil(t, err)
	second, err := m.ShardingRule()
	require.Nil(t, err)
	assert.Same(t, first, second)
}

func TestNewManagerFromString(t *testing.T) {
	m, err := NewManagerFromString(`
data-sources: [ds_0]
rule:
  broadcast-tables: [t_dict]
`)
	require.Nil(t, err)
	r, err := m.ShardingRule()
	require.Nil(t, err)
	assert.Equal(t, rule.RouteToDefaultDataSource, r.DefaultRoutePolicy())
	assert.True(t, r.IsBroadcastTable("t_dict"))
	assert.Nil(t, r.EncryptRule())
}

func TestInvalidConfiguration(t *testing.T) {
	cases := map[string]string{
		"two strategies": `
data-sources: [ds_0]
rule:
  tables:
    t_order:
      data-nodes: ds_0.t_order_${0..1}
      table-strategy:
        none: {}
        inline: { sharding-column: order_id, expression: "t_order_${order_id % 2}" }
`,
		"unknown algorithm": `
data-sources: [ds_0]
rule:
  tables:
    t_order:
      data-nodes: ds_0.t_order_${0..1}
      table-strategy:
        standard: { sharding-column: order_id, algorithm: no-such-algorithm }
`,
		"unknown encryptor": `
data-sources: [ds_0]
encrypt:
  tables:
    t_user:
      columns:
        pwd: { encryptor: missing }
`,
		"unknown route policy": `
data-sources: [ds_0]
default-route-policy: somewhere
`,
		"unknown data source": `
data-sources: [ds_0]
rule:
  tables:
    t_order:
      data-nodes: ds_9.t_order
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := NewManagerFromString(content)
			require.Nil(t, err)
			_, err = m.ShardingRule()
			assert.NotNil(t, err)
			assert.True(t, core.IsConfigurationError(err), "%v", err)
		})
	}
}

func TestDefaultConfigFileLocations(t *testing.T) {
	files := DefaultConfigFileLocations()
	assert.NotEmpty(t, files)
	assert.True(t, strings.HasSuffix(files[len(files)-1], "config.yaml"))
}
