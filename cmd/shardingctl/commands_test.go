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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
data-sources: [ds_0, ds_1]
default-data-source: ds_0
rule:
  tables:
    t_order:
      data-nodes: ds_${0..1}.t_order_${0..1}
      database-strategy:
        inline: { sharding-column: user_id, expression: "ds_${user_id % 2}" }
      table-strategy:
        standard: { sharding-column: order_id, algorithm: mod, props: { sharding-count: 2 } }
  broadcast-tables: [ t_config ]
`

func run(t *testing.T, args ...string) (string, error) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(file, []byte(testConfig), 0644))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", file}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestNodes(t *testing.T) {
	out, err := run(t, "nodes")
	require.Nil(t, err)
	assert.Contains(t, out, "data sources: ds_0, ds_1")
	assert.Contains(t, out, "broadcast tables: t_config")
	assert.Contains(t, out, "  ds_1: t_order_0, t_order_1")
}

func TestNodesOfUnknownTable(t *testing.T) {
	_, err := run(t, "nodes", "t_missing")
	assert.NotNil(t, err)
}

func TestRouteToSingleNode(t *testing.T) {
	out, err := run(t, "route", "t_order", "--where", "user_id=1", "--where", "order_id=2")
	require.Nil(t, err)
	assert.Equal(t, "engine: standard\nds_1: SELECT * FROM t_order_0\n", out)
}

func TestRouteInCondition(t *testing.T) {
	out, err := run(t, "route", "t_order", "-w", "user_id=1", "-w", "order_id=2,3",
		"--sql", "SELECT * FROM t_order WHERE user_id = 1")
	require.Nil(t, err)
	assert.Contains(t, out, "ds_1: SELECT * FROM t_order_0 WHERE user_id = 1")
	assert.Contains(t, out, "ds_1: SELECT * FROM t_order_1 WHERE user_id = 1")
	assert.NotContains(t, out, "ds_0")
}

func TestRouteInvalidCondition(t *testing.T) {
	_, err := run(t, "route", "t_order", "--where", "user_id")
	assert.NotNil(t, err)
}

func TestTableTokens(t *testing.T) {
	tokens := tableTokens("SELECT t_order_id FROM t_order WHERE x IN (SELECT 1 FROM T_ORDER)", "t_order")
	require.Len(t, tokens, 2)
	assert.Equal(t, 23, tokens[0].StartIndex())
}
