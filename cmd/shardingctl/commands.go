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
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/config"
	"github.com/endink/go-sharding-core/core"
	_ "github.com/endink/go-sharding-core/driver"
	"github.com/endink/go-sharding-core/routing"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/sharding"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
}

func (o *options) loadRule() (*rule.ShardingRule, error) {
	var m config.Manager
	var err error
	if o.configFile == "" {
		m, err = config.NewManager()
	} else {
		m, err = config.NewManagerFromFile(o.configFile)
	}
	if err != nil {
		return nil, err
	}
	return m.ShardingRule()
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "shardingctl",
		Short:        "inspects a sharding rule and the routes of statements",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"configuration file, the default locations are searched when empty")
	root.AddCommand(newNodesCommand(opts), newRouteCommand(opts))
	return root
}

func newNodesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [logic table...]",
		Short: "lists the data nodes of the sharding tables",
		Long: `
	Lists data sources, broadcast tables, binding groups and the data nodes of every
	sharding table, or only of the tables given as arguments.
	`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.loadRule()
			if err != nil {
				return err
			}
			return printNodes(cmd.OutOrStdout(), r, args)
		},
	}
}

func printNodes(w io.Writer, r *rule.ShardingRule, tables []string) error {
	sb := core.NewStringBuilder()
	if len(tables) == 0 {
		sb.WriteLine("data sources: ", strings.Join(r.DataSourceNames(), ", "))
		if r.DefaultDataSource() != "" {
			sb.WriteLine("default data source: ", r.DefaultDataSource())
		}
		sb.WriteLine("default route policy: ", r.DefaultRoutePolicy().String())
		if len(r.BroadcastTables()) > 0 {
			sb.WriteLine("broadcast tables: ", strings.Join(r.BroadcastTables(), ", "))
		}
		for _, g := range r.BindingGroups() {
			sb.WriteLine("binding tables: ", strings.Join(g.LogicTables(), ", "))
		}
		for _, t := range r.TableRules() {
			writeTable(sb, t)
		}
	} else {
		for _, name := range tables {
			t, ok := r.TableRule(name)
			if !ok {
				return errors.Annotatef(rule.ErrUnmanagedTable, "'%s'", name)
			}
			writeTable(sb, t)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTable(sb *core.StringBuilder, t *rule.TableRule) {
	sb.WriteLine(t.LogicTable, ":")
	for _, ds := range t.ActualDataSourceNames() {
		sb.Write("  ", ds, ": ")
		sb.WriteJoinString(", ", t.ActualTableNames(ds)...)
		sb.WriteLine()
	}
}

func newRouteCommand(opts *options) *cobra.Command {
	var where []string
	var sql string
	var dbHints, tableHints []string
	cmd := &cobra.Command{
		Use:   "route <logic table>",
		Short: "routes a select on the table with equality conditions",
		Long: `
	Routes 'SELECT * FROM <logic table>' (or the statement given by --sql) with the
	conditions given by --where, e.g. --where user_id=1 --where order_id=2,3.
	A comma separated value becomes an IN condition.
	`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.loadRule()
			if err != nil {
				return err
			}
			table := args[0]
			text := core.IfBlank(sql, "SELECT * FROM "+table)
			stmt := statement.NewSelect(text, table)
			for _, t := range tableTokens(text, table) {
				stmt.AddToken(t)
			}
			conds, err := parseConditions(table, where)
			if err != nil {
				return err
			}
			if len(conds) > 0 {
				stmt.Conditions = condition.Or(condition.And(conds...))
			}
			var hints *routing.Hints
			if len(dbHints) > 0 || len(tableHints) > 0 {
				hints = &routing.Hints{DatabaseValues: parseValues(dbHints), TableValues: parseValues(tableHints)}
			}
			plan, err := sharding.NewEngine(r).Shard(context.Background(), stmt, nil, hints)
			if err != nil {
				return err
			}
			sb := core.NewStringBuilder()
			sb.WriteLine("engine: ", plan.Routing.Engine.String())
			for _, u := range plan.Units {
				sb.WriteLine(u.DataSourceName, ": ", u.SQLUnit.SQL)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), sb.String())
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "condition as column=value[,value...]")
	cmd.Flags().StringVar(&sql, "sql", "", "statement text whose table names are rewritten")
	cmd.Flags().StringSliceVar(&dbHints, "database-hint", nil, "hint values for hint database strategies")
	cmd.Flags().StringSliceVar(&tableHints, "table-hint", nil, "hint values for hint table strategies")
	return cmd
}

func parseConditions(table string, where []string) ([]*condition.Condition, error) {
	conds := make([]*condition.Condition, 0, len(where))
	for _, w := range where {
		i := strings.Index(w, "=")
		if i <= 0 || i == len(w)-1 {
			return nil, fmt.Errorf("invalid condition '%s', expect column=value", w)
		}
		column := strings.TrimSpace(w[:i])
		values := parseValues(strings.Split(w[i+1:], ","))
		if len(values) == 1 {
			conds = append(conds, condition.Equal(table, column, values[0]))
		} else {
			conds = append(conds, condition.In(table, column, values...))
		}
	}
	return conds, nil
}

// parseValues keeps integers as int64, everything else stays a string.
func parseValues(texts []string) []interface{} {
	values := make([]interface{}, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			values = append(values, n)
		} else {
			values = append(values, t)
		}
	}
	return values
}

// tableTokens marks every unquoted occurrence of the table name in the sql.
func tableTokens(sql string, table string) []statement.SQLToken {
	var tokens []statement.SQLToken
	lower, name := strings.ToLower(sql), strings.ToLower(table)
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], name)
		if i < 0 {
			break
		}
		start := from + i
		stop := start + len(name) - 1
		if !isIdentifierChar(lower, start-1) && !isIdentifierChar(lower, stop+1) {
			tokens = append(tokens, statement.NewTableToken(start, stop, table, ""))
		}
		from = stop + 1
	}
	return tokens
}

func isIdentifierChar(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || c == '`' || c == '.' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
