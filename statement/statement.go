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
	"strings"

	"github.com/endink/go-sharding-core/condition"
)

// Statement is what the parser hands to the sharding pipeline.
// Token offsets are character offsets into SQL().
type Statement interface {
	Kind() Kind
	SQL() string
	// Tables returns the referenced logic tables in order of appearance.
	Tables() []string
	Tokens() []SQLToken
	Where() condition.OrCondition
	ParameterCount() int
}

// Common holds the parts shared by every statement type.
type Common struct {
	Type       Kind
	Text       string
	TableNames []string
	SQLTokens  []SQLToken
	Conditions condition.OrCondition
	ParamCount int
}

func (c *Common) Kind() Kind {
	return c.Type
}

func (c *Common) SQL() string {
	return c.Text
}

func (c *Common) Tables() []string {
	return c.TableNames
}

func (c *Common) Tokens() []SQLToken {
	return c.SQLTokens
}

func (c *Common) Where() condition.OrCondition {
	return c.Conditions
}

func (c *Common) ParameterCount() int {
	return c.ParamCount
}

// AddToken appends a token, the rewrite sorts them.
func (c *Common) AddToken(tokens ...SQLToken) {
	c.SQLTokens = append(c.SQLTokens, tokens...)
}

// DMLStatement is an UPDATE or DELETE.
type DMLStatement struct {
	Common
}

func NewUpdate(sql string, tables ...string) *DMLStatement {
	return &DMLStatement{Common{Type: KindUpdate, Text: sql, TableNames: tables}}
}

func NewDelete(sql string, tables ...string) *DMLStatement {
	return &DMLStatement{Common{Type: KindDelete, Text: sql, TableNames: tables}}
}

// GeneralStatement is any DDL, DCL, DAL or TCL statement.
type GeneralStatement struct {
	Common
}

func NewGeneral(kind Kind, sql string, tables ...string) *GeneralStatement {
	return &GeneralStatement{Common{Type: kind, Text: sql, TableNames: tables}}
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
