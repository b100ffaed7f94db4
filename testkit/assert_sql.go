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

package testkit

import (
	"strings"
	"sync"
	"testing"

	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/format"
	_ "github.com/pingcap/parser/test_driver"
	"github.com/stretchr/testify/assert"
)

// the parser is not safe for concurrent use
var (
	sqlParser      = parser.New()
	sqlParserMutex sync.Mutex
)

func parseSql(t testing.TB, sql string) ast.StmtNode {
	t.Helper()
	sqlParserMutex.Lock()
	defer sqlParserMutex.Unlock()
	node, err := sqlParser.ParseOneStmt(sql, "", "")
	if err != nil {
		t.Fatalf("%s\nsql err: %v", sql, err)
	}
	return node
}

// NormalizeSql restores the statement through the parser so that spacing and casing do not matter.
func NormalizeSql(t testing.TB, sql string) string {
	t.Helper()
	return restore(t, parseSql(t, sql))
}

func AssertEqualSql(t testing.TB, expected string, actual string) bool {
	t.Helper()
	return assert.Equal(t, NormalizeSql(t, expected), NormalizeSql(t, actual), "actual sql: %s", actual)
}

func restore(t testing.TB, node ast.Node) string {
	var sb strings.Builder
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags|format.RestoreSpacesAroundBinaryOperation, &sb)
	err := node.Restore(ctx)
	assert.Nil(t, err)
	return sb.String()
}
