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

// InsertStatement is an INSERT ... VALUES with one or more value groups, or an INSERT ... SET.
// Every cell of a value group is a literal, a condition.ParamMarker or a condition.Expression.
type InsertStatement struct {
	Common
	Table       string
	Columns     []string
	ValueGroups [][]interface{}
	SetForm     bool
	// ColumnsEnd is the offset of the parenthesis closing the column list,
	// or of the last character of the assignments for INSERT ... SET. -1 when absent.
	ColumnsEnd int
	// ValuesStart and ValuesStop locate the text of all value groups.
	ValuesStart int
	ValuesStop  int
}

func NewInsert(sql string, table string, columns ...string) *InsertStatement {
	return &InsertStatement{
		Common:      Common{Type: KindInsert, Text: sql, TableNames: []string{table}},
		Table:       table,
		Columns:     columns,
		ColumnsEnd:  -1,
		ValuesStart: -1,
		ValuesStop:  -1,
	}
}

// AddValues appends one value group.
func (s *InsertStatement) AddValues(values ...interface{}) *InsertStatement {
	s.ValueGroups = append(s.ValueGroups, values)
	return s
}

func (s *InsertStatement) ColumnIndex(column string) int {
	for i, c := range s.Columns {
		if equalFoldTrim(c, column) {
			return i
		}
	}
	return -1
}
