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

package routing

import (
	"github.com/endink/go-sharding-core/condition"
	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/endink/go-sharding-core/statement"
	"github.com/pingcap/errors"
)

var ErrEncryptExpression = core.NewConfigurationError("value of an encrypted column must be a literal or a parameter")

// GeneratedKey is the generated key column of an INSERT with one key per value group.
type GeneratedKey struct {
	Column string
	// Generated is set when the keys came from the key generator and the column was appended.
	Generated bool
	Values    []interface{}
}

// InsertValue is one value group ready to be written. Cells are literals, condition.ParamMarker
// or condition.Expression, Parameters are the values of the markers in cell order.
type InsertValue struct {
	Values     []interface{}
	Parameters []interface{}
	// DataNodes are the nodes the group is routed to, empty means every unit.
	DataNodes []rule.DataNode
	// ParameterIndexes are the statement parameter indexes the original markers referred to.
	ParameterIndexes []int
}

func (v *InsertValue) usesParameters() bool {
	for _, c := range v.Values {
		if _, ok := c.(condition.ParamMarker); ok {
			return true
		}
	}
	return false
}

// InsertOptimizeResult is an INSERT with generated key and assisted query columns appended,
// encrypted cells replaced with cipher values and one sharding condition per value group.
type InsertOptimizeResult struct {
	Table           string
	Columns         []string
	AppendedColumns []string
	Values          []*InsertValue
	GeneratedKey    *GeneratedKey
	Conditions      *condition.ShardingConditions
}

// BindDataNodes copies the data nodes each condition was routed to into the value groups.
func (r *InsertOptimizeResult) BindDataNodes(result *RoutingResult) {
	for i, v := range r.Values {
		if i < len(result.ConditionNodes) {
			v.DataNodes = result.ConditionNodes[i]
		}
	}
}

// Includes reports whether the value group is written by the routing unit.
func (v *InsertValue) Includes(unit *RoutingUnit) bool {
	if len(v.DataNodes) == 0 || unit == nil {
		return true
	}
	for _, n := range v.DataNodes {
		if unit.ContainsDataNode(n) {
			return true
		}
	}
	return false
}

// OptimizeInsert resolves the value groups of an INSERT against the rule.
func OptimizeInsert(shardingRule *rule.ShardingRule, stmt *statement.InsertStatement, params []interface{}) (*InsertOptimizeResult, error) {
	if err := checkValueCount(stmt); err != nil {
		return nil, err
	}
	result := &InsertOptimizeResult{
		Table:      stmt.Table,
		Columns:    append([]string(nil), stmt.Columns...),
		Conditions: condition.NewShardingConditions(),
	}

	keyColumn, hasKey := shardingRule.GenerateKeyColumn(stmt.Table)
	keyIndex := -1
	if hasKey {
		keyIndex = stmt.ColumnIndex(keyColumn)
		result.GeneratedKey = &GeneratedKey{Column: keyColumn, Generated: keyIndex < 0}
		if keyIndex < 0 {
			result.AppendedColumns = append(result.AppendedColumns, keyColumn)
		}
	}
	encryptRule := shardingRule.EncryptRule()
	var assisted []*rule.EncryptColumn
	for _, c := range stmt.Columns {
		if ec, ok := encryptRule.FindColumn(stmt.Table, c); ok && ec.AssistedQueryColumn != "" {
			assisted = append(assisted, ec)
			result.AppendedColumns = append(result.AppendedColumns, ec.AssistedQueryColumn)
		}
	}
	result.Columns = append(result.Columns, result.AppendedColumns...)

	for i, group := range stmt.ValueGroups {
		value, plain, err := newInsertValue(group, params)
		if err != nil {
			return nil, errors.Annotatef(err, "value group %d", i)
		}
		paramMode := value.usesParameters()

		if result.GeneratedKey != nil {
			var key interface{}
			if keyIndex >= 0 {
				key = plain[keyIndex]
			} else {
				if key, err = shardingRule.GenerateKey(stmt.Table); err != nil {
					return nil, errors.Annotatef(err, "generate key of '%s'", stmt.Table)
				}
				value.appendCell(key, paramMode)
				plain = append(plain, key)
			}
			result.GeneratedKey.Values = append(result.GeneratedKey.Values, key)
		}

		for _, ec := range assisted {
			index := stmt.ColumnIndex(ec.Column)
			q, err := ec.Encryptor.(rule.QueryAssistedEncryptor).QueryAssistedEncrypt(plain[index])
			if err != nil {
				return nil, errors.Annotatef(err, "assisted query value of '%s.%s'", ec.Table, ec.Column)
			}
			value.appendCell(q, paramMode)
		}

		if err := encryptCells(encryptRule, stmt, value); err != nil {
			return nil, errors.Annotatef(err, "value group %d", i)
		}

		sc := condition.NewShardingCondition()
		for ci, column := range result.Columns {
			if ci >= len(plain) || !shardingRule.IsShardingColumn(column, stmt.Table) {
				continue
			}
			if v := plain[ci]; v != nil && !isExpression(v) {
				sc.RouteValues = append(sc.RouteValues, condition.NewListRouteValue(stmt.Table, column, v))
			}
		}
		result.Conditions.Conditions = append(result.Conditions.Conditions, sc)
		result.Values = append(result.Values, value)
	}
	return result, nil
}

// newInsertValue returns the group and the plain value of every cell, expressions stay expressions.
func newInsertValue(group []interface{}, params []interface{}) (*InsertValue, []interface{}, error) {
	value := &InsertValue{Values: make([]interface{}, 0, len(group))}
	plain := make([]interface{}, 0, len(group))
	for _, cell := range group {
		switch c := cell.(type) {
		case condition.ParamMarker, *condition.ParamMarker:
			v, err := condition.ResolveValue(c, params)
			if err != nil {
				return nil, nil, err
			}
			index := markerIndex(c)
			value.Values = append(value.Values, condition.ParamMarker{Index: index})
			value.Parameters = append(value.Parameters, v)
			value.ParameterIndexes = append(value.ParameterIndexes, index)
			plain = append(plain, v)
		default:
			value.Values = append(value.Values, cell)
			plain = append(plain, cell)
		}
	}
	return value, plain, nil
}

func (v *InsertValue) appendCell(cell interface{}, paramMode bool) {
	if paramMode {
		v.Values = append(v.Values, condition.ParamMarker{Index: -1})
		v.Parameters = append(v.Parameters, cell)
		return
	}
	v.Values = append(v.Values, cell)
}

// encryptCells replaces the cells of encrypted columns with cipher values.
func encryptCells(encryptRule *rule.EncryptRule, stmt *statement.InsertStatement, value *InsertValue) error {
	if encryptRule.IsEmpty() {
		return nil
	}
	for ci, column := range stmt.Columns {
		ec, ok := encryptRule.FindColumn(stmt.Table, column)
		if !ok || ci >= len(value.Values) {
			continue
		}
		switch c := value.Values[ci].(type) {
		case condition.ParamMarker:
			p := value.parameterPosition(ci)
			cipher, err := ec.Encryptor.Encrypt(value.Parameters[p])
			if err != nil {
				return errors.Annotatef(err, "encrypt '%s.%s'", stmt.Table, column)
			}
			value.Parameters[p] = cipher
		default:
			if isExpression(c) {
				return errors.Annotatef(ErrEncryptExpression, "'%s.%s'", stmt.Table, column)
			}
			cipher, err := ec.Encryptor.Encrypt(c)
			if err != nil {
				return errors.Annotatef(err, "encrypt '%s.%s'", stmt.Table, column)
			}
			value.Values[ci] = cipher
		}
	}
	return nil
}

// parameterPosition returns the position in Parameters of the marker at cell index.
func (v *InsertValue) parameterPosition(cell int) int {
	p := 0
	for i := 0; i < cell; i++ {
		if _, ok := v.Values[i].(condition.ParamMarker); ok {
			p++
		}
	}
	return p
}

func markerIndex(marker interface{}) int {
	if m, ok := marker.(*condition.ParamMarker); ok {
		return m.Index
	}
	return marker.(condition.ParamMarker).Index
}

func isExpression(v interface{}) bool {
	switch v.(type) {
	case condition.Expression, *condition.Expression:
		return true
	}
	return false
}
