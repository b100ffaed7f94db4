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
)

// EncryptColumn stores cipher text in the logic column, the optional assisted query column
// keeps a deterministic digest used by equality predicates.
type EncryptColumn struct {
	Table               string
	Column              string
	AssistedQueryColumn string
	Encryptor           Encryptor
}

type EncryptRule struct {
	tables map[string][]*EncryptColumn
}

func NewEncryptRule() *EncryptRule {
	return &EncryptRule{tables: make(map[string][]*EncryptColumn)}
}

func (e *EncryptRule) AddColumn(column *EncryptColumn) error {
	if column == nil || strings.TrimSpace(column.Table) == "" || strings.TrimSpace(column.Column) == "" {
		return core.NewConfigurationError("encrypt column requires table and column")
	}
	if column.Encryptor == nil {
		return errors.Annotatef(core.NewConfigurationError("encrypt column has no encryptor"), "'%s.%s'", column.Table, column.Column)
	}
	if column.AssistedQueryColumn != "" {
		if _, ok := column.Encryptor.(QueryAssistedEncryptor); !ok {
			return errors.Annotatef(core.NewConfigurationError("encryptor does not support assisted query"), "'%s.%s' uses '%s'", column.Table, column.Column, column.Encryptor.Type())
		}
	}
	key := strings.ToLower(column.Table)
	if _, ok := e.FindColumn(column.Table, column.Column); ok {
		return errors.Annotatef(core.NewConfigurationError("duplicate encrypt column"), "'%s.%s'", column.Table, column.Column)
	}
	e.tables[key] = append(e.tables[key], column)
	return nil
}

func (e *EncryptRule) FindColumn(table string, column string) (*EncryptColumn, bool) {
	if e == nil {
		return nil, false
	}
	for _, c := range e.tables[strings.ToLower(table)] {
		if strings.EqualFold(c.Column, column) {
			return c, true
		}
	}
	return nil, false
}

func (e *EncryptRule) Columns(table string) []*EncryptColumn {
	if e == nil {
		return nil
	}
	return e.tables[strings.ToLower(table)]
}

func (e *EncryptRule) IsEmpty() bool {
	return e == nil || len(e.tables) == 0
}

// QueryValue is the value compared in a rewritten predicate, the assisted digest if configured or the cipher.
func (c *EncryptColumn) QueryValue(plain interface{}) (interface{}, error) {
	if c.AssistedQueryColumn != "" {
		return c.Encryptor.(QueryAssistedEncryptor).QueryAssistedEncrypt(plain)
	}
	return c.Encryptor.Encrypt(plain)
}

// QueryColumn is the column compared in a rewritten predicate.
func (c *EncryptColumn) QueryColumn() string {
	if c.AssistedQueryColumn != "" {
		return c.AssistedQueryColumn
	}
	return c.Column
}
