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

package merging

import (
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

// LimitDecorator applies a MySQL LIMIT offset, row count to a merged result.
type LimitDecorator struct {
	cursor
	result   MergedResult
	offset   int64
	rowCount int64
	// no row count means every row after the offset
	hasRowCount bool
	returned    int64
	skipped     bool
}

func NewLimitDecorator(result MergedResult, offset int64, rowCount int64, hasRowCount bool) *LimitDecorator {
	return &LimitDecorator{result: result, offset: offset, rowCount: rowCount, hasRowCount: hasRowCount}
}

func (d *LimitDecorator) Next() (bool, error) {
	if d.state == exhausted {
		return false, nil
	}
	if !d.skipped {
		d.skipped = true
		for i := int64(0); i < d.offset; i++ {
			ok, err := d.result.Next()
			if err != nil || !ok {
				return d.moved(false, err)
			}
		}
	}
	if d.hasRowCount && d.returned >= d.rowCount {
		return d.moved(false, nil)
	}
	ok, err := d.result.Next()
	if ok {
		d.returned++
	}
	return d.moved(ok, err)
}

func (d *LimitDecorator) GetValue(index int) (interface{}, error) {
	if err := d.checkActive(); err != nil {
		return nil, err
	}
	return d.result.GetValue(index)
}

// RowNumberDecorator applies row number bounds like 'rownum > offset AND rownum <= rowCount'.
type RowNumberDecorator struct {
	cursor
	result      MergedResult
	offset      int64
	rowCount    int64
	hasRowCount bool
	inclusive   bool
	rowNumber   int64
	skipped     bool
}

func NewRowNumberDecorator(result MergedResult, offset int64, rowCount int64, hasRowCount bool, inclusive bool) *RowNumberDecorator {
	return &RowNumberDecorator{
		result:      result,
		offset:      offset,
		rowCount:    rowCount,
		hasRowCount: hasRowCount,
		inclusive:   inclusive,
	}
}

func (d *RowNumberDecorator) Next() (bool, error) {
	if d.state == exhausted {
		return false, nil
	}
	if !d.skipped {
		d.skipped = true
		for i := int64(0); i < d.offset; i++ {
			ok, err := d.result.Next()
			if err != nil || !ok {
				return d.moved(false, err)
			}
		}
		d.rowNumber = d.offset
	}
	if d.hasRowCount {
		next := d.rowNumber + 1
		if next > d.rowCount || (!d.inclusive && next == d.rowCount) {
			return d.moved(false, nil)
		}
	}
	ok, err := d.result.Next()
	if ok {
		d.rowNumber++
	}
	return d.moved(ok, err)
}

func (d *RowNumberDecorator) GetValue(index int) (interface{}, error) {
	if err := d.checkActive(); err != nil {
		return nil, err
	}
	return d.result.GetValue(index)
}

// GeneratedKeyDecorator returns the keys generated for an INSERT instead of the keys the shards report.
// Without generated keys it returns the underlying result.
type GeneratedKeyDecorator struct {
	cursor
	result MergedResult
	keys   []interface{}
	index  int
}

func NewGeneratedKeyDecorator(result MergedResult, keys []interface{}) *GeneratedKeyDecorator {
	return &GeneratedKeyDecorator{result: result, keys: keys, index: -1}
}

func (d *GeneratedKeyDecorator) Next() (bool, error) {
	if d.state == exhausted {
		return false, nil
	}
	if len(d.keys) == 0 {
		if d.result == nil {
			return d.moved(false, nil)
		}
		return d.moved(d.result.Next())
	}
	d.index++
	return d.moved(d.index < len(d.keys), nil)
}

func (d *GeneratedKeyDecorator) GetValue(index int) (interface{}, error) {
	if err := d.checkActive(); err != nil {
		return nil, err
	}
	if len(d.keys) == 0 {
		return d.result.GetValue(index)
	}
	if index != 0 {
		return nil, errors.Errorf("generated key result has one column, index: %d", index)
	}
	return d.keys[d.index], nil
}

// EncryptDecorator decrypts the values of encrypted columns.
type EncryptDecorator struct {
	result     MergedResult
	encryptors map[int]rule.Encryptor
}

func NewEncryptDecorator(result MergedResult, encryptors map[int]rule.Encryptor) *EncryptDecorator {
	return &EncryptDecorator{result: result, encryptors: encryptors}
}

func (d *EncryptDecorator) Next() (bool, error) {
	return d.result.Next()
}

func (d *EncryptDecorator) GetValue(index int) (interface{}, error) {
	v, err := d.result.GetValue(index)
	if err != nil {
		return nil, err
	}
	e, ok := d.encryptors[index]
	if !ok || v == nil {
		return v, nil
	}
	plain, err := e.Decrypt(v)
	if err != nil {
		return nil, errors.Annotatef(err, "decrypt column %d", index)
	}
	return plain, nil
}
