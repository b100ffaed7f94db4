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

package encrypt

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
)

const MD5Type = "md5"

var _ rule.Encryptor = MD5{}

// MD5 is one way, Decrypt returns the stored digest as is.
type MD5 struct{}

func (MD5) Type() string {
	return MD5Type
}

func (MD5) Encrypt(plain interface{}) (interface{}, error) {
	if plain == nil {
		return nil, nil
	}
	return md5Hex(plain), nil
}

func (MD5) Decrypt(value interface{}) (interface{}, error) {
	return value, nil
}

func md5Hex(v interface{}) string {
	sum := md5.Sum(toBytes(v))
	return hex.EncodeToString(sum[:])
}

type md5Factory struct{}

func (md5Factory) GetName() string {
	return MD5Type
}

func (md5Factory) Create(_ core.Properties) (rule.Encryptor, error) {
	return MD5{}, nil
}
