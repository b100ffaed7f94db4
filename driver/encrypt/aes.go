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
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"fmt"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/rule"
	"github.com/pingcap/errors"
)

const (
	AESType        = "aes"
	AESKeyProperty = "aes-key-value"
)

var _ rule.QueryAssistedEncryptor = &AES{}

// AES encrypts with AES-128 in ECB mode and PKCS#5 padding, ciphertext is base64 encoded.
// The cipher key is the first 16 bytes of the sha1 digest of the configured key.
type AES struct {
	block cipher.Block
}

func NewAES(key string) (*AES, error) {
	if key == "" {
		return nil, core.NewConfigurationError(fmt.Sprintf("%s is required for aes encryptor", AESKeyProperty))
	}
	digest := sha1.Sum([]byte(key))
	block, err := aes.NewCipher(digest[:16])
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &AES{block: block}, nil
}

func (a *AES) Type() string {
	return AESType
}

func (a *AES) Encrypt(plain interface{}) (interface{}, error) {
	if plain == nil {
		return nil, nil
	}
	data := pkcs5Pad(toBytes(plain), a.block.BlockSize())
	bs := a.block.BlockSize()
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += bs {
		a.block.Encrypt(out[i:i+bs], data[i:i+bs])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (a *AES) Decrypt(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(string(toBytes(value)))
	if err != nil {
		return nil, errors.Annotate(core.NewDataError(err.Error()), "aes decrypt")
	}
	bs := a.block.BlockSize()
	if len(data) == 0 || len(data)%bs != 0 {
		return nil, core.NewDataError("aes cipher text is not a multiple of the block size")
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += bs {
		a.block.Decrypt(out[i:i+bs], data[i:i+bs])
	}
	plain, err := pkcs5Unpad(out, bs)
	if err != nil {
		return nil, err
	}
	return string(plain), nil
}

// QueryAssistedEncrypt returns the md5 digest of the plain value, it is stable across calls.
func (a *AES) QueryAssistedEncrypt(plain interface{}) (interface{}, error) {
	return md5Hex(plain), nil
}

func pkcs5Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs5Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, core.NewDataError("invalid aes padding")
	}
	return data[:len(data)-n], nil
}

func toBytes(v interface{}) []byte {
	switch t := v.(type) {
	case []byte:
		c := make([]byte, len(t))
		copy(c, t)
		return c
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}

type aesFactory struct{}

func (aesFactory) GetName() string {
	return AESType
}

func (aesFactory) Create(props core.Properties) (rule.Encryptor, error) {
	return NewAES(props.GetString(AESKeyProperty, ""))
}
