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

package provider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pingcap/errors"
)

// Type groups providers so that different kinds may share a name.
type Type int

const (
	ShardingAlgorithm Type = iota
	KeyGenerator
	Encryptor
)

func (t Type) String() string {
	switch t {
	case ShardingAlgorithm:
		return "sharding-algorithm"
	case KeyGenerator:
		return "key-generator"
	case Encryptor:
		return "encryptor"
	}
	return fmt.Sprintf("provider-%d", int(t))
}

// Provider is a named factory registered by driver packages.
type Provider interface {
	GetName() string
}

var onceReg sync.Once
var instance Registry

type Registry interface {
	TryLoad(tp Type, name string) (Provider, bool)
	Load(tp Type, name string) Provider
	Register(tp Type, provider Provider) error
	LoadOrStore(tp Type, name string, creation func() Provider) (actual Provider, loaded bool)
	LoadAndDelete(tp Type, name string) (value Provider, loaded bool)
	Delete(tp Type, name string)
	Names(tp Type) []string
}

func DefaultRegistry() Registry {
	onceReg.Do(func() {
		instance = NewRegistry()
	})
	return instance
}

func NewRegistry() Registry {
	return &registry{}
}

type registry struct {
	mp sync.Map
}

func getFullName(tp Type, name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic(errors.New("provider name can not be null"))
	}
	return fmt.Sprintf("%d:%s", int(tp), n)
}

func (r *registry) TryLoad(tp Type, name string) (Provider, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	fullName := getFullName(tp, name)
	v, ok := r.mp.Load(fullName)
	if ok {
		p, ok := v.(Provider)
		return p, ok
	}
	return nil, ok
}

func (r *registry) Load(tp Type, name string) Provider {
	p, _ := r.TryLoad(tp, name)
	return p
}

func (r *registry) Register(tp Type, provider Provider) error {
	if provider == nil {
		return errors.New("provider can not be null")
	}
	n := provider.GetName()
	if len(strings.TrimSpace(n)) == 0 {
		return errors.New("provider name can not be empty")
	}
	r.mp.Store(getFullName(tp, n), provider)
	return nil
}

func (r *registry) LoadOrStore(tp Type, name string, creation func() Provider) (actual Provider, loaded bool) {
	fullName := getFullName(tp, name)
	if v, ok := r.mp.Load(fullName); ok {
		return v.(Provider), true
	}
	v, loaded := r.mp.LoadOrStore(fullName, creation())
	return v.(Provider), loaded
}

func (r *registry) LoadAndDelete(tp Type, name string) (value Provider, loaded bool) {
	fullName := getFullName(tp, name)
	v, ok := r.mp.LoadAndDelete(fullName)
	if ok {
		p, ok := v.(Provider)
		return p, ok
	}
	return nil, ok
}

func (r *registry) Delete(tp Type, name string) {
	fullName := getFullName(tp, name)
	r.mp.Delete(fullName)
}

func (r *registry) Names(tp Type) []string {
	prefix := fmt.Sprint(int(tp), ":")
	var names []string
	r.mp.Range(func(key, value interface{}) bool {
		keyStr := key.(string)
		if strings.HasPrefix(keyStr, prefix) {
			names = append(names, strings.TrimPrefix(keyStr, prefix))
		}
		return true
	})
	return names
}
