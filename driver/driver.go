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

// Package driver registers the built-in sharding algorithms, key generators and encryptors.
package driver

import (
	_ "github.com/endink/go-sharding-core/driver/encrypt"
	_ "github.com/endink/go-sharding-core/driver/keygen"
	_ "github.com/endink/go-sharding-core/driver/strategy"
)
