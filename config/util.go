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

package config

import (
	"os"
	"path/filepath"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/logging"
)

var logger = logging.GetLogger("config")

// DefaultConfigFileLocations returns the files NewManager searches, in load order.
func DefaultConfigFileLocations() []string {
	var files []string
	if !core.IsWindows() {
		files = append(files, "/etc/go-sharding/config.yaml", "/etc/go-sharding/config.yml")
	}
	dir, err := os.Getwd()
	if err == nil {
		files = append(files, filepath.Join(dir, "config.yaml"))
	} else {
		files = append(files, "config.yaml")
	}
	return files
}
