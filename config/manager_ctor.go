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
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/pingcap/errors"
	"go.uber.org/config"
)

// NewManager loads the configuration files found in DefaultConfigFileLocations, later files override earlier ones.
func NewManager() (Manager, error) {
	var sources []config.YAMLOption

	files := DefaultConfigFileLocations()

	var sb = core.NewStringBuilder()
	sb.WriteLine()
	sb.WriteLine("Search configuration locations:")
	for _, f := range files {
		if core.FileExists(f) {
			sources = append(sources, config.File(f))
			sb.WriteLine("[Found]:", f)
		} else {
			sb.WriteLine("[Not Found]:", f)
		}
	}
	logger.Info(sb.String())

	if len(sources) == 0 {
		return nil, core.NewConfigurationError("no configuration file was found")
	}
	sources = append(sources, config.Permissive())
	yaml, err := config.NewYAML(sources...)
	if err != nil {
		logger.Warn("Build boot config file fault.", core.LineSeparator, err)
		return nil, errors.Annotate(core.NewConfigurationError(err.Error()), "load configuration files")
	}

	return NewManagerFromYAML(yaml)
}

func NewManagerFromYAML(yaml *config.YAML) (Manager, error) {
	if yaml == nil {
		return nil, core.NewConfigurationError("configuration provider is nil")
	}
	settings := &Settings{}
	if err := yaml.Get(config.Root).Populate(settings); err != nil {
		return nil, errors.Annotate(core.NewConfigurationError(err.Error()), "populate settings")
	}
	settings.DataSources = core.DistinctSliceAndTrim(settings.DataSources)
	settings.DefaultDataSource = strings.TrimSpace(settings.DefaultDataSource)

	return &cnfManager{
		yaml:     yaml,
		settings: settings,
	}, nil
}

// NewManagerFromFile loads a single configuration file.
func NewManagerFromFile(file string) (Manager, error) {
	if !core.FileExists(file) {
		return nil, errors.Annotatef(core.NewConfigurationError("configuration file was not found"), "'%s'", file)
	}
	yml, err := config.NewYAML(config.File(file), config.Permissive())
	if err != nil {
		return nil, errors.Annotatef(core.NewConfigurationError(err.Error()), "load '%s'", file)
	}
	return NewManagerFromYAML(yml)
}

func NewManagerFromString(ymlContent string) (Manager, error) {
	r := strings.NewReader(ymlContent)
	opt := config.Source(r)
	permissive := config.Permissive()
	yml, err := config.NewYAML(opt, permissive)
	if err != nil {
		return nil, errors.Annotate(core.NewConfigurationError(err.Error()), "parse configuration")
	}

	return NewManagerFromYAML(yml)
}
