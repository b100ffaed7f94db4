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

package telemetry

import (
	"strings"
	"sync"

	"github.com/endink/go-sharding-core/logging"
	"github.com/pingcap/errors"
	"go.opentelemetry.io/otel"
)

var logger = logging.GetLogger("telemetry")

var meterMap = make(map[string]*NamedMeter)
var meterMutex sync.Mutex

// GetMeter returns a meter of the global provider, it is a no-op until an SDK is installed with otel.SetMeterProvider.
func GetMeter(instrumentationName string) *NamedMeter {
	meterMutex.Lock()
	defer meterMutex.Unlock()
	if m, ok := meterMap[instrumentationName]; ok {
		return m
	}
	nm := &NamedMeter{
		meter:     otel.Meter(instrumentationName),
		recorders: make(map[string]interface{}),
	}
	meterMap[instrumentationName] = nm
	return nm
}

// BuildMetricName joins the parts with '_' and converts camel case to snake case.
func BuildMetricName(statement ...string) string {
	if len(statement) == 0 {
		panic(errors.New("name for 'BuildMetricName' can not be nil or empty"))
	}

	sb := &strings.Builder{}
	array := make([]string, 0, len(statement))
	for _, s := range statement {
		sb.Reset()
		trimmed := strings.Trim(s, "_-. ")
		var prevUpper = true
		for i := 0; i < len(trimmed); i++ {
			current := trimmed[i]
			if current == '.' && i > 0 && trimmed[i-1] == '.' {
				continue
			}
			if 'A' <= current && current <= 'Z' {
				if !prevUpper {
					sb.WriteByte('_')
				}
				sb.WriteByte(current + ('a' - 'A'))
				prevUpper = true
			} else {
				sb.WriteByte(current)
				prevUpper = false
			}
		}
		if sb.Len() > 0 {
			array = append(array, sb.String())
		}
	}
	return strings.Join(array, "_")
}
