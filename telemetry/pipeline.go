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
	"go.opentelemetry.io/otel/attribute"
)

const pipelineMeterName = "go-sharding-core"

var (
	AttrRouteEngine   = attribute.Key("route.engine")
	AttrStatementType = attribute.Key("statement.type")
	AttrMergeStrategy = attribute.Key("merge.strategy")
)

// PipelineMetrics are the instruments recorded while a statement goes through route, rewrite and merge.
type PipelineMetrics struct {
	RouteDuration   DurationRecorder
	RouteUnits      Int64Histogram
	RewriteDuration DurationRecorder
	MergeRows       Int64Counter
}

func NewPipelineMetrics() *PipelineMetrics {
	m := GetMeter(pipelineMeterName)
	return &PipelineMetrics{
		RouteDuration:   m.NewDurationRecorder("sharding.route.duration", "time spent to route a statement"),
		RouteUnits:      m.NewInt64Histogram("sharding.route.units", "routing units produced for a statement"),
		RewriteDuration: m.NewDurationRecorder("sharding.rewrite.duration", "time spent to rewrite a statement for every routing unit"),
		MergeRows:       m.NewInt64Counter("sharding.merge.rows", "rows returned by merged results"),
	}
}
