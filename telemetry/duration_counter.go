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
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const unitMilliseconds = "ms"

type DurationCounter struct {
	counter metric.Int64Counter
}

func NewDurationCounter(meter metric.Meter, name string, desc string) DurationCounter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unitMilliseconds))
	if err != nil {
		logger.Warnf("create counter '%s' fault: %v", name, err)
		return DurationCounter{counter: noop.Int64Counter{}}
	}
	return DurationCounter{
		counter: c,
	}
}

func (d DurationCounter) Add(ctx context.Context, duration time.Duration, attrs ...attribute.KeyValue) {
	d.counter.Add(ctx, duration.Milliseconds(), metric.WithAttributes(attrs...))
}

// DurationRecorder records latencies in milliseconds into a histogram.
type DurationRecorder struct {
	histogram metric.Float64Histogram
}

func NewDurationRecorder(meter metric.Meter, name string, desc string) DurationRecorder {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unitMilliseconds))
	if err != nil {
		logger.Warnf("create histogram '%s' fault: %v", name, err)
		return DurationRecorder{histogram: noop.Float64Histogram{}}
	}
	return DurationRecorder{
		histogram: h,
	}
}

func (d DurationRecorder) Record(ctx context.Context, duration time.Duration, attrs ...attribute.KeyValue) {
	d.histogram.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

func (d DurationRecorder) RecordLatency(ctx context.Context, startTime time.Time, attrs ...attribute.KeyValue) {
	d.Record(ctx, time.Since(startTime), attrs...)
}
