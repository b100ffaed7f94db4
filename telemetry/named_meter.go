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
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

//https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/metrics/api.md#interpretation

type NamedMeter struct {
	meter         metric.Meter
	recorderMutex sync.Mutex
	recorders     map[string]interface{}
}

func (m *NamedMeter) getOrPutRecorder(name string, factory func() interface{}) interface{} {
	m.recorderMutex.Lock()
	defer m.recorderMutex.Unlock()
	r, ok := m.recorders[name]
	if !ok {
		r = factory()
		m.recorders[name] = r
	}
	return r
}

// Int64Counter wraps a counter so callers pass plain attributes.
type Int64Counter struct {
	counter metric.Int64Counter
}

func (c Int64Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

type Int64Histogram struct {
	histogram metric.Int64Histogram
}

func (h Int64Histogram) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

func (m *NamedMeter) NewInt64Counter(name, desc string) Int64Counter {
	fac := func() interface{} {
		c, err := m.meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warnf("create counter '%s' fault: %v", name, err)
			return Int64Counter{counter: noop.Int64Counter{}}
		}
		return Int64Counter{counter: c}
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(Int64Counter)
}

func (m *NamedMeter) NewInt64Histogram(name, desc string) Int64Histogram {
	fac := func() interface{} {
		h, err := m.meter.Int64Histogram(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warnf("create histogram '%s' fault: %v", name, err)
			return Int64Histogram{histogram: noop.Int64Histogram{}}
		}
		return Int64Histogram{histogram: h}
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(Int64Histogram)
}

func (m *NamedMeter) NewDurationRecorder(name, desc string) DurationRecorder {
	fac := func() interface{} {
		return NewDurationRecorder(m.meter, name, desc)
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(DurationRecorder)
}

func (m *NamedMeter) NewDurationCounter(name, desc string) DurationCounter {
	fac := func() interface{} {
		return NewDurationCounter(m.meter, name, desc)
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(DurationCounter)
}
