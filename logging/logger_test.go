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

package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerCached(t *testing.T) {
	l1 := GetLogger("test-cached")
	l2 := GetLogger("test-cached")
	assert.True(t, l1 == l2)
}

func TestSetLevel(t *testing.T) {
	log := GetLogger("test-level")
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	SetLevel("test-level", zapcore.DebugLevel)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	SetLevel("test-level", zapcore.WarnLevel)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestThrottledLogger(t *testing.T) {
	ch := make(chan string, 10)
	tl := NewThrottledLogger("route", NewLoggerForTest(ch), time.Hour)

	tl.Warningf("large result: %d", 16)
	tl.Warningf("large result: %d", 32)

	first := <-ch
	assert.True(t, strings.HasPrefix(first, "[WARN]route: large result: 16"), first)
	select {
	case m := <-ch:
		assert.Fail(t, "second message should be throttled", m)
	default:
	}
}

func TestThrottledLoggerReportsSkipped(t *testing.T) {
	ch := make(chan string, 10)
	tl := NewThrottledLogger("route", NewLoggerForTest(ch), time.Minute)
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tl.now = func() time.Time { return now }

	tl.Warningf("cartesian route of [%s]", "a")
	tl.Warningf("cartesian route of [%s]", "b")
	tl.Warningf("cartesian route of [%s]", "c")
	tl.Infof("other template")
	now = now.Add(2 * time.Minute)
	tl.Warningf("cartesian route of [%s]", "d")

	assert.Equal(t, "[WARN]route: cartesian route of [a]", <-ch)
	assert.Equal(t, "[INFO]route: other template", <-ch)
	assert.Equal(t, "[WARN]route: cartesian route of [d] (2 similar messages skipped)", <-ch)
}
