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
	"fmt"
	"sync"
	"time"
)

// ThrottledLogger emits each message template at most once per interval.
// Messages dropped in between are counted and reported with the next emitted one.
type ThrottledLogger struct {
	name        string
	maxInterval time.Duration
	logger      StandardLogger
	now         func() time.Time

	mu    sync.Mutex
	state map[string]*throttleState
}

type throttleState struct {
	last    time.Time
	skipped int
}

func NewThrottledLogger(name string, logger StandardLogger, maxInterval time.Duration) *ThrottledLogger {
	if logger == nil {
		logger = GetLogger(name)
	}
	return &ThrottledLogger{
		name:        name,
		maxInterval: maxInterval,
		logger:      logger,
		now:         time.Now,
		state:       make(map[string]*throttleState),
	}
}

type logFunc func(args ...interface{})

func (tl *ThrottledLogger) log(logFunc logFunc, format string, v ...interface{}) {
	now := tl.now()

	tl.mu.Lock()
	s, ok := tl.state[format]
	if !ok {
		s = &throttleState{}
		tl.state[format] = s
	}
	if ok && now.Sub(s.last) < tl.maxInterval {
		s.skipped++
		tl.mu.Unlock()
		return
	}
	skipped := s.skipped
	s.last = now
	s.skipped = 0
	tl.mu.Unlock()

	msg := fmt.Sprintf(tl.name+": "+format, v...)
	if skipped > 0 {
		msg = fmt.Sprintf("%s (%d similar messages skipped)", msg, skipped)
	}
	logFunc(msg)
}

func (tl *ThrottledLogger) Infof(format string, v ...interface{}) {
	tl.log(tl.logger.Info, format, v...)
}

func (tl *ThrottledLogger) Warningf(format string, v ...interface{}) {
	tl.log(tl.logger.Warn, format, v...)
}

func (tl *ThrottledLogger) Errorf(format string, v ...interface{}) {
	tl.log(tl.logger.Error, format, v...)
}
