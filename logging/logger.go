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
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StandardLogger is the subset of *zap.SugaredLogger used across packages.
type StandardLogger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

var loggerMutex sync.RWMutex // guards access to global logger state

// loggers is the set of loggers in the system
var loggers = make(map[string]*zap.SugaredLogger)

var levels = make(map[string]zap.AtomicLevel)
var defaultLevel = zapcore.InfoLevel
var output = zapcore.AddSync(os.Stdout)

var logCore = newCore(ColorizedOutput, output, zapcore.DebugLevel)

var DefaultLogger = GetLogger("sharding")

func newCore(format LogFormat, ws zapcore.WriteSyncer, level zapcore.LevelEnabler) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeName = zapcore.FullNameEncoder

	var encoder zapcore.Encoder
	switch format {
	case JSONOutput:
		encoder = zapcore.NewJSONEncoder(encCfg)
	case PlaintextOutput:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(encoder, ws, level)
}

// SetupLogging replaces the shared core, loggers created before keep the previous core.
func SetupLogging(format LogFormat, ws zapcore.WriteSyncer) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if ws == nil {
		ws = output
	}
	logCore = newCore(format, ws, zapcore.DebugLevel)
	loggers = make(map[string]*zap.SugaredLogger)
}

func GetLogger(name string) *zap.SugaredLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	log, ok := loggers[name]
	if !ok {
		level, hasLevel := levels[name]
		if !hasLevel {
			level = zap.NewAtomicLevelAt(defaultLevel)
			levels[name] = level
		}

		log = zap.New(logCore, zap.AddCaller()).
			WithOptions(zap.IncreaseLevel(level)).
			Named(name).
			Sugar()

		loggers[name] = log
	}

	return log
}

// SetLevel changes the level of one named logger at runtime.
func SetLevel(name string, level zapcore.Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if l, ok := levels[name]; ok {
		l.SetLevel(level)
		return
	}
	levels[name] = zap.NewAtomicLevelAt(level)
}

// SetAllLevel changes the level of every logger and of those created later.
func SetAllLevel(level zapcore.Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	defaultLevel = level
	for _, l := range levels {
		l.SetLevel(level)
	}
}
