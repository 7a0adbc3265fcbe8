// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package test provides an in-memory logger for inspecting log output in
// tests.
package test

import (
	"fmt"
	"sync"

	"github.com/inkpad-io/inkpad/logging"
)

// LogEntry represents a log message.
type LogEntry struct {
	Level   logging.Level
	Fields  map[string]interface{}
	Message string
}

// Logger implementation that buffers messages for test purposes.
type Logger struct {
	level   logging.Level
	fields  map[string]interface{}
	entries *[]LogEntry
	mtx     *sync.RWMutex
}

// New instantiates new Logger.
func New() *Logger {
	return &Logger{
		level:   logging.Info,
		entries: &[]LogEntry{},
		mtx:     &sync.RWMutex{},
	}
}

// WithFields provides additional fields to include in log output.
func (l *Logger) WithFields(fields map[string]interface{}) logging.Logger {
	cp := Logger{
		level:   l.level,
		entries: l.entries,
		fields:  make(map[string]interface{}),
		mtx:     l.mtx,
	}
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

// Debug logs at debug level
func (l *Logger) Debug(f string, a ...interface{}) {
	l.append(logging.Debug, f, a...)
}

// Info logs at info level
func (l *Logger) Info(f string, a ...interface{}) {
	l.append(logging.Info, f, a...)
}

// Error logs at error level
func (l *Logger) Error(f string, a ...interface{}) {
	l.append(logging.Error, f, a...)
}

// Warn logs at warn level
func (l *Logger) Warn(f string, a ...interface{}) {
	l.append(logging.Warn, f, a...)
}

// SetLevel set log level
func (l *Logger) SetLevel(level logging.Level) {
	l.level = level
}

// GetLevel get log level
func (l *Logger) GetLevel() logging.Level {
	return l.level
}

// Entries returns buffered log entries
func (l *Logger) Entries() []LogEntry {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return *l.entries
}

func (l *Logger) append(lvl logging.Level, f string, a ...interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	*l.entries = append(*l.entries, LogEntry{
		Level:   lvl,
		Fields:  l.fields,
		Message: fmt.Sprintf(f, a...),
	})
}
