// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io"
	"log"
)

// LogLevel gates which of a LogGroup's loggers actually write output.
type LogLevel int

const (
	// ErrLevel is the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel logs warnings and errors.
	WarnLevel

	// InfoLevel logs high-level information and results.
	InfoLevel

	// DebugLevel logs debugging information. Safe to enable on large
	// methods.
	DebugLevel

	// TraceLevel logs one line per instruction the fixpoint driver visits,
	// including every re-queue triggered by a join that changed a block's
	// exit state. Verbose enough that it is only fit for small test
	// methods, not real-world class files.
	TraceLevel
)

// LogGroup is five independently gated loggers sharing one threshold.
type LogGroup struct {
	level LogLevel
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// NewLogGroup returns a LogGroup configured from cfg's LogLevel.
func NewLogGroup(cfg *Config) *LogGroup {
	l := &LogGroup{
		level: LogLevel(cfg.LogLevel),
		trace: log.Default(),
		debug: log.Default(),
		info:  log.Default(),
		warn:  log.Default(),
		err:   log.Default(),
	}
	l.trace.SetPrefix("[TRACE] ")
	l.debug.SetPrefix("[DEBUG] ")
	l.info.SetPrefix("[INFO] ")
	l.warn.SetPrefix("[WARN] ")
	l.err.SetPrefix("[ERROR] ")
	return l
}

// SetAllOutput redirects every logger in the group to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

// Tracef writes to the trace logger if the configured level permits it.
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

// Debugf writes to the debug logger if the configured level permits it.
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

// Infof writes to the info logger if the configured level permits it.
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf writes to the warn logger if the configured level permits it.
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

// Errorf writes to the error logger if the configured level permits it.
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}

// Trace returns a closure matching the reflectflow.Options.Trace signature,
// wired directly to this group's Tracef.
func (l *LogGroup) Trace() func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		l.Tracef(format, args...)
	}
}
