// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"
	"io"
)

// LogLevel controls the frequency and type of progress output.
type LogLevel int

const (
	// LogNoop no output is generated.
	LogNoop LogLevel = -1
	// LogLast print only one summary line when the driver stops.
	LogLast LogLevel = 0
	// LogIter print a header plus one row per presented iterate:
	// iteration, evaluations, restarts, f, ‖g‖₂.
	LogIter LogLevel = 1
)

// Logger handles progress output for the driver.
// A nil Logger, or one without a writer, is silent.
type Logger struct {
	Level LogLevel
	Out   io.Writer
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Out != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}
