// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trace

import (
	"bytes"
	"io"

	"github.com/maruel/ansi256"
	colorable "github.com/mattn/go-colorable"

	"github.com/tinygpio/onewire"
)

// Terminal writes ANSI-colored blocks to a terminal, one per Signal in a
// SignalBuffer: width proportional to Period (clamped to a single column
// minimum so a zero-period signal is still visible), colored by Level. It
// is the Write-a-stream-of-blocks technique of screen1d.Dev.refresh,
// retargeted from an RGB LED strip to a 1-Wire bus trace.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette

	// ColumnsPerMicrosecond controls how many terminal columns one
	// microsecond of signal period occupies; a signal that would occupy
	// less than one column is still drawn one column wide.
	ColumnsPerMicrosecond float64
}

// NewTerminal returns a Terminal writing to a Windows-safe stdout wrapper
// (the same colorable.NewColorableStdout() call screen1d.New makes) with the
// default ansi256 palette.
func NewTerminal() *Terminal {
	return &Terminal{
		w:                     colorable.NewColorableStdout(),
		palette:               *ansi256.Default,
		ColumnsPerMicrosecond: 0.1,
	}
}

// Write renders s as one line of colored blocks terminated by a newline.
func (t *Terminal) Write(s onewire.SignalBuffer) (int, error) {
	var buf bytes.Buffer
	buf.WriteString("\033[0m")
	for _, sig := range s {
		cols := int(float64(sig.Period) * t.ColumnsPerMicrosecond)
		if cols < 1 {
			cols = 1
		}
		c := t.palette.Block(levelColor(sig.Level))
		for i := 0; i < cols; i++ {
			io.WriteString(&buf, c)
		}
	}
	buf.WriteString("\033[0m\n")
	n, err := buf.WriteTo(t.w)
	return int(n), err
}
