// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tinygpio/onewire"
)

func TestTerminalWrite(t *testing.T) {
	var buf bytes.Buffer
	term := &Terminal{w: &buf, ColumnsPerMicrosecond: 0.1}

	s := onewire.SignalBuffer{
		{Level: onewire.Low, Period: 480},
		{Level: onewire.High, Period: 70},
	}
	n, err := term.Write(s)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() returned n=%d, buffer has %d bytes", n, buf.Len())
	}
	if !strings.HasSuffix(buf.String(), "\033[0m\n") {
		t.Errorf("Write() output does not end in a reset+newline: %q", buf.String())
	}
}
