// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trace

import (
	"testing"

	"github.com/tinygpio/onewire"
)

// TestRenderPNGEmptyIsPlaceholder is P11's "a zero-signal buffer yields a
// minimum-width placeholder image, never a panic" half.
func TestRenderPNGEmptyIsPlaceholder(t *testing.T) {
	img := RenderPNG(nil, "")
	if w := img.Bounds().Dx(); w != minWidth {
		t.Errorf("RenderPNG(nil) width = %d, want %d", w, minWidth)
	}
}

// TestRenderPNGWidthProportional is P11's width-proportional-to-signal-sum
// property.
func TestRenderPNGWidthProportional(t *testing.T) {
	short := onewire.SignalBuffer{{Level: onewire.Low, Period: 10}}
	long := onewire.SignalBuffer{{Level: onewire.Low, Period: 10}, {Level: onewire.High, Period: 100}}

	wShort := RenderPNG(short, "").Bounds().Dx()
	wLong := RenderPNG(long, "").Bounds().Dx()
	if wLong <= wShort {
		t.Errorf("RenderPNG width did not grow with signal sum: short=%d long=%d", wShort, wLong)
	}

	wantLong := 110*PixelsPerMicrosecond + 2
	if wLong != wantLong {
		t.Errorf("RenderPNG(long) width = %d, want %d", wLong, wantLong)
	}
}

func TestRenderPNGWithLabelDoesNotPanic(t *testing.T) {
	s := onewire.SignalBuffer{{Level: onewire.Low, Period: 480}, {Level: onewire.High, Period: 70}}
	if img := RenderPNG(s, "reset"); img.Bounds().Dx() == 0 {
		t.Errorf("RenderPNG with label produced an empty image")
	}
}
