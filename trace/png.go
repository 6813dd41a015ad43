// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trace renders a captured onewire.SignalBuffer for diagnostics: a
// timing-diagram PNG and a terminal ANSI waterfall. Neither onewire nor
// onewire/rmthost import this package; it is an independent consumer fed via
// onewire.Tracer, the same inversion the teacher uses for its display.Drawer
// sinks (videosink.Display, screen1d.Dev) driven by an independent producer.
package trace

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/tinygpio/onewire"
)

var labelFace = mustParseLabelFace()

func mustParseLabelFace() *truetype.Font {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		// goregular.TTF is a fixed, compiled-in asset; a parse failure here
		// means the vendored font bytes are corrupt, not a runtime condition
		// callers can recover from.
		panic(err)
	}
	return f
}

// PixelsPerMicrosecond controls the PNG renderer's horizontal scale.
const PixelsPerMicrosecond = 2

// RowHeight is the pixel height of the pulse row plus its label margin.
const RowHeight = 40

// minWidth is the width of the placeholder image returned for an empty
// SignalBuffer.
const minWidth = 40

// RenderPNG draws s as a timing diagram: a row of high/low rectangles whose
// widths are proportional to each Signal's Period, in microseconds, scaled
// by PixelsPerMicrosecond. label, if non-empty, is rasterized above the
// trace via freetype.
//
// The returned image is total*PixelsPerMicrosecond+2 pixels wide, where
// total is the sum of s's periods, but never narrower than minWidth; an
// empty s therefore yields a minimum-width placeholder rather than
// panicking.
func RenderPNG(s onewire.SignalBuffer, label string) image.Image {
	var total int
	for _, sig := range s {
		total += int(sig.Period)
	}
	w := total*PixelsPerMicrosecond + 2
	if w < minWidth {
		w = minWidth
	}
	h := RowHeight

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	if label != "" {
		drawLabel(dc.Image().(*image.RGBA), label)
	}

	x := 1.0
	top := float64(h) / 2
	lineHeight := float64(h)/2 - 4
	for _, sig := range s {
		width := float64(sig.Period) * PixelsPerMicrosecond
		y := top
		fillHeight := lineHeight
		if sig.Level == onewire.High {
			y = top - lineHeight
		}
		dc.SetColor(levelColor(sig.Level))
		dc.DrawRectangle(x, y, width, fillHeight)
		dc.Fill()
		x += width
	}

	dc.SetColor(color.Black)
	dc.DrawLine(1, top, float64(w)-1, top)
	dc.Stroke()

	return dc.Image()
}

func levelColor(l onewire.Level) color.NRGBA {
	if l == onewire.High {
		return color.NRGBA{R: 0x20, G: 0x80, B: 0x20, A: 0xff}
	}
	return color.NRGBA{R: 0x80, G: 0x20, B: 0x20, A: 0xff}
}

// drawLabel rasterizes label onto dst using freetype over the vendored
// Go Regular TTF, mirroring the rendering path the teacher's
// waveshare2in13v2/example_test.go leaves commented out
// (truetype.Parse(goregular.TTF) + a freetype/gg drawing context) rather
// than the basicfont.Face7x13 path it actually exercises.
func drawLabel(dst *image.RGBA, label string) {
	size := 11.0
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(labelFace)
	c.SetFontSize(size)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(color.Black))
	pt := fixed.P(2, int(size*1.2))
	_, _ = c.DrawString(label, pt)
}
