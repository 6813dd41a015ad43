// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command onewire-trace enumerates the devices on a 1-Wire bus attached to a
// host GPIO pin and writes a timing diagram of the bus traffic, either as a
// PNG file or as an ANSI waterfall on the terminal.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/tinygpio/onewire"
	"github.com/tinygpio/onewire/familycode"
	"github.com/tinygpio/onewire/rmthost"
	"github.com/tinygpio/onewire/trace"
)

func main() {
	pin := flag.String("pin", "GPIO4", "GPIO pin name the bus data line is wired to")
	pullUp := flag.Bool("pullup", true, "enable the pin's internal pull-up")
	out := flag.String("png", "", "write a timing-diagram PNG to this path instead of the terminal")
	alarm := flag.Bool("alarm", false, "restrict enumeration to devices in an alarm state")
	flag.Parse()

	if err := rmthost.Init(); err != nil {
		log.Fatal(err)
	}
	t, err := rmthost.New(*pin, nil)
	if err != nil {
		log.Fatal(err)
	}

	var frames []onewire.SignalBuffer
	opts := onewire.DefaultBusOptions
	opts.Pin = 0
	opts.PullUp = *pullUp
	opts.Tracer = func(dir onewire.TraceDirection, s onewire.SignalBuffer) {
		frames = append(frames, s)
	}

	b, err := onewire.Open(t, &opts)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	err = b.Enumerate(*alarm, nil, func(id onewire.DeviceID) onewire.SearchControl {
		fmt.Printf("%s  family=%#02x (%s)\n", id, id.Family(), familycode.Lookup(id.Family()))
		return onewire.Continue
	})
	if err != nil {
		log.Fatal(err)
	}

	if *out != "" {
		writePNG(*out, frames)
		return
	}
	term := trace.NewTerminal()
	for _, f := range frames {
		if _, err := term.Write(f); err != nil {
			log.Fatal(err)
		}
	}
}

func writePNG(path string, frames []onewire.SignalBuffer) {
	var all onewire.SignalBuffer
	for _, f := range frames {
		all = append(all, f...)
	}
	img := trace.RenderPNG(all, "onewire-trace")

	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatal(err)
	}
}
