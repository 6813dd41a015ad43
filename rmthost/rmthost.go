// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rmthost is a reference onewire.Transceiver implementation that
// bit-bangs 1-Wire timing over a single periph.io/x/conn/v3 GPIO pin instead
// of a dedicated RMT-style pulse peripheral. It exists so onewire.Bus has a
// real, swappable body to run against on host platforms (Raspberry Pi and
// similar) that periph.io/x/host/v3 supports; production firmware targets
// would plug in their own hardware-RMT-backed Transceiver instead.
package rmthost

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/tinygpio/onewire"
)

// Init wraps periph.io/x/host/v3's host.Init(), registering the platform's
// GPIO pins so New can resolve them by name. Call it once before New, the
// same bootstrap step the teacher's example programs run before opening any
// periph.io peripheral.
func Init() error {
	_, err := host.Init()
	return err
}

// Opts contains options to pass to New.
type Opts struct {
	// CaptureInterval is how often the capture goroutine polls the pin level
	// while StartReading is active. Lower values improve timing resolution
	// at the cost of CPU usage.
	CaptureInterval time.Duration
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	CaptureInterval: time.Microsecond,
}

// Adapter drives a single open-drain GPIO pin per the onewire.Transceiver
// contract, using time.Sleep for pulse timing and a background goroutine for
// signal capture. It is a reference implementation, not a precision one:
// Go's scheduler gives microsecond-scale pulses only approximate timing,
// adequate for a host-side controller talking to tolerant slave devices.
type Adapter struct {
	opts Opts

	outputPin int
	inputPin  int
	pin       gpio.PinIO
	idleLevel gpio.Level

	idleThresholdUS uint16
	openDrain       bool

	capture chan onewire.SignalBuffer
	stopCh  chan struct{}
	reading bool
}

// New resolves name via gpioreg (as with gpioreg.ByName("22") in periph.io
// example programs) and returns an Adapter ready to be configured. Callers
// must call Init before New.
func New(name string, opts *Opts) (*Adapter, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("rmthost: no GPIO pin named %q", name)
	}
	pin, ok := p.(gpio.PinIO)
	if !ok {
		return nil, fmt.Errorf("rmthost: pin %q does not support bidirectional use", name)
	}
	return &Adapter{opts: o, pin: pin, idleThresholdUS: onewire.IdleThreshold}, nil
}

// ConfigureOutput implements onewire.Transceiver. channelID is accepted for
// interface compatibility but unused: a bit-banged pin has no channel
// concept.
func (a *Adapter) ConfigureOutput(pin int, idleLevel onewire.Level, channelID *int) error {
	a.outputPin = pin
	a.idleLevel = toGPIOLevel(idleLevel)
	return nil
}

// ConfigureInput implements onewire.Transceiver. filterTicksThreshold and
// bufferSize are accepted for interface compatibility but unused by the
// polling-based capture loop below.
func (a *Adapter) ConfigureInput(pin int, idleLevel onewire.Level, idleThresholdUS uint16, filterTicksThreshold int, bufferSize int) error {
	a.inputPin = pin
	a.idleThresholdUS = idleThresholdUS
	return nil
}

// MakeBidirectional implements onewire.Transceiver: it requires the
// previously configured input and output channel numbers to match (both
// model the same physical pin) and sets the pin's pull mode.
func (a *Adapter) MakeBidirectional(input, output int, pullUp bool) error {
	if input != output {
		return errors.New("rmthost: input and output pin must be the same physical pin")
	}
	pull := gpio.Float
	if pullUp {
		pull = gpio.PullUp
	}
	if err := a.pin.In(pull, gpio.NoEdge); err != nil {
		return fmt.Errorf("rmthost: %w", err)
	}
	a.openDrain = true
	return a.release()
}

// Write implements onewire.Transceiver, driving s onto the pin one signal at
// a time: Low pulls the line to ground, High releases it to the pull-up (or
// to the pin's own Out(High) if open-drain has been disabled via
// SetOpenDrain).
func (a *Adapter) Write(s onewire.SignalBuffer) error {
	for _, sig := range s {
		var err error
		switch sig.Level {
		case onewire.Low:
			err = a.pin.Out(gpio.Low)
		default:
			err = a.release()
		}
		if err != nil {
			return fmt.Errorf("rmthost: %w", err)
		}
		time.Sleep(time.Duration(sig.Period) * time.Microsecond)
	}
	return a.release()
}

// release drives the pin to its idle (high) state: Out(High) when open-drain
// is disabled (strong pull-up), or back to input mode to let the passive
// pull-up resistor take over.
func (a *Adapter) release() error {
	if !a.openDrain {
		return a.pin.Out(gpio.High)
	}
	return a.pin.In(gpio.PullUp, gpio.NoEdge)
}

// StartReading implements onewire.Transceiver: it launches a goroutine that
// polls the pin level every CaptureInterval, accumulating (level, duration)
// runs until the line has held steady for at least IdleThreshold, then
// delivers the accumulated SignalBuffer to the channel Read drains.
func (a *Adapter) StartReading() error {
	if a.reading {
		return errors.New("rmthost: already reading")
	}
	a.capture = make(chan onewire.SignalBuffer, 1)
	a.stopCh = make(chan struct{})
	a.reading = true
	go a.captureLoop(a.capture, a.stopCh)
	return nil
}

func (a *Adapter) captureLoop(out chan<- onewire.SignalBuffer, stop <-chan struct{}) {
	var buf onewire.SignalBuffer
	last := a.pin.Read()
	runStart := time.Now()
	idle := time.Duration(a.idleThresholdUS) * time.Microsecond

	ticker := time.NewTicker(a.opts.CaptureInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			lvl := a.pin.Read()
			if lvl != last {
				buf = append(buf, onewire.Signal{Level: fromGPIOLevel(last), Period: uint16(now.Sub(runStart) / time.Microsecond)})
				last = lvl
				runStart = now
				continue
			}
			if now.Sub(runStart) >= idle && len(buf) > 0 {
				buf = append(buf, onewire.Signal{Level: fromGPIOLevel(last), Period: uint16(now.Sub(runStart) / time.Microsecond)})
				select {
				case out <- buf:
				default:
				}
				buf = nil
				runStart = now
			}
		}
	}
}

// Read implements onewire.Transceiver, blocking until captureLoop delivers a
// completed frame.
func (a *Adapter) Read() (onewire.SignalBuffer, error) {
	if !a.reading {
		return nil, errors.New("rmthost: StartReading was not called")
	}
	s, ok := <-a.capture
	if !ok {
		return nil, errors.New("rmthost: capture channel closed")
	}
	return s, nil
}

// StopReading implements onewire.Transceiver.
func (a *Adapter) StopReading() error {
	if !a.reading {
		return nil
	}
	close(a.stopCh)
	a.reading = false
	return nil
}

// SetIdleThreshold implements onewire.Transceiver.
func (a *Adapter) SetIdleThreshold(us uint16) { a.idleThresholdUS = us }

// IdleThreshold implements onewire.Transceiver.
func (a *Adapter) IdleThreshold() uint16 { return a.idleThresholdUS }

// SetOpenDrain implements onewire.Transceiver.
func (a *Adapter) SetOpenDrain(on bool) error {
	a.openDrain = on
	return a.release()
}

// Close implements onewire.Transceiver.
func (a *Adapter) Close() error {
	return a.StopReading()
}

func toGPIOLevel(l onewire.Level) gpio.Level {
	if l == onewire.High {
		return gpio.High
	}
	return gpio.Low
}

func fromGPIOLevel(l gpio.Level) onewire.Level {
	if l == gpio.High {
		return onewire.High
	}
	return onewire.Low
}

var _ onewire.Transceiver = (*Adapter)(nil)
