// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the package's error taxonomy. Use errors.Is to
// test for a specific kind; a returned error may additionally implement
// BusError or CRCError when the failure is a bus-level condition rather
// than a programming mistake.
var (
	// ErrBusClosed is returned by any operation invoked after Close.
	ErrBusClosed = errors.New("onewire: bus closed")
	// ErrNoDevice is returned when reset found no device present before an
	// operation that requires one.
	ErrNoDevice = errors.New("onewire: no device present")
	// ErrBusError is returned when a search observed a (1,1) response
	// outside of an alarm-only search.
	ErrBusError = errors.New("onewire: bus error")
	// ErrCRCError is returned when a search delivered a device ID whose
	// high byte does not match the CRC-8 of its low 7 bytes.
	ErrCRCError = errors.New("onewire: crc error")
	// ErrInvalidSignal is returned by Decode when the captured signals do
	// not have the shape a decodable response requires.
	ErrInvalidSignal = errors.New("onewire: invalid signal")
	// ErrInvalidArgument is returned for out-of-range bit counts.
	ErrInvalidArgument = errors.New("onewire: invalid argument")
	// ErrTransport is returned when the underlying Transceiver reports a
	// failure.
	ErrTransport = errors.New("onewire: transport error")
)

// BusError is implemented by errors representing a bus-level protocol
// failure (as opposed to ErrTransport, a peripheral I/O failure, or
// ErrInvalidArgument, a programming mistake).
type BusError interface {
	error
	OneWireBusError() bool
}

// CRCError is implemented by errors representing a failed CRC-8 check on a
// device ID discovered during a search.
type CRCError interface {
	error
	OneWireCRCError() bool
}

type busError struct{ error }

func (busError) OneWireBusError() bool { return true }

func busErrorf(format string, a ...interface{}) error {
	return busError{fmt.Errorf("%w: "+format, append([]interface{}{ErrBusError}, a...)...)}
}

type crcError struct{ error }

func (crcError) OneWireCRCError() bool { return true }

func crcErrorf(format string, a ...interface{}) error {
	return crcError{fmt.Errorf("%w: "+format, append([]interface{}{ErrCRCError}, a...)...)}
}

func closedErr() error {
	return ErrBusClosed
}

func transportErrf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrTransport}, a...)...)
}

func invalidArgumentErrf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidArgument}, a...)...)
}

func invalidSignalErrf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSignal}, a...)...)
}

func noDeviceErrf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNoDevice}, a...)...)
}
