// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// EncodeWrite translates the low count bits of bits, least-significant bit
// first, into the pulse train a master emits to write them: for each bit, a
// low pulse of Write1Low or Write0Low followed by a high pulse filling out
// the remainder of the IOTimeSlot.
func EncodeWrite(bits uint64, count int) SignalBuffer {
	buf := make(SignalBuffer, SignalsPerBit*count)
	for i := 0; i < count; i++ {
		bit := (bits >> uint(i)) & 1
		low := Write0Low
		if bit == 1 {
			low = Write1Low
		}
		buf[2*i] = Signal{Level: Low, Period: low}
		buf[2*i+1] = Signal{Level: High, Period: IOTimeSlot - low}
	}
	return buf
}

// EncodeWriteBytes encodes p, one byte at a time (each byte's bits are
// still least-significant-bit first), in order.
func EncodeWriteBytes(p []byte) SignalBuffer {
	buf := make(SignalBuffer, 0, SignalsPerBit*8*len(p))
	for _, b := range p {
		buf = append(buf, EncodeWrite(uint64(b), 8)...)
	}
	return buf
}

// EncodeRead produces the stimulus pulse train a master emits to read
// bitCount bits: bitCount repetitions of a low pulse of ReadLow followed by
// a high pulse of ReadHigh. The slave asserts a '0' by holding the line low
// past ReadHighBeforeSample, or leaves it to the pull-up for a '1'.
func EncodeRead(bitCount int) SignalBuffer {
	buf := make(SignalBuffer, SignalsPerBit*bitCount)
	for i := 0; i < bitCount; i++ {
		buf[2*i] = Signal{Level: Low, Period: ReadLow}
		buf[2*i+1] = Signal{Level: High, Period: ReadHigh}
	}
	return buf
}

// Decode reads bitCount consecutive bit slots starting at signal index from
// and accumulates them least-significant-bit first into the returned value.
// A bit is 1 iff the slot's low-level period is less than
// ReadHighBeforeSample (the slave released the line quickly); it is 0
// otherwise.
//
// Decode fails with ErrInvalidArgument if bitCount is outside [0, 64], and
// with ErrInvalidSignal if from is not a low-edge boundary, if the buffer is
// too short, or if a slot's levels are not (Low, High).
func Decode(signals SignalBuffer, from, bitCount int) (uint64, error) {
	if bitCount < 0 || bitCount > 64 {
		return 0, invalidArgumentErrf("bit count %d out of range [0, 64]", bitCount)
	}
	if from%SignalsPerBit != 0 {
		return 0, invalidSignalErrf("from index %d is not a low-edge boundary", from)
	}
	need := from + SignalsPerBit*bitCount
	if need > len(signals) {
		return 0, invalidSignalErrf("need %d signals from index %d, have %d", SignalsPerBit*bitCount, from, len(signals))
	}

	var v uint64
	for i := 0; i < bitCount; i++ {
		lo := signals[from+2*i]
		hi := signals[from+2*i+1]
		if lo.Level != Low || hi.Level != High {
			return 0, invalidSignalErrf("signal pair %d has levels (%s, %s), want (low, high)", i, lo.Level, hi.Level)
		}
		if lo.Period < ReadHighBeforeSample {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// DecodeBytes decodes byteCount bytes starting at the signal offset
// fromByte*16 (16 signals per byte: 2 per bit, 8 bits per byte).
func DecodeBytes(signals SignalBuffer, fromByte, byteCount int) ([]byte, error) {
	out := make([]byte, byteCount)
	for i := 0; i < byteCount; i++ {
		v, err := Decode(signals, (fromByte+i)*16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
