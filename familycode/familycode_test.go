// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package familycode

import "testing"

func TestLookupKnown(t *testing.T) {
	tests := []struct {
		family byte
		want   string
	}{
		{0x01, "DS1990A"},
		{0x10, "DS18S20"},
		{0x28, "DS18B20"},
	}
	for _, test := range tests {
		if got := Lookup(test.family); got != test.want {
			t.Errorf("Lookup(%#02x) = %q, want %q", test.family, got, test.want)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if got := Lookup(0xFF); got != "unknown" {
		t.Errorf("Lookup(0xff) = %q, want %q", got, "unknown")
	}
}
