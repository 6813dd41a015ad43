// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package familycode names the Maxim/Dallas 1-Wire family codes: the low
// byte of a DeviceID, identifying a device's part number independent of its
// serial number.
package familycode

// names maps a family code to the part number(s) it identifies. It is data,
// not algorithmic code, deliberately kept outside the search/enumeration
// core.
var names = map[byte]string{
	0x01: "DS1990A",
	0x02: "DS1991",
	0x04: "DS2404",
	0x05: "DS2405",
	0x06: "DS1993",
	0x08: "DS1992",
	0x09: "DS2502",
	0x0A: "DS1963L",
	0x0B: "DS2403",
	0x0C: "DS1996",
	0x0F: "DS1986",
	0x10: "DS18S20",
	0x12: "DS2406",
	0x14: "DS2430A",
	0x1A: "DS1963S",
	0x1D: "DS2423",
	0x1F: "DS2409",
	0x20: "DS2450",
	0x21: "DS1921",
	0x23: "DS2433",
	0x24: "DS2415",
	0x26: "DS2438",
	0x27: "DS2417",
	0x28: "DS18B20",
	0x29: "DS2408",
	0x2C: "DS2890",
	0x2D: "DS2431",
	0x30: "DS2760",
	0x37: "DS1977",
	0x3A: "DS2413",
	0x41: "DS1922/23",
	0x42: "DS28EA00",
	0x43: "DS28EC20",
}

// Lookup returns the part number associated with family, or "unknown" if
// family is not in the table.
func Lookup(family byte) string {
	if name, ok := names[family]; ok {
		return name
	}
	return "unknown"
}
