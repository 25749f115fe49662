// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package epd

import "fmt"

// Color is one of the four grey levels the controller can draw with.
type Color byte

// Colors, darkest first.
const (
	Black     Color = 0x00
	DarkGrey  Color = 0x01
	LightGrey Color = 0x02
	White     Color = 0x03
)

// StorageArea selects where the controller looks up fonts and images.
type StorageArea byte

// Storage areas
const (
	NandFlash StorageArea = 0x00
	MicroSD   StorageArea = 0x01
)

// DisplayDirection is the panel orientation.
type DisplayDirection byte

// Display directions
const (
	Normal   DisplayDirection = 0x00
	Inverted DisplayDirection = 0x01
)

// FontSize is a dot-matrix font height.
type FontSize byte

// Font sizes. There is no zero value on the wire.
const (
	FontSize32 FontSize = 0x01
	FontSize48 FontSize = 0x02
	FontSize64 FontSize = 0x03
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case DarkGrey:
		return "dark grey"
	case LightGrey:
		return "light grey"
	case White:
		return "white"
	default:
		return fmt.Sprintf("Color(0x%02X)", byte(c))
	}
}

func (s StorageArea) String() string {
	switch s {
	case NandFlash:
		return "NAND flash"
	case MicroSD:
		return "microSD"
	default:
		return fmt.Sprintf("StorageArea(0x%02X)", byte(s))
	}
}

func (d DisplayDirection) String() string {
	switch d {
	case Normal:
		return "normal"
	case Inverted:
		return "inverted"
	default:
		return fmt.Sprintf("DisplayDirection(0x%02X)", byte(d))
	}
}

func (f FontSize) String() string {
	switch f {
	case FontSize32:
		return "32 dots"
	case FontSize48:
		return "48 dots"
	case FontSize64:
		return "64 dots"
	default:
		return fmt.Sprintf("FontSize(0x%02X)", byte(f))
	}
}

// valid reports whether c is one of the defined colors.
func (c Color) valid() bool { return c <= White }

func (s StorageArea) valid() bool { return s <= MicroSD }

func (d DisplayDirection) valid() bool { return d <= Inverted }

func (f FontSize) valid() bool { return f >= FontSize32 && f <= FontSize64 }

// replyDigit normalizes a single reply byte. The firmware answers queries
// with ASCII digits ('0'..'3'), but raw values are accepted too.
func replyDigit(b byte) byte {
	if b >= '0' && b <= '9' {
		return b - '0'
	}
	return b
}

// decodeColor maps a reply byte to a Color. Anything unrecognized decodes
// as Black.
func decodeColor(b byte) Color {
	if c := Color(replyDigit(b)); c.valid() {
		return c
	}
	return Black
}

// decodeStorageArea maps a reply byte to a StorageArea, NandFlash otherwise.
// Some firmware answers "OK" to the query; the 'O' lands here.
func decodeStorageArea(b byte) StorageArea {
	if s := StorageArea(replyDigit(b)); s.valid() {
		return s
	}
	return NandFlash
}

// decodeDisplayDirection maps a reply byte to a DisplayDirection, Normal otherwise.
func decodeDisplayDirection(b byte) DisplayDirection {
	if d := DisplayDirection(replyDigit(b)); d.valid() {
		return d
	}
	return Normal
}

// decodeFontSize maps a reply byte to a FontSize, FontSize32 otherwise.
func decodeFontSize(b byte) FontSize {
	if f := FontSize(replyDigit(b)); f.valid() {
		return f
	}
	return FontSize32
}
