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

import (
	"encoding/binary"
	"fmt"
)

// Command is one controller operation, ready to be framed. The set of
// commands is closed: only the types in this package implement it.
type Command interface {
	// Opcode returns the command byte.
	Opcode() Opcode
	// Payload returns the bytes between the opcode and the trailer.
	Payload() []byte
	// Validate checks field values against their wire domains.
	Validate() error

	command()
}

// stringCommand is implemented by commands whose payload ends in a
// NUL-terminated string. The codec frames those separately so it can
// reject oversized or NUL-carrying strings.
type stringCommand interface {
	prefix() []byte
	text() string
}

// Point is a coordinate pair on the panel.
type Point struct {
	X, Y uint16
}

func appendPoints(dst []byte, pts ...Point) []byte {
	for _, p := range pts {
		dst = binary.BigEndian.AppendUint16(dst, p.X)
		dst = binary.BigEndian.AppendUint16(dst, p.Y)
	}
	return dst
}

func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s %v", ErrInvalidParameter, field, value)
}

// noPayload is embedded by commands that carry nothing but their opcode.
type noPayload struct{}

func (noPayload) Payload() []byte { return nil }
func (noPayload) Validate() error { return nil }
func (noPayload) command()        {}

// HandshakeCmd checks that the controller is listening.
type HandshakeCmd struct{ noPayload }

// GetBaudRateCmd queries the controller's serial rate.
type GetBaudRateCmd struct{ noPayload }

// GetStorageAreaCmd queries the active storage area.
type GetStorageAreaCmd struct{ noPayload }

// EnterSleepCmd puts the controller to sleep. It is never acknowledged.
type EnterSleepCmd struct{ noPayload }

// RefreshCmd pushes the frame buffer to the panel.
type RefreshCmd struct{ noPayload }

// GetDisplayDirectionCmd queries the panel orientation.
type GetDisplayDirectionCmd struct{ noPayload }

// ImportFontLibraryCmd copies fonts from microSD to NAND flash.
type ImportFontLibraryCmd struct{ noPayload }

// ImportImageCmd copies images from microSD to NAND flash.
type ImportImageCmd struct{ noPayload }

// GetDrawingColorCmd queries the foreground and background colors.
type GetDrawingColorCmd struct{ noPayload }

// GetEnglishFontSizeCmd queries the English font size.
type GetEnglishFontSizeCmd struct{ noPayload }

// GetChineseFontSizeCmd queries the Chinese font size.
type GetChineseFontSizeCmd struct{ noPayload }

// ClearScreenCmd clears the frame buffer to the background color.
type ClearScreenCmd struct{ noPayload }

func (HandshakeCmd) Opcode() Opcode           { return OpHandshake }
func (GetBaudRateCmd) Opcode() Opcode         { return OpGetBaudRate }
func (GetStorageAreaCmd) Opcode() Opcode      { return OpGetStorageArea }
func (EnterSleepCmd) Opcode() Opcode          { return OpEnterSleep }
func (RefreshCmd) Opcode() Opcode             { return OpRefresh }
func (GetDisplayDirectionCmd) Opcode() Opcode { return OpGetDisplayDirection }
func (ImportFontLibraryCmd) Opcode() Opcode   { return OpImportFontLibrary }
func (ImportImageCmd) Opcode() Opcode         { return OpImportImage }
func (GetDrawingColorCmd) Opcode() Opcode     { return OpGetDrawingColor }
func (GetEnglishFontSizeCmd) Opcode() Opcode  { return OpGetEnglishFontSize }
func (GetChineseFontSizeCmd) Opcode() Opcode  { return OpGetChineseFontSize }
func (ClearScreenCmd) Opcode() Opcode         { return OpClearScreen }

// SetBaudRateCmd changes the controller's serial rate.
type SetBaudRateCmd struct {
	Rate uint32
}

func (SetBaudRateCmd) Opcode() Opcode { return OpSetBaudRate }

func (c SetBaudRateCmd) Payload() []byte {
	return binary.BigEndian.AppendUint32(nil, c.Rate)
}

func (c SetBaudRateCmd) Validate() error {
	if c.Rate == 0 {
		return invalid("baud rate", c.Rate)
	}
	return nil
}

func (SetBaudRateCmd) command() {}

// SetStorageAreaCmd selects the storage area.
type SetStorageAreaCmd struct {
	Area StorageArea
}

func (SetStorageAreaCmd) Opcode() Opcode    { return OpSetStorageArea }
func (c SetStorageAreaCmd) Payload() []byte { return []byte{byte(c.Area)} }
func (SetStorageAreaCmd) command()          {}

func (c SetStorageAreaCmd) Validate() error {
	if !c.Area.valid() {
		return invalid("storage area", c.Area)
	}
	return nil
}

// SetDisplayDirectionCmd sets the panel orientation.
type SetDisplayDirectionCmd struct {
	Direction DisplayDirection
}

func (SetDisplayDirectionCmd) Opcode() Opcode    { return OpSetDisplayDirection }
func (c SetDisplayDirectionCmd) Payload() []byte { return []byte{byte(c.Direction)} }
func (SetDisplayDirectionCmd) command()          {}

func (c SetDisplayDirectionCmd) Validate() error {
	if !c.Direction.valid() {
		return invalid("display direction", c.Direction)
	}
	return nil
}

// SetDrawingColorCmd sets the foreground and background colors.
type SetDrawingColorCmd struct {
	Foreground Color
	Background Color
}

func (SetDrawingColorCmd) Opcode() Opcode { return OpSetDrawingColor }
func (SetDrawingColorCmd) command()       {}

func (c SetDrawingColorCmd) Payload() []byte {
	return []byte{byte(c.Foreground), byte(c.Background)}
}

func (c SetDrawingColorCmd) Validate() error {
	if !c.Foreground.valid() {
		return invalid("foreground color", c.Foreground)
	}
	if !c.Background.valid() {
		return invalid("background color", c.Background)
	}
	return nil
}

// SetFontSizeCmd sets the English or Chinese font size. Chinese selects
// which of the two opcodes is sent.
type SetFontSizeCmd struct {
	Size    FontSize
	Chinese bool
}

func (c SetFontSizeCmd) Opcode() Opcode {
	if c.Chinese {
		return OpSetChineseFontSize
	}
	return OpSetEnglishFontSize
}

func (c SetFontSizeCmd) Payload() []byte { return []byte{byte(c.Size)} }
func (SetFontSizeCmd) command()          {}

func (c SetFontSizeCmd) Validate() error {
	if !c.Size.valid() {
		return invalid("font size", c.Size)
	}
	return nil
}

// DrawPointCmd sets a single pixel in the foreground color.
type DrawPointCmd struct {
	At Point
}

func (DrawPointCmd) Opcode() Opcode    { return OpDrawPoint }
func (c DrawPointCmd) Payload() []byte { return appendPoints(nil, c.At) }
func (DrawPointCmd) Validate() error   { return nil }
func (DrawPointCmd) command()          {}

// LineCmd draws a line from From to To.
type LineCmd struct {
	From Point
	To   Point
}

func (LineCmd) Opcode() Opcode    { return OpDrawLine }
func (c LineCmd) Payload() []byte { return appendPoints(nil, c.From, c.To) }
func (LineCmd) Validate() error   { return nil }
func (LineCmd) command()          {}

// RectangleCmd draws or fills the rectangle spanned by two corners.
type RectangleCmd struct {
	From Point
	To   Point
	Fill bool
}

func (c RectangleCmd) Opcode() Opcode {
	if c.Fill {
		return OpFillRectangle
	}
	return OpDrawRectangle
}

func (c RectangleCmd) Payload() []byte { return appendPoints(nil, c.From, c.To) }
func (RectangleCmd) Validate() error   { return nil }
func (RectangleCmd) command()          {}

// CircleCmd draws or fills a circle.
type CircleCmd struct {
	Center Point
	Radius uint16
	Fill   bool
}

func (c CircleCmd) Opcode() Opcode {
	if c.Fill {
		return OpFillCircle
	}
	return OpDrawCircle
}

func (c CircleCmd) Payload() []byte {
	return binary.BigEndian.AppendUint16(appendPoints(nil, c.Center), c.Radius)
}

func (CircleCmd) Validate() error { return nil }
func (CircleCmd) command()        {}

// TriangleCmd draws or fills a triangle.
type TriangleCmd struct {
	Vertices [3]Point
	Fill     bool
}

func (c TriangleCmd) Opcode() Opcode {
	if c.Fill {
		return OpFillTriangle
	}
	return OpDrawTriangle
}

func (c TriangleCmd) Payload() []byte { return appendPoints(nil, c.Vertices[:]...) }
func (TriangleCmd) Validate() error   { return nil }
func (TriangleCmd) command()          {}

// DisplayTextCmd renders Text at At using the current font sizes. Text is
// sent as raw bytes; the controller expects ASCII or GB2312.
type DisplayTextCmd struct {
	Text string
	At   Point
}

func (DisplayTextCmd) Opcode() Opcode    { return OpDisplayText }
func (c DisplayTextCmd) Payload() []byte { return append(append(c.prefix(), c.Text...), 0x00) }
func (DisplayTextCmd) Validate() error   { return nil }
func (DisplayTextCmd) command()          {}
func (c DisplayTextCmd) prefix() []byte  { return appendPoints(nil, c.At) }
func (c DisplayTextCmd) text() string    { return c.Text }

// DisplayImageCmd shows the bitmap named File from the active storage area.
type DisplayImageCmd struct {
	File string
	At   Point
}

func (DisplayImageCmd) Opcode() Opcode    { return OpDisplayImage }
func (c DisplayImageCmd) Payload() []byte { return append(append(c.prefix(), c.File...), 0x00) }
func (DisplayImageCmd) Validate() error   { return nil }
func (DisplayImageCmd) command()          {}
func (c DisplayImageCmd) prefix() []byte  { return appendPoints(nil, c.At) }
func (c DisplayImageCmd) text() string    { return c.File }
