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
	"fmt"
	"time"
)

// Opcode is the command byte at offset 3 of every frame.
type Opcode byte

// System control commands
const (
	OpHandshake           Opcode = 0x00
	OpSetBaudRate         Opcode = 0x01
	OpGetBaudRate         Opcode = 0x02
	OpGetStorageArea      Opcode = 0x06
	OpSetStorageArea      Opcode = 0x07
	OpEnterSleep          Opcode = 0x08
	OpRefresh             Opcode = 0x0A
	OpGetDisplayDirection Opcode = 0x0C
	OpSetDisplayDirection Opcode = 0x0D
	OpImportFontLibrary   Opcode = 0x0E
	OpImportImage         Opcode = 0x0F
)

// Display parameter configuration commands
const (
	OpSetDrawingColor    Opcode = 0x10
	OpGetDrawingColor    Opcode = 0x11
	OpGetEnglishFontSize Opcode = 0x1C
	OpGetChineseFontSize Opcode = 0x1D
	OpSetEnglishFontSize Opcode = 0x1E
	OpSetChineseFontSize Opcode = 0x1F
)

// Drawing commands
const (
	OpDrawPoint     Opcode = 0x20
	OpDrawLine      Opcode = 0x22
	OpFillRectangle Opcode = 0x24
	OpDrawRectangle Opcode = 0x25
	OpDrawCircle    Opcode = 0x26
	OpFillCircle    Opcode = 0x27
	OpDrawTriangle  Opcode = 0x28
	OpFillTriangle  Opcode = 0x29
	OpClearScreen   Opcode = 0x2E
	OpDisplayText   Opcode = 0x30
	OpDisplayImage  Opcode = 0x70
)

// ReplyShape describes what the controller sends back for a command.
type ReplyShape int

const (
	// ReplyNone means the command is fire-and-forget.
	ReplyNone ReplyShape = iota
	// ReplyAck is the two-byte ASCII "OK".
	ReplyAck
	// ReplyByte is a single value byte.
	ReplyByte
	// ReplyBytePair is two value bytes (foreground and background color).
	ReplyBytePair
	// ReplyNumeric is a run of ASCII digits of unknown length.
	ReplyNumeric
)

func (s ReplyShape) String() string {
	switch s {
	case ReplyNone:
		return "none"
	case ReplyAck:
		return "ack"
	case ReplyByte:
		return "byte"
	case ReplyBytePair:
		return "byte pair"
	case ReplyNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("ReplyShape(%d)", int(s))
	}
}

// Size returns the number of reply bytes to wait for. ReplyNumeric has no
// fixed size; the session uses its configured numeric read size instead.
func (s ReplyShape) Size() int {
	switch s {
	case ReplyAck, ReplyBytePair:
		return 2
	case ReplyByte:
		return 1
	default:
		return 0
	}
}

// VariablePayload marks commands whose payload ends in a NUL-terminated string.
const VariablePayload = -1

// Settle delays
const (
	// DefaultSettleDelay is how long the controller needs before its reply
	// can be read. Commands without a reply skip it.
	DefaultSettleDelay = 20 * time.Millisecond

	// BaudSwitchDelay is the wait between sending SetBaudRate and switching
	// the host side to the new rate.
	BaudSwitchDelay = 125 * time.Millisecond
)

// CommandSpec is the static description of one opcode.
type CommandSpec struct {
	Name        string
	PayloadSize int // bytes, or VariablePayload
	Reply       ReplyShape
}

var commandSpecs = map[Opcode]CommandSpec{
	OpHandshake:           {Name: "Handshake", Reply: ReplyAck},
	OpSetBaudRate:         {Name: "SetBaudRate", PayloadSize: 4, Reply: ReplyNone},
	OpGetBaudRate:         {Name: "GetBaudRate", Reply: ReplyNumeric},
	OpGetStorageArea:      {Name: "GetStorageArea", Reply: ReplyByte},
	OpSetStorageArea:      {Name: "SetStorageArea", PayloadSize: 1, Reply: ReplyAck},
	OpEnterSleep:          {Name: "EnterSleep", Reply: ReplyNone},
	OpRefresh:             {Name: "Refresh", Reply: ReplyAck},
	OpGetDisplayDirection: {Name: "GetDisplayDirection", Reply: ReplyByte},
	OpSetDisplayDirection: {Name: "SetDisplayDirection", PayloadSize: 1, Reply: ReplyAck},
	OpImportFontLibrary:   {Name: "ImportFontLibrary", Reply: ReplyAck},
	OpImportImage:         {Name: "ImportImage", Reply: ReplyAck},
	OpSetDrawingColor:     {Name: "SetDrawingColor", PayloadSize: 2, Reply: ReplyAck},
	OpGetDrawingColor:     {Name: "GetDrawingColor", Reply: ReplyBytePair},
	OpGetEnglishFontSize:  {Name: "GetEnglishFontSize", Reply: ReplyByte},
	OpGetChineseFontSize:  {Name: "GetChineseFontSize", Reply: ReplyByte},
	OpSetEnglishFontSize:  {Name: "SetEnglishFontSize", PayloadSize: 1, Reply: ReplyAck},
	OpSetChineseFontSize:  {Name: "SetChineseFontSize", PayloadSize: 1, Reply: ReplyAck},
	OpDrawPoint:           {Name: "DrawPoint", PayloadSize: 4, Reply: ReplyAck},
	OpDrawLine:            {Name: "DrawLine", PayloadSize: 8, Reply: ReplyAck},
	OpFillRectangle:       {Name: "FillRectangle", PayloadSize: 8, Reply: ReplyAck},
	OpDrawRectangle:       {Name: "DrawRectangle", PayloadSize: 8, Reply: ReplyAck},
	OpDrawCircle:          {Name: "DrawCircle", PayloadSize: 6, Reply: ReplyAck},
	OpFillCircle:          {Name: "FillCircle", PayloadSize: 6, Reply: ReplyAck},
	OpDrawTriangle:        {Name: "DrawTriangle", PayloadSize: 12, Reply: ReplyAck},
	OpFillTriangle:        {Name: "FillTriangle", PayloadSize: 12, Reply: ReplyAck},
	OpClearScreen:         {Name: "ClearScreen", Reply: ReplyAck},
	OpDisplayText:         {Name: "DisplayText", PayloadSize: VariablePayload, Reply: ReplyAck},
	OpDisplayImage:        {Name: "DisplayImage", PayloadSize: VariablePayload, Reply: ReplyAck},
}

// LookupSpec returns the description of op, or false for unknown opcodes.
func LookupSpec(op Opcode) (CommandSpec, bool) {
	spec, ok := commandSpecs[op]
	return spec, ok
}

// Opcodes returns every supported opcode in ascending order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(commandSpecs))
	for op := range 256 {
		if _, ok := commandSpecs[Opcode(op)]; ok {
			ops = append(ops, Opcode(op))
		}
	}
	return ops
}

func (op Opcode) String() string {
	if spec, ok := commandSpecs[op]; ok {
		return spec.Name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}
