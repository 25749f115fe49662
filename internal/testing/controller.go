// go-epd
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-epd.
//
// go-epd is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-epd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-epd; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package testing provides a wire-level e-paper controller simulator and
// link conditioners for exercising transports without hardware.
//
// VirtualController implements io.ReadWriter: bytes written to it are
// reassembled into frames, decoded, and answered with the same ASCII
// replies the real controller produces, including its quirks.
package testing

import (
	"bytes"
	"strconv"

	"github.com/ZaparooProject/go-epd/internal/frame"
	"github.com/ZaparooProject/go-epd/internal/syncutil"
)

// Controller opcodes. Kept local so this package never imports the driver.
const (
	opHandshake           = 0x00
	opSetBaudRate         = 0x01
	opGetBaudRate         = 0x02
	opGetStorageArea      = 0x06
	opSetStorageArea      = 0x07
	opEnterSleep          = 0x08
	opRefresh             = 0x0A
	opGetDisplayDirection = 0x0C
	opSetDisplayDirection = 0x0D
	opImportFontLibrary   = 0x0E
	opImportImage         = 0x0F
	opSetDrawingColor     = 0x10
	opGetDrawingColor     = 0x11
	opGetEnglishFontSize  = 0x1C
	opGetChineseFontSize  = 0x1D
	opSetEnglishFontSize  = 0x1E
	opSetChineseFontSize  = 0x1F
	opDrawPoint           = 0x20
	opDrawLine            = 0x22
	opFillRectangle       = 0x24
	opDrawRectangle       = 0x25
	opDrawCircle          = 0x26
	opFillCircle          = 0x27
	opDrawTriangle        = 0x28
	opFillTriangle        = 0x29
	opClearScreen         = 0x2E
	opDisplayText         = 0x30
	opDisplayImage        = 0x70
)

// DefaultBaudRate is the rate the controller boots at.
const DefaultBaudRate = 115200

// ControllerState is a snapshot of the simulated controller's registers.
type ControllerState struct {
	Text        string
	Image       string
	BaudRate    int
	Storage     byte
	Direction   byte
	Foreground  byte
	Background  byte
	EnglishFont byte
	ChineseFont byte
	Asleep      bool
}

// VirtualController simulates the e-paper controller at the frame level.
//
// Quirks reproduced by default:
//   - ClearScreen is followed by a second, unsolicited "OK".
//   - GetStorageArea answers "OK" instead of a digit.
//   - Numeric replies are ASCII digits.
//
// Each can be switched off to exercise the driver's other decode paths.
type VirtualController struct {
	rx       bytes.Buffer
	tx       bytes.Buffer
	received []byte
	drawn    []byte
	state    ControllerState
	mu       syncutil.Mutex

	hostBaud      int
	busyPolls     int
	busyRemaining int
	dropped       int

	spuriousClearOK bool
	storageOK       bool
	rawDigits       bool
}

// NewVirtualController returns a controller in its power-on state.
func NewVirtualController() *VirtualController {
	return &VirtualController{
		state:           powerOnState(),
		spuriousClearOK: true,
		storageOK:       true,
	}
}

func powerOnState() ControllerState {
	return ControllerState{
		BaudRate:    DefaultBaudRate,
		Foreground:  0,
		Background:  3,
		EnglishFont: 1,
		ChineseFont: 1,
	}
}

// Write feeds host bytes to the controller. Bytes sent at a baud rate the
// controller is not running at are lost, as on a real line.
func (v *VirtualController) Write(data []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.hostBaud != 0 && v.hostBaud != v.state.BaudRate {
		v.dropped += len(data)
		return len(data), nil
	}
	v.rx.Write(data)
	v.processReceived()
	return len(data), nil
}

// Read drains pending reply bytes. It returns 0, nil when nothing is queued.
func (v *VirtualController) Read(buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.tx.Len() == 0 {
		return 0, nil
	}
	n, _ := v.tx.Read(buf)
	return n, nil
}

// SetHostBaudRate tells the controller what rate the host side is using.
// Zero disables the check.
func (v *VirtualController) SetHostBaudRate(rate int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hostBaud = rate
}

// SetRefreshBusyPolls makes the controller ignore that many queries after
// each Refresh, as it does while the panel is redrawing.
func (v *VirtualController) SetRefreshBusyPolls(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busyPolls = n
}

// SetSpuriousClearOK toggles the extra "OK" after ClearScreen.
func (v *VirtualController) SetSpuriousClearOK(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spuriousClearOK = enabled
}

// SetStorageOKQuirk toggles the "OK" answer to GetStorageArea.
func (v *VirtualController) SetStorageOKQuirk(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.storageOK = enabled
}

// SetRawDigits makes numeric replies raw byte values instead of ASCII.
func (v *VirtualController) SetRawDigits(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rawDigits = enabled
}

// WakeUp brings the controller out of sleep, as the wake line does.
func (v *VirtualController) WakeUp() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Asleep = false
}

// Reset returns the controller to its power-on state and clears buffers.
// Configured quirks are kept.
func (v *VirtualController) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rx.Reset()
	v.tx.Reset()
	v.received = nil
	v.drawn = nil
	v.state = powerOnState()
	v.busyRemaining = 0
	v.dropped = 0
}

// State returns a snapshot of the controller registers.
func (v *VirtualController) State() ControllerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Received returns the opcodes of every frame accepted so far.
func (v *VirtualController) Received() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.received...)
}

// Drawn returns the opcodes of accepted drawing primitives.
func (v *VirtualController) Drawn() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.drawn...)
}

// Dropped returns how many bytes were lost to a baud rate mismatch.
func (v *VirtualController) Dropped() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropped
}

// PendingReply reports whether reply bytes are waiting to be read.
func (v *VirtualController) PendingReply() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tx.Len() > 0
}

// processReceived consumes every complete frame in rx. Bytes that cannot
// start a frame, and frames that fail validation, are skipped one byte at
// a time so the stream resynchronises on the next header.
func (v *VirtualController) processReceived() {
	for v.rx.Len() > 0 {
		data := v.rx.Bytes()
		if data[0] != frame.Header {
			next := bytes.IndexByte(data, frame.Header)
			if next < 0 {
				v.rx.Reset()
				return
			}
			v.rx.Next(next)
			continue
		}

		total, ok := frame.PeekLength(data)
		if !ok {
			return
		}
		if total < frame.MinFrameLength || total > frame.MaxFrameLength {
			v.rx.Next(1)
			continue
		}
		if len(data) < total {
			return
		}

		op, payload, err := frame.Decode(data[:total])
		if err != nil {
			v.rx.Next(1)
			continue
		}
		payload = append([]byte(nil), payload...)
		v.rx.Next(total)
		v.handle(op, payload)
	}
}

//nolint:gocyclo,cyclop,revive // one case per opcode
func (v *VirtualController) handle(op byte, payload []byte) {
	if v.state.Asleep {
		return
	}
	v.received = append(v.received, op)

	if v.busyRemaining > 0 && op != opHandshake {
		v.busyRemaining--
		return
	}

	switch op {
	case opHandshake:
		v.ok()
	case opSetBaudRate:
		if len(payload) == 4 {
			v.state.BaudRate = int(uint32(payload[0])<<24 | uint32(payload[1])<<16 |
				uint32(payload[2])<<8 | uint32(payload[3]))
		}
	case opGetBaudRate:
		v.tx.WriteString(strconv.Itoa(v.state.BaudRate))
	case opGetStorageArea:
		if v.storageOK {
			v.ok()
			return
		}
		v.digit(v.state.Storage)
	case opSetStorageArea:
		v.state.Storage = firstByte(payload)
		v.ok()
	case opEnterSleep:
		v.state.Asleep = true
	case opRefresh:
		v.busyRemaining = v.busyPolls
		v.ok()
	case opGetDisplayDirection:
		v.digit(v.state.Direction)
	case opSetDisplayDirection:
		v.state.Direction = firstByte(payload)
		v.ok()
	case opImportFontLibrary, opImportImage:
		v.ok()
	case opSetDrawingColor:
		if len(payload) == 2 {
			v.state.Foreground, v.state.Background = payload[0], payload[1]
		}
		v.ok()
	case opGetDrawingColor:
		v.digit(v.state.Foreground)
		v.digit(v.state.Background)
	case opGetEnglishFontSize:
		v.digit(v.state.EnglishFont)
	case opGetChineseFontSize:
		v.digit(v.state.ChineseFont)
	case opSetEnglishFontSize:
		v.state.EnglishFont = firstByte(payload)
		v.ok()
	case opSetChineseFontSize:
		v.state.ChineseFont = firstByte(payload)
		v.ok()
	case opDrawPoint, opDrawLine, opFillRectangle, opDrawRectangle,
		opDrawCircle, opFillCircle, opDrawTriangle, opFillTriangle:
		v.drawn = append(v.drawn, op)
		v.ok()
	case opClearScreen:
		v.drawn = nil
		v.state.Text = ""
		v.state.Image = ""
		v.ok()
		if v.spuriousClearOK {
			v.ok()
		}
	case opDisplayText:
		v.state.Text = stringArg(payload)
		v.ok()
	case opDisplayImage:
		v.state.Image = stringArg(payload)
		v.ok()
	}
}

func (v *VirtualController) ok() {
	v.tx.Write(frame.OKReply)
}

func (v *VirtualController) digit(b byte) {
	if v.rawDigits {
		v.tx.WriteByte(b)
		return
	}
	v.tx.WriteByte('0' + b)
}

func firstByte(payload []byte) byte {
	if len(payload) == 0 {
		return 0
	}
	return payload[0]
}

// stringArg extracts the NUL-terminated string that follows the x,y prefix
// of text and image commands.
func stringArg(payload []byte) string {
	if len(payload) < 4 {
		return ""
	}
	s := payload[4:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}
