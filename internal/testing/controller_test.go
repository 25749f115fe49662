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

package testing

import (
	"bytes"
	"testing"

	"github.com/ZaparooProject/go-epd/internal/frame"
)

func mustFrame(t *testing.T, op byte, payload ...byte) []byte {
	t.Helper()
	frm, err := frame.Encode(op, payload)
	if err != nil {
		t.Fatalf("Encode(0x%02X) failed: %v", op, err)
	}
	return frm
}

func mustStringFrame(t *testing.T, op byte, s string) []byte {
	t.Helper()
	frm, err := frame.EncodeString(op, []byte{0, 10, 0, 20}, s)
	if err != nil {
		t.Fatalf("EncodeString(0x%02X) failed: %v", op, err)
	}
	return frm
}

func exchange(t *testing.T, v *VirtualController, frm []byte) []byte {
	t.Helper()
	if _, err := v.Write(frm); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	buf := make([]byte, 64)
	n, err := v.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return buf[:n]
}

func TestVirtualController_Handshake(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	handshake := []byte{0xA5, 0x00, 0x09, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0xAC}

	if got := exchange(t, v, handshake); string(got) != "OK" {
		t.Errorf("handshake reply = %q, want %q", got, "OK")
	}
	if !bytes.Equal(v.Received(), []byte{opHandshake}) {
		t.Errorf("Received() = %X, want [00]", v.Received())
	}
}

func TestVirtualController_Queries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup [][]byte
		query byte
		want  string
		raw   bool
	}{
		{name: "baud rate at power on", query: opGetBaudRate, want: "115200"},
		{name: "default colors", query: opGetDrawingColor, want: "03"},
		{name: "default english font", query: opGetEnglishFontSize, want: "1"},
		{name: "default chinese font", query: opGetChineseFontSize, want: "1"},
		{name: "default direction", query: opGetDisplayDirection, want: "0"},
		{
			name:  "colors after set",
			setup: [][]byte{{opSetDrawingColor, 0x01, 0x02}},
			query: opGetDrawingColor,
			want:  "12",
		},
		{
			name:  "raw digits",
			setup: [][]byte{{opSetDrawingColor, 0x03, 0x00}},
			query: opGetDrawingColor,
			want:  "\x03\x00",
			raw:   true,
		},
		{
			name:  "direction after set",
			setup: [][]byte{{opSetDisplayDirection, 0x01}},
			query: opGetDisplayDirection,
			want:  "1",
		},
		{
			name:  "font after set",
			setup: [][]byte{{opSetEnglishFontSize, 0x03}},
			query: opGetEnglishFontSize,
			want:  "3",
		},
		{name: "storage answers OK", query: opGetStorageArea, want: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewVirtualController()
			v.SetRawDigits(tt.raw)
			for _, s := range tt.setup {
				if got := exchange(t, v, mustFrame(t, s[0], s[1:]...)); string(got) != "OK" {
					t.Fatalf("setup 0x%02X reply = %q, want OK", s[0], got)
				}
			}
			if got := exchange(t, v, mustFrame(t, tt.query)); string(got) != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVirtualController_StorageDigitWithoutQuirk(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	v.SetStorageOKQuirk(false)
	exchange(t, v, mustFrame(t, opSetStorageArea, 0x01))

	if got := exchange(t, v, mustFrame(t, opGetStorageArea)); string(got) != "1" {
		t.Errorf("reply = %q, want %q", got, "1")
	}
}

func TestVirtualController_ClearScreenSendsTwoAcks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		want     string
		spurious bool
	}{
		{name: "with quirk", spurious: true, want: "OKOK"},
		{name: "without quirk", spurious: false, want: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewVirtualController()
			v.SetSpuriousClearOK(tt.spurious)
			exchange(t, v, mustFrame(t, opDrawPoint, 0, 1, 0, 2))
			exchange(t, v, mustStringFrame(t, opDisplayText, "hi"))

			if got := exchange(t, v, mustFrame(t, opClearScreen)); string(got) != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if len(v.Drawn()) != 0 {
				t.Errorf("Drawn() = %X, want empty after clear", v.Drawn())
			}
			if v.State().Text != "" {
				t.Errorf("Text = %q, want empty after clear", v.State().Text)
			}
		})
	}
}

func TestVirtualController_TextAndImage(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	exchange(t, v, mustStringFrame(t, opDisplayText, "hello"))
	exchange(t, v, mustStringFrame(t, opDisplayImage, "PIC.BMP"))

	state := v.State()
	if state.Text != "hello" {
		t.Errorf("Text = %q, want %q", state.Text, "hello")
	}
	if state.Image != "PIC.BMP" {
		t.Errorf("Image = %q, want %q", state.Image, "PIC.BMP")
	}
}

func TestVirtualController_SetBaudRate(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	v.SetHostBaudRate(DefaultBaudRate)

	if got := exchange(t, v, mustFrame(t, opSetBaudRate, 0x00, 0x00, 0x25, 0x80)); len(got) != 0 {
		t.Fatalf("SetBaudRate reply = %q, want none", got)
	}
	if v.State().BaudRate != 9600 {
		t.Fatalf("BaudRate = %d, want 9600", v.State().BaudRate)
	}

	handshake := mustFrame(t, opHandshake)
	if got := exchange(t, v, handshake); len(got) != 0 {
		t.Errorf("reply at stale host rate = %q, want none", got)
	}
	if v.Dropped() != len(handshake) {
		t.Errorf("Dropped() = %d, want %d", v.Dropped(), len(handshake))
	}

	v.SetHostBaudRate(9600)
	if got := exchange(t, v, handshake); string(got) != "OK" {
		t.Errorf("reply at new rate = %q, want OK", got)
	}
}

func TestVirtualController_SleepAndWake(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	if got := exchange(t, v, mustFrame(t, opEnterSleep)); len(got) != 0 {
		t.Fatalf("EnterSleep reply = %q, want none", got)
	}
	if !v.State().Asleep {
		t.Fatal("controller should be asleep")
	}
	if got := exchange(t, v, mustFrame(t, opHandshake)); len(got) != 0 {
		t.Errorf("reply while asleep = %q, want none", got)
	}

	v.WakeUp()
	if got := exchange(t, v, mustFrame(t, opHandshake)); string(got) != "OK" {
		t.Errorf("reply after wake = %q, want OK", got)
	}
}

func TestVirtualController_RefreshBusy(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	v.SetRefreshBusyPolls(2)

	if got := exchange(t, v, mustFrame(t, opRefresh)); string(got) != "OK" {
		t.Fatalf("Refresh reply = %q, want OK", got)
	}
	for i := range 2 {
		if got := exchange(t, v, mustFrame(t, opGetBaudRate)); len(got) != 0 {
			t.Errorf("poll %d reply = %q, want none while busy", i, got)
		}
	}
	if got := exchange(t, v, mustFrame(t, opGetBaudRate)); string(got) != "115200" {
		t.Errorf("reply after refresh = %q, want 115200", got)
	}
}

func TestVirtualController_Reassembly(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	stream := append([]byte{0x00, 0xFF}, mustFrame(t, opHandshake)...)
	stream = append(stream, mustFrame(t, opGetEnglishFontSize)...)

	for _, b := range stream {
		if _, err := v.Write([]byte{b}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	buf := make([]byte, 16)
	n, _ := v.Read(buf)
	if string(buf[:n]) != "OK1" {
		t.Errorf("replies = %q, want %q", buf[:n], "OK1")
	}
}

func TestVirtualController_CorruptFrameIgnored(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	bad := mustFrame(t, opHandshake)
	bad[len(bad)-1] ^= 0xFF

	if got := exchange(t, v, bad); len(got) != 0 {
		t.Errorf("reply to corrupt frame = %q, want none", got)
	}
	if got := exchange(t, v, mustFrame(t, opHandshake)); string(got) != "OK" {
		t.Errorf("reply after corrupt frame = %q, want OK", got)
	}
}

func TestVirtualController_Reset(t *testing.T) {
	t.Parallel()

	v := NewVirtualController()
	exchange(t, v, mustFrame(t, opSetDrawingColor, 0x02, 0x01))
	exchange(t, v, mustFrame(t, opEnterSleep))
	if _, err := v.Write(mustFrame(t, opHandshake)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	v.Reset()

	state := v.State()
	if state.Asleep || state.Foreground != 0 || state.Background != 3 {
		t.Errorf("State() after Reset = %+v, want power-on state", state)
	}
	if v.PendingReply() {
		t.Error("PendingReply() should be false after Reset")
	}
	if len(v.Received()) != 0 {
		t.Errorf("Received() = %X, want empty", v.Received())
	}
}
