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
	"time"
)

// readAll keeps reading until want bytes arrive or the attempt budget runs
// out, returning the fragment sizes seen along the way.
func readAll(t *testing.T, link *JitteryLink, want int) (data []byte, fragments []int) {
	t.Helper()
	buf := make([]byte, 256)
	for attempts := 0; len(data) < want && attempts < 1000; attempts++ {
		n, err := link.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if n > 0 {
			data = append(data, buf[:n]...)
			fragments = append(fragments, n)
		}
	}
	return data, fragments
}

func TestJitteryLink_PassThrough(t *testing.T) {
	t.Parallel()

	link := NewJitteryLink(NewVirtualController(), JitterConfig{Seed: 12345})
	if n, err := link.Write(mustFrame(t, opGetBaudRate)); err != nil || n != 9 {
		t.Fatalf("Write() = %d, %v; want 9, nil", n, err)
	}

	data, fragments := readAll(t, link, 6)
	if string(data) != "115200" {
		t.Errorf("data = %q, want %q", data, "115200")
	}
	if len(fragments) != 1 {
		t.Errorf("fragments = %v, want a single read", fragments)
	}
}

func TestJitteryLink_FragmentReads(t *testing.T) {
	t.Parallel()

	ctrl := NewVirtualController()
	link := NewJitteryLink(ctrl, JitterConfig{
		FragmentReads:    true,
		FragmentMinBytes: 1,
		Seed:             42,
	})

	for range 4 {
		if _, err := link.Write(mustFrame(t, opGetBaudRate)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	want := bytes.Repeat([]byte("115200"), 4)
	data, fragments := readAll(t, link, len(want))
	if !bytes.Equal(data, want) {
		t.Errorf("data = %q, want %q", data, want)
	}
	total := 0
	for _, f := range fragments {
		total += f
	}
	if total != len(want) {
		t.Errorf("fragments %v sum to %d, want %d", fragments, total, len(want))
	}
}

func TestJitteryLink_FragmentWrites(t *testing.T) {
	t.Parallel()

	ctrl := NewVirtualController()
	link := NewJitteryLink(ctrl, JitterConfig{FragmentWrites: true, Seed: 7})

	frm := mustStringFrame(t, opDisplayText, "fragmented text survives reassembly")
	n, err := link.Write(frm)
	if err != nil || n != len(frm) {
		t.Fatalf("Write() = %d, %v; want %d, nil", n, err, len(frm))
	}

	if got := ctrl.State().Text; got != "fragmented text survives reassembly" {
		t.Errorf("Text = %q", got)
	}
}

func TestJitteryLink_ChunkBoundary(t *testing.T) {
	t.Parallel()

	ctrl := NewVirtualController()
	link := NewJitteryLink(ctrl, JitterConfig{ChunkBoundary: 4, Seed: 1})

	for range 3 {
		if _, err := link.Write(mustFrame(t, opHandshake)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	data, fragments := readAll(t, link, 6)
	if string(data) != "OKOKOK" {
		t.Errorf("data = %q, want %q", data, "OKOKOK")
	}
	for i, f := range fragments {
		if f > 4 {
			t.Errorf("fragment %d has %d bytes, crosses a 4-byte boundary", i, f)
		}
	}
}

func TestJitteryLink_Stall(t *testing.T) {
	t.Parallel()

	ctrl := NewVirtualController()
	link := NewJitteryLink(ctrl, JitterConfig{
		StallAfterBytes: 2,
		StallDuration:   20 * time.Millisecond,
		Seed:            3,
	})
	if _, err := link.Write(mustFrame(t, opGetBaudRate)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, 16)
	n, _ := link.Read(buf)
	if n != 2 {
		t.Fatalf("first read = %d bytes, want 2 before the stall", n)
	}

	start := time.Now()
	n, _ = link.Read(buf)
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("second read took %v, want a stall of at least 20ms", elapsed)
	}
	if n != 4 {
		t.Errorf("second read = %d bytes, want the remaining 4", n)
	}
}

func TestJitteryLink_ResetStallState(t *testing.T) {
	t.Parallel()

	link := NewJitteryLink(NewVirtualController(), JitterConfig{StallAfterBytes: 10})
	link.bytesReadSinceStall = 15
	link.stallTriggered = true

	link.ResetStallState()

	if link.bytesReadSinceStall != 0 || link.stallTriggered {
		t.Errorf("stall state not reset: bytes=%d triggered=%v",
			link.bytesReadSinceStall, link.stallTriggered)
	}
}

func TestJitteryLink_Discard(t *testing.T) {
	t.Parallel()

	ctrl := NewVirtualController()
	link := NewJitteryLink(ctrl, JitterConfig{FragmentReads: true, FragmentMinBytes: 1, Seed: 99})
	if _, err := link.Write(mustFrame(t, opGetBaudRate)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, 1)
	if n, _ := link.Read(buf); n != 1 {
		t.Fatalf("Read() = %d, want 1", n)
	}
	if link.Buffered() != 5 {
		t.Fatalf("Buffered() = %d, want 5", link.Buffered())
	}

	link.Discard()
	if link.Buffered() != 0 {
		t.Errorf("Buffered() after Discard = %d, want 0", link.Buffered())
	}
}

func TestJitteryLink_Latency(t *testing.T) {
	t.Parallel()

	link := NewJitteryLink(NewVirtualController(), JitterConfig{MaxLatency: 10 * time.Millisecond, Seed: 5})
	start := time.Now()
	for range 10 {
		if _, err := link.Read(make([]byte, 8)); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("10 reads took %v, latency should stay under MaxLatency each", elapsed)
	}
}

func TestDefaultJitterConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultJitterConfig()
	if !cfg.FragmentReads {
		t.Error("DefaultJitterConfig should fragment reads")
	}
	if cfg.FragmentMinBytes != 1 {
		t.Errorf("FragmentMinBytes = %d, want 1", cfg.FragmentMinBytes)
	}
	if cfg.MaxLatency <= 0 {
		t.Errorf("MaxLatency = %v, want positive", cfg.MaxLatency)
	}
}
