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
	"io"
	"math/rand/v2"
	"time"

	"github.com/ZaparooProject/go-epd/internal/syncutil"
)

// JitterConfig configures a JitteryLink.
type JitterConfig struct {
	MaxLatency time.Duration
	// FragmentMinBytes is the smallest read fragment returned.
	FragmentMinBytes int
	// ChunkBoundary splits reads at multiples of this many bytes, the way
	// USB-serial bridges deliver data in fixed packets. Zero disables it.
	ChunkBoundary   int
	StallAfterBytes int
	StallDuration   time.Duration
	Seed            uint64
	FragmentReads   bool
	// FragmentWrites splits each host write into random pieces before it
	// reaches the backend, exercising frame reassembly on the far side.
	FragmentWrites bool
}

// DefaultJitterConfig returns a configuration with short random latency
// and byte-level read fragmentation.
func DefaultJitterConfig() JitterConfig {
	return JitterConfig{
		MaxLatency:       5 * time.Millisecond,
		FragmentReads:    true,
		FragmentMinBytes: 1,
	}
}

// JitteryLink wraps an io.ReadWriter to behave like a USB-UART bridge:
// replies arrive late and in fragments, and long transfers may stall.
// Data pulled from the backend is buffered, so fragmentation never loses
// bytes.
type JitteryLink struct {
	backend             io.ReadWriter
	rng                 *rand.Rand
	readBuf             []byte
	config              JitterConfig
	mu                  syncutil.Mutex
	bytesReadSinceStall int
	stallTriggered      bool
}

// NewJitteryLink wraps backend with the given conditions. A zero Seed
// picks a random one.
func NewJitteryLink(backend io.ReadWriter, config JitterConfig) *JitteryLink {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // Test code, not crypto
	}
	if config.FragmentMinBytes < 1 {
		config.FragmentMinBytes = 1
	}

	return &JitteryLink{
		backend: backend,
		config:  config,
		rng:     rand.New(rand.NewPCG(seed, seed^0xDEADBEEF)), //nolint:gosec // Test code, not crypto
		readBuf: make([]byte, 0, 1024),
	}
}

// Write forwards data to the backend, in random pieces when FragmentWrites
// is set. It reports the full length on success.
func (j *JitteryLink) Write(data []byte) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.config.FragmentWrites {
		return j.backend.Write(data) //nolint:wrapcheck // Pass-through wrapper
	}

	written := 0
	for written < len(data) {
		piece := 1 + j.rng.IntN(len(data)-written)
		n, err := j.backend.Write(data[written : written+piece])
		written += n
		if err != nil {
			return written, err //nolint:wrapcheck // Pass-through wrapper
		}
	}
	return written, nil
}

// Read returns buffered backend data with latency, stalls and
// fragmentation applied.
func (j *JitteryLink) Read(buf []byte) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.delay()

	if len(j.readBuf) == 0 {
		tmp := make([]byte, 1024)
		n, err := j.backend.Read(tmp)
		if err != nil {
			return 0, err //nolint:wrapcheck // Pass-through wrapper
		}
		if n == 0 {
			return 0, nil
		}
		j.readBuf = append(j.readBuf, tmp[:n]...)
	}

	toReturn := j.fragmentSize(min(len(j.readBuf), len(buf)))
	copy(buf, j.readBuf[:toReturn])
	j.readBuf = j.readBuf[toReturn:]
	j.bytesReadSinceStall += toReturn

	return toReturn, nil
}

func (j *JitteryLink) delay() {
	if j.config.MaxLatency <= 0 {
		return
	}
	if d := time.Duration(j.rng.Int64N(int64(j.config.MaxLatency) + 1)); d > 0 {
		time.Sleep(d)
	}
}

// fragmentSize limits a read of n bytes according to the stall, chunk and
// fragmentation settings.
func (j *JitteryLink) fragmentSize(n int) int {
	if j.config.StallAfterBytes > 0 && !j.stallTriggered {
		if j.bytesReadSinceStall >= j.config.StallAfterBytes {
			j.stallTriggered = true
			if j.config.StallDuration > 0 {
				time.Sleep(j.config.StallDuration)
			}
		} else {
			n = min(n, j.config.StallAfterBytes-j.bytesReadSinceStall)
		}
	}

	if chunk := j.config.ChunkBoundary; chunk > 0 && n > 0 {
		untilBoundary := chunk - j.bytesReadSinceStall%chunk
		n = min(n, untilBoundary)
	}

	if j.config.FragmentReads && n > j.config.FragmentMinBytes {
		n = j.config.FragmentMinBytes + j.rng.IntN(n-j.config.FragmentMinBytes+1)
	}
	return n
}

// Discard drops buffered read data, mirroring an input buffer flush.
func (j *JitteryLink) Discard() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.readBuf = j.readBuf[:0]
}

// Buffered returns the number of bytes held back from earlier reads.
func (j *JitteryLink) Buffered() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.readBuf)
}

// ResetStallState re-arms the stall so the next StallAfterBytes bytes
// trigger it again.
func (j *JitteryLink) ResetStallState() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.bytesReadSinceStall = 0
	j.stallTriggered = false
}
