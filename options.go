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
	"context"
	"fmt"
	"time"
)

// Option configures a Display at construction time.
type Option func(*Display) error

// Defaults for a new Display
const (
	DefaultReadTimeout     = 100 * time.Millisecond
	DefaultNumericReadSize = 20
	DefaultTraceSize       = 16
)

// WithReadTimeout sets how long a reply may take to arrive in full once
// the settle delay has passed.
func WithReadTimeout(timeout time.Duration) Option {
	return func(d *Display) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: read timeout %v", ErrInvalidParameter, timeout)
		}
		d.readTimeout = timeout
		return nil
	}
}

// WithSettleDelay sets the wait between writing a command and reading its
// reply. Zero disables the wait.
func WithSettleDelay(delay time.Duration) Option {
	return func(d *Display) error {
		if delay < 0 {
			return fmt.Errorf("%w: settle delay %v", ErrInvalidParameter, delay)
		}
		d.settleDelay = delay
		return nil
	}
}

// WithNumericReadSize sets the read size for replies made of ASCII digits.
func WithNumericReadSize(size int) Option {
	return func(d *Display) error {
		if size < 1 {
			return fmt.Errorf("%w: numeric read size %d", ErrInvalidParameter, size)
		}
		d.numericReadSize = size
		return nil
	}
}

// WithControlLines attaches the reset and wake GPIO lines. Either may be
// nil if it is not wired.
func WithControlLines(reset, wake ControlLine) Option {
	return func(d *Display) error {
		d.resetLine = reset
		d.wakeLine = wake
		return nil
	}
}

// WithTraceSize sets how many wire entries are kept for TraceableError.
func WithTraceSize(size int) Option {
	return func(d *Display) error {
		if size < 1 {
			return fmt.Errorf("%w: trace size %d", ErrInvalidParameter, size)
		}
		d.traceSize = size
		return nil
	}
}

// WithPortName labels errors and traces with the port the transport is
// attached to.
func WithPortName(name string) Option {
	return func(d *Display) error {
		d.portName = name
		return nil
	}
}

// withSleep replaces the wait used for settle delays and control line
// pulses. Tests use it to run without real delays.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Display) error {
		d.sleep = sleep
		return nil
	}
}
