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

//go:build !prod

package epd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sleepRecorder stands in for real waits so session tests run instantly.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

// createMockDisplay creates a display on a mock transport with recorded,
// zero-length sleeps. Unconfigured opcodes are answered with "OK".
func createMockDisplay(t *testing.T, opts ...Option) (*Display, *MockTransport, *sleepRecorder) {
	t.Helper()
	mockTransport := NewMockTransport()
	rec := &sleepRecorder{}
	display, err := New(mockTransport, append([]Option{withSleep(rec.sleep)}, opts...)...)
	require.NoError(t, err)
	return display, mockTransport, rec
}
