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

package epd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, cmd Command) []byte {
	t.Helper()
	frm, err := EncodeCommand(cmd)
	require.NoError(t, err)
	return frm
}

func TestMockTransport_DefaultReplies(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	buf := make([]byte, 4)

	require.NoError(t, mock.Write(mustEncode(t, HandshakeCmd{})))
	n, err := mock.Read(context.Background(), buf, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(buf[:n]))

	require.NoError(t, mock.Write(mustEncode(t, EnterSleepCmd{})))
	n, err = mock.Read(context.Background(), buf, time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n, "fire-and-forget commands get no reply")
}

func TestMockTransport_QueuedThenFixed(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueResponses(OpGetBaudRate, []byte("1"), []byte("2"))
	mock.SetResponse(OpGetBaudRate, []byte("3"))
	buf := make([]byte, 1)

	var got []string
	for range 4 {
		require.NoError(t, mock.DiscardBuffered())
		require.NoError(t, mock.Write(mustEncode(t, GetBaudRateCmd{})))
		n, err := mock.Read(context.Background(), buf, 0)
		require.NoError(t, err)
		got = append(got, string(buf[:n]))
	}

	assert.Equal(t, []string{"1", "2", "3", "3"}, got)
	assert.Equal(t, 4, mock.GetCallCount(OpGetBaudRate))
}

func TestMockTransport_ErrorInjection(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	injected := errors.New("boom")
	mock.SetError(OpRefresh, injected)

	require.ErrorIs(t, mock.Write(mustEncode(t, RefreshCmd{})), injected)
	mock.ClearError(OpRefresh)
	require.NoError(t, mock.Write(mustEncode(t, RefreshCmd{})))
}

func TestMockTransport_InvalidFrameIsRecorded(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.Write([]byte{0x01, 0x02}))

	assert.Equal(t, []string{"write:invalid"}, mock.History())
	assert.Equal(t, []byte{0x01, 0x02}, mock.LastWrite())
}

func TestMockTransport_CloseAndReset(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.Close())
	require.ErrorIs(t, mock.Write(mustEncode(t, HandshakeCmd{})), ErrTransportClosed)
	_, err := mock.Read(context.Background(), make([]byte, 2), 0)
	require.ErrorIs(t, err, ErrTransportClosed)

	mock.Reset()
	require.NoError(t, mock.Write(mustEncode(t, HandshakeCmd{})))
	assert.Equal(t, 1, mock.GetCallCount(OpHandshake))
	assert.Equal(t, TransportMock, mock.Type())
}

func TestMockTransport_ResetClearsConfiguration(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse(OpGetBaudRate, []byte("9600"))
	mock.SetError(OpRefresh, errors.New("boom"))
	mock.SetReadError(errors.New("unplugged"))
	require.NoError(t, mock.SetBaudRate(9600))

	mock.Reset()

	require.NoError(t, mock.Write(mustEncode(t, RefreshCmd{})))
	buf := make([]byte, 2)
	n, err := mock.Read(context.Background(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(buf[:n]), "injected read error and fixed replies are gone")

	require.NoError(t, mock.DiscardBuffered())
	require.NoError(t, mock.Write(mustEncode(t, GetBaudRateCmd{})))
	n, err = mock.Read(context.Background(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(buf[:n]))
	assert.Equal(t, 115200, mock.BaudRate())
}

func TestMockTransport_ReadHonorsContext(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Read(ctx, make([]byte, 2), time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
