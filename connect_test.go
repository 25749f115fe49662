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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockFactory(mock *MockTransport) TransportFactory {
	return func(string) (Transport, error) {
		return mock, nil
	}
}

func TestConnectDisplay_Success(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	display, err := ConnectDisplay(context.Background(), "/dev/ttyUSB0",
		WithTransportFactory(mockFactory(mock)),
		WithDisplayOptions(WithSettleDelay(0)))

	require.NoError(t, err)
	assert.Equal(t, StateReady, display.State())
	assert.Equal(t, 1, mock.GetCallCount(OpHandshake))
	assert.Equal(t, "/dev/ttyUSB0", display.trace.port)
}

func TestConnectDisplay_RetriesHandshake(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueResponses(OpHandshake, nil)

	display, err := ConnectDisplay(context.Background(), "com3",
		WithTransportFactory(mockFactory(mock)),
		WithDisplayOptions(WithSettleDelay(0)),
		WithConnectionRetries(2))

	require.NoError(t, err)
	assert.Equal(t, StateReady, display.State())
	assert.Equal(t, 2, mock.GetCallCount(OpHandshake))
}

func TestConnectDisplay_ClosesTransportOnFailure(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse(OpHandshake, nil)

	_, err := ConnectDisplay(context.Background(), "com3",
		WithTransportFactory(mockFactory(mock)),
		WithDisplayOptions(WithSettleDelay(0)),
		WithConnectionRetries(1))

	require.ErrorIs(t, err, ErrShortRead)
	require.ErrorIs(t, mock.Write([]byte{0}), ErrTransportClosed)
}

func TestConnectDisplay_OptionErrors(t *testing.T) {
	t.Parallel()

	_, err := ConnectDisplay(context.Background(), "x")
	require.Error(t, err, "factory is required")

	_, err = ConnectDisplay(context.Background(), "x", WithConnectionRetries(0))
	require.Error(t, err)

	factoryErr := errors.New("no such port")
	_, err = ConnectDisplay(context.Background(), "x",
		WithTransportFactory(func(string) (Transport, error) { return nil, factoryErr }))
	require.ErrorIs(t, err, factoryErr)

	mock := NewMockTransport()
	_, err = ConnectDisplay(context.Background(), "x",
		WithTransportFactory(mockFactory(mock)),
		WithDisplayOptions(WithReadTimeout(-1)))
	require.ErrorIs(t, err, ErrInvalidParameter)
}
