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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-epd/internal/frame"
	"github.com/ZaparooProject/go-epd/internal/syncutil"
)

// Transport is the byte stream between the host and the controller.
// Implementations only move bytes; framing and reply decoding live in Display.
type Transport interface {
	// Write sends data in full or returns an error.
	Write(data []byte) error

	// Read fills buf or gives up once timeout elapses or ctx is done,
	// returning however many bytes arrived. A short count with a nil
	// error means the controller went quiet.
	Read(ctx context.Context, buf []byte, timeout time.Duration) (int, error)

	// DiscardBuffered drops any unread inbound bytes.
	DiscardBuffered() error

	// SetBaudRate switches the host side of the link.
	SetBaudRate(rate int) error

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// MockTransport provides a mock implementation of Transport for testing.
// Each written frame is decoded and answered with the reply configured for
// its opcode; unconfigured opcodes are answered with "OK".
type MockTransport struct {
	responses map[Opcode][]byte
	queued    map[Opcode][][]byte
	callCount map[Opcode]int
	errorMap  map[Opcode]error
	readErr   error
	pending   []byte
	writes    [][]byte
	history   []string
	baudRate  int
	discards  int
	mu        syncutil.RWMutex
	closed    bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[Opcode][]byte),
		queued:    make(map[Opcode][][]byte),
		callCount: make(map[Opcode]int),
		errorMap:  make(map[Opcode]error),
		baudRate:  115200,
	}
}

// Write implements Transport interface
func (m *MockTransport) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewTransportClosedError("write", "mock")
	}

	m.writes = append(m.writes, append([]byte(nil), data...))

	rawOp, _, err := frame.Decode(data)
	if err != nil {
		m.history = append(m.history, "write:invalid")
		return nil
	}
	op := Opcode(rawOp)
	m.history = append(m.history, "write:"+op.String())
	m.callCount[op]++

	if injected, exists := m.errorMap[op]; exists {
		return injected
	}

	m.pending = append(m.pending, m.replyFor(op)...)
	return nil
}

// replyFor picks the next queued reply, then the fixed reply, then "OK".
// Must be called with the lock held.
func (m *MockTransport) replyFor(op Opcode) []byte {
	if q := m.queued[op]; len(q) > 0 {
		m.queued[op] = q[1:]
		return q[0]
	}
	if response, exists := m.responses[op]; exists {
		return response
	}
	if spec, ok := LookupSpec(op); ok && spec.Reply == ReplyNone {
		return nil
	}
	return []byte(frame.OKReply)
}

// Read implements Transport interface. It never blocks: whatever is
// pending is returned immediately.
func (m *MockTransport) Read(ctx context.Context, buf []byte, _ time.Duration) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, NewTransportClosedError("read", "mock")
	}
	if m.readErr != nil {
		return 0, m.readErr
	}

	n := copy(buf, m.pending)
	m.pending = m.pending[n:]
	m.history = append(m.history, fmt.Sprintf("read:%d", n))
	return n, nil
}

// DiscardBuffered implements Transport interface
func (m *MockTransport) DiscardBuffered() error {
	m.mu.Lock()
	m.pending = nil
	m.discards++
	m.mu.Unlock()
	return nil
}

// SetBaudRate implements Transport interface
func (m *MockTransport) SetBaudRate(rate int) error {
	m.mu.Lock()
	m.baudRate = rate
	m.history = append(m.history, fmt.Sprintf("baud:%d", rate))
	m.mu.Unlock()
	return nil
}

// Close implements Transport interface
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Type implements Transport interface
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// SetResponse configures the reply sent after every frame carrying op
func (m *MockTransport) SetResponse(op Opcode, response []byte) {
	m.mu.Lock()
	m.responses[op] = response
	m.mu.Unlock()
}

// QueueResponses configures one-shot replies for op, used in order before
// falling back to the SetResponse reply
func (m *MockTransport) QueueResponses(op Opcode, responses ...[]byte) {
	m.mu.Lock()
	m.queued[op] = append(m.queued[op], responses...)
	m.mu.Unlock()
}

// SetError configures an error to be returned when writing op
func (m *MockTransport) SetError(op Opcode, err error) {
	m.mu.Lock()
	m.errorMap[op] = err
	m.mu.Unlock()
}

// ClearError removes error injection for an opcode
func (m *MockTransport) ClearError(op Opcode) {
	m.mu.Lock()
	delete(m.errorMap, op)
	m.mu.Unlock()
}

// SetReadError makes every Read fail with err until cleared with nil
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// Inject appends unsolicited bytes to the inbound stream
func (m *MockTransport) Inject(data []byte) {
	m.mu.Lock()
	m.pending = append(m.pending, data...)
	m.mu.Unlock()
}

// GetCallCount returns how many frames carrying op were written
func (m *MockTransport) GetCallCount(op Opcode) int {
	m.mu.RLock()
	count := m.callCount[op]
	m.mu.RUnlock()
	return count
}

// Writes returns a copy of every frame written so far
func (m *MockTransport) Writes() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent frame, or nil
func (m *MockTransport) LastWrite() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[len(m.writes)-1]
}

// History returns the ordered log of writes, reads and rate changes,
// e.g. "write:Handshake", "read:2", "baud:9600"
func (m *MockTransport) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.history...)
}

// BaudRate returns the last rate passed to SetBaudRate
func (m *MockTransport) BaudRate() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baudRate
}

// DiscardCount returns how many times DiscardBuffered was called
func (m *MockTransport) DiscardCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.discards
}

// Reset returns the mock to its freshly constructed state: fixed and
// queued replies, injected errors, recorded calls and the baud rate are
// all cleared, and the transport is reopened.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.responses = make(map[Opcode][]byte)
	m.errorMap = make(map[Opcode]error)
	m.readErr = nil
	m.baudRate = 115200
	m.callCount = make(map[Opcode]int)
	m.queued = make(map[Opcode][][]byte)
	m.pending = nil
	m.writes = nil
	m.history = nil
	m.discards = 0
	m.closed = false
	m.mu.Unlock()
}
