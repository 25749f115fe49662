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
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// Error categories for error handling and caller-side retry logic
var (
	// Encoding errors - never retryable, the command itself is wrong
	ErrEncoding         = errors.New("encoding error")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Transport errors - potentially retryable
	ErrTransportWrite  = errors.New("transport write failed")
	ErrTransportRead   = errors.New("transport read failed")
	ErrTransportClosed = errors.New("transport is closed")
	ErrShortRead       = errors.New("short read")

	// Reply errors
	ErrUnexpectedReply = errors.New("unexpected reply")

	// Hardware control errors
	ErrNoControlLines = errors.New("no control lines configured")
)

// ErrorType represents the category of error for retry logic
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error (special handling)
	ErrorTypeTimeout
)

// TransportError wraps transport-level errors with additional context
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Port or device identifier
	Type      ErrorType // Error category
	Retryable bool      // Whether the error is retryable
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is potentially retryable. The
// session never retries on its own; this is for callers building a policy.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrShortRead),
		errors.Is(err, ErrUnexpectedReply):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the serial link is gone and
// further commands are pointless until it is reopened. This is distinct
// from IsRetryable which is about a single command.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) && te.Type == ErrorTypePermanent {
		return true
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// Windows error codes for device disconnection detection.
// These are defined here because they're not available on non-Windows platforms.
const (
	errAccessDenied syscall.Errno = 5   // ERROR_ACCESS_DENIED
	errGenFailure   syscall.Errno = 31  // ERROR_GEN_FAILURE
	errNoSuchDevice syscall.Errno = 433 // ERROR_NO_SUCH_DEVICE
)

// isDeviceGoneError checks for OS-level errors indicating device disconnection.
// These errors occur when a USB serial adapter is unplugged during I/O.
func isDeviceGoneError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		//nolint:exhaustive // Only checking specific device-gone errors, not all errno values
		switch errno {
		case syscall.EIO, syscall.ENXIO, syscall.ENODEV:
			return true
		}

		if runtime.GOOS == "windows" {
			//nolint:exhaustive // Only checking specific device-gone errors, not all errno values
			switch errno {
			case errAccessDenied, errGenFailure, errNoSuchDevice:
				return true
			}
		}
	}

	return false
}

// Error constructors for consistent error creation

// NewTransportError creates a standard transport error with consistent formatting
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewShortReadError creates a short read error. got and want are byte counts.
func NewShortReadError(op, port string, got, want int) *TransportError {
	return NewTransportError(op, port,
		fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, got, want), ErrorTypeTimeout)
}

// NewTransportWriteError creates a write error (transient)
func NewTransportWriteError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, wrapCause(ErrTransportWrite, cause), ErrorTypeTransient)
}

// NewTransportReadError creates a read error (transient)
func NewTransportReadError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, wrapCause(ErrTransportRead, cause), ErrorTypeTransient)
}

// NewTransportClosedError creates an error for I/O on a closed transport (permanent)
func NewTransportClosedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportClosed, ErrorTypePermanent)
}

// NewUnexpectedReplyError reports reply bytes that are not what the command
// expects, such as a status other than "OK".
func NewUnexpectedReplyError(op Opcode, raw []byte) error {
	return fmt.Errorf("%s: %w [%s]", op, ErrUnexpectedReply, formatHexBytes(raw))
}

func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// TraceDirection tells which way a traced frame travelled.
type TraceDirection string

const (
	TraceTX TraceDirection = "TX"
	TraceRX TraceDirection = "RX"
)

// TraceEntry is one frame written to the controller or one reply read back.
// Shape and Want are set on replies only: Want is the fewest bytes the
// reply shape accepts, so a reply holding less was cut off by the read
// timeout.
type TraceEntry struct {
	At        time.Time
	Direction TraceDirection
	Data      []byte
	Op        Opcode
	Shape     ReplyShape
	Want      int
}

// Short reports whether a reply entry holds fewer bytes than its shape needs.
func (e TraceEntry) Short() bool {
	return e.Direction == TraceRX && len(e.Data) < e.Want
}

// String renders the entry as "TX Handshake A5 00 09 ..." or, for replies,
// "RX GetDrawingColor 03 [byte pair, short 1/2]".
func (e TraceEntry) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "%s %s %s", e.Direction, e.Op, formatHexBytes(e.Data))
	if e.Direction != TraceRX {
		return sb.String()
	}
	_, _ = fmt.Fprintf(&sb, " [%s", e.Shape)
	if e.Short() {
		_, _ = fmt.Fprintf(&sb, ", short %d/%d", len(e.Data), e.Want)
	}
	_ = sb.WriteByte(']')
	return sb.String()
}

// TraceableError carries the frames and replies exchanged by the command
// that failed. Extract it with GetTrace or errors.As:
//
//	if te := epd.GetTrace(err); te != nil {
//	    fmt.Fprintln(os.Stderr, te.FormatTrace())
//	}
type TraceableError struct {
	Err       error
	Transport string
	Port      string
	Trace     []TraceEntry
}

func (e *TraceableError) Error() string {
	return e.Err.Error()
}

func (e *TraceableError) Unwrap() error {
	return e.Err
}

// FormatTrace lists the exchange one entry per line, oldest first.
func (e *TraceableError) FormatTrace() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("[%s:%s] (no trace data)", e.Transport, e.Port)
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "[%s:%s] %d frames on the wire:\n", e.Transport, e.Port, len(e.Trace))
	for _, entry := range e.Trace {
		_, _ = fmt.Fprintf(&sb, "  %s %s\n", entry.At.Format("15:04:05.000"), entry)
	}
	return sb.String()
}

// maxHexBytes caps hex dumps; DisplayText frames run to a kilobyte.
const maxHexBytes = 32

func formatHexBytes(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	shown := data
	if len(shown) > maxHexBytes {
		shown = shown[:maxHexBytes]
	}
	parts := make([]string, len(shown))
	for i, b := range shown {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	out := strings.Join(parts, " ")
	if len(data) > maxHexBytes {
		out += fmt.Sprintf(" ... (%d bytes total)", len(data))
	}
	return out
}

// TraceBuffer is a ring of the most recent wire entries for one session.
type TraceBuffer struct {
	transport string
	port      string
	ring      []TraceEntry
	next      int
	wrapped   bool
}

// NewTraceBuffer creates a ring holding up to size entries. A size of zero
// or less selects DefaultTraceSize.
func NewTraceBuffer(transport, port string, size int) *TraceBuffer {
	if size <= 0 {
		size = DefaultTraceSize
	}
	return &TraceBuffer{
		transport: transport,
		port:      port,
		ring:      make([]TraceEntry, size),
	}
}

// RecordTX records a frame sent for op.
func (tb *TraceBuffer) RecordTX(op Opcode, frm []byte) {
	tb.add(TraceEntry{Direction: TraceTX, Op: op, Data: frm})
}

// RecordRX records the reply read for op. want is the fewest bytes shape
// accepts; pass the bytes actually read even when there are none.
func (tb *TraceBuffer) RecordRX(op Opcode, shape ReplyShape, data []byte, want int) {
	tb.add(TraceEntry{Direction: TraceRX, Op: op, Shape: shape, Data: data, Want: want})
}

func (tb *TraceBuffer) add(e TraceEntry) {
	e.At = time.Now()
	e.Data = append([]byte(nil), e.Data...)
	tb.ring[tb.next] = e
	tb.next++
	if tb.next == len(tb.ring) {
		tb.next = 0
		tb.wrapped = true
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (tb *TraceBuffer) Entries() []TraceEntry {
	if !tb.wrapped {
		return append([]TraceEntry(nil), tb.ring[:tb.next]...)
	}
	out := make([]TraceEntry, 0, len(tb.ring))
	out = append(out, tb.ring[tb.next:]...)
	return append(out, tb.ring[:tb.next]...)
}

// WrapError attaches the recorded entries to err. It returns nil for a
// nil err.
func (tb *TraceBuffer) WrapError(err error) error {
	if err == nil {
		return nil
	}
	return &TraceableError{
		Err:       err,
		Transport: tb.transport,
		Port:      tb.port,
		Trace:     tb.Entries(),
	}
}

// Clear empties the ring.
func (tb *TraceBuffer) Clear() {
	clear(tb.ring)
	tb.next = 0
	tb.wrapped = false
}

// HasTrace reports whether err carries a wire trace.
func HasTrace(err error) bool {
	return GetTrace(err) != nil
}

// GetTrace returns the wire trace attached to err, or nil.
func GetTrace(err error) *TraceableError {
	var te *TraceableError
	if errors.As(err, &te) {
		return te
	}
	return nil
}
