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

// Package uart implements the controller link over a serial port.
package uart

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ZaparooProject/go-epd"
	"github.com/ZaparooProject/go-epd/internal/syncutil"
	"go.bug.st/serial"
)

// DefaultBaudRate is the controller's power-on rate.
const DefaultBaudRate = 115200

// Transport implements the epd.Transport interface for UART communication.
type Transport struct {
	port     serial.Port
	portName string
	mu       syncutil.Mutex
	closed   bool
}

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// pollInterval is the serial read timeout used while waiting for reply
// bytes. Windows serial drivers return early less reliably, so it polls
// more slowly there.
func pollInterval() time.Duration {
	if isWindows() {
		return 20 * time.Millisecond
	}
	return 10 * time.Millisecond
}

func serialMode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// New opens portName at baudRate, 8N1. A baudRate of zero selects
// DefaultBaudRate.
func New(portName string, baudRate int) (*Transport, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(portName, serialMode(baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(pollInterval()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	epd.Debugf("UART: opened %s at %d baud", portName, baudRate)
	return newTransport(port, portName), nil
}

// Open is an epd.TransportFactory that opens a port at DefaultBaudRate.
func Open(portName string) (epd.Transport, error) {
	return New(portName, DefaultBaudRate)
}

func newTransport(port serial.Port, portName string) *Transport {
	return &Transport{
		port:     port,
		portName: portName,
	}
}

// Write sends data in full and waits for it to leave the output buffer.
func (t *Transport) Write(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return epd.NewTransportClosedError("write", t.portName)
	}

	written := 0
	for written < len(data) {
		n, err := t.port.Write(data[written:])
		if err != nil {
			if isInterruptedSystemCall(err) {
				continue
			}
			return t.classify("write", err, epd.NewTransportWriteError)
		}
		if n == 0 {
			return epd.NewTransportWriteError("write", t.portName, errors.New("port accepted no bytes"))
		}
		written += n
	}

	return t.drainWithRetry("write")
}

// Read fills buf until it is full, timeout elapses, or ctx is done.
// Whatever arrived is returned; a short count with a nil error means
// the controller stopped sending.
func (t *Transport) Read(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, epd.NewTransportClosedError("read", t.portName)
	}

	deadline := time.Now().Add(timeout)
	total := 0
	for total < len(buf) {
		if err := ctx.Err(); err != nil {
			return total, err //nolint:wrapcheck // context errors pass through unchanged
		}
		if !time.Now().Before(deadline) {
			break
		}

		n, err := t.port.Read(buf[total:])
		if err != nil {
			if isInterruptedSystemCall(err) {
				continue
			}
			return total, t.classify("read", err, epd.NewTransportReadError)
		}
		total += n
	}

	return total, nil
}

// DiscardBuffered drops unread inbound bytes.
func (t *Transport) DiscardBuffered() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return epd.NewTransportClosedError("discard", t.portName)
	}
	if err := t.port.ResetInputBuffer(); err != nil {
		return t.classify("discard", err, epd.NewTransportReadError)
	}
	return nil
}

// SetBaudRate reconfigures the host side of the link. Callers are
// responsible for telling the controller first.
func (t *Transport) SetBaudRate(rate int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return epd.NewTransportClosedError("set baud rate", t.portName)
	}
	if err := t.port.SetMode(serialMode(rate)); err != nil {
		return fmt.Errorf("UART set baud rate %d failed: %w", rate, err)
	}
	epd.Debugf("UART: %s now at %d baud", t.portName, rate)
	return nil
}

// Close closes the port. Closing twice is a no-op.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() epd.TransportType {
	return epd.TransportUART
}

// PortName returns the device path the transport was opened on.
func (t *Transport) PortName() string {
	return t.portName
}

// classify maps a serial error onto the driver's error taxonomy. A port
// the library reports as closed is permanent; everything else goes
// through mk.
func (t *Transport) classify(op string, err error, mk func(op, port string, cause error) *epd.TransportError) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		t.closed = true
		return epd.NewTransportClosedError(op, t.portName)
	}
	te := mk(op, t.portName, err)
	if epd.IsFatal(err) {
		te.Type = epd.ErrorTypePermanent
		te.Retryable = false
	}
	return te
}

// isInterruptedSystemCall checks if an error is caused by an interrupted system call
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry performs port drain with retry logic for interrupted system calls
func (t *Transport) drainWithRetry(operation string) error {
	const maxRetries = 3
	baseDelay := 2 * time.Millisecond

	for attempt := range maxRetries {
		err := t.port.Drain()
		if err == nil {
			return nil
		}

		if isInterruptedSystemCall(err) && attempt < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<attempt)) // 2ms, 4ms
			continue
		}

		return t.classify(operation, fmt.Errorf("drain: %w", err), epd.NewTransportWriteError)
	}

	return epd.NewTransportWriteError(operation, t.portName,
		fmt.Errorf("drain failed after %d retries", maxRetries))
}
