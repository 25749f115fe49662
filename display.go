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
	"fmt"
	"time"
)

// State is the handshake state of a Display session.
type State int

const (
	// StateIdle means no successful handshake since construction, sleep or reset.
	StateIdle State = iota
	// StateAwaitingHandshake means a handshake frame is in flight.
	StateAwaitingHandshake
	// StateReady means the last handshake was acknowledged.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingHandshake:
		return "awaiting handshake"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Display is a session with one e-paper controller over a Transport.
//
// Thread Safety: Display is NOT thread-safe. Every command is a
// write-then-read exchange on a shared serial link, so all methods must be
// called from a single goroutine or protected with external synchronization.
//
// Controller state (colors, font sizes, storage area) is never cached:
// every getter queries the controller.
type Display struct {
	transport       Transport
	resetLine       ControlLine
	wakeLine        ControlLine
	trace           *TraceBuffer
	sleep           func(ctx context.Context, d time.Duration) error
	portName        string
	readTimeout     time.Duration
	settleDelay     time.Duration
	numericReadSize int
	traceSize       int
	state           State
}

// New creates a session on transport. It performs no I/O; call Handshake
// before drawing.
func New(transport Transport, opts ...Option) (*Display, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	d := &Display{
		transport:       transport,
		sleep:           sleepWithContext,
		readTimeout:     DefaultReadTimeout,
		settleDelay:     DefaultSettleDelay,
		numericReadSize: DefaultNumericReadSize,
		traceSize:       DefaultTraceSize,
		state:           StateIdle,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.portName == "" {
		if named, ok := transport.(portNamer); ok {
			d.portName = named.PortName()
		}
	}

	d.trace = NewTraceBuffer(string(transport.Type()), d.portName, d.traceSize)
	return d, nil
}

// portNamer is implemented by transports that know their device path.
type portNamer interface {
	PortName() string
}

// State returns the current handshake state.
func (d *Display) State() State {
	return d.state
}

// Transport returns the underlying transport.
func (d *Display) Transport() Transport {
	return d.transport
}

// Close closes the underlying transport.
func (d *Display) Close() error {
	d.setState(StateIdle)
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

func (d *Display) setState(s State) {
	if d.state != s {
		Debugf("state %s -> %s", d.state, s)
	}
	d.state = s
}

// Exec runs one command: discard stale input, write the frame, wait the
// settle delay, read the reply and decode it. A short reply is returned as
// a ResponseTimeout together with an ErrShortRead error. Any failure is
// wrapped in a *TraceableError holding the wire exchange.
//
// Exec does not apply command quirks or update the session state; use the
// typed methods for that.
func (d *Display) Exec(ctx context.Context, cmd Command) (Response, error) {
	frm, err := EncodeCommand(cmd)
	if err != nil {
		return Response{}, err
	}

	op := cmd.Opcode()
	spec, _ := LookupSpec(op)

	d.trace.Clear()

	if err := d.transport.DiscardBuffered(); err != nil {
		return Response{}, d.fail(op, asReadError(d.portName, err))
	}

	d.trace.RecordTX(op, frm)
	debugWire(TraceTX, op, frm)
	if err := d.transport.Write(frm); err != nil {
		return Response{}, d.fail(op, asWriteError(d.portName, err))
	}

	if spec.Reply == ReplyNone {
		return Response{Kind: ResponseNone}, nil
	}

	if err := d.sleep(ctx, d.settleDelay); err != nil {
		return Response{}, d.fail(op, err)
	}

	return d.readReply(ctx, op, spec.Reply)
}

func (d *Display) readReply(ctx context.Context, op Opcode, shape ReplyShape) (Response, error) {
	size, need := shape.Size(), shape.Size()
	if shape == ReplyNumeric {
		size, need = d.numericReadSize, 1
	}

	buf := make([]byte, size)
	n, err := d.transport.Read(ctx, buf, d.readTimeout)
	raw := buf[:n]
	d.trace.RecordRX(op, shape, raw, need)
	if n > 0 {
		debugWire(TraceRX, op, raw)
	}
	if err != nil {
		return Response{Kind: ResponseTimeout, Raw: raw}, d.fail(op, asReadError(d.portName, err))
	}

	resp := decodeReply(shape, raw)
	if resp.Kind == ResponseTimeout {
		return resp, d.fail(op, NewShortReadError("read", d.portName, n, need))
	}
	return resp, nil
}

// fail tags err with the opcode and attaches the wire trace.
func (d *Display) fail(op Opcode, err error) error {
	Debugf("%s failed: %v", op, err)
	return d.trace.WrapError(fmt.Errorf("%s: %w", op, err))
}

func asWriteError(port string, err error) error {
	if isTransportSentinel(err) || isContextError(err) {
		return err
	}
	return NewTransportWriteError("write", port, err)
}

func asReadError(port string, err error) error {
	if isTransportSentinel(err) || isContextError(err) {
		return err
	}
	return NewTransportReadError("read", port, err)
}

func isTransportSentinel(err error) bool {
	return errors.Is(err, ErrTransportWrite) ||
		errors.Is(err, ErrTransportRead) ||
		errors.Is(err, ErrTransportClosed) ||
		errors.Is(err, ErrShortRead)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// expectAck converts a non-"OK" reply into an error.
func (d *Display) expectAck(ctx context.Context, cmd Command) error {
	resp, err := d.Exec(ctx, cmd)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return d.trace.WrapError(NewUnexpectedReplyError(cmd.Opcode(), resp.Raw))
	}
	return nil
}

// queryByte runs a single-byte query and returns the raw value byte.
func (d *Display) queryByte(ctx context.Context, cmd Command) (byte, error) {
	resp, err := d.Exec(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return resp.Byte(0), nil
}
