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

// Package pins drives the controller's reset and wake lines from host GPIO.
package pins

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ZaparooProject/go-epd"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when no GPIO pin has the requested name.
var ErrPinNotFound = errors.New("gpio pin not found")

var (
	hostOnce sync.Once
	errHost  error
)

func initHost() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			errHost = fmt.Errorf("failed to initialize periph host: %w", err)
		}
	})
	return errHost
}

// Line is a GPIO output used as an epd.ControlLine.
type Line struct {
	pin gpio.PinOut
}

var _ epd.ControlLine = (*Line)(nil)

// New wraps an already-acquired pin.
func New(pin gpio.PinOut) *Line {
	return &Line{pin: pin}
}

// Open looks up a pin by name ("GPIO17", "P1_11", "17") and drives it low.
func Open(name string) (*Line, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	line := New(pin)
	if err := line.Out(false); err != nil {
		return nil, err
	}
	epd.Debugf("GPIO: %s ready as control line", pin.Name())
	return line, nil
}

// Out drives the line high or low.
func (l *Line) Out(high bool) error {
	level := gpio.Low
	if high {
		level = gpio.High
	}
	if err := l.pin.Out(level); err != nil {
		return fmt.Errorf("gpio %s: %w", l.pin.Name(), err)
	}
	return nil
}

// Name returns the underlying pin name.
func (l *Line) Name() string {
	return l.pin.Name()
}

// OpenControlLines opens the reset and wake lines. Both names empty means
// the board has no control lines wired, and nil lines are returned.
func OpenControlLines(reset, wake string) (resetLine, wakeLine epd.ControlLine, err error) {
	if reset == "" && wake == "" {
		return nil, nil, nil
	}
	if reset == "" || wake == "" {
		return nil, nil, fmt.Errorf("%w: reset and wake pins must be set together", epd.ErrInvalidParameter)
	}

	r, err := Open(reset)
	if err != nil {
		return nil, nil, fmt.Errorf("reset line: %w", err)
	}
	w, err := Open(wake)
	if err != nil {
		return nil, nil, fmt.Errorf("wake line: %w", err)
	}
	return r, w, nil
}
