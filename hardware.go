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

// ControlLine is one GPIO output wired to the controller. The pins package
// provides a periph.io implementation.
type ControlLine interface {
	Out(high bool) error
}

// Reset pulses the reset line and waits for the controller to boot. The
// session returns to StateIdle and needs a new Handshake.
func (d *Display) Reset(ctx context.Context) error {
	if d.resetLine == nil {
		return fmt.Errorf("reset: %w", ErrNoControlLines)
	}
	d.setState(StateIdle)
	if err := d.pulse(ctx, d.resetLine, ResetRecovery); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// WakeUp pulses the wake line to bring the controller out of sleep.
func (d *Display) WakeUp(ctx context.Context) error {
	if d.wakeLine == nil {
		return fmt.Errorf("wake up: %w", ErrNoControlLines)
	}
	if err := d.pulse(ctx, d.wakeLine, WakeUpRecovery); err != nil {
		return fmt.Errorf("wake up: %w", err)
	}
	return nil
}

// pulse drives low, high, low and then waits recovery.
func (d *Display) pulse(ctx context.Context, line ControlLine, recovery time.Duration) error {
	steps := []struct {
		wait  time.Duration
		level bool
	}{
		{level: false, wait: PulseLowTime},
		{level: true, wait: PulseHighTime},
		{level: false, wait: recovery},
	}
	for _, step := range steps {
		if err := line.Out(step.level); err != nil {
			return fmt.Errorf("drive line: %w", err)
		}
		if err := d.sleep(ctx, step.wait); err != nil {
			return err
		}
	}
	Debugf("control line pulsed, waited %v", recovery)
	return nil
}
