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

import "time"

// Connection retry constants control ConnectDisplay and the CLI.
const (
	// DefaultConnectionRetries is the number of attempts to open and
	// handshake with a display.
	DefaultConnectionRetries = 3
	// ConnectionInitialBackoff is the initial delay between connection attempts.
	ConnectionInitialBackoff = 100 * time.Millisecond
	// ConnectionMaxBackoff is the maximum delay between connection attempts.
	ConnectionMaxBackoff = 500 * time.Millisecond
	// ConnectionBackoffMultiplier is the exponential backoff multiplier.
	ConnectionBackoffMultiplier = 2.0
	// ConnectionJitter is the random jitter factor (0.0-1.0).
	ConnectionJitter = 0.1
	// ConnectionRetryTimeout is the overall timeout for all connection attempts.
	ConnectionRetryTimeout = 10 * time.Second
)

// Control line pulse timing. Reset and WakeUp drive the same pulse and
// differ only in how long the controller needs afterwards.
const (
	PulseLowTime   = 10 * time.Microsecond
	PulseHighTime  = 500 * time.Microsecond
	ResetRecovery  = 3 * time.Second
	WakeUpRecovery = 10 * time.Millisecond
)

// DefaultRefreshPollInterval is how often WaitRefreshed probes the
// controller while the panel is still updating.
const DefaultRefreshPollInterval = 250 * time.Millisecond
