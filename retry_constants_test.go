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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryConstants_ConnectionValues(t *testing.T) {
	t.Parallel()

	assert.GreaterOrEqual(t, DefaultConnectionRetries, 1)
	assert.LessOrEqual(t, DefaultConnectionRetries, 10)
	assert.Greater(t, ConnectionMaxBackoff, ConnectionInitialBackoff)
	assert.GreaterOrEqual(t, ConnectionBackoffMultiplier, 1.5)
	assert.LessOrEqual(t, ConnectionJitter, 0.5)

	// the overall timeout must leave room for every attempt to back off
	minExpected := time.Duration(DefaultConnectionRetries) * ConnectionMaxBackoff
	assert.Greater(t, ConnectionRetryTimeout, minExpected)
}

func TestRetryConstants_PulseTiming(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10*time.Microsecond, PulseLowTime)
	assert.Equal(t, 500*time.Microsecond, PulseHighTime)
	assert.Equal(t, 3*time.Second, ResetRecovery)
	assert.Equal(t, 10*time.Millisecond, WakeUpRecovery)
	assert.Greater(t, ResetRecovery, WakeUpRecovery)
}
