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

// Package config loads the YAML settings file used by epdctl.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level settings document.
type Config struct {
	Device DeviceConfig `yaml:"device"`
	Pins   PinsConfig   `yaml:"pins"`
	Retry  RetryConfig  `yaml:"retry"`
	LogDir string       `yaml:"log_dir"`
	Debug  bool         `yaml:"debug"`
}

// DeviceConfig describes the serial link to the controller.
type DeviceConfig struct {
	Port          string `yaml:"port"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	SettleMs      int    `yaml:"settle_ms"`
}

// PinsConfig names the GPIO pins wired to the reset and wake inputs.
// Both empty means no control lines.
type PinsConfig struct {
	Reset string `yaml:"reset"`
	Wake  string `yaml:"wake"`
}

// RetryConfig controls how often the initial handshake is attempted.
type RetryConfig struct {
	Attempts int `yaml:"attempts"`
}

// Defaults
const (
	DefaultBaudRate      = 115200
	DefaultReadTimeoutMs = 100
	DefaultSettleMs      = 20
	DefaultAttempts      = 3
)

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			BaudRate:      DefaultBaudRate,
			ReadTimeoutMs: DefaultReadTimeoutMs,
			SettleMs:      DefaultSettleMs,
		},
		Retry: RetryConfig{Attempts: DefaultAttempts},
	}
}

// Load reads path on top of Default and validates the result. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and pairings. It does not modify cfg.
func (c *Config) Validate() error {
	switch {
	case c.Device.BaudRate <= 0:
		return fmt.Errorf("%w: device.baud_rate must be positive, got %d", ErrInvalid, c.Device.BaudRate)
	case c.Device.ReadTimeoutMs <= 0:
		return fmt.Errorf("%w: device.read_timeout_ms must be positive, got %d", ErrInvalid, c.Device.ReadTimeoutMs)
	case c.Device.SettleMs < 0:
		return fmt.Errorf("%w: device.settle_ms must not be negative, got %d", ErrInvalid, c.Device.SettleMs)
	case (c.Pins.Reset == "") != (c.Pins.Wake == ""):
		return fmt.Errorf("%w: pins.reset and pins.wake must be set together", ErrInvalid)
	case c.Retry.Attempts < 1:
		return fmt.Errorf("%w: retry.attempts must be at least 1, got %d", ErrInvalid, c.Retry.Attempts)
	}
	return nil
}

// ReadTimeout returns the per-reply read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Device.ReadTimeoutMs) * time.Millisecond
}

// SettleDelay returns the wait between a write and its reply.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Device.SettleMs) * time.Millisecond
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
