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
)

// TransportFactory opens a transport for a device path.
type TransportFactory func(path string) (Transport, error)

// ConnectOption represents a functional option for ConnectDisplay
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for display connection
type connectConfig struct {
	transportFactory  TransportFactory
	displayOptions    []Option
	connectionRetries int
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithDisplayOptions adds session-level options
func WithDisplayOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.displayOptions = append(c.displayOptions, opts...)
		return nil
	}
}

// WithConnectionRetries sets the number of handshake attempts
func WithConnectionRetries(maxAttempts int) ConnectOption {
	return func(c *connectConfig) error {
		if maxAttempts < 1 {
			return fmt.Errorf("connection retries must be at least 1, got %d", maxAttempts)
		}
		c.connectionRetries = maxAttempts
		return nil
	}
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{
		connectionRetries: DefaultConnectionRetries,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	return config, nil
}

// ConnectDisplay opens the transport for path, creates a Display on it and
// performs the first Handshake, retrying transient failures. On error the
// transport is closed.
//
// Example usage:
//
//	display, err := epd.ConnectDisplay(ctx, "/dev/ttyUSB0",
//	    epd.WithTransportFactory(func(path string) (epd.Transport, error) {
//	        return uart.New(path, 115200)
//	    }))
func ConnectDisplay(ctx context.Context, path string, opts ...ConnectOption) (*Display, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, err
	}
	if config.transportFactory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := config.transportFactory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	displayOpts := append([]Option{WithPortName(path)}, config.displayOptions...)
	display, err := New(transport, displayOpts...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create display: %w", err)
	}

	err = RetryWithConfig(ctx, ConnectionRetryConfig(config.connectionRetries), func() error {
		return display.Handshake(ctx)
	})
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", config.connectionRetries, err)
	}

	return display, nil
}
