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

// Command epdctl drives a serial e-paper controller from the command line.
//
// With arguments it runs them as a single command and exits:
//
//	epdctl -device /dev/ttyUSB0 text 10 10 hello
//
// Without arguments it opens an interactive shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/go-epd"
	"github.com/ZaparooProject/go-epd/internal/config"
	"github.com/ZaparooProject/go-epd/pins"
	"github.com/ZaparooProject/go-epd/transport/uart"
)

// Package-level flag variables
var (
	flagConfig  string
	flagDevice  string
	flagLogDir  string
	flagBaud    int
	flagRetries int
	flagDebug   bool
)

func init() {
	flag.StringVar(&flagConfig, "config", "", "YAML settings file")
	flag.StringVar(&flagDevice, "device", "", "Serial device path (overrides config)")
	flag.IntVar(&flagBaud, "baud", 0, "Host baud rate (overrides config)")
	flag.IntVar(&flagRetries, "retries", 0, "Handshake attempts when connecting (overrides config)")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
	flag.StringVar(&flagLogDir, "log", "", "Write a session log into this directory")
}

type flags struct {
	configPath string
	device     string
	logDir     string
	baud       int
	retries    int
	debug      bool
}

func currentFlags() flags {
	return flags{
		configPath: flagConfig,
		device:     flagDevice,
		logDir:     flagLogDir,
		baud:       flagBaud,
		retries:    flagRetries,
		debug:      flagDebug,
	}
}

// loadSettings reads the config file, if any, and applies flag overrides.
func loadSettings(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.device != "" {
		cfg.Device.Port = f.device
	}
	if f.baud != 0 {
		cfg.Device.BaudRate = f.baud
	}
	if f.retries != 0 {
		cfg.Retry.Attempts = f.retries
	}
	if f.logDir != "" {
		cfg.LogDir = f.logDir
	}
	cfg.Debug = cfg.Debug || f.debug

	if cfg.Device.Port == "" {
		return nil, errors.New("no device: set -device or device.port")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectOptions turns settings into ConnectDisplay options. The transport
// factory is injected so tests can avoid real ports.
func connectOptions(cfg *config.Config, factory epd.TransportFactory) ([]epd.ConnectOption, error) {
	displayOpts := []epd.Option{
		epd.WithReadTimeout(cfg.ReadTimeout()),
		epd.WithSettleDelay(cfg.SettleDelay()),
	}

	resetLine, wakeLine, err := pins.OpenControlLines(cfg.Pins.Reset, cfg.Pins.Wake)
	if err != nil {
		return nil, err
	}
	if resetLine != nil {
		displayOpts = append(displayOpts, epd.WithControlLines(resetLine, wakeLine))
	}

	return []epd.ConnectOption{
		epd.WithTransportFactory(factory),
		epd.WithDisplayOptions(displayOpts...),
		epd.WithConnectionRetries(cfg.Retry.Attempts),
	}, nil
}

func uartFactory(baud int) epd.TransportFactory {
	return func(path string) (epd.Transport, error) {
		transport, err := uart.New(path, baud)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport for %s: %w", path, err)
		}
		return transport, nil
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if cfg.Debug {
		epd.SetDebugEnabled(true)
	}
	if cfg.LogDir != "" {
		path, err := epd.InitSessionLog(cfg.LogDir)
		if err != nil {
			return err
		}
		defer func() { _ = epd.CloseSessionLog() }()
		_, _ = fmt.Fprintf(out, "Session log: %s\n", path)
	}

	opts, err := connectOptions(cfg, uartFactory(cfg.Device.BaudRate))
	if err != nil {
		return err
	}
	display, err := epd.ConnectDisplay(ctx, cfg.Device.Port, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %w", err)
	}
	defer func() {
		if err := display.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close display: %v\n", err)
		}
	}()

	if len(args) > 0 {
		return execute(ctx, display, out, args)
	}
	newShell(ctx, display, cfg.Device.Port).Run()
	return nil
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg, err := loadSettings(currentFlags())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	if err := run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if te := epd.GetTrace(err); te != nil {
			_, _ = fmt.Fprintln(os.Stderr, te.FormatTrace())
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}
