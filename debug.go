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
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-epd/internal/syncutil"
)

// debugEnabled controls whether debug output also goes to the console.
// EPD_DEBUG or DEBUG in the environment turns it on at startup.
var debugEnabled atomic.Bool

// sessionMu guards the session log writer, which debug_file.go opens and
// closes while a Display may be logging.
var (
	sessionMu        syncutil.Mutex
	sessionLogWriter io.Writer
)

func init() {
	if os.Getenv("EPD_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled.Store(true)
	}
}

// Debugf prints debug information.
// Always writes to session log file (if initialized) with timestamp.
// Only prints to console when debug mode is enabled.
func Debugf(format string, args ...any) {
	emitDebug(fmt.Sprintf(format, args...))
}

// Debugln prints debug information, formatting args like fmt.Sprint.
func Debugln(args ...any) {
	emitDebug(fmt.Sprint(args...))
}

// SetDebugEnabled allows programmatic control of console debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether console debug output is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

func emitDebug(message string) {
	sessionMu.Lock()
	if sessionLogWriter != nil {
		timestamp := time.Now().Format("15:04:05.000")
		_, _ = fmt.Fprintf(sessionLogWriter, "%s DEBUG: %s\n", timestamp, message)
	}
	sessionMu.Unlock()

	if debugEnabled.Load() {
		_, _ = fmt.Printf("DEBUG: %s\n", message)
	}
}

// swapSessionWriter installs w as the session log writer and returns the
// previous one.
func swapSessionWriter(w io.Writer) io.Writer {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	prev := sessionLogWriter
	sessionLogWriter = w
	return prev
}

// debugWire logs one frame or reply in hex.
func debugWire(dir TraceDirection, op Opcode, data []byte) {
	Debugf("%s %s: %s", dir, op, formatHexBytes(data))
}
