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
	"strconv"

	"github.com/ZaparooProject/go-epd/internal/frame"
)

// ResponseKind tags the variant held by a Response.
type ResponseKind int

const (
	// ResponseNone is returned for fire-and-forget commands.
	ResponseNone ResponseKind = iota
	// ResponseAcknowledged means the controller answered "OK".
	ResponseAcknowledged
	// ResponseTextStatus holds a two-byte status that was not "OK".
	ResponseTextStatus
	// ResponseValue holds raw value bytes: one for single-value queries,
	// two for the color query.
	ResponseValue
	// ResponseNumeric holds an integer parsed from ASCII digits.
	ResponseNumeric
	// ResponseTimeout means fewer bytes arrived than the reply needs.
	ResponseTimeout
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseNone:
		return "none"
	case ResponseAcknowledged:
		return "acknowledged"
	case ResponseTextStatus:
		return "text status"
	case ResponseValue:
		return "value"
	case ResponseNumeric:
		return "numeric"
	case ResponseTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ResponseKind(%d)", int(k))
	}
}

// Response is a decoded controller reply.
type Response struct {
	// Raw holds the bytes read from the transport, possibly partial.
	Raw []byte
	// Value is the parsed integer for ResponseNumeric.
	Value int64
	Kind  ResponseKind
}

// OK reports whether the reply acknowledged the command.
func (r Response) OK() bool {
	return r.Kind == ResponseAcknowledged
}

// Byte returns the i-th raw byte, or 0 when the reply is shorter.
func (r Response) Byte(i int) byte {
	if i < 0 || i >= len(r.Raw) {
		return 0
	}
	return r.Raw[i]
}

func (r Response) String() string {
	switch r.Kind {
	case ResponseNumeric:
		return fmt.Sprintf("numeric %d", r.Value)
	case ResponseNone, ResponseAcknowledged:
		return r.Kind.String()
	default:
		return fmt.Sprintf("%s [%s]", r.Kind, formatHexBytes(r.Raw))
	}
}

// decodeReply interprets raw reply bytes for a given shape. Short replies
// decode as ResponseTimeout; the caller turns that into an error.
func decodeReply(shape ReplyShape, raw []byte) Response {
	switch shape {
	case ReplyNone:
		return Response{Kind: ResponseNone}
	case ReplyAck:
		if len(raw) < shape.Size() {
			return Response{Kind: ResponseTimeout, Raw: raw}
		}
		if frame.IsOK(raw) {
			return Response{Kind: ResponseAcknowledged, Raw: raw}
		}
		return Response{Kind: ResponseTextStatus, Raw: raw}
	case ReplyByte, ReplyBytePair:
		if len(raw) < shape.Size() {
			return Response{Kind: ResponseTimeout, Raw: raw}
		}
		return Response{Kind: ResponseValue, Raw: raw}
	case ReplyNumeric:
		if len(raw) == 0 {
			return Response{Kind: ResponseTimeout}
		}
		value, ok := parseLeadingDigits(raw)
		if !ok {
			return Response{Kind: ResponseTextStatus, Raw: raw}
		}
		return Response{Kind: ResponseNumeric, Raw: raw, Value: value}
	default:
		return Response{Kind: ResponseTextStatus, Raw: raw}
	}
}

// parseLeadingDigits parses the run of ASCII digits at the start of raw,
// after skipping leading whitespace. Trailing bytes (CR/LF, NUL) are ignored.
func parseLeadingDigits(raw []byte) (int64, bool) {
	start := 0
	for start < len(raw) && (raw[start] == ' ' || raw[start] == '\r' || raw[start] == '\n') {
		start++
	}
	end := start
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	value, err := strconv.ParseInt(string(raw[start:end]), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
