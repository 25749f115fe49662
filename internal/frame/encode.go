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

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Codec errors. The root package wraps these into its own error taxonomy;
// they are kept here so the codec has no dependency on it.
var (
	ErrFrameTooLarge    = errors.New("frame exceeds controller buffer")
	ErrInvalidString    = errors.New("string contains NUL byte")
	ErrFrameTooShort    = errors.New("frame too short")
	ErrInvalidHeader    = errors.New("invalid frame header")
	ErrLengthMismatch   = errors.New("frame length field mismatch")
	ErrInvalidTrailer   = errors.New("invalid frame trailer")
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
)

// Encode builds a complete frame for opcode with a fixed payload.
// The returned slice is freshly allocated and owned by the caller.
//
// Frame structure:
//
//	[A5][LEN_H][LEN_L][OPCODE][PAYLOAD...][CC 33 C3 3C][XOR]
func Encode(opcode byte, payload []byte) ([]byte, error) {
	total := Overhead + len(payload)
	if total > MaxFrameLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, total, MaxFrameLength)
	}

	frm := make([]byte, 0, total)
	frm = append(frm, Header)
	frm = binary.BigEndian.AppendUint16(frm, uint16(total))
	frm = append(frm, opcode)
	frm = append(frm, payload...)
	frm = append(frm, Trailer[:]...)
	frm = append(frm, CalculateChecksum(frm))

	return frm, nil
}

// EncodeString builds a frame whose payload is prefix followed by s and a
// terminating NUL. This is the layout of the text and image commands, where
// prefix carries the coordinates. Strings that do not fit are rejected,
// never truncated.
func EncodeString(opcode byte, prefix []byte, s string) ([]byte, error) {
	if idx := strings.IndexByte(s, 0x00); idx >= 0 {
		return nil, fmt.Errorf("%w at offset %d", ErrInvalidString, idx)
	}
	if limit := MaxStringLength(len(prefix)); len(s) > limit {
		return nil, fmt.Errorf("%w: string of %d bytes, limit %d", ErrFrameTooLarge, len(s), limit)
	}

	payload := make([]byte, 0, len(prefix)+len(s)+1)
	payload = append(payload, prefix...)
	payload = append(payload, s...)
	payload = append(payload, 0x00)

	return Encode(opcode, payload)
}

// MaxStringLength returns the longest string EncodeString accepts after a
// prefix of prefixLen bytes. The NUL terminator is accounted for.
func MaxStringLength(prefixLen int) int {
	n := MaxPayloadLength - prefixLen - 1
	if n < 0 {
		return 0
	}
	return n
}
