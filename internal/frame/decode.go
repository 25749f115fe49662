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
	"bytes"
	"encoding/binary"
	"fmt"
)

// Decode parses a host-to-controller frame back into its opcode and payload.
// The controller never sends frames back, so this is the reference decoder
// used by the wire simulator and the codec tests. The returned payload
// aliases frm.
func Decode(frm []byte) (opcode byte, payload []byte, err error) {
	if len(frm) < MinFrameLength {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frm))
	}
	if frm[0] != Header {
		return 0, nil, fmt.Errorf("%w: 0x%02X", ErrInvalidHeader, frm[0])
	}

	total := int(binary.BigEndian.Uint16(frm[1:3]))
	if total != len(frm) {
		return 0, nil, fmt.Errorf("%w: field says %d, frame has %d", ErrLengthMismatch, total, len(frm))
	}

	trailerStart := total - TrailerLength - ChecksumLength
	if !bytes.Equal(frm[trailerStart:trailerStart+TrailerLength], Trailer[:]) {
		return 0, nil, ErrInvalidTrailer
	}

	if !ValidateChecksum(frm) {
		return 0, nil, fmt.Errorf("%w: got 0x%02X, want 0x%02X",
			ErrChecksumMismatch, frm[total-1], CalculateChecksum(frm[:total-1]))
	}

	return frm[3], frm[HeaderLength:trailerStart], nil
}

// PeekLength returns the total frame length announced by a partial frame,
// or false when fewer than three bytes are available or the header is
// wrong. Stream readers use it to know how many bytes to wait for.
func PeekLength(buf []byte) (int, bool) {
	if len(buf) < 3 || buf[0] != Header {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(buf[1:3])), true
}

// IsOK reports whether reply starts with the ASCII acknowledgement "OK".
// Replies carry no checksum, so nothing else is validated.
func IsOK(reply []byte) bool {
	return len(reply) >= len(OKReply) && bytes.Equal(reply[:len(OKReply)], OKReply)
}
