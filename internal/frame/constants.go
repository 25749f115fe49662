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

// Header is the first byte of every host-to-controller frame.
const Header byte = 0xA5

// Trailer is the fixed 4-byte sequence that precedes the checksum.
var Trailer = [TrailerLength]byte{0xCC, 0x33, 0xC3, 0x3C}

// Frame layout
const (
	HeaderLength   = 4 // header + 2 length bytes + opcode
	TrailerLength  = 4
	ChecksumLength = 1
)

// Frame size limits
const (
	// Overhead is the size of a frame with an empty payload.
	Overhead = HeaderLength + TrailerLength + ChecksumLength

	// MinFrameLength is the shortest valid frame: no payload.
	MinFrameLength = Overhead

	// MaxFrameLength bounds a complete frame. The controller's receive buffer
	// holds 1033 bytes; text and filename commands are the only ones that
	// get close.
	MaxFrameLength = 1033

	// MaxPayloadLength is the largest payload that fits in MaxFrameLength.
	MaxPayloadLength = MaxFrameLength - Overhead
)

// OKReply is the two-byte acknowledgement the controller sends on success.
var OKReply = []byte{'O', 'K'}
