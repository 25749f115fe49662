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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
		want    []byte
		opcode  byte
	}{
		{
			name:   "handshake",
			opcode: 0x00,
			want:   []byte{0xA5, 0x00, 0x09, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0xAC},
		},
		{
			name:   "refresh",
			opcode: 0x0A,
			want:   []byte{0xA5, 0x00, 0x09, 0x0A, 0xCC, 0x33, 0xC3, 0x3C, 0xA6},
		},
		{
			name:    "set drawing color white on black",
			opcode:  0x10,
			payload: []byte{0x03, 0x00},
			want:    []byte{0xA5, 0x00, 0x0B, 0x10, 0x03, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0xBD},
		},
		{
			name:    "draw line",
			opcode:  0x22,
			payload: []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04},
			want: []byte{
				0xA5, 0x00, 0x11, 0x22,
				0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04,
				0xCC, 0x33, 0xC3, 0x3C, 0x92,
			},
		},
		{
			name:    "set baud rate 115200",
			opcode:  0x01,
			payload: []byte{0x00, 0x01, 0xC2, 0x00},
			want:    []byte{0xA5, 0x00, 0x0D, 0x01, 0x00, 0x01, 0xC2, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0x6A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Encode(tt.opcode, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_Invariants(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		nil,
		{0x01},
		{0x00, 0x00},
		bytes.Repeat([]byte{0xFF}, 12),
		bytes.Repeat([]byte{0x5A}, MaxPayloadLength),
	}

	for _, payload := range payloads {
		frm, err := Encode(0x24, payload)
		require.NoError(t, err)

		assert.Equal(t, Overhead+len(payload), len(frm))
		assert.Equal(t, len(frm), int(binary.BigEndian.Uint16(frm[1:3])), "length field")
		assert.Equal(t, CalculateChecksum(frm[:len(frm)-1]), frm[len(frm)-1], "checksum")
		assert.Equal(t, Trailer[:], frm[len(frm)-5:len(frm)-1], "trailer")

		again, err := Encode(0x24, payload)
		require.NoError(t, err)
		assert.Equal(t, frm, again, "encoding must be deterministic")
	}
}

func TestEncode_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := Encode(0x30, make([]byte, MaxPayloadLength+1))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestEncode_DoesNotAliasPayload(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01, 0x02}
	frm, err := Encode(0x20, payload)
	require.NoError(t, err)

	payload[0] = 0xFF
	assert.Equal(t, byte(0x01), frm[4])
}

func TestEncodeString(t *testing.T) {
	t.Parallel()

	prefix := []byte{0x00, 0x0A, 0x00, 0x14}
	frm, err := EncodeString(0x30, prefix, "Hi")
	require.NoError(t, err)

	want := []byte{
		0xA5, 0x00, 0x10, 0x30,
		0x00, 0x0A, 0x00, 0x14,
		'H', 'i', 0x00,
		0xCC, 0x33, 0xC3, 0x3C, 0xBA,
	}
	assert.Equal(t, want, frm)
	assert.Len(t, frm, 13+len("Hi")+1)
}

func TestEncodeString_Boundary(t *testing.T) {
	t.Parallel()

	prefix := make([]byte, 4)
	limit := MaxStringLength(len(prefix))
	assert.Equal(t, 1019, limit)

	frm, err := EncodeString(0x30, prefix, strings.Repeat("a", limit))
	require.NoError(t, err)
	assert.Len(t, frm, MaxFrameLength)

	_, err = EncodeString(0x30, prefix, strings.Repeat("a", limit+1))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestEncodeString_RejectsNUL(t *testing.T) {
	t.Parallel()

	_, err := EncodeString(0x70, make([]byte, 4), "PIC\x00.BMP")
	require.ErrorIs(t, err, ErrInvalidString)
	assert.Contains(t, err.Error(), "offset 3")
}

func TestMaxStringLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MaxPayloadLength-1, MaxStringLength(0))
	assert.Equal(t, 0, MaxStringLength(MaxPayloadLength+10))
}
