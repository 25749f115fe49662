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

import "testing"

func TestCalculateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "self cancelling",
			data: []byte{0x5A, 0x5A},
			want: 0x00,
		},
		{
			name: "handshake frame body",
			data: []byte{0xA5, 0x00, 0x09, 0x00, 0xCC, 0x33, 0xC3, 0x3C},
			want: 0xAC,
		},
		{
			name: "clear screen frame body",
			data: []byte{0xA5, 0x00, 0x09, 0x2E, 0xCC, 0x33, 0xC3, 0x3C},
			want: 0x82,
		},
		{
			name: "get drawing color frame body",
			data: []byte{0xA5, 0x00, 0x09, 0x11, 0xCC, 0x33, 0xC3, 0x3C},
			want: 0xBD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateChecksum(tt.data); got != tt.want {
				t.Errorf("CalculateChecksum() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestValidateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		frm  []byte
		want bool
	}{
		{name: "empty", frm: nil, want: false},
		{name: "single zero byte", frm: []byte{0x00}, want: true},
		{name: "valid handshake", frm: []byte{0xA5, 0x00, 0x09, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0xAC}, want: true},
		{name: "corrupted checksum", frm: []byte{0xA5, 0x00, 0x09, 0x00, 0xCC, 0x33, 0xC3, 0x3C, 0xAD}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateChecksum(tt.frm); got != tt.want {
				t.Errorf("ValidateChecksum() = %v, want %v", got, tt.want)
			}
		})
	}
}
