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

// CalculateChecksum computes the parity byte for a data buffer.
// The controller uses a running XOR over every byte that precedes the
// checksum position, header included.
func CalculateChecksum(data []byte) byte {
	chk := byte(0)
	for _, b := range data {
		chk ^= b
	}
	return chk
}

// ValidateChecksum reports whether the last byte of frm is the XOR of all
// bytes before it. Empty input is never valid.
func ValidateChecksum(frm []byte) bool {
	if len(frm) == 0 {
		return false
	}
	return CalculateChecksum(frm[:len(frm)-1]) == frm[len(frm)-1]
}
