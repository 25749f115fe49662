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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opcode   Opcode
		expected byte
	}{
		{"Handshake", OpHandshake, 0x00},
		{"SetBaudRate", OpSetBaudRate, 0x01},
		{"GetBaudRate", OpGetBaudRate, 0x02},
		{"GetStorageArea", OpGetStorageArea, 0x06},
		{"SetStorageArea", OpSetStorageArea, 0x07},
		{"EnterSleep", OpEnterSleep, 0x08},
		{"Refresh", OpRefresh, 0x0A},
		{"GetDisplayDirection", OpGetDisplayDirection, 0x0C},
		{"SetDisplayDirection", OpSetDisplayDirection, 0x0D},
		{"ImportFontLibrary", OpImportFontLibrary, 0x0E},
		{"ImportImage", OpImportImage, 0x0F},
		{"SetDrawingColor", OpSetDrawingColor, 0x10},
		{"GetDrawingColor", OpGetDrawingColor, 0x11},
		{"GetEnglishFontSize", OpGetEnglishFontSize, 0x1C},
		{"GetChineseFontSize", OpGetChineseFontSize, 0x1D},
		{"SetEnglishFontSize", OpSetEnglishFontSize, 0x1E},
		{"SetChineseFontSize", OpSetChineseFontSize, 0x1F},
		{"DrawPoint", OpDrawPoint, 0x20},
		{"DrawLine", OpDrawLine, 0x22},
		{"FillRectangle", OpFillRectangle, 0x24},
		{"DrawRectangle", OpDrawRectangle, 0x25},
		{"DrawCircle", OpDrawCircle, 0x26},
		{"FillCircle", OpFillCircle, 0x27},
		{"DrawTriangle", OpDrawTriangle, 0x28},
		{"FillTriangle", OpFillTriangle, 0x29},
		{"ClearScreen", OpClearScreen, 0x2E},
		{"DisplayText", OpDisplayText, 0x30},
		{"DisplayImage", OpDisplayImage, 0x70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, byte(tt.opcode))
			assert.Equal(t, tt.name, tt.opcode.String())
			_, ok := LookupSpec(tt.opcode)
			assert.True(t, ok)
		})
	}
}

func TestOpcodes_SortedAndComplete(t *testing.T) {
	t.Parallel()

	ops := Opcodes()
	require.Len(t, ops, 28)
	for i := 1; i < len(ops); i++ {
		assert.True(t, ops[i-1] < ops[i], "%s before %s", ops[i-1], ops[i])
	}
}

func TestOpcode_StringUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Opcode(0x03)", Opcode(0x03).String())
	_, ok := LookupSpec(0x03)
	assert.False(t, ok)
}

func TestCommandSpecs_ReplyShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op    Opcode
		shape ReplyShape
	}{
		{OpHandshake, ReplyAck},
		{OpSetBaudRate, ReplyNone},
		{OpEnterSleep, ReplyNone},
		{OpGetBaudRate, ReplyNumeric},
		{OpGetStorageArea, ReplyByte},
		{OpGetDisplayDirection, ReplyByte},
		{OpGetEnglishFontSize, ReplyByte},
		{OpGetDrawingColor, ReplyBytePair},
		{OpDisplayText, ReplyAck},
	}

	for _, tt := range tests {
		spec, ok := LookupSpec(tt.op)
		require.True(t, ok)
		assert.Equal(t, tt.shape, spec.Reply, tt.op.String())
	}
}

func TestCommandSpecs_PayloadSizesMatchCommands(t *testing.T) {
	t.Parallel()

	for _, cmd := range sampleCommands() {
		spec, ok := LookupSpec(cmd.Opcode())
		require.True(t, ok)
		if spec.PayloadSize == VariablePayload {
			continue
		}
		assert.Len(t, cmd.Payload(), spec.PayloadSize, cmd.Opcode().String())
	}
}

func TestReplyShape_Size(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ReplyNone.Size())
	assert.Equal(t, 2, ReplyAck.Size())
	assert.Equal(t, 1, ReplyByte.Size())
	assert.Equal(t, 2, ReplyBytePair.Size())
	assert.Equal(t, 0, ReplyNumeric.Size())
	assert.Equal(t, "byte pair", ReplyBytePair.String())
}
