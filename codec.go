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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ZaparooProject/go-epd/internal/frame"
)

// EncodeCommand validates cmd and frames it for the wire. The returned
// slice is freshly allocated. Failures wrap ErrEncoding together with the
// underlying cause, so both errors.Is(err, ErrEncoding) and, for example,
// errors.Is(err, frame.ErrFrameTooLarge) hold.
func EncodeCommand(cmd Command) ([]byte, error) {
	op := cmd.Opcode()
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, op, err)
	}

	var (
		frm []byte
		err error
	)
	if sc, ok := cmd.(stringCommand); ok {
		frm, err = frame.EncodeString(byte(op), sc.prefix(), sc.text())
	} else {
		frm, err = frame.Encode(byte(op), cmd.Payload())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, op, err)
	}
	return frm, nil
}

// DecodeCommand parses a complete outbound frame back into its command.
// The controller never sends frames, so this exists for tests, tracing and
// the simulator rather than for the session itself.
func DecodeCommand(frm []byte) (Command, error) {
	rawOp, payload, err := frame.Decode(frm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	op := Opcode(rawOp)
	spec, ok := LookupSpec(op)
	if !ok {
		return nil, fmt.Errorf("%w: unknown opcode 0x%02X", ErrEncoding, rawOp)
	}
	if spec.PayloadSize != VariablePayload && len(payload) != spec.PayloadSize {
		return nil, fmt.Errorf("%w: %s: payload is %d bytes, want %d",
			ErrEncoding, op, len(payload), spec.PayloadSize)
	}

	switch op {
	case OpHandshake:
		return HandshakeCmd{}, nil
	case OpGetBaudRate:
		return GetBaudRateCmd{}, nil
	case OpGetStorageArea:
		return GetStorageAreaCmd{}, nil
	case OpEnterSleep:
		return EnterSleepCmd{}, nil
	case OpRefresh:
		return RefreshCmd{}, nil
	case OpGetDisplayDirection:
		return GetDisplayDirectionCmd{}, nil
	case OpImportFontLibrary:
		return ImportFontLibraryCmd{}, nil
	case OpImportImage:
		return ImportImageCmd{}, nil
	case OpGetDrawingColor:
		return GetDrawingColorCmd{}, nil
	case OpGetEnglishFontSize:
		return GetEnglishFontSizeCmd{}, nil
	case OpGetChineseFontSize:
		return GetChineseFontSizeCmd{}, nil
	case OpClearScreen:
		return ClearScreenCmd{}, nil
	case OpSetBaudRate:
		return SetBaudRateCmd{Rate: binary.BigEndian.Uint32(payload)}, nil
	case OpSetStorageArea:
		return SetStorageAreaCmd{Area: StorageArea(payload[0])}, nil
	case OpSetDisplayDirection:
		return SetDisplayDirectionCmd{Direction: DisplayDirection(payload[0])}, nil
	case OpSetDrawingColor:
		return SetDrawingColorCmd{Foreground: Color(payload[0]), Background: Color(payload[1])}, nil
	case OpSetEnglishFontSize, OpSetChineseFontSize:
		return SetFontSizeCmd{Size: FontSize(payload[0]), Chinese: op == OpSetChineseFontSize}, nil
	case OpDrawPoint:
		return DrawPointCmd{At: readPoint(payload, 0)}, nil
	case OpDrawLine:
		return LineCmd{From: readPoint(payload, 0), To: readPoint(payload, 1)}, nil
	case OpDrawRectangle, OpFillRectangle:
		return RectangleCmd{
			From: readPoint(payload, 0),
			To:   readPoint(payload, 1),
			Fill: op == OpFillRectangle,
		}, nil
	case OpDrawCircle, OpFillCircle:
		return CircleCmd{
			Center: readPoint(payload, 0),
			Radius: binary.BigEndian.Uint16(payload[4:]),
			Fill:   op == OpFillCircle,
		}, nil
	case OpDrawTriangle, OpFillTriangle:
		return TriangleCmd{
			Vertices: [3]Point{readPoint(payload, 0), readPoint(payload, 1), readPoint(payload, 2)},
			Fill:     op == OpFillTriangle,
		}, nil
	case OpDisplayText, OpDisplayImage:
		at, s, splitErr := splitStringPayload(op, payload)
		if splitErr != nil {
			return nil, splitErr
		}
		if op == OpDisplayText {
			return DisplayTextCmd{Text: s, At: at}, nil
		}
		return DisplayImageCmd{File: s, At: at}, nil
	}
	return nil, fmt.Errorf("%w: unknown opcode 0x%02X", ErrEncoding, rawOp)
}

func readPoint(payload []byte, i int) Point {
	off := i * 4
	return Point{
		X: binary.BigEndian.Uint16(payload[off:]),
		Y: binary.BigEndian.Uint16(payload[off+2:]),
	}
}

// splitStringPayload separates the coordinate prefix from the
// NUL-terminated string that follows it.
func splitStringPayload(op Opcode, payload []byte) (Point, string, error) {
	if len(payload) < 5 {
		return Point{}, "", fmt.Errorf("%w: %s: payload too short (%d bytes)", ErrEncoding, op, len(payload))
	}
	body := payload[4:]
	end := bytes.IndexByte(body, 0x00)
	if end != len(body)-1 {
		return Point{}, "", fmt.Errorf("%w: %s: string is not NUL-terminated", ErrEncoding, op)
	}
	return readPoint(payload, 0), string(body[:end]), nil
}
