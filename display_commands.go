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
	"context"
	"errors"
	"fmt"
	"time"
)

// Handshake checks that the controller is listening. On "OK" the session
// becomes StateReady; on any failure it falls back to StateIdle. There is
// no automatic retry.
func (d *Display) Handshake(ctx context.Context) error {
	d.setState(StateAwaitingHandshake)
	if err := d.expectAck(ctx, HandshakeCmd{}); err != nil {
		d.setState(StateIdle)
		return err
	}
	d.setState(StateReady)
	return nil
}

// SetBaudRate switches the controller to rate, waits for it to apply the
// change, switches the host side and then confirms the link with a
// Handshake. The controller sends no reply to the rate change itself.
func (d *Display) SetBaudRate(ctx context.Context, rate uint32) error {
	if _, err := d.Exec(ctx, SetBaudRateCmd{Rate: rate}); err != nil {
		return err
	}
	if err := d.sleep(ctx, BaudSwitchDelay); err != nil {
		return fmt.Errorf("%s: %w", OpSetBaudRate, err)
	}
	if err := d.transport.SetBaudRate(int(rate)); err != nil {
		return fmt.Errorf("%s: switch host rate to %d: %w", OpSetBaudRate, rate, err)
	}
	Debugf("host baud rate switched to %d", rate)
	return d.Handshake(ctx)
}

// GetBaudRate returns the controller's serial rate. The controller answers
// with ASCII digits; a reply without digits is ErrUnexpectedReply.
func (d *Display) GetBaudRate(ctx context.Context) (int, error) {
	resp, err := d.Exec(ctx, GetBaudRateCmd{})
	if err != nil {
		return 0, err
	}
	if resp.Kind != ResponseNumeric {
		return 0, d.trace.WrapError(NewUnexpectedReplyError(OpGetBaudRate, resp.Raw))
	}
	return int(resp.Value), nil
}

// GetStorageArea returns the active storage area. Some firmware answers
// "OK" here; the first byte is decoded as-is, which yields NandFlash.
func (d *Display) GetStorageArea(ctx context.Context) (StorageArea, error) {
	b, err := d.queryByte(ctx, GetStorageAreaCmd{})
	if err != nil {
		return NandFlash, err
	}
	return decodeStorageArea(b), nil
}

// SetStorageArea selects where fonts and images are read from.
func (d *Display) SetStorageArea(ctx context.Context, area StorageArea) error {
	return d.expectAck(ctx, SetStorageAreaCmd{Area: area})
}

// EnterSleep puts the controller to sleep. It does not reply; WakeUp or
// Reset followed by Handshake brings it back.
func (d *Display) EnterSleep(ctx context.Context) error {
	if _, err := d.Exec(ctx, EnterSleepCmd{}); err != nil {
		return err
	}
	d.setState(StateIdle)
	return nil
}

// Refresh pushes the frame buffer to the panel. The controller acks at
// once but keeps updating the panel for a few seconds; see WaitRefreshed.
func (d *Display) Refresh(ctx context.Context) error {
	return d.expectAck(ctx, RefreshCmd{})
}

// WaitRefreshed blocks until the controller answers queries again after a
// Refresh. A handshake is acknowledged even mid-refresh, so it polls
// GetBaudRate every interval instead. It returns ctx's error if the panel is
// still busy when ctx ends, or the first fatal transport error.
func (d *Display) WaitRefreshed(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshPollInterval
	}
	for attempt := 1; ; attempt++ {
		_, err := d.GetBaudRate(ctx)
		if err == nil {
			Debugf("refresh complete after %d polls", attempt)
			return nil
		}
		if IsFatal(err) || isContextError(err) {
			return err
		}
		if sleepErr := d.sleep(ctx, interval); sleepErr != nil {
			return fmt.Errorf("wait refreshed: %w", sleepErr)
		}
	}
}

// GetDisplayDirection returns the panel orientation.
func (d *Display) GetDisplayDirection(ctx context.Context) (DisplayDirection, error) {
	b, err := d.queryByte(ctx, GetDisplayDirectionCmd{})
	if err != nil {
		return Normal, err
	}
	return decodeDisplayDirection(b), nil
}

// SetDisplayDirection sets the panel orientation.
func (d *Display) SetDisplayDirection(ctx context.Context, dir DisplayDirection) error {
	return d.expectAck(ctx, SetDisplayDirectionCmd{Direction: dir})
}

// ImportFontLibrary copies fonts from the microSD card to NAND flash.
func (d *Display) ImportFontLibrary(ctx context.Context) error {
	return d.expectAck(ctx, ImportFontLibraryCmd{})
}

// ImportImage copies images from the microSD card to NAND flash.
func (d *Display) ImportImage(ctx context.Context) error {
	return d.expectAck(ctx, ImportImageCmd{})
}

// SetDrawingColor sets the foreground and background colors.
func (d *Display) SetDrawingColor(ctx context.Context, fg, bg Color) error {
	return d.expectAck(ctx, SetDrawingColorCmd{Foreground: fg, Background: bg})
}

// GetDrawingColor returns the foreground and background colors.
func (d *Display) GetDrawingColor(ctx context.Context) (fg, bg Color, err error) {
	resp, err := d.Exec(ctx, GetDrawingColorCmd{})
	if err != nil {
		return Black, Black, err
	}
	return decodeColor(resp.Byte(0)), decodeColor(resp.Byte(1)), nil
}

// GetForegroundColor is GetDrawingColor without the background.
func (d *Display) GetForegroundColor(ctx context.Context) (Color, error) {
	fg, _, err := d.GetDrawingColor(ctx)
	return fg, err
}

// GetBackgroundColor is GetDrawingColor without the foreground.
func (d *Display) GetBackgroundColor(ctx context.Context) (Color, error) {
	_, bg, err := d.GetDrawingColor(ctx)
	return bg, err
}

func (d *Display) GetEnglishFontSize(ctx context.Context) (FontSize, error) {
	b, err := d.queryByte(ctx, GetEnglishFontSizeCmd{})
	if err != nil {
		return FontSize32, err
	}
	return decodeFontSize(b), nil
}

func (d *Display) GetChineseFontSize(ctx context.Context) (FontSize, error) {
	b, err := d.queryByte(ctx, GetChineseFontSizeCmd{})
	if err != nil {
		return FontSize32, err
	}
	return decodeFontSize(b), nil
}

func (d *Display) SetEnglishFontSize(ctx context.Context, size FontSize) error {
	return d.expectAck(ctx, SetFontSizeCmd{Size: size})
}

func (d *Display) SetChineseFontSize(ctx context.Context, size FontSize) error {
	return d.expectAck(ctx, SetFontSizeCmd{Size: size, Chinese: true})
}

// DrawPoint sets one pixel in the foreground color.
func (d *Display) DrawPoint(ctx context.Context, at Point) error {
	return d.expectAck(ctx, DrawPointCmd{At: at})
}

// DrawLine draws a line between two points.
func (d *Display) DrawLine(ctx context.Context, from, to Point) error {
	return d.expectAck(ctx, LineCmd{From: from, To: to})
}

func (d *Display) DrawRectangle(ctx context.Context, from, to Point) error {
	return d.expectAck(ctx, RectangleCmd{From: from, To: to})
}

func (d *Display) FillRectangle(ctx context.Context, from, to Point) error {
	return d.expectAck(ctx, RectangleCmd{From: from, To: to, Fill: true})
}

func (d *Display) DrawCircle(ctx context.Context, center Point, radius uint16) error {
	return d.expectAck(ctx, CircleCmd{Center: center, Radius: radius})
}

func (d *Display) FillCircle(ctx context.Context, center Point, radius uint16) error {
	return d.expectAck(ctx, CircleCmd{Center: center, Radius: radius, Fill: true})
}

func (d *Display) DrawTriangle(ctx context.Context, a, b, c Point) error {
	return d.expectAck(ctx, TriangleCmd{Vertices: [3]Point{a, b, c}})
}

func (d *Display) FillTriangle(ctx context.Context, a, b, c Point) error {
	return d.expectAck(ctx, TriangleCmd{Vertices: [3]Point{a, b, c}, Fill: true})
}

// ClearScreen fills the panel with the background color. The command after
// a clear is answered with a spurious "OK", so a handshake is always sent
// afterwards to absorb it, even if the clear itself failed. Both errors are
// returned.
func (d *Display) ClearScreen(ctx context.Context) error {
	clearErr := d.expectAck(ctx, ClearScreenCmd{})
	handshakeErr := d.Handshake(ctx)
	return errors.Join(clearErr, handshakeErr)
}

// DisplayText renders text at the given point using the current font
// sizes. Text longer than 1019 bytes or containing NUL fails with
// ErrEncoding; it is never truncated.
func (d *Display) DisplayText(ctx context.Context, at Point, text string) error {
	return d.expectAck(ctx, DisplayTextCmd{Text: text, At: at})
}

// DisplayImage shows the named bitmap from the active storage area.
func (d *Display) DisplayImage(ctx context.Context, at Point, file string) error {
	return d.expectAck(ctx, DisplayImageCmd{File: file, At: at})
}
