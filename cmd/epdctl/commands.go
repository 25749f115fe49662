// go-epd
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-epd.
//
// go-epd is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-epd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-epd; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-epd"
)

var errUsage = errors.New("usage")

// command is one shell verb. run returns the text to print.
type command struct {
	run     func(ctx context.Context, d *epd.Display, args []string) (string, error)
	name    string
	usage   string
	help    string
	aliases []string
	minArgs int
}

const okText = "OK"

func ack(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return okText, nil
}

var commands = []command{
	{
		name: "handshake", aliases: []string{"hs"}, help: "check the controller answers",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.Handshake(ctx))
		},
	},
	{
		name: "baud", usage: "[RATE]", help: "show or set the baud rate",
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			if len(args) == 0 {
				rate, err := d.GetBaudRate(ctx)
				if err != nil {
					return "", err
				}
				return strconv.Itoa(rate), nil
			}
			rate, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return "", fmt.Errorf("%w: RATE: %w", errUsage, err)
			}
			return ack(d.SetBaudRate(ctx, uint32(rate)))
		},
	},
	{
		name: "storage", usage: "[nand|sd]", help: "show or set the asset storage area",
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			if len(args) == 0 {
				area, err := d.GetStorageArea(ctx)
				if err != nil {
					return "", err
				}
				return area.String(), nil
			}
			area, err := parseStorage(args[0])
			if err != nil {
				return "", err
			}
			return ack(d.SetStorageArea(ctx, area))
		},
	},
	{
		name: "sleep", help: "put the controller to sleep",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.EnterSleep(ctx))
		},
	},
	{
		name: "refresh", aliases: []string{"r"}, usage: "[wait]", help: "push the frame buffer to the panel",
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			if err := d.Refresh(ctx); err != nil {
				return "", err
			}
			if len(args) > 0 && args[0] == "wait" {
				return ack(d.WaitRefreshed(ctx, 0))
			}
			return okText, nil
		},
	},
	{
		name: "direction", aliases: []string{"dir"}, usage: "[normal|inverted]", help: "show or set the orientation",
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			if len(args) == 0 {
				dir, err := d.GetDisplayDirection(ctx)
				if err != nil {
					return "", err
				}
				return dir.String(), nil
			}
			dir, err := parseDirection(args[0])
			if err != nil {
				return "", err
			}
			return ack(d.SetDisplayDirection(ctx, dir))
		},
	},
	{
		name: "importfont", help: "copy fonts from microSD to NAND flash",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.ImportFontLibrary(ctx))
		},
	},
	{
		name: "importimage", help: "copy images from microSD to NAND flash",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.ImportImage(ctx))
		},
	},
	{
		name: "color", usage: "[FG BG]", help: "show or set the drawing colors (black, dark, light, white)",
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			if len(args) == 0 {
				fg, bg, err := d.GetDrawingColor(ctx)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("fg=%s bg=%s", fg, bg), nil
			}
			if len(args) < 2 {
				return "", fmt.Errorf("%w: color FG BG", errUsage)
			}
			fg, err := parseColor(args[0])
			if err != nil {
				return "", err
			}
			bg, err := parseColor(args[1])
			if err != nil {
				return "", err
			}
			return ack(d.SetDrawingColor(ctx, fg, bg))
		},
	},
	{
		name: "font", usage: "en|cn [32|48|64]", help: "show or set a font size", minArgs: 1,
		run: runFont,
	},
	{
		name: "point", usage: "X Y", help: "draw a point", minArgs: 2,
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			pts, err := parsePoints(args, 1)
			if err != nil {
				return "", err
			}
			return ack(d.DrawPoint(ctx, pts[0]))
		},
	},
	{
		name: "line", usage: "X1 Y1 X2 Y2", help: "draw a line", minArgs: 4,
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			pts, err := parsePoints(args, 2)
			if err != nil {
				return "", err
			}
			return ack(d.DrawLine(ctx, pts[0], pts[1]))
		},
	},
	{
		name: "rect", usage: "X1 Y1 X2 Y2", help: "draw a rectangle outline", minArgs: 4,
		run: twoPointShape((*epd.Display).DrawRectangle),
	},
	{
		name: "fillrect", usage: "X1 Y1 X2 Y2", help: "draw a filled rectangle", minArgs: 4,
		run: twoPointShape((*epd.Display).FillRectangle),
	},
	{
		name: "circle", usage: "X Y R", help: "draw a circle outline", minArgs: 3,
		run: circleShape((*epd.Display).DrawCircle),
	},
	{
		name: "fillcircle", usage: "X Y R", help: "draw a filled circle", minArgs: 3,
		run: circleShape((*epd.Display).FillCircle),
	},
	{
		name: "triangle", usage: "X1 Y1 X2 Y2 X3 Y3", help: "draw a triangle outline", minArgs: 6,
		run: triangleShape((*epd.Display).DrawTriangle),
	},
	{
		name: "filltriangle", usage: "X1 Y1 X2 Y2 X3 Y3", help: "draw a filled triangle", minArgs: 6,
		run: triangleShape((*epd.Display).FillTriangle),
	},
	{
		name: "clear", help: "clear the frame buffer",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.ClearScreen(ctx))
		},
	},
	{
		name: "text", usage: "X Y TEXT...", help: "draw text at a position", minArgs: 3,
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			pts, err := parsePoints(args[:2], 1)
			if err != nil {
				return "", err
			}
			return ack(d.DisplayText(ctx, pts[0], strings.Join(args[2:], " ")))
		},
	},
	{
		name: "image", usage: "X Y FILE", help: "draw a stored bitmap", minArgs: 3,
		run: func(ctx context.Context, d *epd.Display, args []string) (string, error) {
			pts, err := parsePoints(args[:2], 1)
			if err != nil {
				return "", err
			}
			return ack(d.DisplayImage(ctx, pts[0], args[2]))
		},
	},
	{
		name: "reset", help: "pulse the reset line",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.Reset(ctx))
		},
	},
	{
		name: "wake", help: "pulse the wake line",
		run: func(ctx context.Context, d *epd.Display, _ []string) (string, error) {
			return ack(d.WakeUp(ctx))
		},
	},
	{
		name: "state", help: "show the session state",
		run: func(_ context.Context, d *epd.Display, _ []string) (string, error) {
			return d.State().String(), nil
		},
	},
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
		for _, alias := range cmd.aliases {
			if alias == name {
				return cmd, true
			}
		}
	}
	return command{}, false
}

// execute runs one command line and prints its result to w.
func execute(ctx context.Context, d *epd.Display, w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: command expected", errUsage)
	}
	cmd, ok := lookupCommand(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs {
		return fmt.Errorf("%w: %s %s", errUsage, cmd.name, cmd.usage)
	}

	out, err := cmd.run(ctx, d, rest)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.name, err)
	}
	_, _ = fmt.Fprintln(w, out)
	return nil
}

func runFont(ctx context.Context, d *epd.Display, args []string) (string, error) {
	var (
		get func(context.Context) (epd.FontSize, error)
		set func(context.Context, epd.FontSize) error
	)
	switch args[0] {
	case "en":
		get, set = d.GetEnglishFontSize, d.SetEnglishFontSize
	case "cn":
		get, set = d.GetChineseFontSize, d.SetChineseFontSize
	default:
		return "", fmt.Errorf("%w: font en|cn, got %q", errUsage, args[0])
	}

	if len(args) == 1 {
		size, err := get(ctx)
		if err != nil {
			return "", err
		}
		return size.String(), nil
	}
	size, err := parseFont(args[1])
	if err != nil {
		return "", err
	}
	return ack(set(ctx, size))
}

func twoPointShape(draw func(*epd.Display, context.Context, epd.Point, epd.Point) error) func(context.Context, *epd.Display, []string) (string, error) {
	return func(ctx context.Context, d *epd.Display, args []string) (string, error) {
		pts, err := parsePoints(args, 2)
		if err != nil {
			return "", err
		}
		return ack(draw(d, ctx, pts[0], pts[1]))
	}
}

func circleShape(draw func(*epd.Display, context.Context, epd.Point, uint16) error) func(context.Context, *epd.Display, []string) (string, error) {
	return func(ctx context.Context, d *epd.Display, args []string) (string, error) {
		pts, err := parsePoints(args[:2], 1)
		if err != nil {
			return "", err
		}
		r, err := parseCoord(args[2])
		if err != nil {
			return "", err
		}
		return ack(draw(d, ctx, pts[0], r))
	}
}

func triangleShape(draw func(*epd.Display, context.Context, epd.Point, epd.Point, epd.Point) error) func(context.Context, *epd.Display, []string) (string, error) {
	return func(ctx context.Context, d *epd.Display, args []string) (string, error) {
		pts, err := parsePoints(args, 3)
		if err != nil {
			return "", err
		}
		return ack(draw(d, ctx, pts[0], pts[1], pts[2]))
	}
}

func parseCoord(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q: %w", errUsage, s, err)
	}
	return uint16(v), nil
}

// parsePoints reads n X Y pairs from the front of args.
func parsePoints(args []string, n int) ([]epd.Point, error) {
	if len(args) < 2*n {
		return nil, fmt.Errorf("%w: need %d coordinates, got %d", errUsage, 2*n, len(args))
	}
	pts := make([]epd.Point, n)
	for i := range pts {
		x, err := parseCoord(args[2*i])
		if err != nil {
			return nil, err
		}
		y, err := parseCoord(args[2*i+1])
		if err != nil {
			return nil, err
		}
		pts[i] = epd.Point{X: x, Y: y}
	}
	return pts, nil
}

var colorNames = map[string]epd.Color{
	"black": epd.Black,
	"dark":  epd.DarkGrey,
	"light": epd.LightGrey,
	"white": epd.White,
	"0":     epd.Black,
	"1":     epd.DarkGrey,
	"2":     epd.LightGrey,
	"3":     epd.White,
}

func parseColor(s string) (epd.Color, error) {
	if c, ok := colorNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: color %q, want one of %s", errUsage, s, strings.Join(sortedKeys(colorNames), ", "))
}

func parseStorage(s string) (epd.StorageArea, error) {
	switch strings.ToLower(s) {
	case "nand", "flash":
		return epd.NandFlash, nil
	case "sd", "microsd":
		return epd.MicroSD, nil
	}
	return 0, fmt.Errorf("%w: storage %q, want nand or sd", errUsage, s)
}

func parseDirection(s string) (epd.DisplayDirection, error) {
	switch strings.ToLower(s) {
	case "normal":
		return epd.Normal, nil
	case "inverted", "flip":
		return epd.Inverted, nil
	}
	return 0, fmt.Errorf("%w: direction %q, want normal or inverted", errUsage, s)
}

func parseFont(s string) (epd.FontSize, error) {
	switch s {
	case "32":
		return epd.FontSize32, nil
	case "48":
		return epd.FontSize48, nil
	case "64":
		return epd.FontSize64, nil
	}
	return 0, fmt.Errorf("%w: font size %q, want 32, 48 or 64", errUsage, s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
