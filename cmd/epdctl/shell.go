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
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-epd"
	"github.com/abiosoft/ishell"
)

// newShell builds an interactive shell with one ishell command per entry
// in commands.
func newShell(ctx context.Context, d *epd.Display, port string) *ishell.Shell {
	shell := ishell.New()
	shell.SetPrompt(prompt(port, d))
	for _, cmd := range commands {
		shell.AddCmd(shellCmd(ctx, d, port, cmd))
	}
	return shell
}

func prompt(port string, d *epd.Display) string {
	return fmt.Sprintf("%s [%s] > ", port, d.State())
}

func shellCmd(ctx context.Context, d *epd.Display, port string, cmd command) *ishell.Cmd {
	help := cmd.help
	if cmd.usage != "" {
		help = cmd.usage + "  " + help
	}
	return &ishell.Cmd{
		Name:    cmd.name,
		Aliases: cmd.aliases,
		Help:    help,
		Func: func(c *ishell.Context) {
			line := append([]string{cmd.name}, c.Args...)
			var out strings.Builder
			if err := execute(ctx, d, &out, line); err != nil {
				c.Err(err)
				if te := epd.GetTrace(err); te != nil && epd.DebugEnabled() {
					c.Println(te.FormatTrace())
				}
			} else {
				c.Print(out.String())
			}
			c.SetPrompt(prompt(port, d))
		},
	}
}
