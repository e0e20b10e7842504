// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/holomush/cmdtree/pkg/chatcolor"
)

// ConsoleName is the name the console sender reports.
const ConsoleName = "CONSOLE"

// Console is the process operator. It holds every permission and is not
// interactive.
type Console struct {
	out   io.Writer
	color bool
	mu    sync.Mutex
}

// NewConsole creates a console sender writing one message per line to out.
// When color is false, color codes are stripped instead of rendered.
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

// Name returns ConsoleName.
func (c *Console) Name() string { return ConsoleName }

// HasPermission always returns true.
func (c *Console) HasPermission(string) bool { return true }

// IsInteractive always returns false.
func (c *Console) IsInteractive() bool { return false }

// SendMessage writes message followed by a newline.
func (c *Console) SendMessage(message string) {
	if c.color {
		message = chatcolor.ToANSI(message)
	} else {
		message = chatcolor.Strip(message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	//nolint:errcheck // console output failures have nowhere to be reported
	fmt.Fprintln(c.out, message)
}

var _ Sender = (*Console)(nil)
