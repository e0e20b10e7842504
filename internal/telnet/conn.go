// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/cmdtree/internal/access"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

const (
	maxNameLength  = 32
	maxNameRetries = 3
)

// Prompts and notices sent by the connection loop.
const (
	NamePrompt     = "What is your name?"
	NameTaken      = "That name is taken."
	NameReserved   = "That name is reserved."
	NameInvalid    = "Names are 1-32 letters, digits, '-' or '_'."
	UnknownCommand = "&cUnknown command. Type \"help\" for help."
)

var (
	_ host.Sender           = (*Conn)(nil)
	_ handlers.Disconnecter = (*Conn)(nil)
)

// Conn is one telnet connection and the interactive sender behind it.
type Conn struct {
	id     ulid.ULID
	conn   net.Conn
	reader *bufio.Reader
	server *Server

	name       atomic.Value // string
	lastActive atomic.Int64 // unix nanos

	writeMu   sync.Mutex
	closeOnce sync.Once
	reason    atomic.Value // string
}

func newConn(nc net.Conn, s *Server) *Conn {
	c := &Conn{
		id:     ulid.Make(),
		conn:   nc,
		reader: bufio.NewReader(nc),
		server: s,
	}
	c.name.Store("")
	c.touch()
	return c
}

// ID returns the connection id.
func (c *Conn) ID() ulid.ULID { return c.id }

// Name returns the name the connection logged in with, or "" before login.
func (c *Conn) Name() string { return c.name.Load().(string) }

func (c *Conn) setName(name string) { c.name.Store(name) }

// HasPermission consults the server's permission backend.
func (c *Conn) HasPermission(permission string) bool {
	return c.server.checker.Check(context.Background(), c.Name(), permission)
}

// IsInteractive is always true for telnet connections.
func (c *Conn) IsInteractive() bool { return true }

// SendMessage writes message followed by CRLF, rendering color codes.
func (c *Conn) SendMessage(message string) {
	if c.server.color {
		message = chatcolor.ToANSI(message)
	} else {
		message = chatcolor.Strip(message)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", message); err != nil {
		slog.Debug("failed to send message to client",
			"conn_id", c.id.String(),
			"error", err)
	}
}

// Disconnect closes the connection. The read loop ends on its next read.
func (c *Conn) Disconnect(reason string) {
	c.closeOnce.Do(func() {
		c.reason.Store(reason)
		if err := c.conn.Close(); err != nil {
			slog.Debug("error closing connection", "conn_id", c.id.String(), "error", err)
		}
	})
}

// Idle returns the time since the last line was received.
func (c *Conn) Idle() time.Duration {
	return time.Since(time.Unix(0, c.lastActive.Load()))
}

func (c *Conn) touch() { c.lastActive.Store(time.Now().UnixNano()) }

// Handle runs the connection until the client leaves, the connection is
// disconnected or ctx is cancelled.
func (c *Conn) Handle(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { c.Disconnect("server stopping") })
	defer stop()
	defer c.Disconnect("connection closed")
	defer c.server.release(c)

	logger := slog.Default().With("conn_id", c.id.String(), "remote", c.conn.RemoteAddr().String())
	logger.DebugContext(ctx, "connection opened")

	c.send(c.server.greeting)
	if !c.login(ctx) {
		return
	}
	logger = logger.With("sender", c.Name())
	logger.InfoContext(ctx, "session started")

	for {
		line, err := c.readLine()
		if err != nil {
			c.logClose(ctx, logger, err)
			return
		}
		c.touch()
		c.process(ctx, line)
	}
}

func (c *Conn) login(ctx context.Context) bool {
	for range maxNameRetries {
		c.send(NamePrompt)
		line, err := c.readLine()
		if err != nil {
			return false
		}
		name := strings.TrimSpace(line)
		if !validName(name) {
			c.send(NameInvalid)
			continue
		}
		if access.IsReserved(name) {
			c.send(NameReserved)
			continue
		}
		if !c.server.claim(c, name) {
			c.send(NameTaken)
			continue
		}
		c.send(fmt.Sprintf("&aHello, %s!&r", name))
		return true
	}
	slog.DebugContext(ctx, "login attempts exhausted", "conn_id", c.id.String())
	return false
}

// process handles one input line. A trailing TAB asks for completion of
// the text before it.
func (c *Conn) process(ctx context.Context, line string) {
	if before, ok := strings.CutSuffix(line, "\t"); ok {
		suggestions := c.server.commands.Complete(ctx, c, before)
		if len(suggestions) == 0 {
			c.send("&7(no suggestions)")
			return
		}
		c.send(strings.Join(suggestions, "  "))
		return
	}

	line = strings.TrimLeft(line, " ")
	if line == "" {
		return
	}
	if !c.server.commands.Dispatch(ctx, c, line) {
		c.send(UnknownCommand)
	}
}

// readLine reads one line without its line terminator. Telnet clients
// send CRLF.
func (c *Conn) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (c *Conn) send(message string) {
	c.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, message))
}

func (c *Conn) logClose(ctx context.Context, logger *slog.Logger, err error) {
	reason, _ := c.reason.Load().(string)
	switch {
	case reason != "":
		logger.InfoContext(ctx, "session ended", "reason", reason)
	case errors.Is(err, io.EOF):
		logger.InfoContext(ctx, "session ended", "reason", "client closed")
	default:
		logger.DebugContext(ctx, "connection read error", "error", err)
	}
}

func validName(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
