// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package telnet provides the line-oriented TCP front end. Each connection
// is an interactive sender whose lines are dispatched through the host
// command table.
package telnet

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/cmdtree/internal/access"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

// Commands is the host table surface the server drives.
type Commands interface {
	Dispatch(ctx context.Context, sender host.Sender, line string) bool
	Complete(ctx context.Context, sender host.Sender, line string) []string
}

var _ handlers.Sessions = (*Server)(nil)

// DefaultGreeting is sent to every new connection.
const DefaultGreeting = "&bWelcome to cmdtree!&r"

// Server is a telnet server.
type Server struct {
	addr     string
	commands Commands
	checker  access.Checker
	greeting string
	color    bool

	listener net.Listener
	conns    map[ulid.ULID]*Conn
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithChecker sets the permission backend senders consult.
func WithChecker(c access.Checker) ServerOption {
	return func(s *Server) { s.checker = c }
}

// WithGreeting replaces the connection greeting.
func WithGreeting(greeting string) ServerOption {
	return func(s *Server) { s.greeting = greeting }
}

// WithColor enables ANSI rendering of color codes. Codes are stripped
// otherwise.
func WithColor(enabled bool) ServerOption {
	return func(s *Server) { s.color = enabled }
}

// NewServer creates a telnet server dispatching into commands.
func NewServer(addr string, commands Commands, opts ...ServerOption) *Server {
	s := &Server{
		addr:     addr,
		commands: commands,
		greeting: DefaultGreeting,
		conns:    make(map[ulid.ULID]*Conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.checker == nil {
		s.checker = access.CheckerFunc(func(context.Context, string, string) bool { return false })
	}
	return s
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens and serves until ctx is cancelled. Open connections are
// closed and waited for before Run returns.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return oops.In("telnet").With("addr", s.addr).Wrapf(err, "listen")
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.InfoContext(ctx, "telnet server started", "addr", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		if err := listener.Close(); err != nil {
			slog.Debug("error closing listener", "error", err)
		}
	})
	defer stop()

	defer s.wg.Wait()
	for {
		nc, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.ErrorContext(ctx, "accept failed", "error", err)
			continue
		}

		Connections.Inc()
		c := newConn(nc, s)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c.Handle(ctx)
		}()
	}
}

// claim registers c under name. It fails when another connection holds
// the name.
func (s *Server) claim(c *Conn, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.conns {
		if strings.EqualFold(other.Name(), name) {
			return false
		}
	}
	c.setName(name)
	s.conns[c.id] = c
	Sessions.Inc()
	return true
}

func (s *Server) release(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[c.id]; ok {
		delete(s.conns, c.id)
		Sessions.Dec()
	}
}

func (s *Server) snapshot() []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

// List returns the named sessions sorted by name.
func (s *Server) List() []handlers.Session {
	conns := s.snapshot()
	out := make([]handlers.Session, 0, len(conns))
	for _, c := range conns {
		out = append(out, handlers.Session{Name: c.Name(), Idle: c.Idle()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Broadcast sends message, with '&' codes translated, to every named
// session and returns how many received it.
func (s *Server) Broadcast(message string) int {
	translated := chatcolor.Translate(chatcolor.DefaultAlt, message)
	conns := s.snapshot()
	for _, c := range conns {
		c.SendMessage(translated)
	}
	return len(conns)
}

// Disconnect closes the session called name, case-insensitively.
func (s *Server) Disconnect(name, reason string) bool {
	for _, c := range s.snapshot() {
		if strings.EqualFold(c.Name(), name) {
			c.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, "&cDisconnected: "+reason))
			c.Disconnect(reason)
			return true
		}
	}
	return false
}
