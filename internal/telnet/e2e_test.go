// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package telnet_test

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/cmdtree/internal/access"
	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/plugin"
	pluginlua "github.com/holomush/cmdtree/internal/plugin/lua"
	"github.com/holomush/cmdtree/internal/telnet"
)

const buildPlugin = `
commands.register{
  label = "build",
  description = "Build things",
  usage = "build <what>",
  handler = function(inv)
    inv.reply("&7Build what? " .. table.concat(inv.rest, ","))
  end,
}

commands.register{
  label = "build.wall",
  permission = "cmdtree.user.build",
  handler = function(inv)
    return "wall of " .. (inv.rest[1] or "nothing")
  end,
}

commands.completer{
  label = "build",
  handler = function(inv) return {"wall", "door"} end,
}
`

// session is a line-oriented telnet client.
type session struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (s *session) Send(line string) {
	GinkgoHelper()
	Expect(s.conn.SetWriteDeadline(time.Now().Add(time.Second))).To(Succeed())
	_, err := s.conn.Write([]byte(line + "\r\n"))
	Expect(err).NotTo(HaveOccurred())
}

func (s *session) Read() string {
	GinkgoHelper()
	Expect(s.conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
	line, err := s.reader.ReadString('\n')
	Expect(err).NotTo(HaveOccurred())
	return strings.TrimRight(line, "\r\n")
}

var _ = Describe("Telnet host", func() {
	var (
		srv    *telnet.Server
		cancel context.CancelFunc
		done   chan error
		lua    *pluginlua.Host
	)

	connect := func(name string) *session {
		GinkgoHelper()
		conn, err := net.Dial("tcp", srv.Addr())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(conn.Close)

		s := &session{conn: conn, reader: bufio.NewReader(conn)}
		Expect(s.Read()).To(Equal("Welcome to cmdtree!"))
		Expect(s.Read()).To(Equal(telnet.NamePrompt))
		s.Send(name)
		Expect(s.Read()).To(Equal("Hello, " + name + "!"))
		return s
	}

	BeforeEach(func() {
		checker, err := access.NewStatic(access.DefaultRoles(), access.WithDefaultRole(access.RoleGuest))
		Expect(err).NotTo(HaveOccurred())
		Expect(checker.AssignRole("ada", access.RoleAdmin)).To(Succeed())
		Expect(checker.AssignRole("bea", access.RoleUser)).To(Succeed())

		table := host.NewCommandMap()
		srv = telnet.NewServer("127.0.0.1:0", table, telnet.WithChecker(checker))

		fw, err := command.New("core", table)
		Expect(err).NotTo(HaveOccurred())
		Expect(fw.RegisterAll(handlers.New(table, handlers.WithSessions(srv)))).To(BeEmpty())

		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "main.lua"), []byte(buildPlugin), 0o600)).To(Succeed())
		lua = pluginlua.NewHost(table)
		manifest := &plugin.Manifest{Name: "builder", Version: "1.0.0", Entry: "main.lua"}
		Expect(lua.Load(context.Background(), manifest, dir)).To(Succeed())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()
		Eventually(srv.Addr).ShouldNot(BeEmpty())
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
		Expect(lua.Close(context.Background())).To(Succeed())
	})

	Describe("hierarchical dispatch", func() {
		It("routes the longest registered label", func() {
			bea := connect("bea")

			bea.Send("build wall stone")
			Expect(bea.Read()).To(Equal("wall of stone"))

			bea.Send("build tower")
			Expect(bea.Read()).To(Equal("Build what? tower"))
		})

		It("reaches plugin commands through their namespace", func() {
			bea := connect("bea")

			bea.Send("builder:build wall brick")
			Expect(bea.Read()).To(Equal("wall of brick"))
		})

		It("gates sub-labels on permissions from the role table", func() {
			guest := connect("guest1")

			guest.Send("build wall stone")
			Expect(guest.Read()).To(Equal("You do not have permission to perform that action"))
		})
	})

	Describe("tab completion", func() {
		It("completes arguments from the plugin completer", func() {
			bea := connect("bea")

			bea.Send("build \t")
			Expect(bea.Read()).To(Equal("wall  door"))
		})
	})

	Describe("administration", func() {
		It("lets an admin boot another session", func() {
			ada := connect("ada")
			bea := connect("bea")

			ada.Send("boot bea being loud")
			Expect(bea.Read()).To(Equal("Disconnected: being loud"))
			Expect(ada.Read()).To(Equal("Booted bea."))

			Eventually(func() []handlers.Session { return srv.List() }).Should(HaveLen(1))
		})

		It("lists sessions with who", func() {
			ada := connect("ada")
			connect("bea")

			ada.Send("who")
			Expect(ada.Read()).To(Equal("Sessions Online (2):"))
			Expect(ada.Read()).To(HavePrefix("  ada"))
			Expect(ada.Read()).To(HavePrefix("  bea"))
		})
	})
})
