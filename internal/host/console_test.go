// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	console := host.NewConsole(&buf, false)

	assert.Equal(t, host.ConsoleName, console.Name())
	assert.True(t, console.HasPermission("anything.at.all"))
	assert.False(t, console.IsInteractive())

	console.SendMessage(chatcolor.Red + "denied")
	assert.Equal(t, "denied\n", buf.String())
}

func TestConsole_Color(t *testing.T) {
	var buf bytes.Buffer
	console := host.NewConsole(&buf, true)

	console.SendMessage(chatcolor.Red + "denied")
	assert.Equal(t, "\x1b[91mdenied\x1b[0m\n", buf.String())
}
