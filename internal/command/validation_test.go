// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/cmdtree/pkg/errutil"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		wantErr bool
	}{
		{"simple", "look", false},
		{"nested", "build.wall.stone", false},
		{"mixed case", "Build.Wall", false},
		{"punctuation", "?", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxLabelLength+1), true},
		{"max length", strings.Repeat("a", MaxLabelLength), false},
		{"colon", "core:look", true},
		{"space", "build wall", true},
		{"tab", "build\twall", true},
		{"leading dot", ".wall", true},
		{"trailing dot", "build.", true},
		{"double dot", "build..wall", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.label)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, CodeInvalidLabel)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		wantErr   bool
	}{
		{"simple", "core", false},
		{"hyphen", "my-plugin", false},
		{"digits", "plugin2", false},
		{"empty", "", true},
		{"uppercase", "Core", true},
		{"leading digit", "2core", true},
		{"trailing hyphen", "core-", true},
		{"colon", "core:x", true},
		{"too long", strings.Repeat("a", MaxNamespaceLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNamespace(tt.namespace)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, CodeInvalidNamespace)
				return
			}
			assert.NoError(t, err)
		})
	}
}
