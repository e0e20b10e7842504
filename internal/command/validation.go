// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/oops"
)

const (
	// MaxLabelLength is the maximum length of a registered label.
	MaxLabelLength = 128

	// MaxNamespaceLength is the maximum length of a framework namespace.
	MaxNamespaceLength = 64
)

// namespacePattern validates namespaces: lowercase letter first, then
// lowercase letters, digits, or hyphens, not ending with a hyphen.
var namespacePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ValidateLabel checks that label can be stored in a registry. Each
// dot-segment must be non-empty and free of whitespace and ':'.
func ValidateLabel(label string) error {
	if label == "" {
		return ErrInvalidLabel(label, "label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return oops.Code(CodeInvalidLabel).
			With("label", label).
			With("length", len(label)).
			With("max", MaxLabelLength).
			Errorf("label exceeds maximum length of %d", MaxLabelLength)
	}
	if strings.ContainsRune(label, ':') {
		return ErrInvalidLabel(label, "label cannot contain ':'")
	}
	if strings.IndexFunc(label, unicode.IsSpace) >= 0 {
		return ErrInvalidLabel(label, "label cannot contain whitespace")
	}
	for _, segment := range strings.Split(label, Separator) {
		if segment == "" {
			return ErrInvalidLabel(label, "label cannot contain an empty segment")
		}
	}
	return nil
}

// ValidateNamespace checks a framework namespace.
func ValidateNamespace(namespace string) error {
	if len(namespace) > MaxNamespaceLength {
		return oops.Code(CodeInvalidNamespace).
			With("namespace", namespace).
			With("max", MaxNamespaceLength).
			Errorf("namespace exceeds maximum length of %d", MaxNamespaceLength)
	}
	if !namespacePattern.MatchString(namespace) {
		return oops.Code(CodeInvalidNamespace).
			With("namespace", namespace).
			Errorf("namespace %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", namespace)
	}
	return nil
}
