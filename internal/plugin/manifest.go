// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest file name inside a plugin directory.
const ManifestFile = "plugin.yaml"

// CodeInvalidManifest marks manifests that fail parsing or validation.
const CodeInvalidManifest = "INVALID_MANIFEST"

// CodeIncompatible marks plugins whose requires constraint excludes the host.
const CodeIncompatible = "INCOMPATIBLE_PLUGIN"

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64,description=Plugin name; also the command namespace"`
	Version     string `yaml:"version" json:"version" jsonschema:"minLength=1,description=Semantic version of the plugin"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Entry       string `yaml:"entry" json:"entry" jsonschema:"pattern=\\.lua$,description=Lua entry script relative to the plugin directory"`
	Requires    string `yaml:"requires,omitempty" json:"requires,omitempty" jsonschema:"description=Semver constraint on the host version"`
}

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: must start with lowercase letter,
// followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a plugin.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.In("plugin").Code(CodeInvalidManifest).New("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.In("plugin").Code(CodeInvalidManifest).Hint("invalid YAML").Wrap(err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	errb := oops.In("plugin").Code(CodeInvalidManifest).With("plugin", m.Name)

	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return errb.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return errb.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return errb.New("version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return errb.With("version", m.Version).Wrapf(err, "version must be a semantic version")
	}

	if m.Entry == "" {
		return errb.New("entry is required")
	}
	if !strings.HasSuffix(m.Entry, ".lua") {
		return errb.With("entry", m.Entry).New("entry must be a .lua file")
	}
	if !filepath.IsLocal(m.Entry) {
		return errb.With("entry", m.Entry).New("entry must stay inside the plugin directory")
	}

	if m.Requires != "" {
		if _, err := semver.NewConstraint(m.Requires); err != nil {
			return errb.With("requires", m.Requires).Wrapf(err, "requires must be a semver constraint")
		}
	}

	return nil
}

// CheckCompatible reports whether the plugin accepts hostVersion. A plugin
// without a requires constraint accepts any host. Unparseable host versions
// (development builds) are accepted.
func (m *Manifest) CheckCompatible(hostVersion string) error {
	if m.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return oops.In("plugin").Code(CodeInvalidManifest).With("plugin", m.Name).Wrap(err)
	}
	v, err := semver.NewVersion(hostVersion)
	if err != nil {
		return nil
	}
	if ok, reasons := constraint.Validate(v); !ok {
		return oops.In("plugin").
			Code(CodeIncompatible).
			With("plugin", m.Name).
			With("requires", m.Requires).
			With("host_version", hostVersion).
			Errorf("plugin %s requires host %s: %v", m.Name, m.Requires, reasons)
	}
	return nil
}
