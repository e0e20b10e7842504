// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/cmdtree/pkg/errutil"
)

// Manager discovers plugins on disk and loads them into a Host.
type Manager struct {
	dir         string
	host        Host
	hostVersion string
	loaded      map[string]*DiscoveredPlugin
	mu          sync.RWMutex
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithHost sets the runtime plugins are loaded into.
func WithHost(h Host) ManagerOption {
	return func(m *Manager) { m.host = h }
}

// WithHostVersion sets the version checked against manifest requires
// constraints.
func WithHostVersion(v string) ManagerOption {
	return func(m *Manager) { m.hostVersion = v }
}

// NewManager creates a plugin manager rooted at dir.
func NewManager(dir string, opts ...ManagerOption) *Manager {
	m := &Manager{
		dir:    dir,
		loaded: make(map[string]*DiscoveredPlugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DiscoveredPlugin contains a manifest and its directory.
type DiscoveredPlugin struct {
	Manifest *Manifest
	Dir      string
}

// Discover finds all valid plugins in the plugins directory. Invalid plugins
// are logged and skipped. A missing directory yields no plugins.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredPlugin, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.In("plugin").With("dir", m.dir).Wrapf(err, "read plugins directory")
	}

	var found []*DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginDir, ManifestFile)) //nolint:gosec // path built from ReadDir entries
		if err != nil {
			slog.Warn("skipping plugin without manifest", "dir", entry.Name(), "error", err)
			continue
		}

		if err := ValidateSchema(data); err != nil {
			slog.Warn("skipping plugin failing manifest schema",
				append([]any{"dir", entry.Name()}, errutil.Attrs(err)...)...)
			continue
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			slog.Warn("skipping plugin with invalid manifest",
				append([]any{"dir", entry.Name()}, errutil.Attrs(err)...)...)
			continue
		}

		found = append(found, &DiscoveredPlugin{Manifest: manifest, Dir: pluginDir})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Manifest.Name < found[j].Manifest.Name })
	return found, nil
}

// LoadAll discovers and loads every plugin. Individual failures are logged and
// skipped so one broken plugin does not keep the others out.
func (m *Manager) LoadAll(ctx context.Context) error {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return err
	}

	for _, dp := range discovered {
		if err := m.Load(ctx, dp); err != nil {
			errutil.LogErrorContext(ctx, slog.Default().With("plugin", dp.Manifest.Name), "failed to load plugin", err)
		}
	}
	return nil
}

// Load loads a single discovered plugin.
func (m *Manager) Load(ctx context.Context, dp *DiscoveredPlugin) error {
	if m.host == nil {
		return oops.In("plugin").With("plugin", dp.Manifest.Name).New("no plugin host configured")
	}

	m.mu.RLock()
	_, dup := m.loaded[dp.Manifest.Name]
	m.mu.RUnlock()
	if dup {
		return oops.In("plugin").
			Code("DUPLICATE_PLUGIN").
			With("plugin", dp.Manifest.Name).
			Errorf("plugin %s already loaded", dp.Manifest.Name)
	}

	if err := dp.Manifest.CheckCompatible(m.hostVersion); err != nil {
		return err
	}

	if err := m.host.Load(ctx, dp.Manifest, dp.Dir); err != nil {
		return oops.In("plugin").With("plugin", dp.Manifest.Name).Wrap(err)
	}

	m.mu.Lock()
	m.loaded[dp.Manifest.Name] = dp
	m.mu.Unlock()

	slog.InfoContext(ctx, "loaded plugin",
		"plugin", dp.Manifest.Name,
		"version", dp.Manifest.Version,
		"runtime", m.host.Runtime())
	return nil
}

// Unload removes a loaded plugin from the host.
func (m *Manager) Unload(ctx context.Context, name string) error {
	m.mu.Lock()
	_, ok := m.loaded[name]
	delete(m.loaded, name)
	m.mu.Unlock()

	if !ok {
		return oops.In("plugin").Code("PLUGIN_NOT_LOADED").With("plugin", name).Errorf("plugin %s not loaded", name)
	}
	return m.host.Unload(ctx, name)
}

// Manifests returns manifests of loaded plugins sorted by name.
func (m *Manager) Manifests() []*Manifest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Manifest, 0, len(m.loaded))
	for _, dp := range m.loaded {
		out = append(out, dp.Manifest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListPlugins returns names of all loaded plugins.
func (m *Manager) ListPlugins() []string {
	manifests := m.Manifests()
	names := make([]string, len(manifests))
	for i, mf := range manifests {
		names[i] = mf.Name
	}
	return names
}

// Close shuts down the manager and all loaded plugins.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = make(map[string]*DiscoveredPlugin)

	if m.host != nil {
		if err := m.host.Close(ctx); err != nil {
			return oops.In("plugin").Wrapf(err, "close plugin host")
		}
	}
	return nil
}
