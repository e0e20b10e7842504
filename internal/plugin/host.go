// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package plugin discovers script plugins and hands them to a runtime host
// that registers their commands.
package plugin

import "context"

// Host is a script runtime. Load registers the plugin's commands into the
// host command table under the plugin name. A host may be loaded into
// only until Close.
type Host interface {
	Runtime() string
	Load(ctx context.Context, manifest *Manifest, dir string) error
	Unload(ctx context.Context, name string) error
	Close(ctx context.Context) error
}
