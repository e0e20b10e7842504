// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// CommandMap is an in-memory Table. Each entry is reachable as
// "namespace:name" and, when no earlier entry claimed it, as "name".
// It is safe for concurrent use.
type CommandMap struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewCommandMap creates an empty command table.
func NewCommandMap() *CommandMap {
	return &CommandMap{
		entries: make(map[string]Entry),
	}
}

// Entry looks up an entry by bare or qualified name, case-insensitively.
func (m *CommandMap) Entry(name string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[strings.ToLower(name)]
	return entry, ok
}

// Register installs entry. The qualified key always points at entry; the
// bare key is only claimed when free.
func (m *CommandMap) Register(namespace string, entry Entry) bool {
	name := strings.ToLower(entry.Name())
	namespace = strings.ToLower(strings.TrimSpace(namespace))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[namespace+":"+name] = entry
	if existing, taken := m.entries[name]; taken && existing != entry {
		slog.Warn("command table: bare name already claimed",
			"name", name,
			"namespace", namespace)
		return false
	}
	m.entries[name] = entry
	return true
}

// Entries returns each distinct entry once, ordered by name.
func (m *CommandMap) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[Entry]struct{}, len(m.entries))
	entries := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries
}

// Dispatch runs a full command line. Tokens are separated by single spaces,
// so doubled spaces yield blank tokens; trailing blank tokens are dropped.
// It returns false when no entry matches the first token.
func (m *CommandMap) Dispatch(ctx context.Context, sender Sender, line string) bool {
	tokens := trimTrailingBlanks(strings.Split(line, " "))
	if len(tokens) == 0 || tokens[0] == "" {
		return false
	}

	entry, ok := m.Entry(tokens[0])
	if !ok {
		return false
	}
	return entry.Execute(ctx, sender, tokens[0], tokens[1:])
}

// Complete returns suggestions for a partially typed line. Without a space
// the first token is completed against the table's names; otherwise the
// entry's completer receives every token after the label, including the
// trailing one being typed.
func (m *CommandMap) Complete(ctx context.Context, sender Sender, line string) []string {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return m.completeNames(line)
	}

	entry, ok := m.Entry(line[:idx])
	if !ok {
		return nil
	}
	slot, ok := entry.(CompleterSlot)
	if !ok {
		return nil
	}
	completer := slot.Completer()
	if completer == nil {
		return nil
	}
	return completer.Complete(ctx, sender, line[:idx], strings.Split(line[idx+1:], " "))
}

func (m *CommandMap) completeNames(prefix string) []string {
	prefix = strings.ToLower(prefix)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func trimTrailingBlanks(tokens []string) []string {
	end := len(tokens)
	for end > 0 && tokens[end-1] == "" {
		end--
	}
	return tokens[:end]
}

// Verify interfaces are satisfied.
var _ Table = (*CommandMap)(nil)
