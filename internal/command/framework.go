// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/errutil"
)

// Framework registers enumerated handlers under one namespace and bridges
// them into a host command table, creating one TopLevelEntry per distinct
// first label segment.
//
// Registration is partial-failure tolerant: a rejected handler is logged
// and skipped, and the rest of the batch continues.
type Framework struct {
	namespace  string
	table      host.Table
	registry   *Registry
	dispatcher *Dispatcher
	mu         sync.Mutex // serializes registration
}

// New creates a framework for namespace over table. Dispatcher options are
// applied to the framework's dispatcher.
func New(namespace string, table host.Table, opts ...DispatcherOption) (*Framework, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	registry := NewRegistry()
	opts = append([]DispatcherOption{WithNamespace(namespace)}, opts...)
	dispatcher, err := NewDispatcher(registry, opts...)
	if err != nil {
		return nil, err
	}

	return &Framework{
		namespace:  namespace,
		table:      table,
		registry:   registry,
		dispatcher: dispatcher,
	}, nil
}

// Namespace returns the framework's namespace.
func (f *Framework) Namespace() string { return f.namespace }

// Registry returns the command registry.
func (f *Framework) Registry() *Registry { return f.registry }

// Dispatcher returns the framework's dispatcher.
func (f *Framework) Dispatcher() *Dispatcher { return f.dispatcher }

// RegisterAll registers every command and completer p enumerates.
// Rejected registrations are logged and returned; they never stop the batch.
func (f *Framework) RegisterAll(p Provider) []error {
	var rejected []error
	commands, completers := p.Commands(), p.Completers()

	for _, spec := range commands {
		if err := f.RegisterCommand(spec); err != nil {
			rejected = append(rejected, err)
		}
	}
	for _, spec := range completers {
		if err := f.RegisterCompleter(spec); err != nil {
			rejected = append(rejected, err)
		}
	}

	slog.Info("registered handlers",
		"namespace", f.namespace,
		"owner", typeName(p),
		"commands", len(commands),
		"completers", len(completers),
		"rejected", len(rejected))
	return rejected
}

// RegisterCommand binds spec's handler under its label and aliases.
// The label is stored lowercased, both bare and as "namespace:label".
// Description and usage reach the host entry only from the canonical label
// and only when that label is a root segment.
func (f *Framework) RegisterCommand(spec CommandSpec) error {
	handler, err := adaptHandler(spec.Label, spec.Handler)
	if err != nil {
		return f.reject("command", spec.Owner, err)
	}
	if err := ValidateLabel(spec.Label); err != nil {
		return f.reject("command", spec.Owner, err)
	}

	binding := Binding{
		Handler:         handler,
		Owner:           spec.Owner,
		Permission:      spec.Permission,
		DeniedMessage:   spec.DeniedMessage,
		InteractiveOnly: spec.InteractiveOnly,
		Description:     spec.Description,
		Usage:           spec.Usage,
		Source:          f.namespace,
	}
	if binding.DeniedMessage == "" {
		binding.DeniedMessage = DefaultDeniedMessage
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.bindCommand(binding, spec.Label, true)

	var errs []error
	for _, alias := range spec.Aliases {
		if err := ValidateLabel(alias); err != nil {
			errs = append(errs, f.reject("command", spec.Owner, err))
			continue
		}
		f.bindCommand(binding, alias, false)
	}
	return errors.Join(errs...)
}

func (f *Framework) bindCommand(binding Binding, label string, canonical bool) {
	key := NormalizeLabel(label)

	binding.Key = key
	f.registry.Register(binding)
	binding.Key = f.namespace + ":" + key
	f.registry.Register(binding)

	root := RootSegment(key)
	entry := f.ownEntry(root)
	if canonical && key == root {
		if binding.Description != "" {
			entry.SetDescription(binding.Description)
		}
		if binding.Usage != "" {
			entry.SetUsage(binding.Usage)
		}
	}
	RecordRegistration("command", RegistrationAccepted)
}

// RegisterCompleter attaches spec's completer, under its label and aliases,
// to the completer set of the label's top-level entry. An entry whose slot
// already holds a completer this framework does not recognise is left
// untouched and the registration is rejected.
func (f *Framework) RegisterCompleter(spec CompleterSpec) error {
	complete, err := adaptCompleter(spec.Label, spec.Handler)
	if err != nil {
		return f.reject("completer", spec.Owner, err)
	}
	if err := ValidateLabel(spec.Label); err != nil {
		return f.reject("completer", spec.Owner, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	labels := append([]string{spec.Label}, spec.Aliases...)
	for i, label := range labels {
		if i > 0 {
			if err := ValidateLabel(label); err != nil {
				errs = append(errs, f.reject("completer", spec.Owner, err))
				continue
			}
		}
		if err := f.bindCompleter(label, complete, spec.Owner); err != nil {
			errs = append(errs, f.reject("completer", spec.Owner, err))
		}
	}
	return errors.Join(errs...)
}

// bindCompleter attaches to every target entry or to none: all slots are
// checked before the first attach.
func (f *Framework) bindCompleter(label string, complete CompleteFunc, owner any) error {
	key := NormalizeLabel(label)
	targets := f.completerTargets(RootSegment(key))

	var errs []error
	for _, entry := range targets {
		if err := checkCompleterSlot(entry, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, entry := range targets {
		if err := f.attachCompleter(entry, key, complete, owner); err != nil {
			return err
		}
	}
	RecordRegistration("completer", RegistrationAccepted)
	return nil
}

// checkCompleterSlot reports why a completer under key cannot attach to
// entry, or nil when it can.
func checkCompleterSlot(entry host.Entry, key string) error {
	slot, ok := entry.(host.CompleterSlot)
	if !ok {
		return ErrNoCompleterSlot(key, typeName(entry))
	}
	switch slot.Completer().(type) {
	case nil, *CompleterSet:
		return nil
	default:
		return ErrCompleterConflict(key)
	}
}

func (f *Framework) attachCompleter(entry host.Entry, key string, complete CompleteFunc, owner any) error {
	slot, ok := entry.(host.CompleterSlot)
	if !ok {
		return ErrNoCompleterSlot(key, typeName(entry))
	}

	var set *CompleterSet
	switch current := slot.Completer().(type) {
	case nil:
		set = NewCompleterSet(entry)
		if err := slot.SetCompleter(set); err != nil {
			return err
		}
	case *CompleterSet:
		set = current
	default:
		return ErrCompleterConflict(key)
	}

	binding := CompleterBinding{Key: key, Complete: complete, Owner: owner, Source: f.namespace}
	set.Add(binding)
	binding.Key = f.namespace + ":" + key
	set.Add(binding)
	return nil
}

// ownEntry returns this framework's TopLevelEntry for root, creating and
// installing one when absent. When another entry already holds the bare
// name the new entry stays reachable by its qualified name.
func (f *Framework) ownEntry(root string) *TopLevelEntry {
	if entry, ok := f.table.Entry(f.namespace + ":" + root); ok {
		if tle, ok := entry.(*TopLevelEntry); ok && tle.dispatcher == f.dispatcher {
			return tle
		}
	}

	entry := NewTopLevelEntry(root, f.dispatcher)
	claimed := f.table.Register(f.namespace, entry)
	slog.Debug("top-level entry created",
		"name", root,
		"namespace", f.namespace,
		"bare_name_claimed", claimed)
	return entry
}

// completerTargets returns the entries a completer under root attaches to:
// the entry holding the bare name, which is what hosts complete against, and
// this framework's own entry when that is a different one.
func (f *Framework) completerTargets(root string) []host.Entry {
	var targets []host.Entry
	bare, hasBare := f.table.Entry(root)
	if hasBare {
		targets = append(targets, bare)
	}
	if own, ok := f.table.Entry(f.namespace + ":" + root); ok && (!hasBare || own != bare) {
		targets = append(targets, own)
	}
	if len(targets) == 0 {
		targets = append(targets, f.ownEntry(root))
	}
	return targets
}

func (f *Framework) reject(kind string, owner any, err error) error {
	attrs := append([]any{
		"kind", kind,
		"namespace", f.namespace,
		"owner", typeName(owner),
	}, errutil.Attrs(err)...)
	slog.Warn("registration rejected", attrs...)
	RecordRegistration(kind, RegistrationRejected)
	return err
}
