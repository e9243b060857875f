// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.
//
// Renames and compatibility (spec.md §4.5): a list of (old, new) pairs
// resolved to a canonical name, with cycle and self-rename rejection.

package kconfig

import "fmt"

// RenameMap resolves deprecated symbol names to their canonical
// (current) name, and the reverse, for loading/writing the deprecated
// compatibility section of a .config file.
type RenameMap struct {
	// forward maps an old name directly to the name it was renamed to.
	forward map[string]string
}

func NewRenameMap() *RenameMap {
	return &RenameMap{forward: make(map[string]string)}
}

// Add records that oldName was renamed to newName. It returns an error
// if the pair would self-rename or introduce a cycle; per spec.md §4.5,
// both are rejected rather than silently accepted.
func (r *RenameMap) Add(oldName, newName string) error {
	if oldName == newName {
		return fmt.Errorf("invalid rename: %q renamed to itself", oldName)
	}

	// Walk the existing chain starting at newName; if it ever reaches
	// oldName, adding this pair would close a cycle.
	seen := map[string]bool{oldName: true}
	cur := newName
	for {
		seen[cur] = true
		next, ok := r.forward[cur]
		if !ok {
			break
		}
		if next == oldName || seen[next] {
			return fmt.Errorf("invalid rename: %q -> %q would create a cycle", oldName, newName)
		}
		cur = next
	}

	r.forward[oldName] = newName
	return nil
}

// Canonical resolves name through the rename chain to its latest form.
// Chains are collapsed iteratively; a cycle (which Add should have
// already rejected) is broken by returning the last name reached before
// the chain repeats, rather than looping forever.
func (r *RenameMap) Canonical(name string) string {
	seen := map[string]bool{name: true}
	cur := name
	for {
		next, ok := r.forward[cur]
		if !ok {
			return cur
		}
		if seen[next] {
			return cur
		}
		seen[next] = true
		cur = next
	}
}

// Deprecated returns every old name that ultimately resolves to
// canonicalName, used by the writer's deprecated-compatibility section.
func (r *RenameMap) Deprecated(canonicalName string) []string {
	var old []string
	for from := range r.forward {
		if r.Canonical(from) == canonicalName && from != canonicalName {
			old = append(old, from)
		}
	}
	return old
}
