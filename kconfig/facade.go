// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.
//
// Engine is the public surface consumers (the configurator, the IDE
// server, the checker, cmd/kconf) are built against (spec.md §6): it
// ties the symbol table, evaluator, rename map and report together
// behind the handful of operations the engine exposes externally.

package kconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"kconf.sh/internal/errs"
)

// Engine is a single loaded Kconfig tree plus its evaluator state. It is
// not safe for concurrent use (spec.md §5 "Concurrency & resource
// model"): callers serialize access to one Engine through a single
// point, as the server does per request.
type Engine struct {
	Table *SymbolTable
	Eval  *Evaluator

	Policy DefaultsPolicy
}

// NewEngine parses root and everything it sources, and builds a fresh
// evaluator with no user assignments.
func NewEngine(root string, env ...*KeyValue) (*Engine, error) {
	table, err := Parse(root, env...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Table:  table,
		Eval:   NewEvaluator(table),
		Policy: PolicySdkconfig,
	}, nil
}

// LoadRenameFile parses a rename list and installs it on the engine's
// symbol table, so that subsequent LoadConfig/SaveConfig calls route
// deprecated names through it (spec.md §4.5).
//
// Format: one pair per non-empty, non-comment line, `OLD NEW`. A line
// prefixed with `!` declares the pair in the opposite order, `NEW OLD`,
// for rename lists that record the canonical name first.
func (e *Engine) LoadRenameFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapIOError(err, "failed to open rename list %v", path)
	}

	renames := NewRenameMap()
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		inverted := false
		if strings.HasPrefix(line, "!") {
			inverted = true
			line = strings.TrimSpace(strings.TrimPrefix(line, "!"))
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("malformed rename entry %q", line)
		}

		old, next := fields[0], fields[1]
		if inverted {
			old, next = next, old
		}
		if err := renames.Add(old, next); err != nil {
			return err
		}
	}

	e.Table.Renames = renames
	return nil
}

// LoadConfig reads a .config file and installs its records as user
// assignments (spec.md §4.4 "Load algorithm").
func (e *Engine) LoadConfig(path string, origin Origin) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapIOError(err, "failed to open configuration %v", path)
	}
	return LoadConfig(data, e.Table, e.Eval, origin, e.Policy), nil
}

// SaveConfig serializes the current effective configuration to path in
// canonical form (spec.md §4.4 "Write algorithm").
func (e *Engine) SaveConfig(path string) error {
	data := WriteConfig(e.Table, e.Eval)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return wrapIOError(err, "failed to write configuration %v", path)
	}
	return nil
}

// wrapIOError wraps an I/O failure with stack context, classifying it
// against the 3-way exit contract (spec.md §6): a missing path is the
// caller's mistake (exit 1), anything else (permission, disk, transient
// OS failures) is unexpected and wraps errs.ErrInternal (exit 2).
func wrapIOError(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if os.IsNotExist(err) {
		return wrapped
	}
	return fmt.Errorf("%w: %s", errs.ErrInternal, wrapped)
}

// Report merges parse-time, evaluator, and validation diagnostics into a
// single aggregate (spec.md §4.6).
func (e *Engine) Report() *Report {
	r := NewReport()
	r.Merge(e.Table.Report())
	r.Merge(e.Eval.Report())
	return r
}

// Set installs a user assignment for name, tagging it as an explicit
// (non-default) command-line-origin write.
func (e *Engine) Set(name, raw string) error {
	if _, ok := e.Table.Symbols[name]; !ok {
		return fmt.Errorf("unknown symbol: %s", name)
	}
	e.Eval.Set(name, raw, OriginCommandLine, false)
	return nil
}

// Reset clears user assignments for the given symbol names, or every
// symbol in the table if names is empty (spec.md §6 `reset` request,
// the `["all"]` form).
func (e *Engine) Reset(names ...string) {
	if len(names) == 0 {
		e.Eval.ResetAll()
		return
	}
	e.Eval.Reset(names...)
}

// Value returns the current effective value of a symbol.
func (e *Engine) Value(name string) (Value, bool) {
	if _, ok := e.Table.Symbols[name]; !ok {
		return Value{}, false
	}
	return e.Eval.Value(name), true
}

// Visible reports whether a symbol is currently visible.
func (e *Engine) Visible(name string) (bool, bool) {
	if _, ok := e.Table.Symbols[name]; !ok {
		return false, false
	}
	return e.Eval.Visible(name), true
}

// IsDefault reports whether a symbol's current effective value comes
// from anything other than an explicit, non-default user write — the
// `defaults` map of the JSON protocol (spec.md §6).
func (e *Engine) IsDefault(name string) bool {
	return !isUserChosen(e.Eval, name)
}
