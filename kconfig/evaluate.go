// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.
//
// The constraint evaluator: a demand-driven fixpoint over the symbol
// table (spec.md §4.3). Computed fields per symbol are visibility,
// active range, and effective value; writes invalidate dependents
// transitively and recomputation happens lazily on next read.

package kconfig

// Origin identifies where a user assignment came from (spec.md §3 "User
// assignment").
type Origin string

const (
	OriginCommandLine   Origin = "command_line"
	OriginPrimaryConfig Origin = "primary_config"
	OriginDefaultsFile  Origin = "defaults_file"
	OriginReset         Origin = "reset"
)

// Assignment is the zero-or-one user-provided record per symbol (spec.md
// §3).
type Assignment struct {
	Raw       string
	Origin    Origin
	IsDefault bool
}

type computed struct {
	visible     bool
	value       Value
	rangeActive bool
	rangeLow    Value
	rangeHigh   Value
}

// Evaluator computes and caches visibility/value/range for every symbol
// in a SymbolTable, reacting to user writes (spec.md §4.3, §5).
type Evaluator struct {
	table *SymbolTable
	report *Report

	assignments map[string]*Assignment
	computed    map[string]*computed
	dirty       map[string]bool
	inProgress  map[string]bool
	warnedUndef map[string]bool

	dependents map[string][]string
	setSources     map[string][]sourcedReverse
	setDefSources  map[string][]sourcedReverse
	selectSources  map[string][]sourcedReverse
	implySources   map[string][]sourcedReverse
}

type sourcedReverse struct {
	source string
	rev    Reverse
}

// NewEvaluator builds the reverse-dependency indices and returns a fresh
// evaluator with no user assignments.
func NewEvaluator(table *SymbolTable) *Evaluator {
	e := &Evaluator{
		table:         table,
		report:        NewReport(),
		assignments:   make(map[string]*Assignment),
		computed:      make(map[string]*computed),
		dirty:         make(map[string]bool),
		inProgress:    make(map[string]bool),
		warnedUndef:   make(map[string]bool),
		dependents:    make(map[string][]string),
		setSources:    make(map[string][]sourcedReverse),
		setDefSources: make(map[string][]sourcedReverse),
		selectSources: make(map[string][]sourcedReverse),
		implySources:  make(map[string][]sourcedReverse),
	}
	e.buildIndices()
	return e
}

// Report returns diagnostics accumulated by evaluation (range clamps,
// undefined-symbol warnings, type mismatches).
func (e *Evaluator) Report() *Report { return e.report }

func (e *Evaluator) buildIndices() {
	addDep := func(dep, dependent string) {
		e.dependents[dep] = append(e.dependents[dep], dependent)
	}
	addExprDeps := func(expr Expr, dependent string) {
		if expr == nil {
			return
		}
		deps := map[string]bool{}
		expr.CollectDeps(deps)
		for d := range deps {
			addDep(d, dependent)
		}
	}

	for _, name := range e.table.DeclOrder {
		sym := e.table.Symbols[name]
		addExprDeps(sym.DirectDep, name)
		if sym.Prompt != nil {
			addExprDeps(sym.Prompt.Condition, name)
		}
		if sym.Menu != nil {
			addExprDeps(sym.Menu.VisibleIf, name)
		}
		for _, d := range sym.Defaults {
			addExprDeps(d.Value, name)
			addExprDeps(d.Condition, name)
		}
		for _, r := range sym.Ranges {
			addExprDeps(r.Low, name)
			addExprDeps(r.High, name)
			addExprDeps(r.Condition, name)
		}
		for _, rev := range sym.Selects {
			addExprDeps(rev.Condition, name)
			addDep(name, rev.Target) // target depends on source's value
			e.selectSources[rev.Target] = append(e.selectSources[rev.Target], sourcedReverse{name, rev})
		}
		for _, rev := range sym.Implies {
			addExprDeps(rev.Condition, name)
			addDep(name, rev.Target)
			e.implySources[rev.Target] = append(e.implySources[rev.Target], sourcedReverse{name, rev})
		}
		for _, rev := range sym.Sets {
			addExprDeps(rev.Value, name)
			addExprDeps(rev.Condition, name)
			addDep(name, rev.Target)
			e.setSources[rev.Target] = append(e.setSources[rev.Target], sourcedReverse{name, rev})
		}
		for _, rev := range sym.SetDefs {
			addExprDeps(rev.Value, name)
			addExprDeps(rev.Condition, name)
			addDep(name, rev.Target)
			e.setDefSources[rev.Target] = append(e.setDefSources[rev.Target], sourcedReverse{name, rev})
		}
	}

	for _, choice := range e.table.Choices {
		for _, m1 := range choice.Members {
			for _, m2 := range choice.Members {
				if m1 != m2 {
					addDep(m1.Name, m2.Name)
				}
			}
		}
	}
}

// Lookup implements Environment.
func (e *Evaluator) Lookup(name string) (Value, bool) {
	sym := e.table.Symbols[name]
	if sym == nil {
		return Value{}, false
	}
	return e.ensure(name).value, true
}

func (e *Evaluator) UndefinedSymbol(name string) {
	if e.warnedUndef[name] {
		return
	}
	e.warnedUndef[name] = true
	e.report.Warn(CategoryUndefinedSymbol, Location{}, "reference to undefined symbol %q", name)
}

// Set installs a user assignment and invalidates every transitive
// dependent. value is the raw textual form (e.g. "y", "42", "0x1A",
// a quoted-unescaped string).
func (e *Evaluator) Set(name, raw string, origin Origin, isDefault bool) {
	sym := e.table.Symbols[name]
	if sym == nil {
		return
	}

	e.assignments[name] = &Assignment{Raw: raw, Origin: origin, IsDefault: isDefault}

	if sym.Choice != nil && sym.Kind == KindBool && raw == "y" {
		for _, sibling := range sym.Choice.Members {
			if sibling == sym {
				continue
			}
			e.assignments[sibling.Name] = &Assignment{Raw: "n", Origin: origin, IsDefault: false}
			e.invalidate(sibling.Name)
		}
	}

	e.invalidate(name)
}

// Reset clears the user assignment for the given symbols, reverting them
// to their computed default.
func (e *Evaluator) Reset(names ...string) {
	for _, name := range names {
		delete(e.assignments, name)
		e.invalidate(name)
	}
}

// ResetAll clears every user assignment.
func (e *Evaluator) ResetAll() {
	for name := range e.assignments {
		e.invalidate(name)
	}
	e.assignments = make(map[string]*Assignment)
}

// Assignment returns the current user assignment for name, or nil.
func (e *Evaluator) Assignment(name string) *Assignment {
	return e.assignments[name]
}

func (e *Evaluator) invalidate(name string) {
	queue := []string{name}
	seen := map[string]bool{}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		e.dirty[n] = true
		delete(e.computed, n)
		queue = append(queue, e.dependents[n]...)
	}
}

// Value returns the current effective value of a symbol, computing it if
// necessary.
func (e *Evaluator) Value(name string) Value {
	return e.ensure(name).value
}

// Visible reports whether a symbol is currently visible (spec.md
// invariant 6: visibility implies direct_dep holds).
func (e *Evaluator) Visible(name string) bool {
	return e.ensure(name).visible
}

// ActiveRange returns the currently-active [low, high] range for an
// int/hex/float symbol, if any range clause's condition is true.
func (e *Evaluator) ActiveRange(name string) (low, high Value, ok bool) {
	c := e.ensure(name)
	return c.rangeLow, c.rangeHigh, c.rangeActive
}

func (e *Evaluator) ensure(name string) *computed {
	if c, ok := e.computed[name]; ok && !e.dirty[name] {
		return c
	}
	if e.inProgress[name] {
		// Cycle: return the type's zero value rather than recurse
		// forever (spec.md §9 "Cyclic graph of symbols").
		sym := e.table.Symbols[name]
		if sym == nil {
			return &computed{}
		}
		return &computed{value: sym.Kind.ZeroValue()}
	}

	sym := e.table.Symbols[name]
	if sym == nil {
		return &computed{}
	}

	e.inProgress[name] = true
	c := e.computeSymbol(sym)
	delete(e.inProgress, name)

	delete(e.dirty, name)
	e.computed[name] = c
	return c
}

func (e *Evaluator) computeSymbol(sym *Symbol) *computed {
	directDep := evalBool(sym.DirectDep, e)

	ancestorVisible := true
	if sym.Menu != nil {
		ancestorVisible = evalBool(sym.Menu.VisibleIf, e)
	}

	visible := false
	if sym.Prompt != nil {
		promptCond := evalBool(sym.Prompt.Condition, e)
		visible = promptCond && directDep && ancestorVisible
	}

	value, ok := e.valueLevels1to6(sym, directDep)
	if !ok {
		if sym.Choice != nil && sym.Kind == KindBool {
			selected := e.resolveChoice(sym.Choice)
			value = BoolValue(selected == sym)
		} else {
			value = sym.Kind.ZeroValue()
		}
	}

	value = e.coerce(sym, value)

	c := &computed{visible: visible, value: value}
	e.applyRange(sym, c)
	return c
}

// coerce validates a computed value's textual form against the symbol's
// declared kind, warning and substituting the zero value on mismatch
// (spec.md §4.3 "Validation on evaluation").
func (e *Evaluator) coerce(sym *Symbol, v Value) Value {
	v.Kind = sym.Kind
	switch sym.Kind {
	case KindBool:
		if v.Raw != "y" && v.Raw != "n" {
			e.report.Warn(CategoryTypeMismatch, sym.Loc, "symbol %q expected bool, got %q", sym.Name, v.Raw)
			return sym.Kind.ZeroValue()
		}
	case KindInt:
		if _, ok := v.Int(); !ok {
			e.report.Warn(CategoryTypeMismatch, sym.Loc, "symbol %q expected int, got %q", sym.Name, v.Raw)
			return sym.Kind.ZeroValue()
		}
	case KindHex:
		if _, ok := v.Int(); !ok {
			e.report.Warn(CategoryTypeMismatch, sym.Loc, "symbol %q expected hex, got %q", sym.Name, v.Raw)
			return sym.Kind.ZeroValue()
		}
	case KindFloat:
		if _, ok := v.Float(); !ok {
			e.report.Warn(CategoryTypeMismatch, sym.Loc, "symbol %q expected float, got %q", sym.Name, v.Raw)
			return sym.Kind.ZeroValue()
		}
	}
	return v
}

// valueLevels1to6 computes a symbol's value from priority levels 1-6
// (spec.md §4.3), returning ok=false if none apply (leaving levels 7-8 to
// the caller).
func (e *Evaluator) valueLevels1to6(sym *Symbol, directDep bool) (Value, bool) {
	assign := e.assignments[sym.Name]

	// Level 1: explicit user assignment (command line, or primary config
	// not marked as a system default).
	if assign != nil && (assign.Origin == OriginCommandLine ||
		(assign.Origin == OriginPrimaryConfig && !assign.IsDefault)) {
		return Value{Kind: sym.Kind, Raw: assign.Raw}, true
	}

	if sym.Kind == KindBool {
		// Level 2: set, first matching in declaration order.
		for _, sr := range e.setSources[sym.Name] {
			if !e.Value(sr.source).True() {
				continue
			}
			if !evalBool(sr.rev.Condition, e) {
				continue
			}
			if sr.rev.Value != nil {
				return e.coerce(sym, sr.rev.Value.Eval(e)), true
			}
			return BoolValue(true), true
		}

		// Level 3: select, OR across all matching y-valued sources.
		selected := false
		for _, sr := range e.selectSources[sym.Name] {
			if e.Value(sr.source).True() && evalBool(sr.rev.Condition, e) {
				selected = true
			}
		}
		if selected {
			if !directDep {
				e.report.Warn(CategoryUnusedReverseDep, sym.Loc,
					"select forced %q to y while its direct dependencies are not met", sym.Name)
			}
			return BoolValue(true), true
		}

		// Level 4: imply, clamped to direct_dep.
		implied := false
		for _, sr := range e.implySources[sym.Name] {
			if e.Value(sr.source).True() && evalBool(sr.rev.Condition, e) {
				implied = true
			}
		}
		if implied && directDep {
			return BoolValue(true), true
		}
	}

	if sym.Kind == KindBool {
		// Level 5b: set default, participates only here, loses to user
		// overrides already handled above.
		for _, sr := range e.setDefSources[sym.Name] {
			if !e.Value(sr.source).True() {
				continue
			}
			if !evalBool(sr.rev.Condition, e) {
				continue
			}
			if sr.rev.Value != nil {
				return e.coerce(sym, sr.rev.Value.Eval(e)), true
			}
			return BoolValue(true), true
		}
	}

	// Level 6: first default clause whose condition is y. Checked ahead
	// of level 5's stored is_default assignment: a live default clause
	// reflects the Kconfig declaration's current intent, whereas an
	// is_default assignment is a snapshot from a previous evaluation
	// (possibly under a different set of upstream values) and must not
	// keep overriding a default clause that now evaluates differently
	// (spec.md §8 scenario 2 — B's `default 42 if A` / `default 0` must
	// track A's current value even though B also carries a stored
	// is_default assignment from before A changed).
	for _, d := range sym.Defaults {
		if evalBool(d.Condition, e) {
			return d.Value.Eval(e), true
		}
	}

	// Level 5: user assignment marked as a default, used when no default
	// clause currently applies (e.g. a symbol with no `default` at all,
	// or one whose conditions have all gone false) — still preferable to
	// falling all the way to the type's zero value.
	if assign != nil && (assign.Origin == OriginDefaultsFile ||
		(assign.Origin == OriginPrimaryConfig && assign.IsDefault)) {
		return Value{Kind: sym.Kind, Raw: assign.Raw}, true
	}

	return Value{}, false
}

// resolveChoice determines the selected member of a choice: a member
// already forced to y by levels 1-6 wins; otherwise the first visible
// member with a true default condition; otherwise the first visible
// member; otherwise none (spec.md §4.3 "Choice resolution").
func (e *Evaluator) resolveChoice(choice *Choice) *Symbol {
	for _, m := range choice.Members {
		if v, ok := e.valueLevels1to6(m, evalBool(m.DirectDep, e)); ok && v.True() {
			return m
		}
	}

	visible := func(m *Symbol) bool {
		if m.Prompt == nil {
			return false
		}
		ancestorVisible := true
		if m.Menu != nil {
			ancestorVisible = evalBool(m.Menu.VisibleIf, e)
		}
		return evalBool(m.DirectDep, e) && evalBool(m.Prompt.Condition, e) && ancestorVisible
	}

	for _, m := range choice.Members {
		if visible(m) {
			for _, d := range m.Defaults {
				if evalBool(d.Condition, e) {
					return m
				}
			}
		}
	}

	for _, m := range choice.Members {
		if visible(m) {
			return m
		}
	}

	return nil
}

// applyRange clamps c.value to the first range clause whose condition is
// y, warning if clamping changed the value (spec.md §4.3 "Range
// clamping", invariant 3).
func (e *Evaluator) applyRange(sym *Symbol, c *computed) {
	if sym.Kind != KindInt && sym.Kind != KindHex && sym.Kind != KindFloat {
		return
	}

	for _, r := range sym.Ranges {
		if !evalBool(r.Condition, e) {
			continue
		}
		low := r.Low.Eval(e)
		high := r.High.Eval(e)
		c.rangeActive = true
		c.rangeLow = low
		c.rangeHigh = high

		orig := c.value
		clamped := false
		if sym.Kind == KindFloat {
			v, _ := orig.Float()
			lo, _ := low.Float()
			hi, _ := high.Float()
			if v < lo {
				c.value = low
				clamped = true
			} else if v > hi {
				c.value = high
				clamped = true
			}
		} else {
			v, _ := orig.Int()
			lo, _ := low.Int()
			hi, _ := high.Int()
			if v < lo {
				c.value = low
				clamped = true
			} else if v > hi {
				c.value = high
				clamped = true
			}
		}

		if clamped {
			e.report.Warn(CategoryRangeViolation, sym.Loc,
				"symbol %q value %q out of range [%s, %s], clamped to %q",
				sym.Name, orig.Raw, low.Raw, high.Raw, c.value.Raw)
		}
		return
	}
}
