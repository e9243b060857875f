// SPDX-License-Identifier: Apache-2.0
// Copyright 2020 syzkaller project authors. All rights reserved.
// Copyright 2022 Unikraft GmbH. All rights reserved.

// Package kconfig implements parsing, evaluation and serialization of the
// Kconfig configuration language: a tree of source files describing
// configuration symbols organized into a menu hierarchy, a constraint
// system of dependencies/ranges/defaults/reverse-dependencies over those
// symbols, and a persisted configuration format that round-trips the
// distinction between user-set and system-inferred values.
package kconfig

// Location tags a diagnostic or declaration with its origin in the
// source tree.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return l.File + ":" + itoa(l.Line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// CondExpr pairs a value-or-condition expression with a guard condition,
// the shared shape of defaults, ranges, selects, implies and sets (spec.md
// §3).
type CondExpr struct {
	Value     Expr
	Condition Expr
}

// Reverse is a single select/imply/set/set-default declaration attached
// to a bool source symbol (spec.md §3, §4.3).
type Reverse struct {
	Target    string
	Value     Expr // nil for select/imply (implicit y); set/set_default carry an explicit rhs
	Condition Expr
	Loc       Location
}

// RangeClause is one `range low high [if cond]` declaration (spec.md §3).
type RangeClause struct {
	Low, High Expr
	Condition Expr
}

// Prompt is a symbol or menu's user-facing label together with its
// visibility guard.
type Prompt struct {
	Text      string
	Condition Expr
}

// Symbol is a named configuration option (spec.md §3 "Symbol").
type Symbol struct {
	Name string
	Kind Kind

	Prompt    *Prompt
	Defaults  []CondExpr
	Selects   []Reverse
	Implies   []Reverse
	Sets      []Reverse
	SetDefs   []Reverse
	Ranges    []RangeClause
	DirectDep Expr
	Warning   *CondExpr
	Help      string
	EnvName   string // `option env=<NAME>`, spec.md §4.1 deprecated-but-accepted

	Menu *MenuNode
	Loc  Location

	// Choice is set when this symbol is a member of a choice group.
	Choice *Choice

	// ignoreMultipleDefinition suppresses the multiple-definition
	// notification (spec.md invariant 1, `# ignore: multiple-definition`).
	ignoreMultipleDefinition bool
	definitionCount          int
}

// IsUserSettable reports whether a symbol can carry a user assignment:
// promptless symbols are never user-settable (spec.md invariant 5).
func (s *Symbol) IsUserSettable() bool {
	return s.Prompt != nil
}

// Choice is a mutually exclusive group of bool symbols (spec.md §3
// "Choice").
type Choice struct {
	Name      string
	Kind      Kind
	Members   []*Symbol
	DirectDep Expr
	Prompt    *Prompt
	Menu      *MenuNode
	Loc       Location
}

// MenuKind discriminates the tagged-variant MenuNode (spec.md §9
// "Polymorphism across entry kinds").
type MenuKind string

const (
	NodeMain       MenuKind = "main"
	NodeMenu       MenuKind = "menu"
	NodeConfig     MenuKind = "config"
	NodeMenuConfig MenuKind = "menuconfig"
	NodeChoice     MenuKind = "choice"
	NodeComment    MenuKind = "comment"
	NodeIf         MenuKind = "if"
)

// MenuNode is a position in the menu tree. Variants are discriminated by
// Kind; If nodes are transparent dependency-propagating wrappers and
// carry no Symbol/Choice of their own (spec.md §3 "Menu node").
type MenuNode struct {
	Kind MenuKind

	Symbol *Symbol
	Choice *Choice

	Title     string
	VisibleIf Expr
	DependsOn Expr

	Parent   *MenuNode
	Children []*MenuNode

	Source string
	Loc    Location
}

// Walk visits n and every descendant in declaration order.
func (n *MenuNode) Walk(cb func(*MenuNode) error) error {
	if err := cb(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(cb); err != nil {
			return err
		}
	}
	return nil
}
