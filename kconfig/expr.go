// SPDX-License-Identifier: Apache-2.0
// Copyright 2020 syzkaller project authors. All rights reserved.
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"strconv"
	"strings"
)

// Kind is the declared type of a symbol or a literal value.
type Kind string

const (
	KindBool   = Kind("bool")
	KindInt    = Kind("int")
	KindHex    = Kind("hex")
	KindString = Kind("string")
	KindFloat  = Kind("float")
)

// ZeroValue returns the type's zero value, used as the lowest-priority
// source in the constraint evaluator (spec priority level 8).
func (k Kind) ZeroValue() Value {
	switch k {
	case KindBool:
		return Value{Kind: KindBool, Raw: "n"}
	case KindInt:
		return Value{Kind: KindInt, Raw: "0"}
	case KindHex:
		return Value{Kind: KindHex, Raw: "0x0"}
	case KindFloat:
		return Value{Kind: KindFloat, Raw: "0.0"}
	default:
		return Value{Kind: KindString, Raw: ""}
	}
}

// Value is a typed, stringly-represented configuration value. Kconfig
// values are carried as their canonical textual form (the same form the
// writer emits) and interpreted according to Kind where arithmetic or
// comparison is required.
type Value struct {
	Kind Kind
	Raw  string
}

func BoolValue(b bool) Value {
	if b {
		return Value{Kind: KindBool, Raw: "y"}
	}
	return Value{Kind: KindBool, Raw: "n"}
}

// True reports the two-valued (tristate-free) truth of v, per spec.md
// §4.2: bool compares as y=2, n=0 (legacy); for non-bool kinds a value is
// true if not the type's zero value.
func (v Value) True() bool {
	switch v.Kind {
	case KindBool:
		return v.Raw == "y"
	case KindInt, KindHex, KindFloat:
		return v.Raw != "" && v.Raw != v.Kind.ZeroValue().Raw
	default:
		return v.Raw != ""
	}
}

// Int interprets v as a signed integer for int/hex kinds (and coerces
// bool to 2/0 per the legacy equality rule).
func (v Value) Int() (int64, bool) {
	switch v.Kind {
	case KindBool:
		if v.Raw == "y" {
			return 2, true
		}
		return 0, true
	case KindHex:
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.ToLower(v.Raw), "0x"), 16, 64)
		return n, err == nil
	default:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		return n, err == nil
	}
}

func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindBool:
		if v.Raw == "y" {
			return 2, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(v.Raw, 64)
		return f, err == nil
	}
}

// Environment resolves a symbol reference to its current effective value
// during expression evaluation. Implementations should record a warning
// the first time an undefined symbol is referenced (spec.md §4.2, §7).
type Environment interface {
	Lookup(name string) (Value, bool)
	UndefinedSymbol(name string)
}

// Expr is an algebraic term: a constant, a symbol reference, a
// comparison, or a boolean combination thereof (spec.md §3 "Expression").
type Expr interface {
	Eval(env Environment) Value
	// CollectDeps adds every symbol name referenced anywhere in the
	// expression to deps; used to build direct_dep sets and the
	// evaluator's reverse-dependency adjacency.
	CollectDeps(deps map[string]bool)
	String() string
}

// ConstExpr is a literal constant: a bool (y/n), integer, hex, string or
// float token.
type ConstExpr struct {
	Val Value
}

func (e *ConstExpr) Eval(Environment) Value         { return e.Val }
func (e *ConstExpr) CollectDeps(map[string]bool)    {}
func (e *ConstExpr) String() string {
	if e.Val.Kind == KindString {
		return strconv.Quote(e.Val.Raw)
	}
	return e.Val.Raw
}

// SymbolRef is a bare reference to a symbol name within an expression.
type SymbolRef struct {
	Name string
}

func (e *SymbolRef) Eval(env Environment) Value {
	v, ok := env.Lookup(e.Name)
	if !ok {
		env.UndefinedSymbol(e.Name)
		return Value{Kind: KindString, Raw: ""}
	}
	return v
}

func (e *SymbolRef) CollectDeps(deps map[string]bool) { deps[e.Name] = true }
func (e *SymbolRef) String() string                   { return e.Name }

// NotExpr negates a boolean expression.
type NotExpr struct {
	X Expr
}

func (e *NotExpr) Eval(env Environment) Value      { return BoolValue(!e.X.Eval(env).True()) }
func (e *NotExpr) CollectDeps(deps map[string]bool) { e.X.CollectDeps(deps) }
func (e *NotExpr) String() string                   { return "!" + e.X.String() }

// AndExpr is the logical conjunction of two boolean expressions.
type AndExpr struct {
	X, Y Expr
}

func (e *AndExpr) Eval(env Environment) Value {
	return BoolValue(e.X.Eval(env).True() && e.Y.Eval(env).True())
}

func (e *AndExpr) CollectDeps(deps map[string]bool) {
	e.X.CollectDeps(deps)
	e.Y.CollectDeps(deps)
}

func (e *AndExpr) String() string { return "(" + e.X.String() + " && " + e.Y.String() + ")" }

// OrExpr is the logical disjunction of two boolean expressions.
type OrExpr struct {
	X, Y Expr
}

func (e *OrExpr) Eval(env Environment) Value {
	return BoolValue(e.X.Eval(env).True() || e.Y.Eval(env).True())
}

func (e *OrExpr) CollectDeps(deps map[string]bool) {
	e.X.CollectDeps(deps)
	e.Y.CollectDeps(deps)
}

func (e *OrExpr) String() string { return "(" + e.X.String() + " || " + e.Y.String() + ")" }

// CompareOp is one of the six relational operators permitted between two
// expressions (spec.md §3, §4.2).
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// CompareExpr compares two sub-expressions. Equality/inequality coerces
// to string if either side is a string literal; otherwise both sides are
// compared numerically (ordering) per spec.md §4.2.
type CompareExpr struct {
	Op   CompareOp
	X, Y Expr
}

func (e *CompareExpr) Eval(env Environment) Value {
	xv := e.X.Eval(env)
	yv := e.Y.Eval(env)

	if xv.Kind == KindString || yv.Kind == KindString {
		x, y := xv.Raw, yv.Raw
		switch e.Op {
		case OpEq:
			return BoolValue(x == y)
		case OpNe:
			return BoolValue(x != y)
		case OpLt:
			return BoolValue(x < y)
		case OpLe:
			return BoolValue(x <= y)
		case OpGt:
			return BoolValue(x > y)
		case OpGe:
			return BoolValue(x >= y)
		}
		return BoolValue(false)
	}

	if xv.Kind == KindFloat || yv.Kind == KindFloat {
		x, xok := xv.Float()
		y, yok := yv.Float()
		if !xok || !yok {
			return BoolValue(false)
		}
		return compareOrdered(e.Op, x, y)
	}

	x, xok := xv.Int()
	y, yok := yv.Int()
	if !xok || !yok {
		return BoolValue(false)
	}
	return compareOrdered(e.Op, x, y)
}

func compareOrdered[T int64 | float64](op CompareOp, x, y T) Value {
	switch op {
	case OpEq:
		return BoolValue(x == y)
	case OpNe:
		return BoolValue(x != y)
	case OpLt:
		return BoolValue(x < y)
	case OpLe:
		return BoolValue(x <= y)
	case OpGt:
		return BoolValue(x > y)
	case OpGe:
		return BoolValue(x >= y)
	default:
		return BoolValue(false)
	}
}

func (e *CompareExpr) CollectDeps(deps map[string]bool) {
	e.X.CollectDeps(deps)
	e.Y.CollectDeps(deps)
}

func (e *CompareExpr) String() string {
	return e.X.String() + " " + string(e.Op) + " " + e.Y.String()
}

// exprAnd conjoins two possibly-nil expressions, as used when folding
// enclosing if/menu dependencies into a node's direct_dep (spec.md §3).
func exprAnd(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &AndExpr{X: a, Y: b}
}

// collectDeps is a nil-safe helper.
func collectDeps(e Expr, deps map[string]bool) {
	if e != nil {
		e.CollectDeps(deps)
	}
}

// evalBool evaluates a possibly-nil boolean expression, treating nil as
// always-true (no constraint).
func evalBool(e Expr, env Environment) bool {
	if e == nil {
		return true
	}
	return e.Eval(env).True()
}
