// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv map[string]Value

func (f fakeEnv) Lookup(name string) (Value, bool) {
	v, ok := f[name]
	return v, ok
}

func (f fakeEnv) UndefinedSymbol(string) {}

func TestValueTrue(t *testing.T) {
	assert.True(t, BoolValue(true).True())
	assert.False(t, BoolValue(false).True())
	assert.True(t, Value{Kind: KindInt, Raw: "1"}.True())
	assert.False(t, Value{Kind: KindInt, Raw: "0"}.True())
	assert.False(t, Value{Kind: KindString, Raw: ""}.True())
	assert.True(t, Value{Kind: KindString, Raw: "x"}.True())
}

func TestValueIntHex(t *testing.T) {
	n, ok := Value{Kind: KindHex, Raw: "0x1A"}.Int()
	require.True(t, ok)
	assert.EqualValues(t, 0x1A, n)

	n, ok = Value{Kind: KindBool, Raw: "y"}.Int()
	require.True(t, ok)
	assert.EqualValues(t, 2, n)
}

func TestAndOrNotExpr(t *testing.T) {
	env := fakeEnv{"A": BoolValue(true), "B": BoolValue(false)}

	and := &AndExpr{X: &SymbolRef{Name: "A"}, Y: &SymbolRef{Name: "B"}}
	assert.False(t, and.Eval(env).True())

	or := &OrExpr{X: &SymbolRef{Name: "A"}, Y: &SymbolRef{Name: "B"}}
	assert.True(t, or.Eval(env).True())

	not := &NotExpr{X: &SymbolRef{Name: "B"}}
	assert.True(t, not.Eval(env).True())
}

func TestCompareExprNumeric(t *testing.T) {
	env := fakeEnv{"N": {Kind: KindInt, Raw: "42"}}
	cmp := &CompareExpr{Op: OpGe, X: &SymbolRef{Name: "N"}, Y: &ConstExpr{Val: Value{Kind: KindInt, Raw: "10"}}}
	assert.True(t, cmp.Eval(env).True())

	cmp = &CompareExpr{Op: OpLt, X: &SymbolRef{Name: "N"}, Y: &ConstExpr{Val: Value{Kind: KindInt, Raw: "10"}}}
	assert.False(t, cmp.Eval(env).True())
}

func TestCompareExprString(t *testing.T) {
	env := fakeEnv{"S": {Kind: KindString, Raw: "foo"}}
	cmp := &CompareExpr{Op: OpEq, X: &SymbolRef{Name: "S"}, Y: &ConstExpr{Val: Value{Kind: KindString, Raw: "foo"}}}
	assert.True(t, cmp.Eval(env).True())
}

func TestSymbolRefUndefinedReportsEachEval(t *testing.T) {
	var calls int
	env := reportingEnv{calls: &calls}
	ref := &SymbolRef{Name: "MISSING"}
	ref.Eval(env)
	ref.Eval(env)
	assert.Equal(t, 2, calls) // this fake doesn't dedupe; Evaluator does (see evaluate_test.go)
}

type reportingEnv struct {
	calls *int
}

func (r reportingEnv) Lookup(string) (Value, bool) { return Value{}, false }
func (r reportingEnv) UndefinedSymbol(string)      { *r.calls++ }

func TestCollectDeps(t *testing.T) {
	e := &AndExpr{
		X: &SymbolRef{Name: "A"},
		Y: &OrExpr{X: &SymbolRef{Name: "B"}, Y: &NotExpr{X: &SymbolRef{Name: "C"}}},
	}
	deps := map[string]bool{}
	e.CollectDeps(deps)
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, deps)
}

func TestExprAndNilHandling(t *testing.T) {
	a := &SymbolRef{Name: "A"}
	assert.Equal(t, a, exprAnd(nil, a))
	assert.Equal(t, a, exprAnd(a, nil))
	assert.Nil(t, exprAnd(nil, nil))
}
