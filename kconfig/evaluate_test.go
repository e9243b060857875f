// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *SymbolTable {
	t.Helper()
	table, err := ParseData([]byte(src), "test.kconfig")
	require.NoError(t, err)
	return table
}

// Scenario 1 (spec.md §8): user sets A=n, B's conditional default falls
// through to its unconditional default.
func TestEvaluatorConditionalDefaultFallthrough(t *testing.T) {
	table := mustParse(t, basicMenu)
	ev := NewEvaluator(table)

	ev.Set("A", "n", OriginCommandLine, false)

	assert.False(t, ev.Value("A").True())
	assert.Equal(t, "0", ev.Value("B").Raw)
}

// Scenario 3 (spec.md §8): select bypasses direct dependencies and warns.
func TestEvaluatorSelectBypassesDependencies(t *testing.T) {
	table := mustParse(t, selectMenu)
	ev := NewEvaluator(table)

	assert.True(t, ev.Value("TGT").True())

	found := false
	for _, d := range ev.Report().Diagnostics {
		if d.Category == CategoryUnusedReverseDep {
			found = true
		}
	}
	assert.True(t, found, "expected a warning that select bypassed direct dependencies")
}

// Scenario 4 (spec.md §8): choice resolution defaults to the first
// member, then follows an explicit user selection.
func TestEvaluatorChoiceResolution(t *testing.T) {
	table := mustParse(t, choiceMenu)
	ev := NewEvaluator(table)

	assert.True(t, ev.Value("M1").True())
	assert.False(t, ev.Value("M2").True())

	ev.Set("M2", "y", OriginCommandLine, false)

	assert.False(t, ev.Value("M1").True())
	assert.True(t, ev.Value("M2").True())
}

const rangeMenu = `
mainmenu "Test"

config N
	int "N"
	range 0 10
	default 42
`

func TestEvaluatorRangeClamping(t *testing.T) {
	table := mustParse(t, rangeMenu)
	ev := NewEvaluator(table)

	assert.Equal(t, "10", ev.Value("N").Raw)

	found := false
	for _, d := range ev.Report().Diagnostics {
		if d.Category == CategoryRangeViolation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluatorInvalidatesDependents(t *testing.T) {
	table := mustParse(t, basicMenu)
	ev := NewEvaluator(table)

	assert.Equal(t, "42", ev.Value("B").Raw)

	ev.Set("A", "n", OriginCommandLine, false)
	assert.Equal(t, "0", ev.Value("B").Raw)

	ev.Reset("A")
	assert.Equal(t, "42", ev.Value("B").Raw)
}

const undefinedMenu = `
mainmenu "Test"

config A
	bool "A"
	depends on UNDEFINED
`

func TestEvaluatorUndefinedSymbolWarnsOnce(t *testing.T) {
	table := mustParse(t, undefinedMenu)
	ev := NewEvaluator(table)

	ev.Value("A")
	ev.Value("A")

	count := 0
	for _, d := range ev.Report().Diagnostics {
		if d.Category == CategoryUndefinedSymbol {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

const setClauseMenu = `
mainmenu "Test"

config SRC
	bool "Src"
	default y
	set TGT = y

config TGT
	bool "T"
`

func TestEvaluatorSetForcesTargetValue(t *testing.T) {
	table := mustParse(t, setClauseMenu)
	ev := NewEvaluator(table)

	assert.True(t, ev.Value("TGT").True())
}
