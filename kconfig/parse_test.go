// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicMenu = `
mainmenu "Test"

config A
	bool "A"
	default y

config B
	int "B"
	depends on A
	default 42 if A
	default 0
`

func TestParseBasicSymbols(t *testing.T) {
	table, err := ParseData([]byte(basicMenu), "Test.kconfig")
	require.NoError(t, err)

	a := table.Symbols["A"]
	require.NotNil(t, a)
	assert.Equal(t, KindBool, a.Kind)
	assert.Equal(t, "A", a.Prompt.Text)

	b := table.Symbols["B"]
	require.NotNil(t, b)
	assert.Equal(t, KindInt, b.Kind)
	require.Len(t, b.Defaults, 2)
	assert.NotNil(t, b.DirectDep)
}

func TestParseRequiresMainmenu(t *testing.T) {
	_, err := ParseData([]byte("config A\n\tbool \"A\"\n"), "no-main.kconfig")
	assert.Error(t, err)
}

const ifMenu = `
mainmenu "Test"

config GATE
	bool "Gate"

if GATE
	config INNER
		bool "Inner"
		depends on OTHER
endif

config OTHER
	bool "Other"
`

func TestFoldDepsDistinguishesDependsOnFromVisibleIf(t *testing.T) {
	table, err := ParseData([]byte(ifMenu), "if.kconfig")
	require.NoError(t, err)

	inner := table.Symbols["INNER"]
	require.NotNil(t, inner)
	require.NotNil(t, inner.DirectDep)

	deps := map[string]bool{}
	inner.DirectDep.CollectDeps(deps)
	assert.True(t, deps["GATE"], "if-block condition must fold into direct_dep, not just visibility")
	assert.True(t, deps["OTHER"])
}

const visibleIfMenu = `
mainmenu "Test"

menu "Section"
	visible if SHOWIT
	config SECTITEM
		bool "Item"
endmenu

config SHOWIT
	bool "Show"
`

func TestVisibleIfDoesNotFoldIntoDirectDep(t *testing.T) {
	table, err := ParseData([]byte(visibleIfMenu), "visible.kconfig")
	require.NoError(t, err)

	item := table.Symbols["SECTITEM"]
	require.NotNil(t, item)

	if item.DirectDep != nil {
		deps := map[string]bool{}
		item.DirectDep.CollectDeps(deps)
		assert.False(t, deps["SHOWIT"], "visible if must not fold into direct_dep")
	}
}

const choiceMenu = `
mainmenu "Test"

choice C
	prompt "c"
	config M1
		bool "1"
	config M2
		bool "2"
endchoice
`

func TestChoiceMembership(t *testing.T) {
	table, err := ParseData([]byte(choiceMenu), "choice.kconfig")
	require.NoError(t, err)

	require.Len(t, table.Choices, 1)
	choice := table.Choices[0]
	require.Len(t, choice.Members, 2)

	m1 := table.Symbols["M1"]
	m2 := table.Symbols["M2"]
	assert.Same(t, choice, m1.Choice)
	assert.Same(t, choice, m2.Choice)
}

const selectMenu = `
mainmenu "Test"

config SRC
	bool "Src"
	default y
	select TGT

config TGT
	bool "T"
	depends on OTHER

config OTHER
	bool "Other"
	default n
`

func TestSelectReverseDependency(t *testing.T) {
	table, err := ParseData([]byte(selectMenu), "select.kconfig")
	require.NoError(t, err)

	src := table.Symbols["SRC"]
	require.Len(t, src.Selects, 1)
	assert.Equal(t, "TGT", src.Selects[0].Target)
}

func TestDeclOrderRecordsFirstDeclaration(t *testing.T) {
	table, err := ParseData([]byte(basicMenu), "order.kconfig")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.DeclOrder)
}

func TestMultipleDefinitionNotification(t *testing.T) {
	src := `
mainmenu "Test"

config A
	bool "A"
	default y

config A
	bool "A again"
`
	table, err := ParseData([]byte(src), "dup.kconfig")
	require.NoError(t, err)

	found := false
	for _, d := range table.Report().Diagnostics {
		if d.Category == CategoryMultipleDefinition {
			found = true
		}
	}
	assert.True(t, found)

	// Both `config A` occurrences must collapse to exactly one record in
	// the written .config (spec.md §3 Invariant 2), even though each
	// occurrence produced its own MenuNode in the tree.
	ev := NewEvaluator(table)
	data := WriteConfig(table, ev)
	assert.Equal(t, 1, strings.Count(string(data), "CONFIG_A"))
}
