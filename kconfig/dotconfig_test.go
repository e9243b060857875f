// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1 (spec.md §8): load A=n (as "# CONFIG_A is not set") as
// user-set; expect the
// writer to emit "# CONFIG_A is not set" and a `# default:` pragma for
// B's untouched, Kconfig-computed value.
func TestDotConfigScenario1(t *testing.T) {
	table := mustParse(t, basicMenu)
	ev := NewEvaluator(table)

	report := LoadConfig([]byte("# CONFIG_A is not set\n"), table, ev, OriginPrimaryConfig, PolicySdkconfig)
	assert.Empty(t, report.Diagnostics)

	out := string(WriteConfig(table, ev))
	assert.Contains(t, out, "# CONFIG_A is not set")
	assert.Contains(t, out, "# default:\nCONFIG_B=0")
}

// Scenario 2 (spec.md §8): a stored default for A, then an explicit
// user override to n; the pragma must not survive the override.
func TestDotConfigScenario2(t *testing.T) {
	table := mustParse(t, basicMenu)
	ev := NewEvaluator(table)

	input := "# default:\nCONFIG_A=y\n# default:\nCONFIG_B=42\n"
	LoadConfig([]byte(input), table, ev, OriginPrimaryConfig, PolicySdkconfig)

	ev.Set("A", "n", OriginCommandLine, false)

	out := string(WriteConfig(table, ev))
	assert.Contains(t, out, "# CONFIG_A is not set")
	assert.NotContains(t, out, "# default:\n# CONFIG_A is not set")
	assert.Contains(t, out, "# default:\nCONFIG_B=0")
}

// Scenario 6 (spec.md §8): a promptless symbol's stored value is
// dropped with a warning, and the writer falls back to the Kconfig
// default with a `# default:` pragma.
const promptlessMenu = `
mainmenu "Test"

config X
	int "dummy"
	default 100

config Y
	int
	default 100
`

func TestDotConfigPromptlessOverrideWarns(t *testing.T) {
	table := mustParse(t, promptlessMenu)
	ev := NewEvaluator(table)

	report := LoadConfig([]byte("CONFIG_Y=42\n"), table, ev, OriginPrimaryConfig, PolicySdkconfig)

	found := false
	for _, d := range report.Diagnostics {
		if d.Category == CategoryPromptlessOverride {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, "100", ev.Value("Y").Raw)
}

func TestDotConfigRoundTripHexAndString(t *testing.T) {
	src := `
mainmenu "Test"

config H
	hex "H"
	default 0x1A

config S
	string "S"
	default "hello \"world\""
`
	table := mustParse(t, src)
	ev := NewEvaluator(table)

	out := string(WriteConfig(table, ev))
	assert.Contains(t, out, "CONFIG_H=0x1A")
	assert.Contains(t, out, `CONFIG_S="hello \"world\""`)
}

func TestDotConfigDeprecatedSectionRoundTrip(t *testing.T) {
	table := mustParse(t, basicMenu)
	table.Renames = NewRenameMap()
	require.NoError(t, table.Renames.Add("A_OLD", "A"))

	ev := NewEvaluator(table)
	ev.Set("A", "y", OriginCommandLine, false)

	out := string(WriteConfig(table, ev))
	require.True(t, strings.Contains(out, deprecatedBanner))
	assert.Contains(t, out, "CONFIG_A_OLD=y")
	assert.Contains(t, out, deprecatedEndBanner)
}

func TestDotConfigLoadResolvesOldName(t *testing.T) {
	table := mustParse(t, basicMenu)
	table.Renames = NewRenameMap()
	require.NoError(t, table.Renames.Add("A_OLD", "A"))

	ev := NewEvaluator(table)
	LoadConfig([]byte("# CONFIG_A_OLD is not set\n"), table, ev, OriginPrimaryConfig, PolicySdkconfig)

	assert.False(t, ev.Value("A").True())
}
