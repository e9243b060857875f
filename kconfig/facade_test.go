// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngineLoadSetSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kconfigPath := writeTemp(t, dir, "Kconfig", basicMenu)

	eng, err := NewEngine(kconfigPath)
	require.NoError(t, err)

	require.NoError(t, eng.Set("A", "n"))
	assert.False(t, eng.Eval.Value("A").True())

	outPath := filepath.Join(dir, ".config")
	require.NoError(t, eng.SaveConfig(outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# CONFIG_A is not set")
}

func TestEngineSetUnknownSymbolErrors(t *testing.T) {
	dir := t.TempDir()
	kconfigPath := writeTemp(t, dir, "Kconfig", basicMenu)

	eng, err := NewEngine(kconfigPath)
	require.NoError(t, err)

	assert.Error(t, eng.Set("NOPE", "y"))
}

func TestEngineLoadRenameFile(t *testing.T) {
	dir := t.TempDir()
	kconfigPath := writeTemp(t, dir, "Kconfig", basicMenu)
	// "LEGACY_A A" is a normal OLD-then-NEW line; "! A ANCIENT_A" is
	// given NEW-then-OLD, so it also resolves ANCIENT_A to A.
	renamesPath := writeTemp(t, dir, "renames.txt", "LEGACY_A A\n! A ANCIENT_A\n")

	eng, err := NewEngine(kconfigPath)
	require.NoError(t, err)
	require.NoError(t, eng.LoadRenameFile(renamesPath))

	assert.Equal(t, "A", eng.Table.Renames.Canonical("LEGACY_A"))
	assert.Equal(t, "A", eng.Table.Renames.Canonical("ANCIENT_A"))
}

func TestEngineResetAll(t *testing.T) {
	dir := t.TempDir()
	kconfigPath := writeTemp(t, dir, "Kconfig", basicMenu)

	eng, err := NewEngine(kconfigPath)
	require.NoError(t, err)

	require.NoError(t, eng.Set("A", "n"))
	eng.Reset()

	assert.True(t, eng.Eval.Value("A").True())
}

func TestEngineIsDefault(t *testing.T) {
	dir := t.TempDir()
	kconfigPath := writeTemp(t, dir, "Kconfig", basicMenu)

	eng, err := NewEngine(kconfigPath)
	require.NoError(t, err)

	assert.True(t, eng.IsDefault("A"))
	require.NoError(t, eng.Set("A", "n"))
	assert.False(t, eng.IsDefault("A"))
}
