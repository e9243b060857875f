// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package checker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckFileFixesTabIndentAndTrailingWhitespace(t *testing.T) {
	path := writeFixture(t, "mainmenu \"Test\"\n\nconfig A\n\tbool \"A\"   \n\tdefault y\n")

	res, err := CheckFile(path)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.NotEmpty(t, res.NewPath)

	data, err := os.ReadFile(res.NewPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    bool \"A\"\n")
	assert.NotContains(t, string(data), "\t")
}

func TestCheckFileCleanInputProducesNoNewFile(t *testing.T) {
	path := writeFixture(t, "mainmenu \"Test\"\n\nconfig A\n    bool \"A\"\n    default y\n")

	res, err := CheckFile(path)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.NewPath)
	assert.False(t, res.HasUnfixed())
}

func TestCheckFileFlagsDuplicatePrompt(t *testing.T) {
	path := writeFixture(t, "mainmenu \"Test\"\n\nconfig A\n    bool \"A\"\n    prompt \"A again\"\n    default y\n")

	res, err := CheckFile(path)
	require.NoError(t, err)
	assert.True(t, res.HasUnfixed())
}
