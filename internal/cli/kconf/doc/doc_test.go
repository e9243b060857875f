// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package doc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docCmdMenu = `
mainmenu "Test"

config A
    bool "Option A"
    default y
`

func TestDocRunWritesToOutputFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(root, []byte(docCmdMenu), 0o644))

	out := filepath.Join(dir, "reference.md")
	opts := &DocOptions{Root: root, Output: out}
	require.NoError(t, opts.Run(nil, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Configuration Reference")
	assert.Contains(t, string(data), "`A` (bool)")
}
