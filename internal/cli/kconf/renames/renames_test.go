// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package renames

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renameCmdMenu = `
mainmenu "Test"

config NEW_NAME
    bool "New name"
`

func TestRenamesRunMigratesConfigFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(root, []byte(renameCmdMenu), 0o644))

	renameFile := filepath.Join(dir, "Kconfig.renames")
	require.NoError(t, os.WriteFile(renameFile, []byte("OLD_NAME NEW_NAME\n"), 0o644))

	cfgPath := filepath.Join(dir, ".config")
	require.NoError(t, os.WriteFile(cfgPath, []byte("CONFIG_OLD_NAME=y\n"), 0o644))

	cmd := &cobra.Command{Use: "renames"}
	opts := &RenamesOptions{Root: root, ConfigFile: cfgPath, RenameFile: renameFile}
	require.NoError(t, opts.Run(cmd, nil))

	migrated, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content := string(migrated)
	assert.True(t, strings.Contains(content, "CONFIG_NEW_NAME=y"))
	// The old name is preserved under the backward-compatibility banner
	// so that tooling still reading CONFIG_OLD_NAME keeps working.
	assert.True(t, strings.Contains(content, "# Deprecated options for backward compatibility"))
	assert.True(t, strings.Contains(content, "CONFIG_OLD_NAME=y"))
}
