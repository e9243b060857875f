// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package configure

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kconf.sh/iostreams"
)

const configureCmdMenu = `
mainmenu "Test"

config A
    bool "Option A"
    default y

config B
    string "Option B"
    default "hello"
`

// The test IOStreams built by iostreams.Test() is never a TTY, so
// Run's noPrompt path is taken and every symbol resolves to its
// declared default without needing to drive a survey prompt.
func TestConfigureRunWritesDefaultsWithoutPrompting(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(root, []byte(configureCmdMenu), 0o644))

	cfgPath := filepath.Join(dir, ".config")

	io, _, _, _ := iostreams.Test()
	cmd := &cobra.Command{Use: "configure"}
	cmd.SetContext(iostreams.WithIOStreams(context.Background(), io))

	opts := &ConfigureOptions{Root: root, ConfigFile: cfgPath}
	require.NoError(t, opts.Run(cmd, nil))

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "CONFIG_A=y"))
	assert.True(t, strings.Contains(content, `CONFIG_B="hello"`))
}
