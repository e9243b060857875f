// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverCmdMenu = `
mainmenu "Test"

config A
    bool "Option A"
`

func TestServerRunEmitsHelloThenAppliesRequest(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(root, []byte(serverCmdMenu), 0o644))

	var in, out bytes.Buffer
	in.WriteString(`{"version":1,"set":{"A":"y"}}` + "\n")

	cmd := &cobra.Command{Use: "server"}
	cmd.SetIn(&in)
	cmd.SetOut(&out)

	opts := &ServerOptions{Root: root}
	require.NoError(t, opts.Run(cmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var hello map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &hello))
	values, ok := hello["values"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, values["A"])

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &resp))
	values, ok = resp["values"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, values["A"])
}
