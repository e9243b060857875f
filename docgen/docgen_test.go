// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package docgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kconf.sh/kconfig"
)

const docMenu = `
mainmenu "Test"

menu "Section"

config A
    bool "Option A"
    default y
    help
      Help text for A.

choice
    prompt "pick one"

config M1
    bool "one"

config M2
    bool "two"

endchoice

endmenu
`

func TestRenderIncludesTreeAndEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(path, []byte(docMenu), 0o644))

	table, err := kconfig.Parse(path)
	require.NoError(t, err)

	out := Render(table)
	assert.Contains(t, out, "# Configuration Reference")
	assert.Contains(t, out, "Section")
	assert.Contains(t, out, "`A` (bool)")
	assert.Contains(t, out, "Option A")
	assert.Contains(t, out, "Help text for A.")
	assert.Contains(t, out, "Choice:")
	assert.Contains(t, out, "`M1`")
	assert.Contains(t, out, "`M2`")
}
