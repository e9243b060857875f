// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameMapCanonicalChain(t *testing.T) {
	r := NewRenameMap()
	require.NoError(t, r.Add("OLD1", "OLD2"))
	require.NoError(t, r.Add("OLD2", "NEW"))

	assert.Equal(t, "NEW", r.Canonical("OLD1"))
	assert.Equal(t, "NEW", r.Canonical("OLD2"))
	assert.Equal(t, "NEW", r.Canonical("NEW"))
	assert.Equal(t, "UNRELATED", r.Canonical("UNRELATED"))
}

func TestRenameMapRejectsSelfRename(t *testing.T) {
	r := NewRenameMap()
	assert.Error(t, r.Add("A", "A"))
}

func TestRenameMapRejectsCycle(t *testing.T) {
	r := NewRenameMap()
	require.NoError(t, r.Add("A", "B"))
	require.NoError(t, r.Add("B", "C"))
	assert.Error(t, r.Add("C", "A"))
}

func TestRenameMapDeprecated(t *testing.T) {
	r := NewRenameMap()
	require.NoError(t, r.Add("OLD1", "NEW"))
	require.NoError(t, r.Add("OLD2", "NEW"))

	old := r.Deprecated("NEW")
	assert.ElementsMatch(t, []string{"OLD1", "OLD2"}, old)
}
