// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kconf.sh/kconfig"
)

const testMenu = `
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

func newTestEngine(t *testing.T) *kconfig.Engine {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Kconfig")
	require.NoError(t, os.WriteFile(path, []byte(testMenu), 0o644))
	eng, err := kconfig.NewEngine(path)
	require.NoError(t, err)
	return eng
}

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(bytes.NewBuffer(nil))
	return logrus.NewEntry(l)
}

func TestServerHelloEmitsFullSnapshot(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	s := New(eng, bytes.NewReader(nil), &out, discardLog())

	require.NoError(t, s.Hello())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, true, resp.Values["A"])
	assert.Equal(t, int64(42), toInt(resp.Values["B"]))
}

func toInt(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}

func TestServerSetUpdatesAndReturnsOnlyChangedFields(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	s := New(eng, bytes.NewReader([]byte(`{"version":3,"set":{"A":false}}`+"\n")), &out, discardLog())

	require.NoError(t, s.Serve())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, false, resp.Values["A"])
	assert.Equal(t, int64(0), toInt(resp.Values["B"]))
	assert.Empty(t, resp.Error)
}

// Scenario 5 (spec.md §8): unknown symbol in `set` still applies the
// rest and surfaces an error.
func TestServerSetUnknownSymbolReportsErrorButAppliesRest(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	s := New(eng, bytes.NewReader([]byte(`{"version":3,"set":{"A":true,"UNKNOWN":1}}`+"\n")), &out, discardLog())

	require.NoError(t, s.Serve())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Error, 1)
	assert.Contains(t, resp.Error[0], "UNKNOWN")
}

func TestServerUnsupportedVersionErrors(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	s := New(eng, bytes.NewReader([]byte(`{"version":99}`+"\n")), &out, discardLog())

	require.NoError(t, s.Serve())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Error, 1)
	assert.Contains(t, resp.Error[0], "unsupported protocol version")
}

func TestServerMalformedJSONRejected(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	s := New(eng, bytes.NewReader([]byte(`{not json`+"\n")), &out, discardLog())

	require.NoError(t, s.Serve())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotEmpty(t, resp.Error)
}
