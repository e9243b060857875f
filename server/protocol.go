// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

// Package server implements the line-delimited JSON protocol described in
// spec.md §6: one JSON object per line on standard input, one JSON object
// per line in response on standard output, out-of-band diagnostics on
// standard error.
package server

import (
	"strconv"

	"kconf.sh/kconfig"
)

// SupportedVersions are the protocol versions this server understands
// (spec.md §6 "must match supported set {1,2,3}").
var SupportedVersions = []int{1, 2, 3}

func versionSupported(v int) bool {
	for _, sv := range SupportedVersions {
		if sv == v {
			return true
		}
	}
	return false
}

// Request is one line of client input (spec.md §6 "Requests carry...").
type Request struct {
	Version int                    `json:"version"`
	Set     map[string]interface{} `json:"set,omitempty"`
	Load    *string                `json:"load,omitempty"`
	Save    *string                `json:"save,omitempty"`
	Reset   []string               `json:"reset,omitempty"`
}

// Response is one line of server output. Only fields that changed as a
// result of the request are populated, plus Error on failure (spec.md §6
// "Responses carry only changed...").
type Response struct {
	Ranges   map[string][2]interface{} `json:"ranges,omitempty"`
	Visible  map[string]bool           `json:"visible,omitempty"`
	Values   map[string]interface{}    `json:"values,omitempty"`
	Defaults map[string]bool           `json:"defaults,omitempty"`
	Warnings map[string]string         `json:"warnings,omitempty"`
	Error    []string                  `json:"error,omitempty"`
}

// snapshot captures every field-bearing symbol's externally visible state,
// used both to build the initial message and to diff before/after a
// request to compute the "only changed fields" response (spec.md §6).
type snapshot struct {
	ranges   map[string][2]interface{}
	visible  map[string]bool
	values   map[string]interface{}
	defaults map[string]bool
	warnings map[string]string
}

func takeSnapshot(eng *kconfig.Engine) snapshot {
	snap := snapshot{
		ranges:   make(map[string][2]interface{}),
		visible:  make(map[string]bool),
		values:   make(map[string]interface{}),
		defaults: make(map[string]bool),
		warnings: make(map[string]string),
	}

	for _, name := range eng.Table.DeclOrder {
		sym := eng.Table.Symbols[name]
		if sym == nil || !sym.IsUserSettable() {
			continue
		}

		snap.visible[name] = eng.Eval.Visible(name)
		snap.values[name] = jsonValue(eng.Eval.Value(name))
		snap.defaults[name] = eng.IsDefault(name)

		if low, high, ok := eng.Eval.ActiveRange(name); ok {
			snap.ranges[name] = [2]interface{}{jsonValue(low), jsonValue(high)}
		}
	}

	for _, d := range eng.Report().Diagnostics {
		if d.Severity == kconfig.SeverityWarning {
			snap.warnings[d.Location.String()] = d.Message
		}
	}

	return snap
}

// jsonValue converts a kconfig.Value to the JSON-native representation
// the protocol uses: booleans as true/false, int/hex/float numerically,
// strings as strings.
func jsonValue(v kconfig.Value) interface{} {
	switch v.Kind {
	case kconfig.KindBool:
		return v.True()
	case kconfig.KindInt, kconfig.KindHex:
		n, _ := v.Int()
		return n
	case kconfig.KindFloat:
		f, _ := v.Float()
		return f
	default:
		return v.Raw
	}
}

// rawValue renders a JSON-decoded request value back into the textual
// form the engine's Set expects.
func rawValue(v interface{}) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "y"
		}
		return "n"
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return ""
	}
}
