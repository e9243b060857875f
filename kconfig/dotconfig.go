// SPDX-License-Identifier: Apache-2.0
// Copyright 2020 syzkaller project authors. All rights reserved.
// Copyright 2022 Unikraft GmbH. All rights reserved.
//
// Configuration loader/writer (spec.md §4.4): reads and writes the
// persisted .config format, tracking the `# default:` pragma that
// distinguishes a user-chosen value from one the system inferred.

package kconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const configPrefix = "CONFIG_"

const deprecatedBanner = "# Deprecated options for backward compatibility"
const deprecatedEndBanner = "# end of deprecated options"

// DefaultsPolicy selects which side wins when a stored default
// disagrees with the Kconfig-declared default (spec.md §4.4, §6
// KCONFIG_DEFAULTS_POLICY).
type DefaultsPolicy string

const (
	// PolicySdkconfig keeps the stored value (default).
	PolicySdkconfig DefaultsPolicy = "sdkconfig"
	// PolicyKconfig adopts the Kconfig-declared default.
	PolicyKconfig DefaultsPolicy = "kconfig"
	// PolicyInteractive defers the decision to the surrounding UI; the
	// loader only reports the mismatch.
	PolicyInteractive DefaultsPolicy = "interactive"
)

var (
	reRecordY  = regexp.MustCompile(`^` + configPrefix + `([A-Za-z0-9_]+)=(.*)$`)
	reRecordN  = regexp.MustCompile(`^# ` + configPrefix + `([A-Za-z0-9_]+) is not set$`)
	reDefault  = regexp.MustCompile(`^# default:\s*$`)
)

type rawRecord struct {
	name      string
	value     string // empty and unset==true for "is not set"
	unset     bool
	isDefault bool
}

// parseRecords scans .config-format text into ordered records, splitting
// the deprecated-compatibility section out from the primary section
// (spec.md §4.4 "File format").
func parseRecords(data []byte) (primary, deprecated []rawRecord) {
	s := bufio.NewScanner(bytes.NewReader(data))
	pendingDefault := false
	inDeprecated := false

	for s.Scan() {
		line := s.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}
		if line == deprecatedBanner {
			inDeprecated = true
			continue
		}
		if line == deprecatedEndBanner {
			inDeprecated = false
			continue
		}
		if reDefault.MatchString(line) {
			pendingDefault = true
			continue
		}
		if m := reRecordN.FindStringSubmatch(line); m != nil {
			rec := rawRecord{name: m[1], unset: true, isDefault: pendingDefault}
			pendingDefault = false
			if inDeprecated {
				deprecated = append(deprecated, rec)
			} else {
				primary = append(primary, rec)
			}
			continue
		}
		if m := reRecordY.FindStringSubmatch(line); m != nil {
			rec := rawRecord{name: m[1], value: unquoteConfigValue(m[2]), isDefault: pendingDefault}
			pendingDefault = false
			if inDeprecated {
				deprecated = append(deprecated, rec)
			} else {
				primary = append(primary, rec)
			}
			continue
		}
		// Other '#' comments are ignored (spec.md §4.4).
		pendingDefault = false
	}

	return primary, deprecated
}

func unquoteConfigValue(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		unq, err := strconv.Unquote(raw)
		if err == nil {
			return unq
		}
	}
	return raw
}

// LoadConfig implements the load algorithm of spec.md §4.4: installs user
// assignments into ev, resolving names through renames, dropping
// promptless overrides, and applying the defaults policy to any
// disagreement between a stored default and the Kconfig default.
func LoadConfig(data []byte, table *SymbolTable, ev *Evaluator, origin Origin, policy DefaultsPolicy) *Report {
	report := NewReport()
	renames := table.Renames

	primary, deprecated := parseRecords(data)

	recOrigin := origin
	if origin == OriginDefaultsFile {
		recOrigin = OriginDefaultsFile
	}

	var promptless []rawRecord

	apply := func(rec rawRecord) {
		name := rec.name
		if renames != nil {
			name = renames.Canonical(name)
		}
		sym := table.Symbols[name]
		if sym == nil {
			return
		}

		raw := "n"
		if !rec.unset {
			raw = rec.value
			if sym.Kind == KindBool && raw != "n" {
				raw = "y"
			}
		}

		if !sym.IsUserSettable() {
			promptless = append(promptless, rawRecord{name: name, value: raw, unset: rec.unset, isDefault: rec.isDefault})
			return
		}

		ev.Set(name, raw, recOrigin, rec.isDefault)
	}

	for _, rec := range primary {
		apply(rec)
	}
	for _, rec := range deprecated {
		apply(rec)
	}

	for _, rec := range promptless {
		sym := table.Symbols[rec.name]
		current := ev.Value(rec.name)
		if current.Raw != rec.value {
			report.Warn(CategoryPromptlessOverride, sym.Loc,
				"promptless symbol %q overridden in configuration (stored %q, using Kconfig default %q)",
				rec.name, rec.value, current.Raw)
		}
	}

	applyDefaultsPolicy(table, ev, policy, report)

	return report
}

// applyDefaultsPolicy implements spec.md §4.4 step 6: for every
// prompt-bearing symbol whose stored default disagrees with what the
// Kconfig declaration alone would produce, resolve by policy.
func applyDefaultsPolicy(table *SymbolTable, ev *Evaluator, policy DefaultsPolicy, report *Report) {
	for _, name := range table.DeclOrder {
		sym := table.Symbols[name]
		if !sym.IsUserSettable() {
			continue
		}
		assign := ev.Assignment(name)
		if assign == nil || !assign.IsDefault {
			continue
		}

		stored := assign.Raw
		ev.Reset(name)
		kconfigDefault := ev.Value(name).Raw
		ev.Set(name, stored, assign.Origin, true)

		if stored == kconfigDefault {
			continue
		}

		report.Notify(CategoryDefaultMismatch, sym.Loc,
			"stored default %q for %q disagrees with Kconfig default %q", stored, name, kconfigDefault)

		switch policy {
		case PolicyKconfig:
			ev.Reset(name)
		case PolicyInteractive:
			// Left to the caller: the evaluator still reflects the
			// stored value until a decision arrives via Set/Reset.
		case PolicySdkconfig, "":
			// Keep the stored value; nothing further to do.
		}
	}
}

// WriteConfig implements the write algorithm of spec.md §4.4: traverses
// the menu in declaration order, emitting a `# default:` pragma for
// every record whose current value was not chosen by an explicit user
// write, plus a deprecated-compatibility section for renamed symbols.
func WriteConfig(table *SymbolTable, ev *Evaluator) []byte {
	buf := &bytes.Buffer{}

	written := make(map[*Symbol]bool)
	_ = table.Root.Walk(func(n *MenuNode) error {
		if n.Symbol == nil || written[n.Symbol] {
			return nil
		}
		written[n.Symbol] = true
		writeRecord(buf, n.Symbol, ev)
		return nil
	})

	writeDeprecatedSection(buf, table, ev)

	return buf.Bytes()
}

func isUserChosen(ev *Evaluator, name string) bool {
	a := ev.Assignment(name)
	return a != nil && (a.Origin == OriginCommandLine || (a.Origin == OriginPrimaryConfig && !a.IsDefault))
}

func writeRecord(buf *bytes.Buffer, sym *Symbol, ev *Evaluator) {
	if !isUserChosen(ev, sym.Name) {
		fmt.Fprintf(buf, "# default:\n")
	}

	v := ev.Value(sym.Name)
	fmt.Fprintf(buf, "%s\n", formatRecord(sym.Name, sym.Kind, v))
}

func formatRecord(name string, kind Kind, v Value) string {
	switch kind {
	case KindBool:
		if v.Raw == "y" {
			return fmt.Sprintf("%s%s=y", configPrefix, name)
		}
		return fmt.Sprintf("# %s%s is not set", configPrefix, name)
	case KindInt:
		return fmt.Sprintf("%s%s=%s", configPrefix, name, v.Raw)
	case KindHex:
		n, ok := v.Int()
		if !ok {
			n = 0
		}
		return fmt.Sprintf("%s%s=0x%X", configPrefix, name, n)
	case KindFloat:
		return fmt.Sprintf("%s%s=%s", configPrefix, name, v.Raw)
	default: // string
		return fmt.Sprintf("%s%s=%s", configPrefix, name, strconv.Quote(v.Raw))
	}
}

func writeDeprecatedSection(buf *bytes.Buffer, table *SymbolTable, ev *Evaluator) {
	if table.Renames == nil {
		return
	}

	var lines []string
	for _, name := range table.DeclOrder {
		sym := table.Symbols[name]
		if !sym.IsUserSettable() {
			continue
		}
		for _, old := range table.Renames.Deprecated(name) {
			lines = append(lines, formatRecord(old, sym.Kind, ev.Value(name)))
		}
	}
	if len(lines) == 0 {
		return
	}

	sort.Strings(lines)
	fmt.Fprintf(buf, "%s\n", deprecatedBanner)
	for _, l := range lines {
		fmt.Fprintf(buf, "%s\n", l)
	}
	fmt.Fprintf(buf, "%s\n", deprecatedEndBanner)
}
