// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Severity is the urgency of a diagnostic (spec.md §4.6).
type Severity string

const (
	SeverityInfo         Severity = "info"
	SeverityNotification Severity = "notification"
	SeverityWarning      Severity = "warning"
	SeverityError        Severity = "error"
)

// Category tags the kind of condition that produced a diagnostic
// (spec.md §4.6, §7).
type Category string

const (
	CategoryMultipleDefinition  Category = "multiple-definition"
	CategoryDefaultMismatch     Category = "default-value-mismatch"
	CategoryPromptlessOverride  Category = "promptless-override"
	CategoryUnusedReverseDep    Category = "unused-reverse-dependency"
	CategoryTypeMismatch        Category = "type-mismatch"
	CategoryRangeViolation      Category = "range-violation"
	CategoryUndefinedSymbol     Category = "undefined-symbol"
	CategoryStyle               Category = "style"
	CategorySyntax              Category = "syntax"
	CategoryChoiceConflict      Category = "choice-conflict"
	CategoryReverseDepNonBool   Category = "reverse-dependency-non-bool"
	CategoryInvalidRename       Category = "invalid-rename"
	CategoryProtocol            Category = "protocol"
)

// Diagnostic is one reported condition, optionally tied to a source
// location.
type Diagnostic struct {
	Severity Severity
	Category Category
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	if d.Location.File == "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Category, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %s", d.Location, d.Severity, d.Category, d.Message)
}

// Status is the overall aggregate of a Report (spec.md §4.6).
type Status string

const (
	StatusOK                   Status = "ok"
	StatusOKWithNotifications  Status = "ok_with_notifications"
	StatusOKWithWarnings       Status = "ok_with_warnings"
	StatusFailed               Status = "failed"
)

// Verbosity controls how much of a Report is rendered to the operator
// (spec.md §4.6, §6 KCONFIG_REPORT_VERBOSITY).
type Verbosity string

const (
	VerbosityQuiet   Verbosity = "quiet"
	VerbosityDefault Verbosity = "default"
	VerbosityVerbose Verbosity = "verbose"
)

// Report aggregates diagnostics emitted by every phase: parsing,
// post-parse validation, evaluation, loading, writing, and the checker.
type Report struct {
	Diagnostics []Diagnostic
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) add(sev Severity, cat Category, loc Location, format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: sev,
		Category: cat,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) Info(cat Category, loc Location, format string, args ...interface{}) {
	r.add(SeverityInfo, cat, loc, format, args...)
}

func (r *Report) Notify(cat Category, loc Location, format string, args ...interface{}) {
	r.add(SeverityNotification, cat, loc, format, args...)
}

func (r *Report) Warn(cat Category, loc Location, format string, args ...interface{}) {
	r.add(SeverityWarning, cat, loc, format, args...)
}

func (r *Report) Error(cat Category, loc Location, format string, args ...interface{}) {
	r.add(SeverityError, cat, loc, format, args...)
}

// Merge appends another report's diagnostics onto r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Status computes the aggregate status across all diagnostics.
func (r *Report) Status() Status {
	hasWarning, hasNotification := false, false
	for _, d := range r.Diagnostics {
		switch d.Severity {
		case SeverityError:
			return StatusFailed
		case SeverityWarning:
			hasWarning = true
		case SeverityNotification:
			hasNotification = true
		}
	}
	switch {
	case hasWarning:
		return StatusOKWithWarnings
	case hasNotification:
		return StatusOKWithNotifications
	default:
		return StatusOK
	}
}

// Counts tallies diagnostics per severity, for the verbose summary line
// produced by Summary.
func (r *Report) Counts() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, d := range r.Diagnostics {
		counts[d.Severity]++
	}
	return counts
}

// Summary renders a one-line, human-readable tally of the report, e.g.
// "14 errors, 1,203 warnings" for a large tree's worth of diagnostics
// (spec.md §4.6 KCONFIG_REPORT_VERBOSITY=verbose).
func (r *Report) Summary() string {
	counts := r.Counts()

	order := []Severity{SeverityError, SeverityWarning, SeverityNotification, SeverityInfo}
	var parts []string
	for _, sev := range order {
		n := counts[sev]
		if n == 0 {
			continue
		}
		noun := string(sev)
		if n != 1 {
			noun += "s"
		}
		parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(n)), noun))
	}

	if len(parts) == 0 {
		return "no diagnostics"
	}
	return strings.Join(parts, ", ")
}

// Filter returns the diagnostics at or above the given verbosity: quiet
// shows only errors, default shows warnings and errors, verbose shows
// everything (spec.md §4.6).
func (r *Report) Filter(v Verbosity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		switch v {
		case VerbosityQuiet:
			if d.Severity == SeverityError {
				out = append(out, d)
			}
		case VerbosityVerbose:
			out = append(out, d)
		default:
			if d.Severity == SeverityError || d.Severity == SeverityWarning {
				out = append(out, d)
			}
		}
	}
	return out
}
