// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStatusEscalatesWithSeverity(t *testing.T) {
	r := NewReport()
	assert.Equal(t, StatusOK, r.Status())

	r.Notify(CategoryDefaultMismatch, Location{}, "mismatch")
	assert.Equal(t, StatusOKWithNotifications, r.Status())

	r.Warn(CategoryStyle, Location{}, "style issue")
	assert.Equal(t, StatusOKWithWarnings, r.Status())

	r.Error(CategoryUndefinedSymbol, Location{}, "undefined: %s", "FOO")
	assert.Equal(t, StatusFailed, r.Status())
}

func TestReportFilterRespectsVerbosity(t *testing.T) {
	r := NewReport()
	r.Warn(CategoryStyle, Location{}, "warn")
	r.Error(CategoryUndefinedSymbol, Location{}, "error")

	assert.Len(t, r.Filter(VerbosityQuiet), 1)
	assert.Len(t, r.Filter(VerbosityDefault), 2)
	assert.Len(t, r.Filter(VerbosityVerbose), 2)
}

func TestReportSummaryFormatsCounts(t *testing.T) {
	r := NewReport()
	assert.Equal(t, "no diagnostics", r.Summary())

	for i := 0; i < 1200; i++ {
		r.Warn(CategoryStyle, Location{}, "warn %d", i)
	}
	r.Error(CategoryUndefinedSymbol, Location{}, "boom")

	assert.Equal(t, "1 error, 1,200 warnings", r.Summary())
}
