// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

// validate runs the post-parse checks spec.md §4.1/§4.3/§7 require before
// a SymbolTable is handed to the evaluator: multiple-definition
// notifications and the non-bool-source rejection for reverse
// dependencies.
func (kp *kconfigParser) validate() {
	report := kp.table.report

	for _, sym := range kp.table.Symbols {
		if sym.definitionCount > 0 && !sym.ignoreMultipleDefinition {
			report.Notify(CategoryMultipleDefinition, sym.Loc,
				"symbol %q has %d additional declarations, merged in declaration order", sym.Name, sym.definitionCount)
		}

		if sym.Kind != KindBool {
			if len(sym.Selects) > 0 {
				report.Error(CategoryReverseDepNonBool, sym.Loc,
					"symbol %q declares select but is not bool", sym.Name)
			}
			if len(sym.Implies) > 0 {
				report.Error(CategoryReverseDepNonBool, sym.Loc,
					"symbol %q declares imply but is not bool", sym.Name)
			}
			if len(sym.Sets) > 0 {
				report.Error(CategoryReverseDepNonBool, sym.Loc,
					"symbol %q declares set but is not bool", sym.Name)
			}
			if len(sym.SetDefs) > 0 {
				report.Error(CategoryReverseDepNonBool, sym.Loc,
					"symbol %q declares set default but is not bool", sym.Name)
			}
		}
	}
}
