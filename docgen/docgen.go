// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

// Package docgen renders a parsed Kconfig menu tree to Markdown
// documentation (spec.md §1, SPEC_FULL.md §12), using treeprint for the
// indented outline.
package docgen

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"kconf.sh/kconfig"
)

// Render produces a Markdown document describing every menu, choice and
// symbol in table, in menu-traversal order (spec.md §6 "Persisted
// layout" uses the same traversal order for consistency between the two
// renderings of a tree).
func Render(table *kconfig.SymbolTable) string {
	var b strings.Builder

	b.WriteString("# Configuration Reference\n\n")

	b.WriteString("```\n")
	b.WriteString(RenderTree(table))
	b.WriteString("```\n\n")

	_ = table.Root.Walk(func(n *kconfig.MenuNode) error {
		renderEntry(&b, n)
		return nil
	})

	return b.String()
}

// RenderTree renders just the indented menu outline, with no trailing
// newline trimmed beyond what treeprint itself produces. Used standalone
// by the checker's `--tree` debug dump as well as by Render above.
func RenderTree(table *kconfig.SymbolTable) string {
	tree := treeprint.New()
	addChildren(tree, table.Root)
	return tree.String()
}

func addChildren(branch treeprint.Tree, n *kconfig.MenuNode) {
	for _, c := range n.Children {
		label := entryLabel(c)
		if len(c.Children) == 0 {
			branch.AddNode(label)
			continue
		}
		addChildren(branch.AddBranch(label), c)
	}
}

func entryLabel(n *kconfig.MenuNode) string {
	switch n.Kind {
	case kconfig.NodeConfig, kconfig.NodeMenuConfig:
		if n.Symbol != nil {
			return n.Symbol.Name
		}
	case kconfig.NodeMenu:
		return n.Title
	case kconfig.NodeChoice:
		if n.Choice != nil && n.Choice.Name != "" {
			return "choice " + n.Choice.Name
		}
		return "choice"
	case kconfig.NodeComment:
		return "# " + n.Title
	case kconfig.NodeIf:
		return "if"
	}
	return string(n.Kind)
}

func renderEntry(b *strings.Builder, n *kconfig.MenuNode) {
	switch n.Kind {
	case kconfig.NodeMain:
		fmt.Fprintf(b, "## %s\n\n", n.Title)
	case kconfig.NodeMenu:
		fmt.Fprintf(b, "## %s\n\n", n.Title)
	case kconfig.NodeConfig, kconfig.NodeMenuConfig:
		renderSymbol(b, n.Symbol)
	case kconfig.NodeChoice:
		renderChoice(b, n.Choice)
	}
}

func renderSymbol(b *strings.Builder, sym *kconfig.Symbol) {
	if sym == nil {
		return
	}

	title := sym.Name
	if sym.Prompt != nil && sym.Prompt.Text != "" {
		title = sym.Prompt.Text
	}

	fmt.Fprintf(b, "### `%s` (%s)\n\n", sym.Name, sym.Kind)
	fmt.Fprintf(b, "%s\n\n", title)

	if sym.Help != "" {
		fmt.Fprintf(b, "%s\n\n", sym.Help)
	}

	if len(sym.Ranges) > 0 {
		b.WriteString("Range:\n\n")
		for _, r := range sym.Ranges {
			fmt.Fprintf(b, "- `%s` .. `%s`\n", r.Low.String(), r.High.String())
		}
		b.WriteString("\n")
	}

	if len(sym.Defaults) > 0 {
		b.WriteString("Defaults:\n\n")
		for _, d := range sym.Defaults {
			if d.Condition != nil {
				fmt.Fprintf(b, "- `%s` if `%s`\n", d.Value.String(), d.Condition.String())
			} else {
				fmt.Fprintf(b, "- `%s`\n", d.Value.String())
			}
		}
		b.WriteString("\n")
	}
}

func renderChoice(b *strings.Builder, c *kconfig.Choice) {
	if c == nil {
		return
	}

	title := c.Name
	if c.Prompt != nil && c.Prompt.Text != "" {
		title = c.Prompt.Text
	}
	fmt.Fprintf(b, "### Choice: %s\n\n", title)

	for _, m := range c.Members {
		fmt.Fprintf(b, "- `%s`\n", m.Name)
	}
	b.WriteString("\n")
}
