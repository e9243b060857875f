// SPDX-License-Identifier: Apache-2.0
// Copyright 2020 syzkaller project authors. All rights reserved.
// Copyright 2022 Unikraft GmbH. All rights reserved.
//
// Package kconfig: parser driver. Turns a tree of Kconfig source files
// into a SymbolTable (symbols, choices) and a MenuNode tree (spec.md
// §4.1).

package kconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"
)

// SymbolTable is the central registry of symbols, choices, and the menu
// tree produced by parsing (spec.md §3 "Symbol table & menu tree").
type SymbolTable struct {
	Root    *MenuNode
	Symbols map[string]*Symbol
	// DeclOrder records symbol names in first-declaration order, used by
	// the writer (menu traversal order takes precedence there) and by
	// the evaluator's "first matching in declaration order" rules.
	DeclOrder []string
	Choices   []*Choice
	Renames   *RenameMap

	report *Report
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		Symbols: make(map[string]*Symbol),
		report:  NewReport(),
	}
}

// Report returns the diagnostics accumulated while building the table:
// parser errors/warnings plus post-parse validation findings.
func (t *SymbolTable) Report() *Report { return t.report }

// Lookup implements Environment for expression evaluation against the
// as-parsed (pre-evaluation) symbol kinds; used only for parse-time
// validation, not for the constraint evaluator (see Evaluator).
func (t *SymbolTable) Lookup(name string) (Value, bool) {
	sym, ok := t.Symbols[name]
	if !ok {
		return Value{}, false
	}
	return sym.Kind.ZeroValue(), true
}

func (t *SymbolTable) UndefinedSymbol(name string) {}

// Parse reads a Kconfig file and everything it sources into a
// SymbolTable.
func Parse(file string, env ...*KeyValue) (*SymbolTable, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, wrapIOError(err, "failed to open Kconfig file %v", file)
	}
	return ParseData(data, file, env...)
}

// ParseData parses in-memory Kconfig source. file is used for diagnostic
// locations, and its directory is the base for relative `source` paths;
// an `rsource` path is relative to the file that contains it.
func ParseData(data []byte, file string, extra ...*KeyValue) (*SymbolTable, error) {
	env := KeyValueMap{}
	for _, kv := range extra {
		env[kv.Key] = kv
	}

	kp := &kconfigParser{
		parser:  newParser(data, filepath.Dir(file), file, env),
		baseDir: filepath.Dir(file),
		table:   newSymbolTable(),
	}

	kp.parseFile()
	if kp.err != nil {
		return nil, kp.err
	}

	if len(kp.stack) == 0 {
		return nil, errors.New("no mainmenu in config")
	}

	root := kp.stack[0]
	kp.table.Root = root
	root.foldDeps(nil, nil)

	kp.validate()

	return kp.table, nil
}

func (n *MenuNode) foldDeps(inheritedDep, inheritedVisible Expr) {
	n.DependsOn = exprAnd(inheritedDep, n.DependsOn)
	visible := exprAnd(inheritedVisible, n.VisibleIf)
	n.VisibleIf = visible

	switch {
	case n.Symbol != nil:
		n.Symbol.DirectDep = exprAnd(n.DependsOn, n.Symbol.DirectDep)
	case n.Choice != nil:
		n.Choice.DirectDep = exprAnd(n.DependsOn, n.Choice.DirectDep)
	}

	for _, c := range n.Children {
		c.foldDeps(n.DependsOn, visible)
	}
}

type kconfigParser struct {
	*parser
	includes  []*parser
	stack     []*MenuNode
	cur       *MenuNode
	baseDir   string
	helpIdent int
	table     *SymbolTable
}

func (kp *kconfigParser) parseFile() {
	for kp.nextLine() {
		kp.parseLine()
		if kp.TryConsume("#") {
			_ = kp.ConsumeLine()
		}
	}

	kp.endCurrent()
}

func (kp *kconfigParser) parseLine() {
	if kp.eol() {
		return
	}

	if kp.helpIdent != 0 {
		if kp.identLevel() >= kp.helpIdent {
			_ = kp.ConsumeLine()
			return
		}
		kp.helpIdent = 0
	}

	if kp.TryConsume("#") {
		_ = kp.ConsumeLine()
		return
	}

	ident := kp.Ident()
	if kp.TryConsume("=") || kp.TryConsume(":=") {
		// NAME = value / NAME := value macro assignment (spec.md §4.1
		// "Macros"). The right-hand side is captured for subsequent
		// $(NAME) expansion, not evaluated as a Kconfig expression.
		rhs := strings.TrimSpace(kp.ConsumeLine())
		kp.env[ident] = &KeyValue{Key: ident, Value: rhs}
		return
	}

	kp.parseMenu(ident)
}

func (kp *kconfigParser) parseMenu(cmd string) {
	switch cmd {
	case "source", "rsource", "osource", "orsource":
		file, ok := kp.TryQuotedString()
		if !ok {
			file = kp.ConsumeLine()
		}
		if (cmd == "rsource" || cmd == "orsource") && !filepath.IsAbs(file) {
			if rel, err := filepath.Rel(kp.baseDir, filepath.Join(kp.parser.baseDir, file)); err == nil {
				file = rel
			}
		}
		optional := cmd == "osource" || cmd == "orsource"
		kp.includeSource(file, optional)

	case "mainmenu":
		kp.pushCurrent(&MenuNode{
			Kind:   NodeMain,
			Title:  kp.QuotedString(),
			Source: filepath.Clean(kp.file),
			Loc:    Location{File: kp.file, Line: kp.line},
		})

	case "comment":
		kp.newCurrent(&MenuNode{
			Kind:   NodeComment,
			Title:  kp.QuotedString(),
			Source: filepath.Clean(kp.file),
			Loc:    Location{File: kp.file, Line: kp.line},
		})

	case "menu":
		kp.pushCurrent(&MenuNode{
			Kind:   NodeMenu,
			Title:  kp.QuotedString(),
			Source: filepath.Clean(kp.file),
			Loc:    Location{File: kp.file, Line: kp.line},
		})

	case "if":
		kp.pushCurrent(&MenuNode{
			Kind:      NodeIf,
			DependsOn: kp.parseExpr(),
			Source:    filepath.Clean(kp.file),
			Loc:       Location{File: kp.file, Line: kp.line},
		})

	case "choice":
		name, _ := kp.TryQuotedString()
		if name == "" {
			name, _ = kp.tryIdentOpt()
		}
		choice := &Choice{Name: name, Loc: Location{File: kp.file, Line: kp.line}}
		node := &MenuNode{
			Kind:   NodeChoice,
			Choice: choice,
			Source: filepath.Clean(kp.file),
			Loc:    choice.Loc,
		}
		choice.Menu = node
		kp.table.Choices = append(kp.table.Choices, choice)
		kp.pushCurrent(node)

	case "endmenu", "endif", "endchoice":
		kp.popCurrent()

	case "config", "menuconfig":
		name := kp.Ident()
		kind := NodeConfig
		if cmd == "menuconfig" {
			kind = NodeMenuConfig
		}
		sym := kp.declareSymbol(name)
		node := &MenuNode{
			Kind:   kind,
			Symbol: sym,
			Source: filepath.Clean(kp.file),
			Loc:    Location{File: kp.file, Line: kp.line},
		}
		sym.Menu = node

		if len(kp.stack) > 0 {
			if choice := kp.stack[len(kp.stack)-1].Choice; choice != nil {
				sym.Choice = choice
				choice.Members = append(choice.Members, sym)
			}
		}

		kp.newCurrent(node)

	default:
		kp.parseConfigType(cmd)
	}
}

func (kp *kconfigParser) declareSymbol(name string) *Symbol {
	sym, ok := kp.table.Symbols[name]
	if !ok {
		sym = &Symbol{Name: name, Loc: Location{File: kp.file, Line: kp.line}}
		kp.table.Symbols[name] = sym
		kp.table.DeclOrder = append(kp.table.DeclOrder, name)
	} else {
		sym.definitionCount++
	}
	return sym
}

func (kp *kconfigParser) parseConfigType(typ string) {
	cur := kp.current()
	sym := cur.Symbol
	if sym == nil && cur.Choice != nil {
		kp.parseChoiceType(typ, cur.Choice)
		return
	}
	if sym == nil {
		switch typ {
		case "bool", "int", "hex", "string", "float":
			kp.failf("config property outside of config")
		default:
			// Menus, comments and if-blocks take properties such as
			// `depends on` and `visible if`.
			kp.parseProperty(typ)
		}
		return
	}

	switch typ {
	case "bool":
		sym.Kind = KindBool
		kp.tryParsePrompt(sym)
	case "int":
		sym.Kind = KindInt
		kp.tryParsePrompt(sym)
	case "hex":
		sym.Kind = KindHex
		kp.tryParsePrompt(sym)
	case "string":
		sym.Kind = KindString
		kp.tryParsePrompt(sym)
	case "float":
		sym.Kind = KindFloat
		kp.tryParsePrompt(sym)
	default:
		kp.parseProperty(typ)
	}
}

func (kp *kconfigParser) parseChoiceType(typ string, choice *Choice) {
	switch typ {
	case "bool":
		choice.Kind = KindBool
		kp.tryParsePromptChoice(choice)
	default:
		kp.parseProperty(typ)
	}
}

func (kp *kconfigParser) parseProperty(prop string) {
	cur := kp.current()

	switch prop {
	case "prompt":
		if cur.Symbol != nil {
			kp.tryParsePrompt(cur.Symbol)
		} else if cur.Choice != nil {
			kp.tryParsePromptChoice(cur.Choice)
		}

	case "depends":
		kp.MustConsume("on")
		dep := kp.parseExpr()
		if cur.Symbol != nil {
			cur.Symbol.DirectDep = exprAnd(cur.Symbol.DirectDep, dep)
		} else if cur.Choice != nil {
			cur.Choice.DirectDep = exprAnd(cur.Choice.DirectDep, dep)
		} else {
			cur.DependsOn = exprAnd(cur.DependsOn, dep)
		}

	case "visible":
		kp.MustConsume("if")
		cur.VisibleIf = exprAnd(cur.VisibleIf, kp.parseExpr())

	case "select", "imply":
		target := kp.Ident()
		var cond Expr
		if kp.TryConsume("if") {
			cond = kp.parseExpr()
		}
		rev := Reverse{Target: target, Condition: cond, Loc: Location{File: kp.file, Line: kp.line}}
		if cur.Symbol == nil {
			kp.failf("%s outside of config", prop)
			return
		}
		if prop == "select" {
			cur.Symbol.Selects = append(cur.Symbol.Selects, rev)
		} else {
			cur.Symbol.Implies = append(cur.Symbol.Implies, rev)
		}

	case "set":
		if kp.TryConsume("default") {
			kp.parseSetClause(cur, true)
		} else {
			kp.parseSetClause(cur, false)
		}

	case "option":
		if kp.TryConsume("env") {
			kp.MustConsume("=")
			name, ok := kp.TryQuotedString()
			if !ok {
				name = kp.Ident()
			}
			if cur.Symbol != nil {
				cur.Symbol.EnvName = name
				if v, ok := os.LookupEnv(name); ok {
					cur.Symbol.Defaults = append(cur.Symbol.Defaults, CondExpr{
						Value: &ConstExpr{Val: Value{Kind: KindString, Raw: v}},
					})
				}
			}
		} else {
			kp.ConsumeLine()
		}

	case "modules":
		// Non-goal (spec.md §1): kernel-module tri-state logic. Accepted
		// and ignored for forward compatibility with upstream Kconfig
		// files that still carry the line.

	case "optional":
		// Non-goal (spec.md §1): `optional` on choices.

	case "default":
		kp.parseDefaultValue(cur)

	case "range":
		low := kp.parseExpr()
		high := kp.parseExpr()
		var cond Expr
		if kp.TryConsume("if") {
			cond = kp.parseExpr()
		}
		if cur.Symbol != nil {
			cur.Symbol.Ranges = append(cur.Symbol.Ranges, RangeClause{Low: low, High: high, Condition: cond})
		}

	case "warning":
		val := kp.QuotedString()
		var cond Expr
		if kp.TryConsume("if") {
			cond = kp.parseExpr()
		}
		if cur.Symbol != nil {
			cur.Symbol.Warning = &CondExpr{Value: &ConstExpr{Val: Value{Kind: KindString, Raw: val}}, Condition: cond}
		}

	case "help", "---help---":
		kp.tryParseHelp(cur)

	case "ignore":
		kp.MustConsume(":")
		reason := strings.TrimSpace(kp.ConsumeLine())
		if reason == "multiple-definition" && cur.Symbol != nil {
			cur.Symbol.ignoreMultipleDefinition = true
		}

	default:
		kp.failf("unknown line")
	}
}

func (kp *kconfigParser) parseSetClause(cur *MenuNode, isDefault bool) {
	target := kp.Ident()
	kp.MustConsume("=")
	val := kp.parseExpr()
	var cond Expr
	if kp.TryConsume("if") {
		cond = kp.parseExpr()
	}
	rev := Reverse{Target: target, Value: val, Condition: cond, Loc: Location{File: kp.file, Line: kp.line}}
	if cur.Symbol == nil {
		kp.failf("set outside of config")
		return
	}
	if isDefault {
		cur.Symbol.SetDefs = append(cur.Symbol.SetDefs, rev)
	} else {
		cur.Symbol.Sets = append(cur.Symbol.Sets, rev)
	}
}

func (kp *kconfigParser) includeSource(file string, optional bool) {
	if file == "" {
		return
	}
	kp.newCurrent(nil)

	resolved := file
	if !filepath.IsAbs(file) {
		joined, err := securejoin.SecureJoin(kp.baseDir, file)
		if err != nil {
			kp.failf("invalid source path %q: %v", file, err)
			return
		}
		resolved = joined
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if optional {
			return
		}
		kp.failf("%v", err)
		return
	}

	kp.includes = append(kp.includes, kp.parser)
	kp.parser = newParser(data, filepath.Dir(resolved), resolved, kp.env)
	kp.parseFile()
	perr := kp.err
	kp.parser = kp.includes[len(kp.includes)-1]
	kp.includes = kp.includes[:len(kp.includes)-1]

	if kp.err == nil {
		kp.err = perr
	}
}

func (kp *kconfigParser) pushCurrent(m *MenuNode) {
	kp.endCurrent()
	kp.cur = m
	kp.stack = append(kp.stack, m)
}

func (kp *kconfigParser) popCurrent() {
	kp.endCurrent()
	if len(kp.stack) < 2 {
		return
	}

	last := kp.stack[len(kp.stack)-1]
	kp.stack = kp.stack[:len(kp.stack)-1]
	top := kp.stack[len(kp.stack)-1]
	last.Parent = top
	top.Children = append(top.Children, last)
}

func (kp *kconfigParser) newCurrent(m *MenuNode) {
	kp.endCurrent()
	kp.cur = m
}

func (kp *kconfigParser) current() *MenuNode {
	if kp.cur == nil {
		kp.failf("config property outside of config")
		return &MenuNode{}
	}

	return kp.cur
}

func (kp *kconfigParser) endCurrent() {
	if kp.cur == nil {
		return
	}

	if len(kp.stack) == 0 {
		kp.failf("unbalanced endmenu")
		kp.cur = nil
		return
	}

	top := kp.stack[len(kp.stack)-1]
	if top != kp.cur {
		kp.cur.Parent = top
		top.Children = append(top.Children, kp.cur)
	}

	kp.cur = nil
}

func (kp *kconfigParser) tryParsePrompt(sym *Symbol) {
	if str, ok := kp.TryQuotedString(); ok {
		p := &Prompt{Text: str}
		if kp.TryConsume("if") {
			p.Condition = kp.parseExpr()
		}
		sym.Prompt = p
	}
}

func (kp *kconfigParser) tryParsePromptChoice(choice *Choice) {
	if str, ok := kp.TryQuotedString(); ok {
		p := &Prompt{Text: str}
		if kp.TryConsume("if") {
			p.Condition = kp.parseExpr()
		}
		choice.Prompt = p
	}
}

func (kp *kconfigParser) tryIdentOpt() (string, bool) {
	if kp.eol() {
		return "", false
	}
	return kp.Ident(), true
}

func (kp *kconfigParser) parseDefaultValue(cur *MenuNode) {
	val := kp.parseExpr()
	var cond Expr
	if kp.TryConsume("if") {
		cond = kp.parseExpr()
	}
	ce := CondExpr{Value: val, Condition: cond}
	if cur.Symbol != nil {
		cur.Symbol.Defaults = append(cur.Symbol.Defaults, ce)
	}
}

func (kp *kconfigParser) tryParseHelp(cur *MenuNode) {
	var help []string
	baseHelpIdent := -1
	for kp.nextLine() {
		if kp.eol() {
			continue
		}
		if len(help) > 0 && kp.identLevel() < baseHelpIdent {
			// This line ends the help text and is parsed as ordinary input.
			kp.parseLine()
			break
		}
		if baseHelpIdent == -1 {
			baseHelpIdent = kp.identLevel()
		}
		help = append(help, kp.ConsumeLine())
		kp.helpIdent = kp.identLevel()
	}

	if cur.Symbol != nil {
		cur.Symbol.Help = strings.Join(help, " ")
	}
}

// --- expression grammar (spec.md §4.2) ---
//
// expr    = or
// or      = and ( "||" and )*
// and     = cmp ( "&&" cmp )*
// cmp     = unary [ cmpOp unary ]
// unary   = "!" unary | primary
// primary = "(" expr ")" | quoted-string | literal

func (kp *kconfigParser) parseExpr() Expr {
	return kp.parseOr()
}

func (kp *kconfigParser) parseOr() Expr {
	x := kp.parseAnd()
	for kp.TryConsume("||") {
		x = &OrExpr{X: x, Y: kp.parseAnd()}
	}
	return x
}

func (kp *kconfigParser) parseAnd() Expr {
	x := kp.parseCmp()
	for kp.TryConsume("&&") {
		x = &AndExpr{X: x, Y: kp.parseCmp()}
	}
	return x
}

func (kp *kconfigParser) parseCmp() Expr {
	x := kp.parseUnary()
	op, ok := kp.tryCompareOp()
	if !ok {
		return x
	}
	return &CompareExpr{Op: op, X: x, Y: kp.parseUnary()}
}

func (kp *kconfigParser) tryCompareOp() (CompareOp, bool) {
	switch {
	case kp.TryConsume("!="):
		return OpNe, true
	case kp.TryConsume("<="):
		return OpLe, true
	case kp.TryConsume(">="):
		return OpGe, true
	case kp.TryConsume("="):
		return OpEq, true
	case kp.TryConsume("<"):
		return OpLt, true
	case kp.TryConsume(">"):
		return OpGt, true
	default:
		return "", false
	}
}

func (kp *kconfigParser) parseUnary() Expr {
	if kp.TryConsume("!") {
		return &NotExpr{X: kp.parseUnary()}
	}
	return kp.parsePrimary()
}

func (kp *kconfigParser) parsePrimary() Expr {
	if kp.TryConsume("(") {
		e := kp.parseExpr()
		kp.MustConsume(")")
		return e
	}

	if str, ok := kp.TryQuotedString(); ok {
		return &ConstExpr{Val: Value{Kind: KindString, Raw: str}}
	}

	tok := kp.Literal()
	return literalExpr(tok)
}

// literalExpr classifies a bare token as a bool constant, numeric
// literal, or symbol reference.
func literalExpr(tok string) Expr {
	switch tok {
	case "y":
		return &ConstExpr{Val: Value{Kind: KindBool, Raw: "y"}}
	case "n":
		return &ConstExpr{Val: Value{Kind: KindBool, Raw: "n"}}
	}

	if strings.HasPrefix(strings.ToLower(tok), "0x") {
		if _, err := strconv.ParseInt(tok[2:], 16, 64); err == nil {
			return &ConstExpr{Val: Value{Kind: KindHex, Raw: tok}}
		}
	}

	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return &ConstExpr{Val: Value{Kind: KindInt, Raw: strconv.FormatInt(n, 10)}}
	}

	if f, err := strconv.ParseFloat(tok, 64); err == nil && strings.Contains(tok, ".") {
		return &ConstExpr{Val: Value{Kind: KindFloat, Raw: strconv.FormatFloat(f, 'f', -1, 64)}}
	}

	return &SymbolRef{Name: tok}
}
