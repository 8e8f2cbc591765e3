// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass Redcode assembler: it turns warrior
// source text into a sequence of redcode.Instruction values plus the
// metadata (name, author, strategy, starting offset) a warrior file
// carries in its leading comments.
package asm

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/beevik/corewar/redcode"
)

// Logger receives progress messages during assembly, the way go6502's
// assembler gates its diagnostic fmt.Printf calls behind a verbose flag.
// Unlike go6502's hard-coded fmt.Printf, callers supply their own Logger
// so the host can route assembler diagnostics through its own output
// stream instead of directly to stdout.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards all messages. It is the default used by Assemble when
// no Logger is supplied.
type NopLogger struct{}

// Printf implements Logger.
func (NopLogger) Printf(format string, args ...interface{}) {}

// Warrior is the result of assembling a Redcode source program: its
// metadata comments plus its resolved instruction stream.
type Warrior struct {
	Name         string
	Author       string
	Date         string
	Version      string
	Strategy     string
	Start        int
	Instructions []redcode.Instruction
	SourceMap    *SourceMap

	// Labels maps each label defined in the program to the instruction
	// offset (relative to the warrior's own first instruction) it names.
	Labels map[string]int
}

var (
	reRedcodeTag = regexp.MustCompile(`(?i)^;redcode\w*$`)
	reMetaName   = regexp.MustCompile(`(?i)^;name\s+(.+)$`)
	reMetaAuthor = regexp.MustCompile(`(?i)^;author\s+(.+)$`)
	reMetaDate   = regexp.MustCompile(`(?i)^;date\s+(.+)$`)
	reMetaVer    = regexp.MustCompile(`(?i)^;version\s+(.+)$`)
	reMetaStrat  = regexp.MustCompile(`(?i)^;strat(?:egy)?\s+(.+)$`)
	reAssert     = regexp.MustCompile(`(?i)^;assert\s+(.+)$`)
	reOrg        = regexp.MustCompile(`(?i)^ORG\s+(.+?)\s*$`)
	reEnd        = regexp.MustCompile(`(?i)^END(?:\s+(\S+))?\s*$`)
	reEqu        = regexp.MustCompile(`(?i)^([A-Za-z_]\w*)\s+EQU\s+(.*?)\s*$`)
)

// a pendingInstruction holds one instruction's raw operand text during the
// first pass; its operand expressions aren't evaluated until the second
// pass, once every label in the program is known.
type pendingInstruction struct {
	opcode      redcode.Opcode
	hasModifier bool
	modifier    redcode.Modifier
	aMode       redcode.Mode
	aText       fstring
	bMode       redcode.Mode
	bText       fstring
}

type assembler struct {
	logger Logger

	name, author, date, version string
	strategy                    []string
	startText                   fstring

	foundRedcode bool
	codeAddress  int
	labels       map[string]int
	environment  map[string]int
	pending      []pendingInstruction

	start        int
	instructions []redcode.Instruction
	sourceMap    *SourceMap

	exprParser exprParser
}

// Assemble reads Redcode source from r and assembles it into a Warrior.
// Assembly proceeds in the same two stages as the original ICWS parser: a
// first pass that strips metadata/comments, binds EQU constants and labels,
// and records each instruction's raw operand text; then a second pass that
// evaluates every operand expression against an environment in which each
// label has been rewritten relative to the instruction referencing it.
func Assemble(r io.Reader, logger Logger) (*Warrior, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	a := &assembler{
		logger:      logger,
		labels:      make(map[string]int),
		environment: make(map[string]int),
		sourceMap:   NewSourceMap(),
	}

	if err := a.parse(r); err != nil {
		return nil, err
	}
	logger.Printf("parsed %d instructions, %d labels", len(a.pending), len(a.labels))

	if err := a.resolveStart(); err != nil {
		return nil, err
	}
	if err := a.resolveInstructions(); err != nil {
		return nil, err
	}

	return &Warrior{
		Name:         a.name,
		Author:       a.author,
		Date:         a.date,
		Version:      a.version,
		Strategy:     strings.Join(a.strategy, "\n"),
		Start:        a.start,
		Instructions: a.instructions,
		SourceMap:    a.sourceMap,
		Labels:       a.labels,
	}, nil
}

// parse performs the first assembly pass: metadata comments, ;redcode
// boundary handling, ;assert, ORG/END, EQU, label binding and instruction
// skeletons (opcode, modifier, addressing modes, raw operand text).
func (a *assembler) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	row := 0
	// An instruction that fails to parse before the first ;redcode tag is
	// reported only if no tag follows to discard it.
	var preTagErr error
	for scanner.Scan() {
		row++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" {
			continue
		}

		if reRedcodeTag.MatchString(trimmed) {
			if a.foundRedcode {
				break
			}
			a.pending = nil
			a.labels = make(map[string]int)
			a.environment = make(map[string]int)
			a.codeAddress = 0
			a.sourceMap = NewSourceMap()
			a.foundRedcode = true
			preTagErr = nil
			continue
		}
		if m := reMetaName.FindStringSubmatch(trimmed); m != nil {
			a.name = strings.TrimSpace(m[1])
			continue
		}
		if m := reMetaAuthor.FindStringSubmatch(trimmed); m != nil {
			a.author = strings.TrimSpace(m[1])
			continue
		}
		if m := reMetaDate.FindStringSubmatch(trimmed); m != nil {
			a.date = strings.TrimSpace(m[1])
			continue
		}
		if m := reMetaVer.FindStringSubmatch(trimmed); m != nil {
			a.version = strings.TrimSpace(m[1])
			continue
		}
		if m := reMetaStrat.FindStringSubmatch(trimmed); m != nil {
			a.strategy = append(a.strategy, strings.TrimSpace(m[1]))
			continue
		}
		if m := reAssert.FindStringSubmatch(trimmed); m != nil {
			exprText := newFstring(0, row, m[1])
			v, err := a.evalText(exprText, a.environment)
			if err != nil {
				return err
			}
			if v == 0 {
				return &Error{Kind: AssertionFailure, Pos: Pos{Line: row}, Msg: "assertion failed: " + trimmed}
			}
			continue
		}

		line := newFstring(0, row, trimmed).stripTrailingComment()
		if line.isEmpty() {
			continue
		}

		if m := reOrg.FindStringSubmatch(line.str); m != nil {
			a.startText = newFstring(0, row, m[1])
			continue
		}
		if m := reEnd.FindStringSubmatch(line.str); m != nil {
			if m[1] != "" {
				a.startText = newFstring(0, row, m[1])
			}
			break
		}
		if m := reEqu.FindStringSubmatch(line.str); m != nil {
			exprText := newFstring(0, row, m[2])
			v, err := a.evalText(exprText, a.environment)
			if err != nil {
				return err
			}
			a.environment[m[1]] = v
			continue
		}

		line = a.stripLabels(line)
		pi, err := a.parseInstruction(line)
		if err != nil {
			if a.foundRedcode {
				return err
			}
			if preTagErr == nil {
				preTagErr = err
			}
			continue
		}
		a.sourceMap.add(a.codeAddress, row)
		a.pending = append(a.pending, pi)
		a.codeAddress++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return preTagErr
}

// stripLabels consumes zero or more leading label definitions from line,
// recording each one at the current code address, and returns the
// remaining text (expected to start with an opcode mnemonic). A candidate
// word is treated as a label only if it isn't itself an opcode mnemonic and
// is followed by more text on the line; this mirrors how a bare opcode
// with no labels is told apart from "label opcode ...".
func (a *assembler) stripLabels(line fstring) fstring {
	for {
		if !line.startsWith(labelStartChar) {
			break
		}
		word, after := line.consumeWhile(labelChar)
		afterTrimmed := after.consumeWhitespace()
		if afterTrimmed.isEmpty() {
			break
		}
		if _, isOp := redcode.Opcodes[strings.ToUpper(word.str)]; isOp {
			break
		}
		a.labels[word.str] = a.codeAddress
		line = afterTrimmed
	}
	return line
}

// parseInstruction parses "opcode[.modifier] [mode]expr[, [mode]expr]". Any
// omitted field (modifier, first operand, second operand) takes its
// ICWS-standard default: default modifier resolved later via
// redcode.DefaultModifier, default mode DIRECT, default operand value 0.
func (a *assembler) parseInstruction(line fstring) (pendingInstruction, error) {
	var pi pendingInstruction

	opText, rest := line.consumeWhile(alpha)
	if opText.isEmpty() {
		return pi, &Error{Kind: SyntaxError, Pos: posOf(line), Msg: "expected instruction"}
	}
	op, ok := redcode.Opcodes[strings.ToUpper(opText.str)]
	if !ok {
		return pi, &Error{Kind: SyntaxError, Pos: posOf(opText), Msg: "unknown opcode '" + opText.str + "'"}
	}
	pi.opcode = op
	rest = rest.consumeWhitespace()

	if rest.startsWithChar('.') {
		rest = rest.consume(1)
		modText, r2 := rest.consumeWhile(alpha)
		mod, ok := redcode.Modifiers[strings.ToUpper(modText.str)]
		if !ok {
			return pi, &Error{Kind: SyntaxError, Pos: posOf(modText), Msg: "unknown modifier '" + modText.str + "'"}
		}
		pi.hasModifier, pi.modifier = true, mod
		rest = r2.consumeWhitespace()
	}

	pi.aMode = redcode.DIRECT
	pi.bMode = redcode.DIRECT

	if !rest.isEmpty() {
		pi.aMode, pi.aText, rest = parseOperand(rest)
		rest = rest.consumeWhitespace()
		if rest.startsWithChar(',') {
			rest = rest.consume(1).consumeWhitespace()
			if !rest.isEmpty() {
				pi.bMode, pi.bText, rest = parseOperand(rest)
			}
		}
	}

	return pi, nil
}

func parseOperand(line fstring) (mode redcode.Mode, text fstring, remain fstring) {
	mode = redcode.DIRECT
	if line.startsWith(isModeChar) {
		mode = redcode.Modes[line.str[0]]
		line = line.consume(1)
	}
	text, remain = line.consumeUntilChar(',')
	return mode, trimTrailingWS(text), remain
}

func isModeChar(c byte) bool {
	switch c {
	case '#', '$', '@', '<', '>', '*', '{', '}':
		return true
	}
	return false
}

func trimTrailingWS(f fstring) fstring {
	i := len(f.str)
	for i > 0 && whitespace(f.str[i-1]) {
		i--
	}
	return f.trunc(i)
}

// resolveStart evaluates the ORG/END start expression, if any, against the
// full (non-relative) set of EQU constants and label addresses. A warrior
// with no ORG/END expression starts execution at address 0.
func (a *assembler) resolveStart() error {
	if a.startText.str == "" {
		a.start = 0
		return nil
	}
	env := a.mergedEnv(a.labels)
	v, err := a.evalText(a.startText, env)
	if err != nil {
		return err
	}
	a.start = v
	return nil
}

// resolveInstructions is the assembler's second pass: for each pending
// instruction, build a local environment in which every label has been
// rewritten relative to that instruction's own address (label_address -
// instruction_address), then evaluate both operand expressions against it.
func (a *assembler) resolveInstructions() error {
	a.instructions = make([]redcode.Instruction, len(a.pending))
	for n, p := range a.pending {
		relative := make(map[string]int, len(a.labels))
		for name, addr := range a.labels {
			relative[name] = addr - n
		}
		env := a.mergedEnv(relative)

		aNumber, err := a.evalText(p.aText, env)
		if err != nil {
			return err
		}
		bNumber, err := a.evalText(p.bText, env)
		if err != nil {
			return err
		}

		modifier := p.modifier
		if !p.hasModifier {
			modifier = redcode.DefaultModifier(p.opcode, p.aMode, p.bMode)
		}

		a.instructions[n] = redcode.Instruction{
			Opcode:   p.opcode,
			Modifier: modifier,
			AMode:    p.aMode,
			ANumber:  aNumber,
			BMode:    p.bMode,
			BNumber:  bNumber,
		}
	}
	return nil
}

// mergedEnv combines the EQU constant table with a label table, with label
// names taking priority over a same-named constant.
func (a *assembler) mergedEnv(labels map[string]int) map[string]int {
	env := make(map[string]int, len(a.environment)+len(labels))
	for k, v := range a.environment {
		env[k] = v
	}
	for k, v := range labels {
		env[k] = v
	}
	return env
}

// evalText parses and evaluates an operand/constant expression. An empty
// text (an omitted operand) evaluates to 0.
func (a *assembler) evalText(text fstring, env map[string]int) (int, error) {
	if text.isEmpty() {
		return 0, nil
	}
	e, remain, err := a.exprParser.parse(text)
	if err != nil {
		return 0, &Error{Kind: SyntaxError, Pos: posOf(text), Msg: "invalid expression '" + text.str + "'"}
	}
	remain = remain.consumeWhitespace()
	if !remain.isEmpty() {
		return 0, &Error{Kind: SyntaxError, Pos: posOf(remain), Msg: "unexpected trailing text '" + remain.str + "'"}
	}
	return e.eval(env)
}
