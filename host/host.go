// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that runs a MARS (Memory
// Array Redcode Simulator) battle: assembling and loading warriors,
// stepping or running the simulation, setting address and data
// breakpoints, disassembling core, listing warrior status, and
// evaluating arbitrary expressions.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/corewar/asm"
	"github.com/beevik/corewar/disasm"
	"github.com/beevik/corewar/mars"
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateInterrupted
	stateBreakpoint
)

// A Host represents a running MARS battle: the core, the loaded
// warriors, a debugger, and the REPL state driving them.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mars        *mars.MARS
	debugger    *mars.Debugger
	lastCmd     *cmd.Selection
	state       state
	rounds      int
	exprParser  *exprParser
	settings    *settings
}

// New creates a new corewar host environment with an empty simulation.
// Load warriors with the "load" command to populate it.
func New() *Host {
	h := &Host{
		state:      stateProcessingCommands,
		exprParser: newExprParser(),
		settings:   newSettings(),
	}
	h.newSimulation(nil)
	return h
}

// newSimulation replaces the running battle with a fresh core sized per
// the current settings, loaded with warriors. It reattaches a fresh
// Debugger, matching go6502's one-CPU-one-debugger pairing; any
// breakpoints set before a reload do not carry over, since a reload may
// also resize the core they were set against.
func (h *Host) newSimulation(warriors []*asm.Warrior) {
	opts := mars.Options{
		CoreSize:          h.settings.CoreSize,
		ReadLimit:         h.settings.ReadLimit,
		WriteLimit:        h.settings.WriteLimit,
		MinimumSeparation: h.settings.MinimumSeparation,
		MaxProcesses:      h.settings.MaxProcesses,
		Randomize:         h.settings.Randomize,
	}
	h.mars = mars.New(opts, warriors)
	h.debugger = mars.NewDebugger(h.mars, newDebugHandler(h))
	h.mars.AttachObserver(h.debugger)
	h.rounds = 0
}

// hostLogger adapts Host to asm.Logger so assembly diagnostics are routed
// through the host's own output stream instead of stdout.
type hostLogger struct{ h *Host }

func (l hostLogger) Printf(format string, args ...interface{}) {
	l.h.printf(format, args...)
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed
// while the host waits for the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
		h.displaySummary()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		if err := h.processCommand(line); err != nil {
			break
		}
	}
}

func (h *Host) processCommand(line string) error {
	var c cmd.Selection
	switch {
	case line != "":
		var err error
		c, err = cmds.Lookup(line)
		switch err {
		case cmd.ErrNotFound:
			h.println("Command not found.")
			return nil
		case cmd.ErrAmbiguous:
			h.println("Command is ambiguous.")
			return nil
		case nil:
		default:
			h.printf("ERROR: %v.\n", err)
			return nil
		}
	case h.lastCmd != nil:
		c = *h.lastCmd
	default:
		return nil
	}

	if c.Command == nil {
		return nil
	}
	if c.Command.Data == nil && c.Command.Subtree != nil {
		h.displayCommands(c.Command.Subtree)
		return nil
	}

	h.lastCmd = &c

	handler := c.Command.Data.(func(*Host, cmd.Selection) error)
	return handler(h, c)
}

// Break interrupts a running simulation.
func (h *Host) Break() {
	h.println()

	switch h.state {
	case stateRunning:
		h.state = stateInterrupted

	case stateProcessingCommands:
		h.println("Type 'quit' to exit the application.")
		h.prompt()
	}
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if !h.interactive {
		return
	}
	h.printf("* ")
}

func (h *Host) displaySummary() {
	if len(h.mars.Warriors) == 0 {
		h.println("No warriors loaded. Use 'load <file> [<file> ...]' to begin a battle.")
		return
	}
	for _, w := range h.mars.Warriors {
		s := w.Status()
		h.printf("%-16s pos %-6d processes %d\n", s.Name, s.Position, s.Processes)
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.displayCommands(cmds)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			h.printf("%v\n", err)
		} else if s.Command.Subtree != nil {
			h.displayCommands(s.Command.Subtree)
		} else {
			if s.Command.Usage != "" {
				h.printf("Usage: %s\n\n", s.Command.Usage)
			}
			switch {
			case s.Command.Description != "":
				h.printf("Description:\n%s\n\n", indentWrap(3, s.Command.Description))
			case s.Command.Brief != "":
				h.printf("Description:\n%s.\n\n", indentWrap(3, s.Command.Brief))
			}
		}
	}
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	return h.loadFiles(c.Args)
}

func (h *Host) loadFiles(filenames []string) error {
	warriors := make([]*asm.Warrior, 0, len(filenames))
	for _, filename := range filenames {
		name := filename
		if filepath.Ext(name) == "" {
			name += ".red"
		}

		file, err := os.Open(name)
		if err != nil {
			h.printf("Failed to open '%s': %v\n", filepath.Base(name), err)
			return nil
		}

		w, err := asm.Assemble(file, hostLogger{h})
		file.Close()
		if err != nil {
			h.printf("Failed to assemble '%s': %v\n", filepath.Base(name), err)
			return nil
		}

		h.printf("Assembled '%s' (%d instructions).\n", filepath.Base(name), len(w.Instructions))
		warriors = append(warriors, w)
	}

	h.newSimulation(warriors)
	h.printf("Loaded %d warrior(s) into a %d-cell core.\n", len(warriors), h.mars.Core.Len())
	h.displaySummary()
	return nil
}

func (h *Host) cmdWarriors(c cmd.Selection) error {
	if len(h.mars.Warriors) == 0 {
		h.println("No warriors loaded.")
		return nil
	}
	h.println("Warriors:")
	for _, w := range h.mars.Warriors {
		s := w.Status()
		alive := "dead"
		if s.Alive {
			alive = "alive"
		}
		h.printf("   %-16s pos %-6d processes %-4d %s\n", s.Name, s.Position, s.Processes, alive)
	}
	return nil
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	bps := h.debugger.GetBreakpoints()
	if len(bps) == 0 {
		h.println("No breakpoints set.")
		return nil
	}

	h.println("Breakpoints:")
	for _, b := range bps {
		d := ""
		if b.Disabled {
			d = "(disabled)"
		}
		h.printf("   %-6d %s\n", b.Address, d)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at %d.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on %d.\n", addr)
		return nil
	}
	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at %d removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on %d.\n", addr)
		return nil
	}
	b.Disabled = false
	h.printf("Breakpoint at %d enabled.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on %d.\n", addr)
		return nil
	}
	b.Disabled = true
	h.printf("Breakpoint at %d disabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointList(c cmd.Selection) error {
	bps := h.debugger.GetDataBreakpoints()
	if len(bps) == 0 {
		h.println("No data breakpoints set.")
		return nil
	}

	h.println("Data breakpoints:")
	for _, b := range bps {
		d := ""
		if b.Disabled {
			d = "(disabled)"
		}
		if b.Conditional {
			h.printf("   %-6d on value %d %s\n", b.Address, b.Value, d)
		} else {
			h.printf("   %-6d %s\n", b.Address, d)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)

	if len(c.Args) > 1 {
		value, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, value)
		h.printf("Conditional data breakpoint added at %d for value %d.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at %d.\n", addr)
	}
	return nil
}

func (h *Host) cmdDataBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on %d.\n", addr)
		return nil
	}
	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at %d removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on %d.\n", addr)
		return nil
	}
	b.Disabled = false
	h.printf("Data breakpoint at %d enabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr = h.mars.Core.Trim(addr)
	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on %d.\n", addr)
		return nil
	}
	b.Disabled = true
	h.printf("Data breakpoint at %d disabled.\n", addr)
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	addr, err := h.parseAddr(c.Args[0], h.settings.NextDisasmAddr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		l, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = l
	}

	a := addr
	for i := 0; i < lines; i++ {
		line, next := disasm.Disassemble(h.mars.Core, a)
		if w, off, ok := h.warriorAt(a); ok {
			if n, ok := w.SourceLineAt(off); ok {
				line = fmt.Sprintf("%s  ; %s:%d", line, w.Name, n)
			}
		}
		h.printf("%04d  %s\n", h.mars.Core.Trim(a), line)
		a = next
	}

	h.settings.NextDisasmAddr = h.mars.Core.Trim(addr + lines)
	return nil
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	expr := strings.Join(c.Args, " ")
	v, err := h.parseExpr(expr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("%d\n", v)
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (h *Host) cmdRun(c cmd.Selection) error {
	if len(h.mars.Warriors) == 0 {
		h.println("No warriors loaded.")
		return nil
	}

	h.printf("Running. Press ctrl-C to break.\n")

	h.state = stateRunning
	for h.state == stateRunning {
		if err := h.mars.Step(); err != nil {
			h.printf("%v\n", err)
			break
		}
		h.rounds++
		if h.mars.ActiveWarriors() <= 1 {
			break
		}
		if h.settings.MaxRounds > 0 && h.rounds >= h.settings.MaxRounds {
			break
		}
	}

	switch h.state {
	case stateInterrupted:
		h.println("Interrupted.")
	case stateBreakpoint:
		// onBreakpoint/onDataBreakpoint already reported the hit.
	default:
		h.printf("Battle ended after %d rounds.\n", h.rounds)
	}
	h.state = stateProcessingCommands
	return h.cmdWarriors(cmd.Selection{})
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = h.exprParser.Parse(value, h)
			if err == nil {
				err = h.settings.Set(key, int(v))
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := h.parseExpr(c.Args[0])
		if err == nil {
			count = n
		}
	}

	h.state = stateRunning
	for i := 0; i < count && h.state == stateRunning; i++ {
		if err := h.mars.Step(); err != nil {
			h.printf("%v\n", err)
			break
		}
		h.rounds++
		if h.mars.ActiveWarriors() <= 1 {
			break
		}
	}

	if h.state == stateRunning {
		h.state = stateProcessingCommands
	}
	h.displaySummary()
	return nil
}

func (h *Host) parseAddr(s string, next int) (int, error) {
	switch s {
	case "$":
		return h.mars.Core.Trim(next), nil
	case ".":
		return h.currentPC(), nil
	default:
		return h.parseExpr(s)
	}
}

// currentPC returns the program counter of the first alive warrior's
// oldest live process, the host's stand-in for "the" program counter in
// a simulation that can be running several warriors' processes at once.
func (h *Host) currentPC() int {
	for _, w := range h.mars.Warriors {
		if w.Alive() {
			return h.mars.Core.Trim(w.TaskQueue[0])
		}
	}
	return 0
}

// warriorAt returns the warrior whose assembled span covers core address
// addr, and addr's offset into that span, used to look up the
// originating source line for disassembly.
func (h *Host) warriorAt(addr int) (*mars.Warrior, int, bool) {
	for _, w := range h.mars.Warriors {
		off := h.mars.Core.Trim(addr - w.Position)
		if off < w.Len() {
			return w, off, true
		}
	}
	return nil, 0, false
}

func (h *Host) parseExpr(expr string) (int, error) {
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// resolveIdentifier implements the resolver interface consumed by
// exprParser.Parse: a bare word in an expression is "core" (the core
// size), "pc" (the live program counter, see currentPC), a loaded
// warrior's name (resolving to its load position), or a label defined in
// a loaded warrior's source (resolving to the core address it names),
// optionally qualified as "warrior.label" when more than one loaded
// warrior defines the same label name.
func (h *Host) resolveIdentifier(s string) (int64, error) {
	switch {
	case strings.EqualFold(s, "core"):
		return int64(h.mars.Core.Len()), nil
	case strings.EqualFold(s, "pc"):
		return int64(h.currentPC()), nil
	}

	for _, w := range h.mars.Warriors {
		if strings.EqualFold(w.Name, s) {
			return int64(w.Position), nil
		}
	}

	if addr, ok := h.resolveLabel(s); ok {
		return int64(addr), nil
	}

	return 0, fmt.Errorf("identifier '%s' not found", s)
}

// resolveLabel looks up a label across every loaded warrior's label
// table, the host's equivalent of a direct call into the assembler's own
// label environment. A "warrior.label" form disambiguates warriors that
// define the same label name.
func (h *Host) resolveLabel(s string) (int, bool) {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		warriorName, label := s[:dot], s[dot+1:]
		for _, w := range h.mars.Warriors {
			if strings.EqualFold(w.Name, warriorName) {
				if off, ok := w.Labels[label]; ok {
					return h.mars.Core.Trim(w.Position + off), true
				}
			}
		}
		return 0, false
	}

	for _, w := range h.mars.Warriors {
		if off, ok := w.Labels[s]; ok {
			return h.mars.Core.Trim(w.Position + off), true
		}
	}
	return 0, false
}

func (h *Host) onBreakpoint(w *mars.Warrior, b *mars.Breakpoint) {
	h.state = stateBreakpoint
	h.printf("Breakpoint hit at %d (warrior %s).\n", b.Address, w.Name)
}

func (h *Host) onDataBreakpoint(w *mars.Warrior, b *mars.DataBreakpoint) {
	h.state = stateBreakpoint
	h.printf("Data breakpoint hit at %d (warrior %s).\n", b.Address, w.Name)
}

func (h *Host) displayUsage(c *cmd.Command) {
	if c.Usage != "" {
		h.printf("Usage: %s\n", c.Usage)
	}
}

func (h *Host) displayCommands(commands *cmd.Tree) {
	h.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
	h.println()
}
