// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("corewar")
	root.AddCommand(cmd.Command{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})

	root.AddCommand(cmd.Command{
		Name:  "load",
		Brief: "Assemble and load warriors into a fresh core",
		Description: "Assemble one or more Redcode source files and load" +
			" them into a newly cleared core at equally spaced, optionally" +
			" randomized, positions. Replaces any simulation already in" +
			" progress.",
		Usage: "load <file> [<file> ...]",
		Data:  (*Host).cmdLoad,
	})
	root.AddCommand(cmd.Command{
		Name:  "warriors",
		Brief: "List loaded warriors and their status",
		Description: "Display each loaded warrior's name, author," +
			" starting position, live process count, and whether it is" +
			" still alive.",
		Usage: "warriors",
		Data:  (*Host).cmdWarriors,
	})

	// Breakpoint commands
	bp := cmd.NewTree("Breakpoint")
	root.AddCommand(cmd.Command{
		Name:    "breakpoint",
		Brief:   "Breakpoint commands",
		Subtree: bp,
	})
	bp.AddCommand(cmd.Command{
		Name:        "list",
		Brief:       "List breakpoints",
		Description: "List all current breakpoints.",
		Usage:       "breakpoint list",
		Data:        (*Host).cmdBreakpointList,
	})
	bp.AddCommand(cmd.Command{
		Name:  "add",
		Brief: "Add a breakpoint",
		Description: "Add a breakpoint at the specified core address." +
			" The breakpoint starts enabled. When any warrior executes the" +
			" instruction there, the simulation stops at the end of that" +
			" round, after every warrior has taken its turn.",
		Usage: "breakpoint add <address>",
		Data:  (*Host).cmdBreakpointAdd,
	})
	bp.AddCommand(cmd.Command{
		Name:        "remove",
		Brief:       "Remove a breakpoint",
		Description: "Remove a breakpoint at the specified core address.",
		Usage:       "breakpoint remove <address>",
		Data:        (*Host).cmdBreakpointRemove,
	})
	bp.AddCommand(cmd.Command{
		Name:        "enable",
		Brief:       "Enable a breakpoint",
		Description: "Enable a previously added breakpoint.",
		Usage:       "breakpoint enable <address>",
		Data:        (*Host).cmdBreakpointEnable,
	})
	bp.AddCommand(cmd.Command{
		Name:  "disable",
		Brief: "Disable a breakpoint",
		Description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the" +
			" simulation.",
		Usage: "breakpoint disable <address>",
		Data:  (*Host).cmdBreakpointDisable,
	})

	// Data breakpoint commands
	dbp := cmd.NewTree("Data breakpoint")
	root.AddCommand(cmd.Command{
		Name:    "databreakpoint",
		Brief:   "Data breakpoint commands",
		Subtree: dbp,
	})
	dbp.AddCommand(cmd.Command{
		Name:        "list",
		Brief:       "List data breakpoints",
		Description: "List all current data breakpoints.",
		Usage:       "databreakpoint list",
		Data:        (*Host).cmdDataBreakpointList,
	})
	dbp.AddCommand(cmd.Command{
		Name:  "add",
		Brief: "Add a data breakpoint",
		Description: "Add a new data breakpoint at the specified core" +
			" address. When any warrior writes to this cell, the" +
			" breakpoint stops the simulation. Optionally, a value may be" +
			" specified, and the simulation stops only when that value is" +
			" stored into the cell's A-field (or B-field for a B-write).",
		Usage: "databreakpoint add <address> [<value>]",
		Data:  (*Host).cmdDataBreakpointAdd,
	})
	dbp.AddCommand(cmd.Command{
		Name:  "remove",
		Brief: "Remove a data breakpoint",
		Description: "Remove a previously added data breakpoint at" +
			" the specified core address.",
		Usage: "databreakpoint remove <address>",
		Data:  (*Host).cmdDataBreakpointRemove,
	})
	dbp.AddCommand(cmd.Command{
		Name:        "enable",
		Brief:       "Enable a data breakpoint",
		Description: "Enable a previously added data breakpoint.",
		Usage:       "databreakpoint enable <address>",
		Data:        (*Host).cmdDataBreakpointEnable,
	})
	dbp.AddCommand(cmd.Command{
		Name:        "disable",
		Brief:       "Disable a data breakpoint",
		Description: "Disable a previously added data breakpoint.",
		Usage:       "databreakpoint disable <address>",
		Data:        (*Host).cmdDataBreakpointDisable,
	})

	root.AddCommand(cmd.Command{
		Name:  "disassemble",
		Brief: "Disassemble core",
		Description: "Disassemble core cells starting at the requested" +
			" address. The number of cells to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		Usage: "disassemble [<address>] [<count>]",
		Data:  (*Host).cmdDisassemble,
	})
	root.AddCommand(cmd.Command{
		Name:  "evaluate",
		Brief: "Evaluate an expression",
		Description: "Evaluate a mathematical expression. Bare identifiers" +
			" resolve to \"core\" (the core size), \"pc\" (the current" +
			" program counter), a loaded warrior's name (its load" +
			" position), or a label defined in a loaded warrior's source" +
			" (its core address), disambiguated as \"warrior.label\" when" +
			" more than one warrior defines the same label.",
		Usage: "evaluate <expression>",
		Data:  (*Host).cmdEvaluate,
	})

	root.AddCommand(cmd.Command{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	root.AddCommand(cmd.Command{
		Name:  "run",
		Brief: "Run the simulation",
		Description: "Run the simulation until a single warrior remains," +
			" a breakpoint is hit, the configured round limit is reached," +
			" or the user types Ctrl-C.",
		Usage: "run",
		Data:  (*Host).cmdRun,
	})
	root.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.Command{
		Name:  "step",
		Brief: "Step the simulation",
		Description: "Advance the simulation by one round. The number of" +
			" rounds may be specified as an option.",
		Usage: "step [<count>]",
		Data:  (*Host).cmdStep,
	})

	// Add command shortcuts.
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("bp", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("db", "databreakpoint")
	root.AddShortcut("dbp", "databreakpoint")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("l", "load")
	root.AddShortcut("r", "run")
	root.AddShortcut("s", "step")
	root.AddShortcut("w", "warriors")
	root.AddShortcut("?", "help")

	cmds = root
}
