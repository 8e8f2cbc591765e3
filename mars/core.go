// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mars implements the Memory Array Redcode Simulator: the core
// memory, warrior runtime state, and round-robin execution engine that
// plays loaded warriors against each other.
package mars

import "github.com/beevik/corewar/redcode"

// DefaultInitialInstruction is the instruction every core cell holds
// immediately after Clear: an imp-proof DAT.F $0, $0.
var DefaultInitialInstruction = redcode.Instruction{
	Opcode:   redcode.DAT,
	Modifier: redcode.F,
	AMode:    redcode.DIRECT,
	BMode:    redcode.DIRECT,
}

// Core is the circular memory array shared by all warriors in a
// simulation. Unlike go6502's Memory interface, Core is a concrete type:
// Redcode has exactly one memory shape (a flat array of Instruction
// cells), so there is no second implementation to abstract over.
type Core struct {
	size       int
	readLimit  int
	writeLimit int
	cells      []redcode.Instruction
}

// NewCore creates a core of the given size. A readLimit or writeLimit of
// 0 defaults to size, matching spec's "read_limit/write_limit default to
// core_size" rule.
func NewCore(size, readLimit, writeLimit int) *Core {
	if readLimit <= 0 {
		readLimit = size
	}
	if writeLimit <= 0 {
		writeLimit = size
	}
	c := &Core{size: size, readLimit: readLimit, writeLimit: writeLimit}
	c.Clear(DefaultInitialInstruction)
	return c
}

// Len returns the core's size.
func (c *Core) Len() int { return c.size }

// Clear writes the same instruction throughout the entire core.
func (c *Core) Clear(instr redcode.Instruction) {
	c.cells = make([]redcode.Instruction, c.size)
	for i := range c.cells {
		c.cells[i] = instr
	}
}

// Read loads the instruction at addr, wrapping addr into [0, size).
func (c *Core) Read(addr int) redcode.Instruction {
	return c.cells[c.wrap(addr)]
}

// Write stores instr at addr, wrapping addr into [0, size).
func (c *Core) Write(addr int, instr redcode.Instruction) {
	c.cells[c.wrap(addr)] = instr
}

func (c *Core) wrap(addr int) int {
	r := addr % c.size
	if r < 0 {
		r += c.size
	}
	return r
}

// Trim reduces value to the bounds of the core, [0, size).
func (c *Core) Trim(value int) int {
	return c.wrap(value)
}

// TrimRead folds an operand offset through the read-limit window.
func (c *Core) TrimRead(addr int) int {
	return c.trimLimit(addr, c.readLimit)
}

// TrimWrite folds an operand offset through the write-limit window.
func (c *Core) TrimWrite(addr int) int {
	return c.trimLimit(addr, c.writeLimit)
}

// trimLimit implements the limit-folding algorithm: reduce addr modulo
// limit, then, if the result exceeds limit/2, shift it by size-limit so
// the window is centered around zero and wraps through the core. When
// limit == size this degenerates to a plain modulus.
func (c *Core) trimLimit(addr, limit int) int {
	r := addr % limit
	if r < 0 {
		r += limit
	}
	if r > limit/2 {
		r += c.size - limit
	}
	return r
}
