// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a Redcode instruction set disassembler.
package disasm

import (
	"fmt"
	"strings"

	"github.com/beevik/corewar/mars"
	"github.com/beevik/corewar/redcode"
)

// Disassemble the instruction stored in core at addr. Returns a 'line'
// string representing the disassembled instruction and a 'next' address
// that starts the following cell. Operand numbers are printed as signed
// offsets relative to core's size, the way a warrior's author wrote them,
// rather than as the raw modulo-reduced value stored in the cell.
func Disassemble(core *mars.Core, addr int) (line string, next int) {
	instr := core.Read(addr)
	size := core.Len()
	line = fmt.Sprintf("%s.%s %s%d, %s%d",
		instr.Opcode, instr.Modifier,
		instr.AMode, redcode.Signed(instr.ANumber, size),
		instr.BMode, redcode.Signed(instr.BNumber, size))
	next = core.Trim(addr + 1)
	return
}

// DisassembleRange disassembles count consecutive cells starting at addr,
// one line per cell, each prefixed with its core address.
func DisassembleRange(core *mars.Core, addr, count int) []string {
	lines := make([]string, 0, count)
	a := addr
	for i := 0; i < count; i++ {
		line, next := Disassemble(core, a)
		lines = append(lines, fmt.Sprintf("%04d  %s", core.Trim(a), line))
		a = next
	}
	return lines
}

// String joins a disassembled range into a single block of text, for
// callers that just want to print it.
func String(core *mars.Core, addr, count int) string {
	return strings.Join(DisassembleRange(core, addr, count), "\n")
}
