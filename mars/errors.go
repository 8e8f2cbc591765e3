// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import "fmt"

// InvalidInstruction is returned by Step when a core cell's opcode or
// modifier is out of range during execution. This can only happen to a
// cell that was never produced by the assembler or by MOV (which only
// ever copies already-valid Instruction values resident in core); LDP
// and STP are out of scope and are not assembler-reachable opcodes, so
// in practice this error path is defensive rather than reachable from
// any warrior this engine can load.
//
// A warrior's process simply failing to enqueue a successor (DAT,
// divide-by-zero, a dropped queue-cap insertion) is RuntimeDeath: normal
// process termination, not an error, and is not represented by this
// type.
type InvalidInstruction struct {
	Warrior *Warrior
	Address int
	Opcode  byte
}

func (e *InvalidInstruction) Error() string {
	return fmt.Sprintf("invalid instruction at address %d (opcode %d)", e.Address, e.Opcode)
}
