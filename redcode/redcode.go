// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package redcode implements the shared Redcode value types: opcodes,
// modifiers, addressing modes and the immutable Instruction record. Both
// the assembler and the MARS execution engine build on these types.
package redcode

import "fmt"

// Opcode identifies a Redcode operation.
type Opcode byte

// The 17 Redcode opcodes. CMP and SEQ are aliases executed identically;
// they are kept as distinct constants so the assembler and disassembler
// can round-trip the mnemonic the warrior author wrote, and because
// DefaultModifier gives them different rows (CMP follows MOV, SEQ follows
// SLT and SNE).
const (
	DAT Opcode = iota
	MOV
	ADD
	SUB
	MUL
	DIV
	MOD
	JMP
	JMZ
	JMN
	DJN
	SPL
	SLT
	CMP
	SEQ
	SNE
	NOP
)

var opcodeName = [...]string{
	DAT: "DAT", MOV: "MOV", ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV",
	MOD: "MOD", JMP: "JMP", JMZ: "JMZ", JMN: "JMN", DJN: "DJN", SPL: "SPL",
	SLT: "SLT", CMP: "CMP", SEQ: "SEQ", SNE: "SNE", NOP: "NOP",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeName) {
		return opcodeName[op]
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Opcodes maps a mnemonic to its Opcode, accepting CMP as an alias of SEQ's
// sibling (both map to their own constant; callers that care only about
// behavior should treat CMP and SEQ identically).
var Opcodes = map[string]Opcode{
	"DAT": DAT, "MOV": MOV, "ADD": ADD, "SUB": SUB, "MUL": MUL, "DIV": DIV,
	"MOD": MOD, "JMP": JMP, "JMZ": JMZ, "JMN": JMN, "DJN": DJN, "SPL": SPL,
	"SLT": SLT, "CMP": CMP, "SEQ": SEQ, "SNE": SNE, "NOP": NOP,
}

// Modifier selects which field(s) of an instruction's operands participate
// in an operation.
type Modifier byte

// The 7 Redcode modifiers.
const (
	A Modifier = iota
	B
	AB
	BA
	F
	X
	I
)

var modifierName = [...]string{
	A: "A", B: "B", AB: "AB", BA: "BA", F: "F", X: "X", I: "I",
}

func (m Modifier) String() string {
	if int(m) < len(modifierName) {
		return modifierName[m]
	}
	return fmt.Sprintf("Modifier(%d)", byte(m))
}

// Modifiers maps a modifier mnemonic to its Modifier value.
var Modifiers = map[string]Modifier{
	"A": A, "B": B, "AB": AB, "BA": BA, "F": F, "X": X, "I": I,
}

// Mode identifies an operand's addressing mode.
type Mode byte

// The 8 Redcode addressing modes.
const (
	IMMEDIATE Mode = iota // #
	DIRECT                // $
	INDIRECT_B            // @
	PREDEC_B              // <
	POSTINC_B             // >
	INDIRECT_A            // *
	PREDEC_A              // {
	POSTINC_A             // }
)

// immediate returns true for the IMMEDIATE mode, the "A-mode group" used
// throughout the default-modifier table.
func (m Mode) immediate() bool { return m == IMMEDIATE }

var modeChar = [...]byte{
	IMMEDIATE: '#', DIRECT: '$', INDIRECT_B: '@', PREDEC_B: '<',
	POSTINC_B: '>', INDIRECT_A: '*', PREDEC_A: '{', POSTINC_A: '}',
}

func (m Mode) String() string {
	if int(m) < len(modeChar) {
		return string(modeChar[m])
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// Modes maps an addressing-mode character to its Mode value.
var Modes = map[byte]Mode{
	'#': IMMEDIATE, '$': DIRECT, '@': INDIRECT_B, '<': PREDEC_B,
	'>': POSTINC_B, '*': INDIRECT_A, '{': PREDEC_A, '}': POSTINC_A,
}

// Instruction is an immutable record of one Redcode instruction: an
// opcode, a modifier, and two (mode, number) operands. Numbers held in a
// core are reduced modulo its size (the engine reduces them on load); the
// assembler's output holds the plain evaluated integers, which may be
// negative. Instruction itself carries no back-pointer to a core, since multiple cores (and
// the warrior's own pristine copy) can all hold equal Instruction values
// without sharing any mutable state.
type Instruction struct {
	Opcode   Opcode
	Modifier Modifier
	AMode    Mode
	ANumber  int
	BMode    Mode
	BNumber  int
}

// DefaultModifier returns the ICWS'88->'94 default modifier for an
// instruction that omitted an explicit one, derived purely from the
// opcode and the two addressing modes. Applying it is idempotent: feeding
// it the modifier it just returned would simply return the same value,
// since it never inspects the Modifier field.
func DefaultModifier(op Opcode, aMode, bMode Mode) Modifier {
	switch op {
	case DAT, NOP:
		return F

	case MOV, CMP:
		switch {
		case aMode.immediate():
			return AB
		case bMode.immediate():
			return B
		default:
			return I
		}

	case ADD, SUB, MUL, DIV, MOD:
		switch {
		case aMode.immediate():
			return AB
		case bMode.immediate():
			return B
		default:
			return F
		}

	case SLT, SEQ, SNE:
		switch {
		case aMode.immediate():
			return AB
		default:
			return B
		}

	case JMP, JMZ, JMN, DJN, SPL:
		return B

	default:
		// Unreachable for any Opcode produced by the assembler; a
		// malformed core cell falls back to F like DAT/NOP.
		return F
	}
}

// Signed reinterprets a value stored modulo size as a signed offset in
// (-size/2, size/2], the way go6502's disassembler prints negative
// branch offsets without needing a back-pointer to the memory that
// holds them.
func Signed(value, size int) int {
	if value > size/2 {
		return value - size
	}
	return value
}
