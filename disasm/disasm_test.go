// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"strings"
	"testing"

	"github.com/beevik/corewar/asm"
	"github.com/beevik/corewar/mars"
)

func TestDisassembleRendersOpcodeModifierAndModes(t *testing.T) {
	w, err := asm.Assemble(strings.NewReader("MOV.I $1, #2\n"), nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mars.New(mars.Options{CoreSize: 16, Randomize: false}, []*asm.Warrior{w})

	line, next := Disassemble(m.Core, m.Warriors[0].Position)
	if !strings.HasPrefix(line, "MOV.I") {
		t.Errorf("line = %q, want prefix MOV.I", line)
	}
	if !strings.Contains(line, "$1") || !strings.Contains(line, "#2") {
		t.Errorf("line = %q, want operands $1 and #2", line)
	}
	if want := m.Core.Trim(m.Warriors[0].Position + 1); next != want {
		t.Errorf("next = %d, want %d", next, want)
	}
}

func TestDisassembleSignsOffsetsRelativeToCoreSize(t *testing.T) {
	w, err := asm.Assemble(strings.NewReader("JMP -1\n"), nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mars.New(mars.Options{CoreSize: 16, Randomize: false}, []*asm.Warrior{w})

	line, _ := Disassemble(m.Core, m.Warriors[0].Position)
	if !strings.Contains(line, "-1") {
		t.Errorf("line = %q, want a signed -1 offset", line)
	}
}

func TestDisassembleRangeCoversEveryRequestedCellWithAddressPrefix(t *testing.T) {
	w, err := asm.Assemble(strings.NewReader("NOP 0\nNOP 0\nNOP 0\n"), nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mars.New(mars.Options{CoreSize: 16, Randomize: false}, []*asm.Warrior{w})

	lines := DisassembleRange(m.Core, m.Warriors[0].Position, 3)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, l := range lines {
		if !strings.Contains(l, "NOP") {
			t.Errorf("line %q missing NOP", l)
		}
	}
}
