// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	"github.com/beevik/corewar/redcode"
)

func assemble(t *testing.T, src string) *Warrior {
	t.Helper()
	w, err := Assemble(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Assemble(%q) failed: %v", src, err)
	}
	return w
}

func assembleErr(t *testing.T, src string) error {
	t.Helper()
	_, err := Assemble(strings.NewReader(src), nil)
	if err == nil {
		t.Fatalf("Assemble(%q) succeeded, want error", src)
	}
	return err
}

func TestBasicInstruction(t *testing.T) {
	w := assemble(t, "MOV 0, 1")
	if len(w.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(w.Instructions))
	}
	in := w.Instructions[0]
	if in.Opcode != redcode.MOV || in.AMode != redcode.DIRECT || in.ANumber != 0 ||
		in.BMode != redcode.DIRECT || in.BNumber != 1 {
		t.Errorf("got %+v", in)
	}
	// DIRECT/DIRECT MOV defaults to the I modifier.
	if in.Modifier != redcode.I {
		t.Errorf("got modifier %v, want I", in.Modifier)
	}
}

func TestExplicitModifier(t *testing.T) {
	w := assemble(t, "MOV.AB 0, 1")
	if w.Instructions[0].Modifier != redcode.AB {
		t.Errorf("got modifier %v, want AB", w.Instructions[0].Modifier)
	}
}

func TestDefaultModifierFromImmediateAMode(t *testing.T) {
	w := assemble(t, "ADD #4, 3")
	in := w.Instructions[0]
	if in.AMode != redcode.IMMEDIATE || in.ANumber != 4 {
		t.Errorf("got A operand %v %d", in.AMode, in.ANumber)
	}
	if in.Modifier != redcode.AB {
		t.Errorf("got modifier %v, want AB", in.Modifier)
	}
}

func TestModeCharacters(t *testing.T) {
	w := assemble(t, "MOV {1, >2")
	in := w.Instructions[0]
	if in.AMode != redcode.PREDEC_A {
		t.Errorf("got A mode %v, want PREDEC_A", in.AMode)
	}
	if in.BMode != redcode.POSTINC_B {
		t.Errorf("got B mode %v, want POSTINC_B", in.BMode)
	}
}

func TestOmittedOperandsDefaultToZero(t *testing.T) {
	w := assemble(t, "DAT")
	in := w.Instructions[0]
	if in.AMode != redcode.DIRECT || in.ANumber != 0 || in.BMode != redcode.DIRECT || in.BNumber != 0 {
		t.Errorf("got %+v, want all-zero DIRECT operands", in)
	}
}

func TestLabelRelativeResolution(t *testing.T) {
	src := `
loop  ADD #4, 3
      JMP loop
`
	w := assemble(t, src)
	if len(w.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(w.Instructions))
	}
	// "loop" labels address 0; referenced from instruction 1, so its
	// relative value is 0-1 = -1.
	if got := w.Instructions[1].ANumber; got != -1 {
		t.Errorf("got JMP operand %d, want -1", got)
	}
}

func TestMultipleLabelsOneInstruction(t *testing.T) {
	src := `
a b MOV 0, 1
    JMP a
    JMP b
`
	w := assemble(t, src)
	if got := w.Instructions[1].ANumber; got != -1 {
		t.Errorf("JMP a: got %d, want -1", got)
	}
	if got := w.Instructions[2].ANumber; got != -2 {
		t.Errorf("JMP b: got %d, want -2", got)
	}
}

func TestEquConstant(t *testing.T) {
	src := `
STEP EQU 4
     MOV 0, STEP
`
	w := assemble(t, src)
	if got := w.Instructions[0].BNumber; got != 4 {
		t.Errorf("got %d, want 4", got)
	}
}

func TestEquExpression(t *testing.T) {
	src := `
A EQU 3
B EQU A * 2 + 1
  DAT B
`
	w := assemble(t, src)
	if got := w.Instructions[0].ANumber; got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestOrgLabel(t *testing.T) {
	src := `
ORG start
      DAT 0, 0
start MOV 0, 1
`
	w := assemble(t, src)
	if w.Start != 1 {
		t.Errorf("got start %d, want 1", w.Start)
	}
}

func TestEndOverridesOrg(t *testing.T) {
	src := `
ORG 0
      DAT 0, 0
here  MOV 0, 1
      END here
`
	w := assemble(t, src)
	if w.Start != 1 {
		t.Errorf("got start %d, want 1", w.Start)
	}
}

func TestMetadataComments(t *testing.T) {
	src := `
;name Example
;author Test Author
;strategy first line
;strategy second line
MOV 0, 1
`
	w := assemble(t, src)
	if w.Name != "Example" {
		t.Errorf("got name %q", w.Name)
	}
	if w.Author != "Test Author" {
		t.Errorf("got author %q", w.Author)
	}
	if w.Strategy != "first line\nsecond line" {
		t.Errorf("got strategy %q", w.Strategy)
	}
}

func TestRedcodeTagResetsPriorInput(t *testing.T) {
	src := `
garbage that would fail to parse if not discarded
;redcode
MOV 0, 1
`
	w := assemble(t, src)
	if len(w.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(w.Instructions))
	}
}

func TestSecondRedcodeTagStopsParsing(t *testing.T) {
	src := `
;redcode
MOV 0, 1
;redcode
this is not parsed and would error if it were
`
	w := assemble(t, src)
	if len(w.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(w.Instructions))
	}
}

func TestAssertPasses(t *testing.T) {
	assemble(t, ";assert 5 - 3\nMOV 0, 1")
}

func TestAssertFails(t *testing.T) {
	err := assembleErr(t, ";assert 1 - 1\nMOV 0, 1")
	var aerr *Error
	if !asErrorAs(err, &aerr) || aerr.Kind != AssertionFailure {
		t.Errorf("got %v, want AssertionFailure", err)
	}
}

func TestUnknownOpcodeIsSyntaxError(t *testing.T) {
	err := assembleErr(t, "FOO 0, 1")
	var aerr *Error
	if !asErrorAs(err, &aerr) || aerr.Kind != SyntaxError {
		t.Errorf("got %v, want SyntaxError", err)
	}
}

func TestCommentsIgnored(t *testing.T) {
	src := `
; this is a full-line comment
MOV 0, 1 ; trailing comment
`
	w := assemble(t, src)
	if len(w.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(w.Instructions))
	}
}

func TestAssemblyIsIdempotent(t *testing.T) {
	src := "step EQU 3\nloop ADD #step, 1\n     JMP loop\n"
	w1 := assemble(t, src)
	w2 := assemble(t, src)
	if len(w1.Instructions) != len(w2.Instructions) {
		t.Fatalf("instruction counts differ between runs")
	}
	for i := range w1.Instructions {
		if w1.Instructions[i] != w2.Instructions[i] {
			t.Errorf("instruction %d differs between runs: %+v != %+v", i, w1.Instructions[i], w2.Instructions[i])
		}
	}
}

func asErrorAs(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
