package redcode

import "testing"

func TestDefaultModifier(t *testing.T) {
	cases := []struct {
		op       Opcode
		a, b     Mode
		expected Modifier
	}{
		{ADD, IMMEDIATE, DIRECT, AB},
		{ADD, DIRECT, IMMEDIATE, B},
		{ADD, DIRECT, DIRECT, F},
		{DAT, IMMEDIATE, IMMEDIATE, F},
		{MOV, DIRECT, DIRECT, I},
		{CMP, DIRECT, DIRECT, I},
		{SEQ, DIRECT, DIRECT, B},
		{SLT, DIRECT, DIRECT, B},
		{SLT, IMMEDIATE, DIRECT, AB},
		{JMP, DIRECT, DIRECT, B},
		{SPL, IMMEDIATE, IMMEDIATE, B},
	}
	for _, c := range cases {
		got := DefaultModifier(c.op, c.a, c.b)
		if got != c.expected {
			t.Errorf("DefaultModifier(%v, %v, %v) = %v, want %v", c.op, c.a, c.b, got, c.expected)
		}
	}
}

func TestDefaultModifierIdempotent(t *testing.T) {
	for op := DAT; op <= NOP; op++ {
		for a := IMMEDIATE; a <= POSTINC_A; a++ {
			for b := IMMEDIATE; b <= POSTINC_A; b++ {
				m1 := DefaultModifier(op, a, b)
				m2 := DefaultModifier(op, a, b)
				if m1 != m2 {
					t.Fatalf("DefaultModifier not pure for (%v,%v,%v): %v != %v", op, a, b, m1, m2)
				}
			}
		}
	}
}

func TestSigned(t *testing.T) {
	const size = 8000
	cases := []struct{ value, want int }{
		{0, 0},
		{1, 1},
		{size / 2, size / 2},
		{size/2 + 1, size/2 + 1 - size},
		{size - 1, -1},
	}
	for _, c := range cases {
		if got := Signed(c.value, size); got != c.want {
			t.Errorf("Signed(%d, %d) = %d, want %d", c.value, size, got, c.want)
		}
	}
}

func TestModeCharMapping(t *testing.T) {
	// '{' is PREDEC_A and '}' is POSTINC_A, not the reversed A/B pairing
	// the reference implementation's MODES dict inconsistently suggests.
	if Modes['{'] != PREDEC_A {
		t.Errorf("'{' should map to PREDEC_A")
	}
	if Modes['}'] != POSTINC_A {
		t.Errorf("'}' should map to POSTINC_A")
	}
	if Modes['<'] != PREDEC_B {
		t.Errorf("'<' should map to PREDEC_B")
	}
	if Modes['>'] != POSTINC_B {
		t.Errorf("'>' should map to POSTINC_B")
	}
}
