// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import (
	"testing"

	"github.com/beevik/corewar/redcode"
)

func TestCoreReadWriteWraps(t *testing.T) {
	c := NewCore(10, 0, 0)
	instr := redcode.Instruction{Opcode: redcode.MOV, ANumber: 3}
	c.Write(12, instr)
	got := c.Read(2)
	if got != instr {
		t.Errorf("got %+v, want %+v", got, instr)
	}
	got = c.Read(-8)
	if got != instr {
		t.Errorf("negative wrap: got %+v, want %+v", got, instr)
	}
}

func TestCoreTrimMatchesModulus(t *testing.T) {
	c := NewCore(8000, 0, 0)
	for _, x := range []int{0, 1, 7999, 8000, 8001, -1, 16000} {
		got := c.Trim(x)
		if got < 0 || got >= 8000 {
			t.Fatalf("Trim(%d) = %d, out of [0,8000)", x, got)
		}
		want := ((x % 8000) + 8000) % 8000
		if got != want {
			t.Errorf("Trim(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestTrimReadDegeneratesToTrimWhenLimitEqualsSize(t *testing.T) {
	c := NewCore(8000, 8000, 8000)
	for _, x := range []int{0, 1, 4000, 7999, 8000, 12000, -5} {
		if got, want := c.TrimRead(x), c.Trim(x); got != want {
			t.Errorf("TrimRead(%d) = %d, want %d (== Trim)", x, got, want)
		}
	}
}

func TestTrimReadFoldsAroundLimitWindow(t *testing.T) {
	// limit=100, size=8000: values beyond 50 fold back by (size-limit).
	c := NewCore(8000, 100, 100)
	if got := c.TrimRead(10); got != 10 {
		t.Errorf("TrimRead(10) = %d, want 10", got)
	}
	if got := c.TrimRead(60); got != 60+(8000-100) {
		t.Errorf("TrimRead(60) = %d, want %d", got, 60+(8000-100))
	}
}

func TestTrimIsIdempotent(t *testing.T) {
	c := NewCore(8000, 500, 500)
	for _, x := range []int{0, 123, 7999, -200, 9000} {
		once := c.TrimRead(x)
		twice := c.TrimRead(once)
		if once != twice {
			t.Errorf("TrimRead not idempotent for %d: %d != %d", x, once, twice)
		}
	}
}

func TestCoreClearFillsEveryCell(t *testing.T) {
	c := NewCore(16, 0, 0)
	instr := redcode.Instruction{Opcode: redcode.NOP}
	c.Clear(instr)
	for i := 0; i < 16; i++ {
		if got := c.Read(i); got != instr {
			t.Errorf("cell %d = %+v, want %+v", i, got, instr)
		}
	}
}
