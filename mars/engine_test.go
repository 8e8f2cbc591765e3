// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/beevik/corewar/asm"
	"github.com/beevik/corewar/redcode"
)

func mustAssemble(t *testing.T, src string) *asm.Warrior {
	t.Helper()
	w, err := asm.Assemble(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("assemble(%q): %v", src, err)
	}
	return w
}

// S1: Dwarf vs Sitting Duck. Dwarf's stride-2004 bombing run eventually
// kills the duck; the duck never damages the dwarf.
func TestDwarfKillsSittingDuck(t *testing.T) {
	dwarf := mustAssemble(t, `
;name dwarf
ORG start
loop   ADD.AB #2004, start
start  MOV    2, 2
       JMP    loop
`)
	duck := mustAssemble(t, "NOP 0\nNOP 0\nNOP 0\nNOP 0\nNOP 0\n")

	m := New(Options{
		CoreSize:          8000,
		MinimumSeparation: 100,
		Randomize:         true,
		Rand:              rand.New(rand.NewSource(1)),
	}, []*asm.Warrior{dwarf, duck})

	for i := 0; i < 8000; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !m.Warriors[1].Alive() {
			break
		}
	}

	if m.Warriors[1].Alive() {
		t.Errorf("sitting duck survived 8000 steps, want dead")
	}
	if len(m.Warriors[0].TaskQueue) != 1 {
		t.Errorf("dwarf has %d processes, want 1", len(m.Warriors[0].TaskQueue))
	}
}

// S5: DJN decrements the target field and jumps while it's non-zero.
func TestDjnDecrementsAndJumps(t *testing.T) {
	// "target" labels the DJN instruction itself, so its A operand
	// resolves to offset 0 (jump back to the same instruction) while its
	// B operand ($1) points at the next cell, matching the scenario's
	// "core[PC+1].a = 2" precondition.
	m := New(Options{CoreSize: 16, MinimumSeparation: 0, Randomize: false},
		[]*asm.Warrior{mustAssemble(t, "target DJN.A target, $1\n       DAT 2, 0\n")})
	w := m.Warriors[0]
	pc := w.Position

	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if got := m.Core.Read(pc + 1).ANumber; got != 1 {
		t.Errorf("after 1st DJN, target.a = %d, want 1", got)
	}
	if got := w.TaskQueue[0]; got != m.Core.Trim(pc) {
		t.Errorf("after 1st DJN, successor pc = %d, want self-jump %d", got, m.Core.Trim(pc))
	}

	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if got := m.Core.Read(pc + 1).ANumber; got != 0 {
		t.Errorf("after 2nd DJN, target.a = %d, want 0", got)
	}
	if got := w.TaskQueue[0]; got != m.Core.Trim(pc+1) {
		t.Errorf("after 2nd DJN (target reached 0), successor pc = %d, want fall-through %d", got, m.Core.Trim(pc+1))
	}
}

// S6: with the queue already at max_processes, enqueue silently drops
// every further PC - both of SPL's successors included.
func TestEnqueueDropsBeyondMaxProcesses(t *testing.T) {
	m := New(Options{CoreSize: 16, MinimumSeparation: 0, Randomize: false},
		[]*asm.Warrior{mustAssemble(t, "SPL 1\n")})
	w := m.Warriors[0]
	m.MaxProcesses = 2
	w.TaskQueue = []int{1, 2}

	m.enqueue(w, 3) // fall-through successor
	m.enqueue(w, 4) // jump successor
	if len(w.TaskQueue) != 2 || w.TaskQueue[0] != 1 || w.TaskQueue[1] != 2 {
		t.Errorf("got %v, want queue unchanged at [1 2] (both drops)", w.TaskQueue)
	}
}

// Invariant 1: every stored instruction's fields stay within [0, core_size).
func TestInstructionFieldsStayInBounds(t *testing.T) {
	dwarf := mustAssemble(t, "ADD.AB #2004, 0\nMOV 2, 2\nJMP -2\n")
	m := New(Options{CoreSize: 100, MinimumSeparation: 0, Randomize: false}, []*asm.Warrior{dwarf})

	for i := 0; i < 500; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for addr := 0; addr < m.Core.Len(); addr++ {
			instr := m.Core.Read(addr)
			if instr.ANumber < 0 || instr.ANumber >= m.Core.Len() {
				t.Fatalf("cell %d: a_number %d out of bounds", addr, instr.ANumber)
			}
			if instr.BNumber < 0 || instr.BNumber >= m.Core.Len() {
				t.Fatalf("cell %d: b_number %d out of bounds", addr, instr.BNumber)
			}
		}
	}
}

// Invariant 2 & 3: the task queue never exceeds MaxProcesses, and every
// enqueued PC is in [0, core_size).
func TestTaskQueueBoundedAndPCsInBounds(t *testing.T) {
	m := New(Options{CoreSize: 50, MaxProcesses: 4, MinimumSeparation: 0, Randomize: false},
		[]*asm.Warrior{mustAssemble(t, "SPL 1\n")})
	w := m.Warriors[0]

	for i := 0; i < 20; i++ {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
		if len(w.TaskQueue) > m.MaxProcesses {
			t.Fatalf("queue length %d exceeds MaxProcesses %d", len(w.TaskQueue), m.MaxProcesses)
		}
		for _, pc := range w.TaskQueue {
			if pc < 0 || pc >= m.Core.Len() {
				t.Fatalf("queued pc %d out of bounds", pc)
			}
		}
	}
}

// Invariant 5: with randomize=false, two independent runs of the same
// warriors produce identical final core state and task queues.
func TestDeterministicReplayWithoutRandomization(t *testing.T) {
	src := "loop ADD.AB #4, 1\nMOV 0, 2\nJMP loop\n"

	run := func() (*Core, []int) {
		w := mustAssemble(t, src)
		m := New(Options{CoreSize: 200, MinimumSeparation: 0, Randomize: false}, []*asm.Warrior{w})
		for i := 0; i < 300; i++ {
			if err := m.Step(); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
		return m.Core, append([]int(nil), m.Warriors[0].TaskQueue...)
	}

	core1, queue1 := run()
	core2, queue2 := run()

	if len(queue1) != len(queue2) {
		t.Fatalf("queue lengths differ: %d vs %d", len(queue1), len(queue2))
	}
	for i := range queue1 {
		if queue1[i] != queue2[i] {
			t.Errorf("queue[%d] differs: %d vs %d", i, queue1[i], queue2[i])
		}
	}
	for addr := 0; addr < core1.Len(); addr++ {
		if core1.Read(addr) != core2.Read(addr) {
			t.Fatalf("core cell %d differs between runs", addr)
		}
	}
}

func TestDefaultModifierScenarioS3(t *testing.T) {
	cases := []struct {
		src  string
		want redcode.Modifier
	}{
		{"ADD #1, $2", redcode.AB},
		{"ADD $1, #2", redcode.B},
		{"ADD $1, $2", redcode.F},
		{"DAT #0, #0", redcode.F},
		{"MOV $1, $2", redcode.I},
	}
	for _, c := range cases {
		w := mustAssemble(t, c.src)
		if got := w.Instructions[0].Modifier; got != c.want {
			t.Errorf("%q: modifier = %v, want %v", c.src, got, c.want)
		}
	}
}
