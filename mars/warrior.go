// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import (
	"github.com/beevik/corewar/asm"
	"github.com/beevik/corewar/redcode"
)

// A Warrior is the runtime state of a warrior loaded into a MARS
// simulation: its assembled code plus the FIFO task queue that drives
// execution. The assembler's asm.Warrior is pure data with no core
// binding; Warrior is what it becomes once the engine loads it.
type Warrior struct {
	ID       int
	Name     string
	Author   string
	Strategy string

	// Instructions is the warrior's own code, in assembled order. It is
	// never mutated after load; the engine's copy in the core is what
	// executes and changes over time.
	Instructions []redcode.Instruction

	// Start is the offset (relative to Position) of the first
	// instruction to execute.
	Start int

	// Position is the core address the warrior was loaded at.
	Position int

	// TaskQueue holds the program counters of this warrior's live
	// processes, oldest first.
	TaskQueue []int

	// Labels maps each label defined in the warrior's source to the
	// instruction offset it names, copied from the assembled asm.Warrior
	// so the host can resolve a label to a core address (Position+offset)
	// without holding onto the assembler's own internal state.
	Labels map[string]int

	// SourceMap maps this warrior's instruction offsets to the source
	// line each one assembled from, copied from the assembled
	// asm.Warrior so error reporting and disassembly can cite the
	// originating Redcode line for any of its core addresses.
	SourceMap *asm.SourceMap
}

// SourceLineAt returns the source line number that assembled into the
// instruction offset cells into this warrior's code (its core address
// minus Position, already wrapped to core bounds), if it carries a
// source map and the offset falls within its span.
func (w *Warrior) SourceLineAt(offset int) (line int, ok bool) {
	if w.SourceMap == nil || offset < 0 || offset >= len(w.Instructions) {
		return 0, false
	}
	n, err := w.SourceMap.Find(offset)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Len returns the number of instructions the warrior occupies in core.
func (w *Warrior) Len() int { return len(w.Instructions) }

// Alive reports whether the warrior still has at least one live process.
func (w *Warrior) Alive() bool { return len(w.TaskQueue) > 0 }

// popTask removes and returns the front of the task queue.
func (w *Warrior) popTask() int {
	pc := w.TaskQueue[0]
	w.TaskQueue = w.TaskQueue[1:]
	return pc
}

// WarriorStatus is a read-only snapshot of a warrior's runtime state,
// exposed for host and test inspection the way go6502's CPU directly
// exposes Cycles/LastPC.
type WarriorStatus struct {
	ID        int
	Name      string
	Position  int
	Processes int
	Alive     bool
}

// Status returns a snapshot of the warrior's current runtime state.
func (w *Warrior) Status() WarriorStatus {
	return WarriorStatus{
		ID:        w.ID,
		Name:      w.Name,
		Position:  w.Position,
		Processes: len(w.TaskQueue),
		Alive:     w.Alive(),
	}
}
