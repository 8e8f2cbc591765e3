// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import (
	"math/rand"
	"time"

	"github.com/beevik/corewar/asm"
)

// Options configures a MARS simulation. In New, a zero CoreSize becomes
// 8000 and a zero MaxProcesses, ReadLimit or WriteLimit becomes the core
// size; MinimumSeparation and Randomize are used as given. DefaultOptions
// returns the full default configuration.
type Options struct {
	CoreSize          int
	ReadLimit         int
	WriteLimit        int
	MinimumSeparation int
	MaxProcesses      int
	Randomize         bool

	// Rand supplies the placement RNG. If nil and Randomize is true, a
	// time-seeded source is created; callers that need reproducible
	// placement (tests, replays) should supply their own.
	Rand *rand.Rand
}

// DefaultOptions returns the spec's default runtime configuration:
// an 8000-cell core, processes capped at core size, and a minimum
// separation of 100 between warriors.
func DefaultOptions() Options {
	return Options{
		CoreSize:          8000,
		MinimumSeparation: 100,
		Randomize:         true,
	}
}

// MARS encapsulates one simulation: a Core, the warriors loaded into it,
// and the round-robin scheduler that steps them.
type MARS struct {
	Core              *Core
	Warriors          []*Warrior
	MinimumSeparation int
	MaxProcesses      int

	rnd      *rand.Rand
	observer Observer
}

// New builds a simulation from assembled warriors and loads them into a
// freshly cleared core at spaced, optionally randomized, positions.
func New(opts Options, warriors []*asm.Warrior) *MARS {
	if opts.CoreSize <= 0 {
		opts.CoreSize = 8000
	}
	if opts.MaxProcesses <= 0 {
		opts.MaxProcesses = opts.CoreSize
	}
	rnd := opts.Rand
	if rnd == nil {
		if opts.Randomize {
			rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
		} else {
			rnd = rand.New(rand.NewSource(0))
		}
	}

	m := &MARS{
		Core:              NewCore(opts.CoreSize, opts.ReadLimit, opts.WriteLimit),
		MinimumSeparation: opts.MinimumSeparation,
		MaxProcesses:      opts.MaxProcesses,
		rnd:               rnd,
		observer:          NopObserver{},
	}
	m.Warriors = make([]*Warrior, len(warriors))
	for i, w := range warriors {
		m.Warriors[i] = &Warrior{
			ID:           i,
			Name:         w.Name,
			Author:       w.Author,
			Strategy:     w.Strategy,
			Instructions: w.Instructions,
			Start:        w.Start,
			Labels:       w.Labels,
			SourceMap:    w.SourceMap,
		}
	}
	m.Load(opts.Randomize)
	return m
}

// Load places every warrior into the core at equally spaced spans, with
// a random offset (bounded so the warrior and its minimum-separation gap
// both fit in its span) when randomize is true. Each warrior's task
// queue is reset to hold exactly one process: position+start.
func (m *MARS) Load(randomize bool) {
	n := len(m.Warriors)
	if n == 0 {
		return
	}
	size := m.Core.Len()
	span := size / n

	for i, w := range m.Warriors {
		position := i * span
		if randomize {
			bound := span - w.Len() - m.MinimumSeparation
			if bound < 0 {
				bound = 0
			}
			if bound > 0 {
				position += m.rnd.Intn(bound + 1)
			}
		}
		w.Position = position
		for j, instr := range w.Instructions {
			// Fields are reduced modulo core size on load; the assembler
			// itself leaves them as plain evaluated integers.
			instr.ANumber = m.Core.Trim(instr.ANumber)
			instr.BNumber = m.Core.Trim(instr.BNumber)
			m.Core.Write(position+j, instr)
		}
		w.TaskQueue = []int{m.Core.Trim(position + w.Start)}
	}
}

// enqueue appends addr (trimmed to core bounds) to warrior's task queue,
// silently dropping it if the queue is already at MaxProcesses.
func (m *MARS) enqueue(w *Warrior, addr int) {
	if len(w.TaskQueue) < m.MaxProcesses {
		w.TaskQueue = append(w.TaskQueue, m.Core.Trim(addr))
	}
}

// Step runs one simulation step: every warrior with a non-empty task
// queue executes exactly one task, in warrior order.
func (m *MARS) Step() error {
	for _, w := range m.Warriors {
		if !w.Alive() {
			continue
		}
		pc := w.popTask()
		if err := m.execute(w, pc); err != nil {
			return err
		}
	}
	return nil
}

// ActiveWarriors returns the number of warriors with at least one live
// process.
func (m *MARS) ActiveWarriors() int {
	n := 0
	for _, w := range m.Warriors {
		if w.Alive() {
			n++
		}
	}
	return n
}
