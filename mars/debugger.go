// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import "sort"

// A Breakpoint stops execution when the program counter reaches it.
type Breakpoint struct {
	Address  int
	Disabled bool
}

// A DataBreakpoint stops execution when a value is stored to its
// address. If Conditional, it only triggers when the stored value
// matches Value: the B-field after a B-field write, the A-field after
// any other write.
type DataBreakpoint struct {
	Address     int
	Disabled    bool
	Conditional bool
	Value       int
}

// BreakpointHandler receives notifications when the Debugger's
// breakpoints trigger.
type BreakpointHandler interface {
	OnBreakpoint(m *MARS, w *Warrior, b *Breakpoint)
	OnDataBreakpoint(m *MARS, w *Warrior, b *DataBreakpoint)
}

// Debugger is an Observer that layers address and data breakpoints on
// top of the plain event stream: the same attach/detach pattern as
// go6502's cpu.Debugger, generalized from a single CPU's program
// counter to (warrior, core address) pairs.
type Debugger struct {
	handler         BreakpointHandler
	breakpoints     map[int]*Breakpoint
	dataBreakpoints map[int]*DataBreakpoint
	mars            *MARS
}

// NewDebugger creates a debugger watching m's core and reporting to
// handler.
func NewDebugger(m *MARS, handler BreakpointHandler) *Debugger {
	return &Debugger{
		handler:         handler,
		breakpoints:     make(map[int]*Breakpoint),
		dataBreakpoints: make(map[int]*DataBreakpoint),
		mars:            m,
	}
}

// OnEvent implements Observer. EXECUTED events are checked against
// address breakpoints; the write events are checked against data
// breakpoints.
func (d *Debugger) OnEvent(w *Warrior, address int, kind EventKind) {
	switch kind {
	case EXECUTED:
		if b, ok := d.breakpoints[address]; ok && !b.Disabled {
			d.handler.OnBreakpoint(d.mars, w, b)
		}
	case AWrite, BWrite, IWrite, AArith, BArith:
		b, ok := d.dataBreakpoints[address]
		if !ok || b.Disabled {
			return
		}
		if b.Conditional && !d.matchesValue(address, kind, b.Value) {
			return
		}
		d.handler.OnDataBreakpoint(d.mars, w, b)
	}
}

// matchesValue reports whether the field written by kind currently
// holds value, used to gate conditional data breakpoints.
func (d *Debugger) matchesValue(address int, kind EventKind, value int) bool {
	instr := d.mars.Core.Read(address)
	switch kind {
	case BWrite, BArith:
		return instr.BNumber == value
	default:
		return instr.ANumber == value
	}
}

type byBPAddr []*Breakpoint

func (a byBPAddr) Len() int           { return len(a) }
func (a byBPAddr) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byBPAddr) Less(i, j int) bool { return a[i].Address < a[j].Address }

// GetBreakpoint looks up a breakpoint by address.
func (d *Debugger) GetBreakpoint(addr int) *Breakpoint {
	return d.breakpoints[addr]
}

// GetBreakpoints returns all breakpoints, sorted by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	var bs []*Breakpoint
	for _, b := range d.breakpoints {
		bs = append(bs, b)
	}
	sort.Sort(byBPAddr(bs))
	return bs
}

// AddBreakpoint adds (or replaces) a breakpoint at addr.
func (d *Debugger) AddBreakpoint(addr int) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint removes the breakpoint at addr, if any.
func (d *Debugger) RemoveBreakpoint(addr int) {
	delete(d.breakpoints, addr)
}

type byDBPAddr []*DataBreakpoint

func (a byDBPAddr) Len() int           { return len(a) }
func (a byDBPAddr) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byDBPAddr) Less(i, j int) bool { return a[i].Address < a[j].Address }

// GetDataBreakpoint looks up a data breakpoint by address.
func (d *Debugger) GetDataBreakpoint(addr int) *DataBreakpoint {
	return d.dataBreakpoints[addr]
}

// GetDataBreakpoints returns all data breakpoints, sorted by address.
func (d *Debugger) GetDataBreakpoints() []*DataBreakpoint {
	var bs []*DataBreakpoint
	for _, b := range d.dataBreakpoints {
		bs = append(bs, b)
	}
	sort.Sort(byDBPAddr(bs))
	return bs
}

// AddDataBreakpoint adds an unconditional data breakpoint at addr.
func (d *Debugger) AddDataBreakpoint(addr int) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr}
	d.dataBreakpoints[addr] = b
	return b
}

// AddConditionalDataBreakpoint adds a data breakpoint that only
// triggers when the value stored matches value.
func (d *Debugger) AddConditionalDataBreakpoint(addr, value int) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr, Conditional: true, Value: value}
	d.dataBreakpoints[addr] = b
	return b
}

// RemoveDataBreakpoint removes the data breakpoint at addr, if any.
func (d *Debugger) RemoveDataBreakpoint(addr int) {
	delete(d.dataBreakpoints, addr)
}
