// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"
)

// exprOp identifies an operator or value kind within an expression tree.
// Redcode expressions are a small subset of go6502's grammar: no bitwise
// or shift operators, no string or character literals, no hex/binary
// number prefixes, and no "here" ($ as a program-counter operator) since the
// mode-prefix '$' is stripped by the instruction parser before the operand
// ever reaches the expression parser.
type exprOp byte

const (
	// unary operations (0..1)
	opUnaryMinus exprOp = iota
	opUnaryPlus

	// binary operations (2..6), descending precedence
	opMultiply
	opDivide
	opModulo
	opAdd
	opSubtract

	// value "operations"
	opNumber
	opIdentifier

	// pseudo-operations, used only during parsing
	opLeftParen
	opRightParen
)

type opdata struct {
	precedence      byte
	children        int
	leftAssociative bool
	symbol          string
	eval            func(a, b int) (int, error)
}

func (o *opdata) isBinary() bool { return o.children == 2 }
func (o *opdata) isUnary() bool  { return o.children == 1 }

var ops = []opdata{
	{4, 1, false, "-", func(a, b int) (int, error) { return -a, nil }},
	{4, 1, false, "+", func(a, b int) (int, error) { return a, nil }},

	{3, 2, true, "*", func(a, b int) (int, error) { return a * b, nil }},
	{3, 2, true, "/", func(a, b int) (int, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a / b, nil
	}},
	{3, 2, true, "%", func(a, b int) (int, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a % b, nil
	}},
	{2, 2, true, "+", func(a, b int) (int, error) { return a + b, nil }},
	{2, 2, true, "-", func(a, b int) (int, error) { return a - b, nil }},

	{0, 0, false, "", nil}, // numeric literal
	{0, 0, false, "", nil}, // identifier

	{0, 0, false, "", nil}, // lparen
	{0, 0, false, "", nil}, // rparen
}

func (op exprOp) isBinary() bool      { return ops[op].isBinary() }
func (op exprOp) symbol() string      { return ops[op].symbol }
func (op exprOp) isCollapsible() bool { return ops[op].precedence > 0 }

func (op exprOp) eval(a, b int) (int, error) {
	return ops[op].eval(a, b)
}

// collapses reports whether the shunting-yard algorithm should pop and
// reduce 'other' before pushing 'op'.
func (op exprOp) collapses(other exprOp) bool {
	if ops[op].leftAssociative {
		return ops[op].precedence <= ops[other].precedence
	}
	return ops[op].precedence < ops[other].precedence
}

// An expr is a single node of a parsed expression tree. The tree is built
// once by exprParser.parse and evaluated once, against a symbol environment
// that is already fully resolved: Redcode has no forward-reference deferred
// evaluation. EQU constants are bound immediately, and by the time an
// instruction's operand expressions are evaluated every label in the
// program has a known, address-relative value.
type expr struct {
	line       fstring
	op         exprOp
	value      int
	identifier fstring
	child0     *expr
	child1     *expr
}

// eval resolves the expression tree to an integer, looking up identifiers in
// env. An identifier absent from env produces an ExpressionError.
func (e *expr) eval(env map[string]int) (int, error) {
	switch {
	case e.op == opNumber:
		return e.value, nil

	case e.op == opIdentifier:
		if v, ok := env[e.identifier.str]; ok {
			return v, nil
		}
		return 0, &Error{
			Kind: ExpressionError,
			Pos:  posOf(e.identifier),
			Msg:  "undefined symbol '" + e.identifier.str + "'",
		}

	case e.op.isBinary():
		a, err := e.child0.eval(env)
		if err != nil {
			return 0, err
		}
		b, err := e.child1.eval(env)
		if err != nil {
			return 0, err
		}
		v, err := e.op.eval(a, b)
		if err != nil {
			return 0, &Error{Kind: ExpressionError, Pos: posOf(e.line), Msg: err.Error()}
		}
		return v, nil

	default: // unary
		a, err := e.child0.eval(env)
		if err != nil {
			return 0, err
		}
		v, _ := e.op.eval(a, 0)
		return v, nil
	}
}

//
// token
//

type tokentype byte

const (
	tokenNil tokentype = iota
	tokenOp
	tokenNumber
	tokenIdentifier
	tokenLeftParen
	tokenRightParen
)

func (tt tokentype) isValue() bool {
	return tt == tokenNumber || tt == tokenIdentifier
}

func (tt tokentype) canPrecedeUnaryOp() bool {
	return tt == tokenOp || tt == tokenLeftParen || tt == tokenNil
}

type token struct {
	typ        tokentype
	value      int
	identifier fstring
	op         exprOp
}

//
// exprParser
//

type exprParser struct {
	operandStack  stack[*expr]
	operatorStack stack[exprOp]
	parenCounter  int
	prevTokenType tokentype
	errors        []asmerror
}

// parse parses an expression from the line until it is exhausted, using
// Dijkstra's shunting-yard algorithm. A token that cannot be part of an
// expression is a parse error, not the end of the expression.
func (p *exprParser) parse(line fstring) (e *expr, remain fstring, err error) {
	p.errors = nil
	p.prevTokenType = tokenNil
	orig := line

	for err == nil {
		var tok token
		tok, remain, err = p.parseToken(line)
		if err != nil {
			break
		}
		if tok.typ == tokenNil {
			break
		}

		switch tok.typ {
		case tokenNumber:
			p.operandStack.push(&expr{op: opNumber, value: tok.value, line: line})

		case tokenIdentifier:
			p.operandStack.push(&expr{op: opIdentifier, identifier: tok.identifier, line: line})

		case tokenOp:
			for err == nil && !p.operatorStack.empty() && tok.op.collapses(p.operatorStack.peek()) {
				err = collapse(&p.operandStack, p.operatorStack.pop())
				if err != nil {
					p.addError(line, "invalid expression")
				}
			}
			p.operatorStack.push(tok.op)

		case tokenLeftParen:
			p.operatorStack.push(opLeftParen)

		case tokenRightParen:
			for err == nil {
				if p.operatorStack.empty() {
					p.addError(line, "mismatched parentheses")
					err = errParse
					break
				}
				op := p.operatorStack.pop()
				if op == opLeftParen {
					break
				}
				err = collapse(&p.operandStack, op)
				if err != nil {
					p.addError(line, "invalid expression")
				}
			}
		}
		line = remain
	}

	for err == nil && !p.operatorStack.empty() {
		err = collapse(&p.operandStack, p.operatorStack.pop())
		if err != nil {
			p.addError(line, "invalid expression")
			err = errParse
		}
	}

	if err == nil {
		if p.operandStack.empty() {
			p.addError(orig, "expected expression")
			err = errParse
		} else {
			e = p.operandStack.peek()
			e.line = orig
		}
	}

	p.reset()
	return e, remain, err
}

func collapse(s *stack[*expr], op exprOp) error {
	switch {
	case !op.isCollapsible():
		return errParse

	case op.isBinary():
		if len(s.data) < 2 {
			return errParse
		}
		e := &expr{op: op, child1: s.pop(), child0: s.pop()}
		s.push(e)
		return nil

	default:
		if s.empty() {
			return errParse
		}
		e := &expr{op: op, child0: s.pop()}
		s.push(e)
		return nil
	}
}

func (p *exprParser) parseToken(line fstring) (t token, remain fstring, err error) {
	line = line.consumeWhitespace()
	if line.isEmpty() {
		return token{typ: tokenNil}, line, nil
	}

	switch {
	case line.startsWith(decimal):
		t.value, remain, err = p.parseNumber(line)
		t.typ = tokenNumber
		if p.prevTokenType.isValue() || p.prevTokenType == tokenRightParen {
			p.addError(line, "invalid numeric literal")
			err = errParse
		}

	case line.startsWithChar('('):
		p.parenCounter++
		t.typ, t.op, remain = tokenLeftParen, opLeftParen, line.consume(1)

	case line.startsWithChar(')'):
		if p.parenCounter == 0 {
			p.addError(line, "mismatched parentheses")
			err = errParse
			remain = line.consume(1)
		} else {
			p.parenCounter--
			t.typ, t.op, remain = tokenRightParen, opRightParen, line.consume(1)
		}

	case line.startsWith(identifierStartChar):
		t.typ = tokenIdentifier
		t.identifier, remain = line.consumeWhile(identifierChar)
		if p.prevTokenType.isValue() || p.prevTokenType == tokenRightParen {
			p.addError(line, "invalid identifier")
			err = errParse
		}

	default:
		for i, o := range ops {
			if o.children > 0 && line.startsWithString(o.symbol) {
				if o.isBinary() || (o.isUnary() && p.prevTokenType.canPrecedeUnaryOp()) {
					t.typ, t.op, remain = tokenOp, exprOp(i), line.consume(len(o.symbol))
					break
				}
			}
		}
		if t.typ != tokenOp {
			p.addError(line, "invalid token")
			err = errParse
		}
	}

	p.prevTokenType = t.typ
	remain = remain.consumeWhitespace()
	return t, remain, err
}

// parseNumber parses a decimal integer. Redcode source uses plain decimal
// literals only; there is no hex or binary notation. A leading unary minus
// is handled by the operator grammar, not here.
func (p *exprParser) parseNumber(line fstring) (value int, remain fstring, err error) {
	numstr, remain := line.consumeWhile(decimal)
	n, converr := strconv.Atoi(numstr.str)
	if converr != nil {
		p.addError(numstr, "invalid numeric literal")
		return 0, remain, errParse
	}
	return n, remain, nil
}

func (p *exprParser) addError(line fstring, msg string) {
	p.errors = append(p.errors, asmerror{line, msg})
}

func (p *exprParser) reset() {
	p.operandStack.data, p.operatorStack.data = nil, nil
	p.parenCounter = 0
}

//
// stack
//

type stack[T any] struct {
	data []T
}

func (s *stack[T]) push(value T) { s.data = append(s.data, value) }

func (s *stack[T]) pop() T {
	i := len(s.data) - 1
	value := s.data[i]
	s.data = s.data[:i]
	return value
}

func (s *stack[T]) empty() bool { return len(s.data) == 0 }

func (s *stack[T]) peek() T { return s.data[len(s.data)-1] }
