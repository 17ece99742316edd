//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"github.com/cockroachdb/errors"
)

// Bits defines the bit width of the arithmetic ring Z/2^Bits.
const Bits = 8

type op int

const (
	opIn op = iota
	opAdd
	opMul
	opSlice
	opBit
	opXor
	opNot
	opAnd
	opLift
	opB2A
)

var opNames = map[op]string{
	opIn:    "in",
	opAdd:   "add",
	opMul:   "mul",
	opSlice: "slice",
	opBit:   "bit",
	opXor:   "xor",
	opNot:   "not",
	opAnd:   "and",
	opLift:  "lift",
	opB2A:   "b2a",
}

func (o op) String() string {
	return opNames[o]
}

// interactive tests if the operation needs a communication round.
func (o op) interactive() bool {
	return o == opMul || o == opAnd
}

type gate struct {
	op    op
	kind  Kind
	width int
	in    []int
	// Input owner for opIn, contributing party for opBit and opLift.
	party int
	// Element index for opSlice, bit position for opBit.
	index  int
	values []uint8
	level  int
	value  []uint8
}

func (p *Party) addGate(g *gate) *Share {
	for _, in := range g.in {
		l := p.gates[in].level
		if g.op.interactive() {
			l++
		}
		if l > g.level {
			g.level = l
		}
	}
	id := len(p.gates)
	p.gates = append(p.gates, g)
	return &Share{
		p:     p,
		gate:  id,
		kind:  g.kind,
		width: g.width,
	}
}

// In creates an arithmetic input share of values contributed by the
// owner party. Both parties must call In the same number of times in
// the same order. The non-owner's values are ignored but their length
// defines the width of the share and must match the owner's values.
func (p *Party) In(values []uint8, owner int) (*Share, error) {
	if err := p.checkComposing(); err != nil {
		return nil, err
	}
	if owner < 0 || owner >= 2 {
		return nil, errors.Mark(
			errors.Newf("invalid input owner %d", owner), ErrUsage)
	}
	g := &gate{
		op:    opIn,
		kind:  Arithmetic,
		width: len(values),
		party: owner,
	}
	if owner == p.id {
		g.values = append([]uint8(nil), values...)
	}
	return p.addGate(g), nil
}

// Add adds the shares elementwise. Arithmetic shares are added in
// Z/2^8 and boolean shares in Z/2.
func (p *Party) Add(a, b *Share) (*Share, error) {
	if err := p.checkShares("add", a, b); err != nil {
		return nil, err
	}
	if a.kind != b.kind {
		return nil, errors.Mark(
			errors.Newf("add: kind mismatch: %v != %v", a.kind, b.kind),
			ErrUsage)
	}
	if a.kind == Boolean {
		return p.xor(a, b), nil
	}
	return p.binary(opAdd, Arithmetic, a, b), nil
}

// Mul multiplies the shares elementwise. The arguments are either
// both arithmetic, or one boolean and one arithmetic share. In the
// latter case the result is the arithmetic value when the bit is set
// and zero otherwise.
func (p *Party) Mul(a, b *Share) (*Share, error) {
	if err := p.checkShares("mul", a, b); err != nil {
		return nil, err
	}
	switch {
	case a.kind == Arithmetic && b.kind == Arithmetic:
		return p.binary(opMul, Arithmetic, a, b), nil

	case a.kind == Boolean && b.kind == Arithmetic:
		return p.binary(opMul, Arithmetic, p.b2a(a), b), nil

	case a.kind == Arithmetic && b.kind == Boolean:
		return p.binary(opMul, Arithmetic, a, p.b2a(b)), nil

	default:
		return nil, errors.Mark(
			errors.Newf("mul: unsupported kinds %v*%v", a.kind, b.kind),
			ErrUsage)
	}
}

// Gt compares the arithmetic shares elementwise as unsigned 8-bit
// integers and returns the boolean share of a > b.
func (p *Party) Gt(a, b *Share) (*Share, error) {
	if err := p.checkShares("gt", a, b); err != nil {
		return nil, err
	}
	if a.kind != Arithmetic || b.kind != Arithmetic {
		return nil, errors.Mark(
			errors.Newf("gt: unsupported kinds %v>%v", a.kind, b.kind),
			ErrUsage)
	}
	x := p.a2b(a)
	y := p.a2b(b)

	// a > b iff a + ^b overflows. The carry chain starts with c0 = 0.
	var c *Share
	for i := 0; i < Bits; i++ {
		ny := p.not(y[i])
		if c == nil {
			c = p.and(x[i], ny)
		} else {
			c = p.xor(p.and(p.xor(x[i], c), p.xor(ny, c)), c)
		}
	}
	return c, nil
}

// a2b converts the arithmetic share into its boolean bit shares, LSB
// first. Each party's additive share is the XOR sharing of a
// plaintext operand so the bits are the sum of the two operands
// computed with a ripple-carry adder.
func (p *Party) a2b(s *Share) [Bits]*Share {
	var result [Bits]*Share
	var c *Share

	for i := 0; i < Bits; i++ {
		a := p.bit(s, i, 0)
		b := p.bit(s, i, 1)

		if c == nil {
			result[i] = p.xor(a, b)
			c = p.and(a, b)
			continue
		}
		result[i] = p.xor(p.xor(a, b), c)
		if i+1 < Bits {
			c = p.xor(p.and(p.xor(a, c), p.xor(b, c)), c)
		}
	}
	return result
}

// b2a converts the boolean share into an arithmetic share: with
// x = b⁰ and y = b¹ lifted into Z/2^8, b = x + y - 2xy.
func (p *Party) b2a(s *Share) *Share {
	x := p.lift(s, 0)
	y := p.lift(s, 1)
	xy := p.binary(opMul, Arithmetic, x, y)

	return p.addGate(&gate{
		op:    opB2A,
		kind:  Arithmetic,
		width: s.width,
		in:    []int{x.gate, y.gate, xy.gate},
	})
}

func (p *Party) binary(o op, kind Kind, a, b *Share) *Share {
	return p.addGate(&gate{
		op:    o,
		kind:  kind,
		width: a.width,
		in:    []int{a.gate, b.gate},
	})
}

func (p *Party) xor(a, b *Share) *Share {
	return p.binary(opXor, Boolean, a, b)
}

func (p *Party) and(a, b *Share) *Share {
	return p.binary(opAnd, Boolean, a, b)
}

func (p *Party) not(a *Share) *Share {
	return p.addGate(&gate{
		op:    opNot,
		kind:  Boolean,
		width: a.width,
		in:    []int{a.gate},
	})
}

// bit returns the boolean share of bit i of the party's additive
// share. The party contributes its share bit and the peer zero.
func (p *Party) bit(s *Share, i, party int) *Share {
	return p.addGate(&gate{
		op:    opBit,
		kind:  Boolean,
		width: s.width,
		in:    []int{s.gate},
		party: party,
		index: i,
	})
}

// lift returns the arithmetic share of the party's XOR share bit.
func (p *Party) lift(s *Share, party int) *Share {
	return p.addGate(&gate{
		op:    opLift,
		kind:  Arithmetic,
		width: s.width,
		in:    []int{s.gate},
		party: party,
	})
}
