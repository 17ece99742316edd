//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/ot"
)

// triples holds this party's shares of Beaver triples c = a*b. For
// AND triples the elements are bits.
type triples struct {
	a   []uint8
	b   []uint8
	c   []uint8
	ofs int
}

func (t *triples) take(n int) (a, b, c []uint8, err error) {
	if t.ofs+n > len(t.c) {
		return nil, nil, nil, errors.Newf("out of triples: %d+%d > %d",
			t.ofs, n, len(t.c))
	}
	a = t.a[t.ofs : t.ofs+n]
	b = t.b[t.ofs : t.ofs+n]
	c = t.c[t.ofs : t.ofs+n]
	t.ofs += n
	return
}

// setupOT creates the IKNP OT extensions in both directions. In the
// first instance party 0 is the sender and in the second party 1.
func (p *Party) setupOT() error {
	rand := p.config.GetRandom()

	return p.exchange(func() error {
		s, err := ot.NewIKNPSender(ot.NewCO(rand), p.conn, rand)
		if err != nil {
			return err
		}
		p.otSender = s
		return nil
	}, func() error {
		r, err := ot.NewIKNPReceiver(ot.NewCO(rand), p.conn, rand)
		if err != nil {
			return err
		}
		p.otReceiver = r
		return nil
	})
}

// preprocess generates numArith arithmetic and numAND boolean Beaver
// triples. The cross terms of the products are computed with OT: an
// arithmetic cross term x*y takes one OT per bit of x (Gilboa) and a
// boolean cross term one OT.
func (p *Party) preprocess(timer *phaseTimer, numArith, numAND int) error {
	if numArith+numAND == 0 {
		return nil
	}
	if err := p.setupOT(); err != nil {
		return errors.Wrap(err, "OT setup")
	}
	timer.end(PhaseBaseOT)

	rand := p.config.GetRandom()

	arith := triples{
		a: make([]uint8, numArith),
		b: make([]uint8, numArith),
		c: make([]uint8, numArith),
	}
	and := triples{
		a: make([]uint8, numAND),
		b: make([]uint8, numAND),
		c: make([]uint8, numAND),
	}
	for _, buf := range [][]uint8{arith.a, arith.b, and.a, and.b} {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return err
		}
	}
	for i := 0; i < numAND; i++ {
		and.a[i] &= 1
		and.b[i] &= 1
	}

	n := Bits*numArith + numAND
	pad := make([]byte, n)
	if _, err := io.ReadFull(rand, pad); err != nil {
		return err
	}
	m0 := make([]byte, n)
	m1 := make([]byte, n)
	flags := make([]bool, n)
	result := make([]byte, n)

	// As the sender we offer (s, s+b·2^i) and keep -s. As the
	// receiver we select with the bits of a.
	for k := 0; k < numArith; k++ {
		for i := 0; i < Bits; i++ {
			idx := k*Bits + i
			s := pad[idx]
			m0[idx] = s
			m1[idx] = s + arith.b[k]<<i
			arith.c[k] -= s

			flags[idx] = (arith.a[k]>>i)&1 == 1
		}
	}
	for k := 0; k < numAND; k++ {
		idx := Bits*numArith + k
		s := pad[idx] & 1
		m0[idx] = s
		m1[idx] = s ^ and.b[k]
		and.c[k] ^= s

		flags[idx] = and.a[k] == 1
	}

	err := p.exchange(func() error {
		return p.otSender.Send(m0, m1)
	}, func() error {
		return p.otReceiver.Receive(flags, result)
	})
	if err != nil {
		return errors.Wrap(err, "OT extension")
	}
	timer.end(PhaseOTExtension)

	for k := 0; k < numArith; k++ {
		c := arith.a[k]*arith.b[k] + arith.c[k]
		for i := 0; i < Bits; i++ {
			c += result[k*Bits+i]
		}
		arith.c[k] = c
	}
	for k := 0; k < numAND; k++ {
		and.c[k] ^= (and.a[k] & and.b[k]) ^ (result[Bits*numArith+k] & 1)
	}
	p.arithTriples = arith
	p.andTriples = and
	p.stats.OTs = 2 * n

	timer.end(PhaseTriples)

	return nil
}
