//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Run evaluates the composed circuit with the peer and opens the
// outputs. Run must be called exactly once by both parties after
// they have composed identical circuits.
func (p *Party) Run() error {
	if p.state != stComposing {
		return errors.Mark(errors.New("Run already called"), ErrUsage)
	}
	p.state = stRun

	if err := p.run(); err != nil {
		if errors.Is(err, ErrUsage) {
			return err
		}
		return errors.Mark(errors.Wrapf(err, "%v: run", p), ErrEngine)
	}
	return nil
}

func (p *Party) run() error {
	var numArith, numAND, maxLevel int
	for _, g := range p.gates {
		switch g.op {
		case opMul:
			numArith += g.width
		case opAnd:
			numAND += g.width
		}
		if g.level > maxLevel {
			maxLevel = g.level
		}
	}
	p.stats.Gates = len(p.gates)
	p.stats.Rounds = maxLevel
	p.stats.ArithTriples = numArith
	p.stats.ANDTriples = numAND

	p.log.Debug().Int("gates", len(p.gates)).Int("rounds", maxLevel).
		Int("arith-triples", numArith).Int("and-triples", numAND).
		Msg("run")

	timer := p.newPhaseTimer()

	if err := p.preprocess(timer, numArith, numAND); err != nil {
		return err
	}

	if err := p.shareInputs(); err != nil {
		return err
	}

	// Schedule gates by level. The interactive gates of a level are
	// evaluated in one round before its local gates. Gate IDs are in
	// topological order.
	interactive := make([][]*gate, maxLevel+1)
	local := make([][]*gate, maxLevel+1)
	for _, g := range p.gates {
		if g.op == opIn {
			continue
		}
		if g.op.interactive() {
			interactive[g.level] = append(interactive[g.level], g)
		} else {
			local[g.level] = append(local[g.level], g)
		}
	}
	for level := 0; level <= maxLevel; level++ {
		if p.config.GetDebug() {
			p.log.Debug().Int("level", level).
				Int("interactive", len(interactive[level])).
				Int("local", len(local[level])).
				Msg("round")
		}
		if len(interactive[level]) > 0 {
			if err := p.round(interactive[level]); err != nil {
				return errors.Wrapf(err, "round %d", level)
			}
		}
		for _, g := range local[level] {
			p.evalLocal(g)
		}
	}
	timer.end(PhaseOnline)

	if err := p.openOutputs(); err != nil {
		return err
	}
	timer.end(PhaseOutput)

	return nil
}

// shareInputs shares the input gates. The owner of an input samples
// a random mask r and sends it to the peer together with the gate ID
// and width. The owner keeps v-r and the peer r.
func (p *Party) shareInputs() error {
	var own, peer []int
	for id, g := range p.gates {
		if g.op != opIn {
			continue
		}
		if g.party == p.id {
			own = append(own, id)
		} else {
			peer = append(peer, id)
		}
	}
	rand := p.config.GetRandom()

	return p.exchange(func() error {
		if err := p.conn.SendUint32(len(own)); err != nil {
			return err
		}
		for _, id := range own {
			g := p.gates[id]
			r := make([]uint8, g.width)
			if _, err := io.ReadFull(rand, r); err != nil {
				return err
			}
			if err := p.conn.SendUint32(id); err != nil {
				return err
			}
			if err := p.conn.SendUint32(g.width); err != nil {
				return err
			}
			if err := p.conn.SendData(r); err != nil {
				return err
			}
			g.value = make([]uint8, g.width)
			for i := 0; i < g.width; i++ {
				g.value[i] = g.values[i] - r[i]
			}
		}
		return p.conn.Flush()
	}, func() error {
		n, err := p.conn.ReceiveUint32()
		if err != nil {
			return err
		}
		if n != len(peer) {
			return errors.Newf("input count mismatch: peer has %d, "+
				"expected %d", n, len(peer))
		}
		for _, id := range peer {
			g := p.gates[id]
			tag, err := p.conn.ReceiveUint32()
			if err != nil {
				return err
			}
			width, err := p.conn.ReceiveUint32()
			if err != nil {
				return err
			}
			data, err := p.conn.ReceiveData()
			if err != nil {
				return err
			}
			if tag != id {
				return errors.Newf("input gate mismatch: got %d, expected %d",
					tag, id)
			}
			if width != g.width || len(data) != g.width {
				return errors.Newf("input %d width mismatch: got %d, "+
					"expected %d", id, width, g.width)
			}
			g.value = data
		}
		return nil
	})
}

// round evaluates the interactive gates of one level with Beaver
// triples. Both parties open d = x-a and e = y-b for all gates with
// one message and compute z = c + d·b + e·a + d·e where only party 0
// adds the public d·e term.
func (p *Party) round(gates []*gate) error {
	type pending struct {
		g       *gate
		a, b, c []uint8
	}
	var msg []byte
	var work []pending

	for _, g := range gates {
		x := p.gates[g.in[0]].value
		y := p.gates[g.in[1]].value

		var t *triples
		if g.op == opMul {
			t = &p.arithTriples
		} else {
			t = &p.andTriples
		}
		a, b, c, err := t.take(g.width)
		if err != nil {
			return err
		}
		for i := 0; i < g.width; i++ {
			if g.op == opMul {
				msg = append(msg, x[i]-a[i])
			} else {
				msg = append(msg, x[i]^a[i])
			}
		}
		for i := 0; i < g.width; i++ {
			if g.op == opMul {
				msg = append(msg, y[i]-b[i])
			} else {
				msg = append(msg, y[i]^b[i])
			}
		}
		work = append(work, pending{
			g: g,
			a: a,
			b: b,
			c: c,
		})
	}

	var peer []byte
	err := p.exchange(func() error {
		if err := p.conn.SendData(msg); err != nil {
			return err
		}
		return p.conn.Flush()
	}, func() error {
		var err error
		peer, err = p.conn.ReceiveData()
		return err
	})
	if err != nil {
		return err
	}
	if len(peer) != len(msg) {
		return errors.Newf("round message length mismatch: got %d, "+
			"expected %d", len(peer), len(msg))
	}

	var ofs int
	for _, w := range work {
		width := w.g.width
		z := make([]uint8, width)
		for i := 0; i < width; i++ {
			if w.g.op == opMul {
				d := msg[ofs+i] + peer[ofs+i]
				e := msg[ofs+width+i] + peer[ofs+width+i]
				z[i] = w.c[i] + d*w.b[i] + e*w.a[i]
				if p.id == 0 {
					z[i] += d * e
				}
			} else {
				d := msg[ofs+i] ^ peer[ofs+i]
				e := msg[ofs+width+i] ^ peer[ofs+width+i]
				z[i] = w.c[i] ^ (d & w.b[i]) ^ (e & w.a[i])
				if p.id == 0 {
					z[i] ^= d & e
				}
			}
		}
		w.g.value = z
		ofs += 2 * width
	}
	return nil
}

func (p *Party) evalLocal(g *gate) {
	x := p.gates[g.in[0]].value
	z := make([]uint8, g.width)

	switch g.op {
	case opAdd:
		y := p.gates[g.in[1]].value
		for i := range z {
			z[i] = x[i] + y[i]
		}

	case opXor:
		y := p.gates[g.in[1]].value
		for i := range z {
			z[i] = x[i] ^ y[i]
		}

	case opNot:
		copy(z, x)
		if p.id == 0 {
			for i := range z {
				z[i] ^= 1
			}
		}

	case opSlice:
		z[0] = x[g.index]

	case opBit:
		if p.id == g.party {
			for i := range z {
				z[i] = (x[i] >> g.index) & 1
			}
		}

	case opLift:
		if p.id == g.party {
			copy(z, x)
		}

	case opB2A:
		y := p.gates[g.in[1]].value
		xy := p.gates[g.in[2]].value
		for i := range z {
			z[i] = x[i] + y[i] - 2*xy[i]
		}

	default:
		panic("invalid local gate " + g.op.String())
	}
	g.value = z
}

// openOutputs exchanges the output shares and reconstructs the
// values.
func (p *Party) openOutputs() error {
	var peer [][]byte

	err := p.exchange(func() error {
		if err := p.conn.SendUint32(len(p.outputs)); err != nil {
			return err
		}
		for _, o := range p.outputs {
			if err := p.conn.SendData(p.gates[o.share.gate].value); err != nil {
				return err
			}
		}
		return p.conn.Flush()
	}, func() error {
		n, err := p.conn.ReceiveUint32()
		if err != nil {
			return err
		}
		if n != len(p.outputs) {
			return errors.Newf("output count mismatch: peer has %d, "+
				"expected %d", n, len(p.outputs))
		}
		for i := 0; i < n; i++ {
			data, err := p.conn.ReceiveData()
			if err != nil {
				return err
			}
			peer = append(peer, data)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "output")
	}

	for idx, o := range p.outputs {
		own := p.gates[o.share.gate].value
		if len(peer[idx]) != len(own) {
			return errors.Newf("output %d width mismatch: got %d, "+
				"expected %d", idx, len(peer[idx]), len(own))
		}
		o.value = make([]uint8, len(own))
		for i := range own {
			if o.share.kind == Boolean {
				o.value[i] = own[i] ^ peer[idx][i]
			} else {
				o.value[i] = own[i] + peer[idx][i]
			}
		}
		o.opened = true
	}
	return nil
}
