//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit builds the benchmark circuits over secret-shared
// vectors and reports their timing.
package circuit

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/gmw"
	"github.com/markkurossi/mpcbench/p2p"
)

// ErrUsage marks circuit construction errors such as empty inputs.
var ErrUsage = errors.New("usage error")

// Engine defines the secure-computation engine operations the
// circuit builders use.
type Engine interface {
	// ID returns the party ordinal.
	ID() int

	// In creates a share of the values contributed by the owner
	// party. Both parties must call In the same number of times in
	// the same order.
	In(values []uint8, owner int) (*gmw.Share, error)

	// Add adds the shares elementwise.
	Add(a, b *gmw.Share) (*gmw.Share, error)

	// Mul multiplies the shares elementwise.
	Mul(a, b *gmw.Share) (*gmw.Share, error)

	// Gt compares the shares elementwise and returns a boolean share.
	Gt(a, b *gmw.Share) (*gmw.Share, error)
}

var _ Engine = &gmw.Party{}

// Distributed holds the shares of one input vector contributed by
// each party.
type Distributed struct {
	Shares [p2p.NumParties]*gmw.Share
	e      Engine
}

// Distribute shares the local vector. In is called once per
// contributing party in ordinal order: this party supplies its
// values when it is the contributor and a zero vector of the same
// length otherwise.
func Distribute(e Engine, local []uint8) (*Distributed, error) {
	if len(local) == 0 {
		return nil, errors.Mark(errors.New("empty input vector"), ErrUsage)
	}
	result := &Distributed{
		e: e,
	}
	for owner := 0; owner < p2p.NumParties; owner++ {
		s, err := share(e, local, owner)
		if err != nil {
			return nil, err
		}
		result.Shares[owner] = s
	}
	return result, nil
}

// Combine adds the parties' shares elementwise.
func (d *Distributed) Combine() (*gmw.Share, error) {
	return d.e.Add(d.Shares[0], d.Shares[1])
}

// share creates the input share for the owner. The placeholder zero
// vector is the additive identity.
func share(e Engine, local []uint8, owner int) (*gmw.Share, error) {
	if e.ID() == owner {
		return e.In(local, owner)
	}
	return e.In(make([]uint8, len(local)), owner)
}

// Constant shares the public value as a batch of width. Party 0
// contributes the value and party 1 zeros.
func Constant(e Engine, value uint8, width int) (*gmw.Share, error) {
	values := make([]uint8, width)
	if e.ID() == 0 {
		for i := range values {
			values[i] = value
		}
	}
	return e.In(values, 0)
}

// Fold reduces the scalar shares from left to right with op.
func Fold(elems []*gmw.Share,
	op func(a, b *gmw.Share) (*gmw.Share, error)) (*gmw.Share, error) {

	if len(elems) == 0 {
		return nil, errors.Mark(errors.New("fold of empty sequence"),
			ErrUsage)
	}
	result := elems[0]
	for _, elem := range elems[1:] {
		var err error
		result, err = op(result, elem)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
