//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"github.com/cockroachdb/errors"
)

// Output is a circuit output. Its value is opened to both parties
// at Run.
type Output struct {
	share  *Share
	value  []uint8
	opened bool
}

// Out designates the share as a circuit output.
func (p *Party) Out(s *Share) (*Output, error) {
	if err := p.checkShares("out", s); err != nil {
		return nil, err
	}
	o := &Output{
		share: s,
	}
	p.outputs = append(p.outputs, o)
	return o, nil
}

// Width returns the number of values in the output.
func (o *Output) Width() int {
	return o.share.width
}

// Value returns the opened plaintext values. Boolean outputs are 0
// or 1. Both parties get the same values.
func (o *Output) Value() ([]uint8, error) {
	if !o.opened {
		return nil, errors.Mark(errors.New("output not opened"), ErrUsage)
	}
	return o.value, nil
}
