//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind defines the sharing type of a share.
type Kind int

// Share kinds.
const (
	Arithmetic Kind = iota
	Boolean
)

var kindNames = map[Kind]string{
	Arithmetic: "arith",
	Boolean:    "bool",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind %d}", k)
}

// Share is a handle to a batch of secret-shared values. Arithmetic
// shares hold elements of Z/2^8, boolean shares hold single bits.
type Share struct {
	p     *Party
	gate  int
	kind  Kind
	width int
}

func (s *Share) String() string {
	return fmt.Sprintf("%s[%d]@%d", s.kind, s.width, s.gate)
}

// Kind returns the share kind.
func (s *Share) Kind() Kind {
	return s.kind
}

// Width returns the number of values in the batch.
func (s *Share) Width() int {
	return s.width
}

// Unsimdify decomposes the batch share into its scalar shares in
// order.
func (s *Share) Unsimdify() ([]*Share, error) {
	if err := s.p.checkComposing(); err != nil {
		return nil, err
	}
	result := make([]*Share, s.width)
	for i := 0; i < s.width; i++ {
		result[i] = s.p.addGate(&gate{
			op:    opSlice,
			kind:  s.kind,
			width: 1,
			in:    []int{s.gate},
			index: i,
		})
	}
	return result, nil
}

func (p *Party) checkShares(op string, shares ...*Share) error {
	for _, s := range shares {
		if s == nil {
			return errors.Mark(errors.Newf("%s: nil share", op), ErrUsage)
		}
		if s.p != p {
			return errors.Mark(
				errors.Newf("%s: share %v belongs to another party", op, s),
				ErrUsage)
		}
		if s.width != shares[0].width {
			return errors.Mark(
				errors.Newf("%s: width mismatch: %d != %d",
					op, shares[0].width, s.width), ErrUsage)
		}
	}
	return p.checkComposing()
}
