//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/gmw"
)

// CountThreshold is the Count benchmark threshold.
const CountThreshold = 50

// SignThreshold is the smallest negative value in two's complement.
const SignThreshold = 0x80

func unsimdify(s *gmw.Share, err error) ([]*gmw.Share, error) {
	if err != nil {
		return nil, err
	}
	elems, err := s.Unsimdify()
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, errors.Mark(errors.New("empty decomposition"), ErrUsage)
	}
	return elems, nil
}

// Sum returns the share of the sum of all elements of both parties'
// vectors modulo 256.
func Sum(e Engine, local []uint8) (*gmw.Share, error) {
	d, err := Distribute(e, local)
	if err != nil {
		return nil, err
	}
	elems, err := unsimdify(d.Combine())
	if err != nil {
		return nil, err
	}
	return Fold(elems, e.Add)
}

// Count returns the share of the number of elements of the combined
// vector that are greater than threshold.
func Count(e Engine, local []uint8, threshold uint8) (*gmw.Share, error) {
	d, err := Distribute(e, local)
	if err != nil {
		return nil, err
	}
	combined, err := d.Combine()
	if err != nil {
		return nil, err
	}
	elems, err := unsimdify(combined, nil)
	if err != nil {
		return nil, err
	}
	thElems, err := unsimdify(Constant(e, threshold, len(local)))
	if err != nil {
		return nil, err
	}
	count, err := Constant(e, 0, 1)
	if err != nil {
		return nil, err
	}
	one, err := Constant(e, 1, 1)
	if err != nil {
		return nil, err
	}

	terms := []*gmw.Share{count}
	for i := range elems {
		gt, err := e.Gt(elems[i], thElems[i])
		if err != nil {
			return nil, err
		}
		term, err := e.Mul(gt, one)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return Fold(terms, e.Add)
}

// ReLU returns the share of the sum of max(0, x) over the combined
// vector. The elements are signed 8-bit values in two's complement.
func ReLU(e Engine, local []uint8) (*gmw.Share, error) {
	d, err := Distribute(e, local)
	if err != nil {
		return nil, err
	}
	elems, err := unsimdify(d.Combine())
	if err != nil {
		return nil, err
	}
	signs, err := unsimdify(Constant(e, SignThreshold, len(local)))
	if err != nil {
		return nil, err
	}

	var terms []*gmw.Share
	for i := range elems {
		// Non-negative values are below 0x80.
		nonNegative, err := e.Gt(signs[i], elems[i])
		if err != nil {
			return nil, err
		}
		term, err := e.Mul(nonNegative, elems[i])
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return Fold(terms, e.Add)
}

// Billionaire compares the parties' total wealth cash+property+stock
// elementwise and returns the share of the number of comparisons
// either party won. Ties count for neither.
func Billionaire(e Engine, cash, property, stock []uint8) (*gmw.Share, error) {
	if len(cash) == 0 {
		return nil, errors.Mark(errors.New("empty input vector"), ErrUsage)
	}
	if len(property) != len(cash) || len(stock) != len(cash) {
		return nil, errors.Mark(
			errors.Newf("input length mismatch: %d, %d, %d",
				len(cash), len(property), len(stock)), ErrUsage)
	}

	var totals [2]*gmw.Share
	for owner := 0; owner < 2; owner++ {
		var parts []*gmw.Share
		for _, v := range [][]uint8{cash, property, stock} {
			s, err := share(e, v, owner)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		total, err := Fold(parts, e.Add)
		if err != nil {
			return nil, err
		}
		totals[owner] = total
	}

	p0Richer, err := e.Gt(totals[0], totals[1])
	if err != nil {
		return nil, err
	}
	p1Richer, err := e.Gt(totals[1], totals[0])
	if err != nil {
		return nil, err
	}
	one, err := Constant(e, 1, len(cash))
	if err != nil {
		return nil, err
	}

	var wins [2]*gmw.Share
	for i, richer := range []*gmw.Share{p0Richer, p1Richer} {
		elems, err := unsimdify(e.Mul(richer, one))
		if err != nil {
			return nil, err
		}
		wins[i], err = Fold(elems, e.Add)
		if err != nil {
			return nil, err
		}
	}
	return e.Add(wins[0], wins[1])
}
