//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/gmw"
	"github.com/markkurossi/mpcbench/input"
)

// Operation defines the benchmark operations.
type Operation int

// Benchmark operations.
const (
	OpSum Operation = iota
	OpCount
	OpReLU
	OpBillionaire
)

var operationNames = map[Operation]string{
	OpSum:         "Sum",
	OpCount:       "Count",
	OpReLU:        "ReLU",
	OpBillionaire: "Billionaire",
}

func (op Operation) String() string {
	name, ok := operationNames[op]
	if ok {
		return name
	}
	return fmt.Sprintf("{Operation %d}", op)
}

// ParseOperation parses the operation name case-insensitively.
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if strings.EqualFold(n, name) {
			return op, nil
		}
	}
	return 0, errors.Newf("invalid operation %q: use: sum, count, relu, "+
		"billionaire", name)
}

// Inputs generates the party's plaintext input vectors for the
// operation. ReLU values are in two's complement.
func (op Operation) Inputs(size, party int) [][]uint8 {
	switch op {
	case OpSum:
		return [][]uint8{input.Unsigned(size, party, 1, 100)}

	case OpCount:
		return [][]uint8{input.Unsigned(size, party, 0, 100)}

	case OpReLU:
		return [][]uint8{input.Bytes(input.Signed(size, party, -50, 50))}

	case OpBillionaire:
		return [][]uint8{
			input.Unsigned(size, party, 10, 100),
			input.Unsigned(size, party, 10, 100),
			input.Unsigned(size, party, 10, 100),
		}

	default:
		panic(fmt.Sprintf("invalid operation %d", op))
	}
}

// Build composes the operation's circuit from the party's inputs and
// returns the share of the scalar result.
func (op Operation) Build(e Engine, inputs [][]uint8) (*gmw.Share, error) {
	expected := 1
	if op == OpBillionaire {
		expected = 3
	}
	if len(inputs) != expected {
		return nil, errors.Mark(
			errors.Newf("%v: expected %d input vectors, got %d",
				op, expected, len(inputs)), ErrUsage)
	}
	switch op {
	case OpSum:
		return Sum(e, inputs[0])

	case OpCount:
		return Count(e, inputs[0], CountThreshold)

	case OpReLU:
		return ReLU(e, inputs[0])

	case OpBillionaire:
		return Billionaire(e, inputs[0], inputs[1], inputs[2])

	default:
		return nil, errors.Mark(errors.Newf("invalid operation %d", op),
			ErrUsage)
	}
}

// Reference computes the operation's result in plaintext from both
// parties' inputs.
func (op Operation) Reference(p0, p1 [][]uint8) uint8 {
	var result uint8

	switch op {
	case OpSum:
		for i := range p0[0] {
			result += p0[0][i] + p1[0][i]
		}

	case OpCount:
		for i := range p0[0] {
			if p0[0][i]+p1[0][i] > CountThreshold {
				result++
			}
		}

	case OpReLU:
		for i := range p0[0] {
			v := p0[0][i] + p1[0][i]
			if v < SignThreshold {
				result += v
			}
		}

	case OpBillionaire:
		for i := range p0[0] {
			a := p0[0][i] + p0[1][i] + p0[2][i]
			b := p1[0][i] + p1[1][i] + p1[2][i]
			if a != b {
				result++
			}
		}
	}
	return result
}

// Local computes the party's local plaintext reference value from
// its own inputs. The boolean result is false if the operation has no
// local reference.
func (op Operation) Local(inputs [][]uint8) (int, bool) {
	var result int

	switch op {
	case OpSum:
		for _, v := range inputs[0] {
			result += int(v)
		}

	case OpCount:
		for _, v := range inputs[0] {
			if v > CountThreshold {
				result++
			}
		}

	case OpReLU:
		for _, v := range inputs[0] {
			if int8(v) > 0 {
				result += int(int8(v))
			}
		}

	default:
		return 0, false
	}
	return result, true
}

// Format formats the result value. ReLU results are signed.
func (op Operation) Format(v uint8) string {
	if op == OpReLU {
		return strconv.Itoa(int(int8(v)))
	}
	return strconv.Itoa(int(v))
}
