//
// label.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire holds the two messages of one base OT.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%s", w.L0, w.L1)
}

// Label implements a 128 bit OT message. Bit 0 is the most
// significant bit of D0.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains label data as byte array.
type LabelData [16]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal test if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewLabel creates a new random label.
func NewLabel(rand io.Reader) (Label, error) {
	var buf LabelData
	var label Label

	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return label, err
	}
	label.SetData(&buf)
	return label, nil
}

// Bit returns the label's bit i, 0 <= i < 128.
func (l Label) Bit(i int) uint {
	if i < 64 {
		return uint(l.D0>>(63-i)) & 1
	}
	return uint(l.D1>>(127-i)) & 1
}

// SetBit sets the label's bit i to v.
func (l *Label) SetBit(i int, v uint) {
	if i < 64 {
		mask := uint64(1) << (63 - i)
		if v != 0 {
			l.D0 |= mask
		} else {
			l.D0 &^= mask
		}
	} else {
		mask := uint64(1) << (127 - i)
		if v != 0 {
			l.D1 |= mask
		} else {
			l.D1 &^= mask
		}
	}
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// GetData gets the labels as label data.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the labels from label data.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64((*data)[0:8])
	l.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the label data as bytes.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label data from bytes.
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}
