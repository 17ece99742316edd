//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"testing"
)

func TestLabelBits(t *testing.T) {
	var label Label

	label.SetBit(0, 1)
	if label.D0 != 0x8000000000000000 {
		t.Fatalf("Failed to set bit 0: %v", label)
	}
	label.SetBit(127, 1)
	if label.D1 != 1 {
		t.Fatalf("Failed to set bit 127: %v", label)
	}
	for i := 0; i < K; i++ {
		expected := uint(0)
		if i == 0 || i == 127 {
			expected = 1
		}
		if label.Bit(i) != expected {
			t.Errorf("bit %d: got %v, expected %v", i, label.Bit(i), expected)
		}
	}
	label.SetBit(0, 0)
	if label.D0 != 0 {
		t.Fatalf("Failed to clear bit 0: %v", label)
	}
}

func TestTranspose(t *testing.T) {
	const rows = 10
	const w = (rows + 7) / 8

	buf := make([]byte, K*w)
	// Column i has bit j set when (i+j)%3 == 0.
	for i := 0; i < K; i++ {
		for j := 0; j < rows; j++ {
			if (i+j)%3 == 0 {
				buf[i*w+j/8] |= 1 << (j % 8)
			}
		}
	}
	labels := make([]Label, rows)
	transpose(labels, buf, w)

	for j := 0; j < rows; j++ {
		for i := 0; i < K; i++ {
			var expected uint
			if (i+j)%3 == 0 {
				expected = 1
			}
			if labels[j].Bit(i) != expected {
				t.Fatalf("row %d bit %d: got %v, expected %v",
					j, i, labels[j].Bit(i), expected)
			}
		}
	}
}
