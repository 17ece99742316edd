//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package input generates the deterministic plaintext input vectors
// of the benchmark parties.
package input

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// Seed returns the generator seed of the party.
func Seed(party int) uint32 {
	return uint32(1000 + party*12345)
}

// source is a deterministic byte source keyed by a party seed.
type source struct {
	c   *chacha20.Cipher
	buf [64]byte
	pos int
}

func newSource(party int) *source {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint32(key[:], Seed(party))

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &source{
		c:   c,
		pos: 64,
	}
}

func (s *source) next() byte {
	if s.pos >= len(s.buf) {
		for i := range s.buf {
			s.buf[i] = 0
		}
		s.c.XORKeyStream(s.buf[:], s.buf[:])
		s.pos = 0
	}
	b := s.buf[s.pos]
	s.pos++
	return b
}

// uniform returns a uniformly distributed value in [0...n[, 0 < n <= 256.
func (s *source) uniform(n int) int {
	if n == 256 {
		return int(s.next())
	}
	limit := 256 - 256%n
	for {
		b := int(s.next())
		if b < limit {
			return b % n
		}
	}
}

// Unsigned returns size values uniformly distributed in [min...max]
// for the party. The same (size, party) always produces the same
// vector.
func Unsigned(size, party int, min, max uint8) []uint8 {
	if min > max {
		panic(fmt.Sprintf("invalid range [%d...%d]", min, max))
	}
	src := newSource(party)
	n := int(max) - int(min) + 1

	result := make([]uint8, size)
	for i := range result {
		result[i] = min + uint8(src.uniform(n))
	}
	return result
}

// Signed returns size values uniformly distributed in [min...max] for
// the party.
func Signed(size, party int, min, max int8) []int8 {
	if min > max {
		panic(fmt.Sprintf("invalid range [%d...%d]", min, max))
	}
	src := newSource(party)
	n := int(max) - int(min) + 1

	result := make([]int8, size)
	for i := range result {
		result[i] = int8(int(min) + src.uniform(n))
	}
	return result
}

// Bytes returns the two's complement byte representation of the
// signed values.
func Bytes(values []int8) []uint8 {
	result := make([]uint8, len(values))
	for i, v := range values {
		result[i] = uint8(v)
	}
	return result
}
