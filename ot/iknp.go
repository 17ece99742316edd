//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

package ot

import (
	"crypto/cipher"
	"crypto/sha256"
	"hash"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// The number of transfers in a chunk.
	chunkRows = 1024

	// The number of bytes in one chunk column.
	chunkByteRows = chunkRows / 8
)

// IKNPSender implements the sender of the extended 1-out-of-2 byte
// OTs.
type IKNPSender struct {
	delta Label
	io    IO
	g     [K]cipher.Stream
	h     *padHash
	q     []Label
}

// NewIKNPSender creates a new sender. The base OT runs as the base
// receiver with the random selection Δ. The peer must call
// NewIKNPReceiver with the same base OT type.
func NewIKNPSender(base OT, io IO, r io.Reader) (*IKNPSender, error) {
	delta, err := NewLabel(r)
	if err != nil {
		return nil, err
	}
	s := &IKNPSender{
		delta: delta,
		io:    io,
		h:     newPadHash(),
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}
	if err := base.InitReceiver(io); err != nil {
		return nil, errors.Wrap(err, "base OT")
	}
	var keys [K]Label
	if err := base.Receive(flags[:], keys[:]); err != nil {
		return nil, errors.Wrap(err, "base OT")
	}
	for i := 0; i < K; i++ {
		s.g[i], err = newPrg(keys[i])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send transfers len(m0) byte messages. For each transfer i, the
// receiver learns either m0[i] or m1[i] depending on its selection
// flag.
func (s *IKNPSender) Send(m0, m1 []byte) error {
	if len(m0) != len(m1) {
		return errors.Newf("message length mismatch: %d != %d",
			len(m0), len(m1))
	}
	n := len(m0)
	if cap(s.q) < n {
		s.q = make([]Label, n)
	}
	q := s.q[:n]

	// The receiver sends the K columns chunk by chunk.
	var t [K * chunkByteRows]byte
	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)
		byteRows := (rows + 7) / 8

		data, err := s.io.ReceiveData()
		if err != nil {
			return err
		}
		if len(data) != K*byteRows {
			return errors.Newf("invalid chunk size %d, expected %d",
				len(data), K*byteRows)
		}
		for i := 0; i < K; i++ {
			col := t[i*byteRows : (i+1)*byteRows]
			prg(s.g[i], col)
			if s.delta.Bit(i) == 1 {
				xor(col, data[i*byteRows:])
			}
		}
		transpose(q[ofs:ofs+rows], t[:], byteRows)
	}

	y := make([]byte, 2*chunkRows)
	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)
		for j := 0; j < rows; j++ {
			row := q[ofs+j]
			y[2*j] = m0[ofs+j] ^ s.h.pad(row)
			row.Xor(s.delta)
			y[2*j+1] = m1[ofs+j] ^ s.h.pad(row)
			s.h.next()
		}
		if err := s.io.SendData(y[:2*rows]); err != nil {
			return err
		}
	}
	return s.io.Flush()
}

// IKNPReceiver implements the receiver of the extended 1-out-of-2
// byte OTs.
type IKNPReceiver struct {
	io IO
	g0 [K]cipher.Stream
	g1 [K]cipher.Stream
	h  *padHash
	t  []Label
}

// NewIKNPReceiver creates a new receiver. The base OT runs as the
// base sender with random seed pairs.
func NewIKNPReceiver(base OT, io IO, r io.Reader) (*IKNPReceiver, error) {
	var wires [K]Wire
	for i := 0; i < K; i++ {
		l0, err := NewLabel(r)
		if err != nil {
			return nil, err
		}
		l1, err := NewLabel(r)
		if err != nil {
			return nil, err
		}
		wires[i] = Wire{
			L0: l0,
			L1: l1,
		}
	}
	if err := base.InitSender(io); err != nil {
		return nil, errors.Wrap(err, "base OT")
	}
	if err := base.Send(wires[:]); err != nil {
		return nil, errors.Wrap(err, "base OT")
	}

	rcv := &IKNPReceiver{
		io: io,
		h:  newPadHash(),
	}
	var err error
	for i := 0; i < K; i++ {
		rcv.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return nil, err
		}
		rcv.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return nil, err
		}
	}
	return rcv, nil
}

// Receive receives len(flags) byte messages into result. The result[i]
// is the sender's m1[i] if flags[i] is set and m0[i] otherwise.
func (r *IKNPReceiver) Receive(flags []bool, result []byte) error {
	if len(flags) != len(result) {
		return errors.Newf("flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	n := len(flags)
	if cap(r.t) < n {
		r.t = make([]Label, n)
	}
	t := r.t[:n]

	var col [K * chunkByteRows]byte
	var out [K * chunkByteRows]byte
	var tmp [chunkByteRows]byte
	var sel [chunkByteRows]byte

	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)
		byteRows := (rows + 7) / 8

		for i := range sel[:byteRows] {
			sel[i] = 0
		}
		for j := 0; j < rows; j++ {
			if flags[ofs+j] {
				sel[j/8] |= 1 << (j % 8)
			}
		}
		for i := 0; i < K; i++ {
			c := col[i*byteRows : (i+1)*byteRows]
			prg(r.g0[i], c)
			prg(r.g1[i], tmp[:byteRows])

			u := out[i*byteRows : (i+1)*byteRows]
			copy(u, c)
			xor(u, tmp[:byteRows])
			xor(u, sel[:byteRows])
		}
		if err := r.io.SendData(out[:K*byteRows]); err != nil {
			return err
		}
		transpose(t[ofs:ofs+rows], col[:], byteRows)
	}
	if err := r.io.Flush(); err != nil {
		return err
	}

	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)

		y, err := r.io.ReceiveData()
		if err != nil {
			return err
		}
		if len(y) != 2*rows {
			return errors.Newf("invalid message chunk %d, expected %d",
				len(y), 2*rows)
		}
		for j := 0; j < rows; j++ {
			m := y[2*j]
			if flags[ofs+j] {
				m = y[2*j+1]
			}
			result[ofs+j] = m ^ r.h.pad(t[ofs+j])
			r.h.next()
		}
	}
	return nil
}

// transpose sets the row labels from the K column-major bit columns
// of buf. Each column is w bytes long.
func transpose(rows []Label, buf []byte, w int) {
	for j := range rows {
		var l Label
		byteIdx := j / 8
		bit := uint(j % 8)
		for i := 0; i < K; i++ {
			l.SetBit(i, uint(buf[i*w+byteIdx]>>bit)&1)
		}
		rows[j] = l
	}
}

// padHash derives the one-time pads H(j, row) for the transfers. Both
// ends advance the transfer index j in the same order.
type padHash struct {
	h     hash.Hash
	index uint64
	buf   [8 + 16]byte
	sum   [sha256.Size]byte
}

func newPadHash() *padHash {
	return &padHash{
		h: sha256.New(),
	}
}

func (p *padHash) pad(row Label) byte {
	bo.PutUint64(p.buf[0:8], p.index)
	bo.PutUint64(p.buf[8:16], row.D0)
	bo.PutUint64(p.buf[16:24], row.D1)

	p.h.Reset()
	p.h.Write(p.buf[:])
	return p.h.Sum(p.sum[:0])[0]
}

func (p *padHash) next() {
	p.index++
}

// newPrg creates a ChaCha20 keystream generator seeded by the key
// label.
func newPrg(key Label) (cipher.Stream, error) {
	var ld LabelData
	k := sha256.Sum256(key.Bytes(&ld))
	var nonce [chacha20.NonceSize]byte
	return chacha20.NewUnauthenticatedCipher(k[:], nonce[:])
}

func prg(c cipher.Stream, buf []byte) {
	// Clear buffer as it is shared between different caller's
	// iterations.
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}
