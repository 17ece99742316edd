//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"
)

var (
	bo    = binary.BigEndian
	_  OT = &CO{}

	// ErrPointNotOnCurve signals that a received point is not on the
	// active curve.
	ErrPointNotOnCurve = errors.New("ot: point not on curve")
)

// CO implements CO OT as the OT interface.
type CO struct {
	curve  elliptic.Curve
	rand   io.Reader
	hash   hash.Hash
	digest []byte
	io     IO
}

// NewCO creates a new CO OT implementing the OT interface. The rand
// provides the scalars of the transfers.
func NewCO(rand io.Reader) *CO {
	return &CO{
		curve:  elliptic.P256(),
		rand:   rand,
		hash:   sha256.New(),
		digest: make([]byte, sha256.Size),
	}
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := io.SendData([]byte(co.curve.Params().Name)); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := io.ReceiveData()
	if err != nil {
		return err
	}
	if string(name) != co.curve.Params().Name {
		return errors.Newf("invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

// Send sends the wire labels with OT.
func (co *CO) Send(wires []Wire) error {
	curveParams := co.curve.Params()

	// a <- Zp
	a, err := rand.Int(co.rand, curveParams.N)
	if err != nil {
		return err
	}
	aBytes := a.Bytes()

	// A = G^a
	Ax, Ay := co.curve.ScalarBaseMult(aBytes)

	if err := co.io.SendData(Ax.Bytes()); err != nil {
		return err
	}
	if err := co.io.SendData(Ay.Bytes()); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// Aa = A^a
	Aax, Aay := co.curve.ScalarMult(Ax, Ay, aBytes)

	// a:    {x,y}
	// a^-1: {x,-y}
	// AaInv = {Aax, -Aay}
	AaInvx := big.NewInt(0).Set(Aax)
	AaInvy := big.NewInt(0).Sub(curveParams.P, Aay)

	type point struct {
		x, y *big.Int
	}
	bs := make([]point, len(wires))
	bas := make([]point, len(wires))

	for i := 0; i < len(wires); i++ {
		Bx, err := receiveBigInt(co.io)
		if err != nil {
			return err
		}
		By, err := receiveBigInt(co.io)
		if err != nil {
			return err
		}
		if !co.curve.IsOnCurve(Bx, By) {
			return ErrPointNotOnCurve
		}
		Bx, By = co.curve.ScalarMult(Bx, By, aBytes)
		Bax, Bay := co.curve.Add(Bx, By, AaInvx, AaInvy)

		bs[i] = point{Bx, By}
		bas[i] = point{Bax, Bay}
	}

	var labelData LabelData
	for i := 0; i < len(wires); i++ {
		wires[i].L0.GetData(&labelData)
		e0 := xor(kdf(co.hash, bs[i].x, bs[i].y, uint64(i), co.digest[:0]),
			labelData[:])
		if err := co.io.SendData(e0); err != nil {
			return err
		}
		wires[i].L1.GetData(&labelData)
		e1 := xor(kdf(co.hash, bas[i].x, bas[i].y, uint64(i), co.digest[:0]),
			labelData[:])
		if err := co.io.SendData(e1); err != nil {
			return err
		}
	}
	return co.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Label) error {
	if len(flags) != len(result) {
		return errors.Newf("flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	curveParams := co.curve.Params()

	Ax, err := receiveBigInt(co.io)
	if err != nil {
		return err
	}
	Ay, err := receiveBigInt(co.io)
	if err != nil {
		return err
	}
	if !co.curve.IsOnCurve(Ax, Ay) {
		return ErrPointNotOnCurve
	}

	bs := make([][]byte, len(flags))

	for i := 0; i < len(flags); i++ {
		// b <= Zp
		b, err := rand.Int(co.rand, curveParams.N)
		if err != nil {
			return err
		}
		bBytes := b.Bytes()

		Bx, By := co.curve.ScalarBaseMult(bBytes)
		if flags[i] {
			Bx, By = co.curve.Add(Bx, By, Ax, Ay)
		}
		if err := co.io.SendData(Bx.Bytes()); err != nil {
			return err
		}
		if err := co.io.SendData(By.Bytes()); err != nil {
			return err
		}
		bs[i] = bBytes
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	for i := 0; i < len(flags); i++ {
		e0, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e1, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e := e0
		if flags[i] {
			e = e1
		}
		if len(e) != len(LabelData{}) {
			return errors.Newf("invalid ciphertext length %d", len(e))
		}
		Asx, Asy := co.curve.ScalarMult(Ax, Ay, bs[i])
		data := xor(kdf(co.hash, Asx, Asy, uint64(i), co.digest[:0]), e)
		result[i].SetBytes(data)
	}
	return nil
}

func kdf(hash hash.Hash, x, y *big.Int, id uint64, digest []byte) []byte {
	hash.Reset()
	hash.Write(x.Bytes())
	hash.Write(y.Bytes())

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	hash.Write(tmp[:])

	return hash.Sum(digest)
}

// xor xors b into a and returns a truncated to the shorter length.
func xor(a, b []byte) []byte {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for i := 0; i < l; i++ {
		a[i] ^= b[i]
	}
	return a[:l]
}
