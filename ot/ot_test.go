//
// ot_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot_test

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
)

func testOT(sender, receiver ot.OT, t *testing.T) {
	const size int = 64

	wires := make([]ot.Wire, size)
	flags := make([]bool, size)
	labels := make([]ot.Label, size)

	done := make(chan error)

	for i := 0; i < len(wires); i++ {
		var err error
		wires[i].L0, err = ot.NewLabel(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		wires[i].L1, err = ot.NewLabel(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		flags[i] = i%2 == 0
	}

	conn, rConn := p2p.Pipe()

	go func(conn *p2p.Conn) {
		err := receiver.InitReceiver(conn)
		if err != nil {
			conn.Close()
			done <- err
			return
		}
		err = receiver.Receive(flags, labels)
		if err != nil {
			conn.Close()
			done <- err
			return
		}
		for i := 0; i < len(flags); i++ {
			var expected ot.Label
			if flags[i] {
				expected = wires[i].L1
			} else {
				expected = wires[i].L0
			}
			if !labels[i].Equal(expected) {
				done <- fmt.Errorf("label %d mismatch %v %v,%v", i,
					labels[i], wires[i].L0, wires[i].L1)
				return
			}
		}
		done <- nil
	}(rConn)

	err := sender.InitSender(conn)
	if err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	err = sender.Send(wires)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	err = <-done
	if err != nil {
		t.Errorf("receiver failed: %v", err)
	}
}

func TestOTCO(t *testing.T) {
	testOT(ot.NewCO(rand.Reader), ot.NewCO(rand.Reader), t)
}

func testIKNP(t *testing.T, batches ...int) {
	conn, rConn := p2p.Pipe()

	type batch struct {
		m0, m1 []byte
		flags  []bool
	}
	var data []batch
	for _, n := range batches {
		b := batch{
			m0:    make([]byte, n),
			m1:    make([]byte, n),
			flags: make([]bool, n),
		}
		rand.Read(b.m0)
		rand.Read(b.m1)
		for i := 0; i < n; i++ {
			b.flags[i] = b.m0[i]&1 == 1
		}
		data = append(data, b)
	}

	done := make(chan error)
	go func() {
		r, err := ot.NewIKNPReceiver(ot.NewCO(rand.Reader), rConn,
			rand.Reader)
		if err != nil {
			done <- err
			return
		}
		for idx, b := range data {
			result := make([]byte, len(b.flags))
			if err := r.Receive(b.flags, result); err != nil {
				done <- err
				return
			}
			for i, f := range b.flags {
				expected := b.m0[i]
				if f {
					expected = b.m1[i]
				}
				if result[i] != expected {
					done <- fmt.Errorf("batch %d: transfer %d: got %02x, "+
						"expected %02x", idx, i, result[i], expected)
					return
				}
			}
		}
		done <- nil
	}()

	s, err := ot.NewIKNPSender(ot.NewCO(rand.Reader), conn, rand.Reader)
	if err != nil {
		t.Fatalf("NewIKNPSender: %v", err)
	}
	for _, b := range data {
		if err := s.Send(b.m0, b.m1); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if err := <-done; err != nil {
		t.Errorf("receiver failed: %v", err)
	}
}

func TestIKNP(t *testing.T) {
	testIKNP(t, 1, 7, 64, 1000)
}

func TestIKNPChunks(t *testing.T) {
	testIKNP(t, 1024, 1025, 3*1024+17)
}

func TestIKNPEmpty(t *testing.T) {
	testIKNP(t, 0, 8, 0)
}

func TestIKNPLengthMismatch(t *testing.T) {
	conn, rConn := p2p.Pipe()

	done := make(chan error)
	go func() {
		_, err := ot.NewIKNPReceiver(ot.NewCO(rand.Reader), rConn,
			rand.Reader)
		done <- err
	}()
	s, err := ot.NewIKNPSender(ot.NewCO(rand.Reader), conn, rand.Reader)
	if err != nil {
		t.Fatalf("NewIKNPSender: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("NewIKNPReceiver: %v", err)
	}
	if err := s.Send(make([]byte, 2), make([]byte, 3)); err == nil {
		t.Errorf("Send accepted mismatched messages")
	}
}

func benchmarkIKNP(n int, b *testing.B) {
	conn, rConn := p2p.Pipe()

	m0 := make([]byte, n)
	m1 := make([]byte, n)
	flags := make([]bool, n)
	result := make([]byte, n)

	done := make(chan error)
	go func() {
		r, err := ot.NewIKNPReceiver(ot.NewCO(rand.Reader), rConn,
			rand.Reader)
		if err != nil {
			done <- err
			return
		}
		for i := 0; i < b.N; i++ {
			if err := r.Receive(flags, result); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	s, err := ot.NewIKNPSender(ot.NewCO(rand.Reader), conn, rand.Reader)
	if err != nil {
		b.Fatalf("NewIKNPSender: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Send(m0, m1); err != nil {
			b.Fatalf("Send: %v", err)
		}
	}
	if err := <-done; err != nil {
		b.Errorf("receiver failed: %v", err)
	}
}

func BenchmarkIKNP_1k(b *testing.B) {
	benchmarkIKNP(1024, b)
}

func BenchmarkIKNP_64k(b *testing.B) {
	benchmarkIKNP(64*1024, b)
}
