//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/gmw"
	"github.com/markkurossi/mpcbench/p2p"
)

type composer func(p *gmw.Party) (*gmw.Output, error)

type result struct {
	value []uint8
	stats gmw.Statistics
	err   error
}

func evaluate(p *gmw.Party, conn *p2p.Conn, compose composer) result {
	out, err := compose(p)
	if err != nil {
		conn.Close()
		return result{err: err}
	}
	if err := p.Run(); err != nil {
		conn.Close()
		return result{err: err}
	}
	value, err := out.Value()
	if err != nil {
		conn.Close()
		return result{err: err}
	}
	if err := p.Finish(); err != nil {
		return result{err: err}
	}
	return result{
		value: value,
		stats: p.Stats(),
	}
}

// run2 runs both parties over an in-memory connection. The compose
// functions build the circuits of party 0 and party 1.
func run2(t *testing.T, c0, c1 composer) [2]result {
	conn0, conn1 := p2p.Pipe()

	p0, err := gmw.NewParty(conn0, 0, nil)
	require.NoError(t, err)
	p1, err := gmw.NewParty(conn1, 1, nil)
	require.NoError(t, err)

	ch := make(chan result)
	go func() {
		ch <- evaluate(p1, conn1, c1)
	}()
	var results [2]result
	results[0] = evaluate(p0, conn0, c0)
	results[1] = <-ch

	return results
}

// symmetric composes the same circuit at both parties. The build
// function receives the input vectors of party 0 and 1; a party sees
// zeros in place of its peer's values.
func symmetric(t *testing.T, v0, v1 []uint8,
	build func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error)) [2]result {

	compose := func(id int) composer {
		return func(p *gmw.Party) (*gmw.Output, error) {
			in0 := make([]uint8, len(v0))
			in1 := make([]uint8, len(v1))
			if id == 0 {
				copy(in0, v0)
			} else {
				copy(in1, v1)
			}
			a, err := p.In(in0, 0)
			if err != nil {
				return nil, err
			}
			b, err := p.In(in1, 1)
			if err != nil {
				return nil, err
			}
			s, err := build(p, a, b)
			if err != nil {
				return nil, err
			}
			return p.Out(s)
		}
	}
	return run2(t, compose(0), compose(1))
}

func requireResults(t *testing.T, results [2]result, expected []uint8) {
	for id, r := range results {
		require.NoError(t, r.err, "party %d", id)
		assert.Equal(t, expected, r.value, "party %d", id)
	}
}

func TestAdd(t *testing.T) {
	results := symmetric(t, []uint8{10, 20, 30, 40}, []uint8{5, 5, 5, 5},
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			return p.Add(a, b)
		})
	requireResults(t, results, []uint8{15, 25, 35, 45})

	// Additions need no triples.
	assert.Equal(t, 0, results[0].stats.ArithTriples)
	assert.Equal(t, 0, results[0].stats.Rounds)
}

func TestAddWraparound(t *testing.T) {
	results := symmetric(t, []uint8{200, 255}, []uint8{100, 1},
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			return p.Add(a, b)
		})
	requireResults(t, results, []uint8{44, 0})
}

func TestMul(t *testing.T) {
	v0 := []uint8{0, 1, 7, 200, 255, 16}
	v1 := []uint8{9, 1, 6, 3, 255, 16}
	expected := make([]uint8, len(v0))
	for i := range v0 {
		expected[i] = v0[i] * v1[i]
	}
	results := symmetric(t, v0, v1,
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			return p.Mul(a, b)
		})
	requireResults(t, results, expected)

	stats := results[1].stats
	assert.Equal(t, len(v0), stats.ArithTriples)
	assert.Equal(t, 1, stats.Rounds)
	var names []string
	for _, phase := range stats.Phases {
		names = append(names, phase.Name)
	}
	assert.Equal(t, []string{
		gmw.PhaseBaseOT, gmw.PhaseOTExtension, gmw.PhaseTriples,
		gmw.PhaseOnline, gmw.PhaseOutput,
	}, names)
}

func TestGt(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	var v0, v1 []uint8
	for i := 0; i < 256; i++ {
		v0 = append(v0, uint8(i))
		v1 = append(v1, uint8(rnd.Intn(256)))
	}
	v0 = append(v0, 0, 255, 128, 127, 50, 51)
	v1 = append(v1, 0, 255, 127, 128, 51, 50)

	expected := make([]uint8, len(v0))
	for i := range v0 {
		if v0[i] > v1[i] {
			expected[i] = 1
		}
	}
	results := symmetric(t, v0, v1,
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			return p.Gt(a, b)
		})
	requireResults(t, results, expected)
	assert.Equal(t, 22*len(v0), results[0].stats.ANDTriples)
	assert.Equal(t, 8, results[0].stats.Rounds)
}

func TestGtShared(t *testing.T) {
	// Both operands are sums of shares from both parties.
	v0 := []uint8{10, 200, 60, 0}
	v1 := []uint8{45, 100, 60, 1}

	compose := func(id int) composer {
		return func(p *gmw.Party) (*gmw.Output, error) {
			own := v0
			if id == 1 {
				own = v1
			}
			zero := make([]uint8, len(own))
			var a, b *gmw.Share
			var err error
			if id == 0 {
				a, err = p.In(own, 0)
			} else {
				a, err = p.In(zero, 0)
			}
			if err != nil {
				return nil, err
			}
			if id == 1 {
				b, err = p.In(own, 1)
			} else {
				b, err = p.In(zero, 1)
			}
			if err != nil {
				return nil, err
			}
			sum, err := p.Add(a, b)
			if err != nil {
				return nil, err
			}
			threshold := []uint8{50, 50, 50, 50}
			if id != 0 {
				threshold = zero
			}
			th, err := p.In(threshold, 0)
			if err != nil {
				return nil, err
			}
			gt, err := p.Gt(sum, th)
			if err != nil {
				return nil, err
			}
			return p.Out(gt)
		}
	}
	// 55 > 50, 300 mod 256 = 44, 120 > 50, 1
	results := run2(t, compose(0), compose(1))
	requireResults(t, results, []uint8{1, 0, 1, 0})
}

func TestMulBool(t *testing.T) {
	v0 := []uint8{10, 60, 70, 90}
	v1 := []uint8{50, 50, 70, 50}
	results := symmetric(t, v0, v1,
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			gt, err := p.Gt(a, b)
			if err != nil {
				return nil, err
			}
			if gt.Kind() != gmw.Boolean {
				return nil, errors.New("Gt did not return a boolean share")
			}
			return p.Mul(gt, a)
		})
	requireResults(t, results, []uint8{0, 60, 0, 90})
}

func TestUnsimdify(t *testing.T) {
	v0 := []uint8{10, 20, 30, 40}
	v1 := []uint8{5, 5, 5, 5}
	results := symmetric(t, v0, v1,
		func(p *gmw.Party, a, b *gmw.Share) (*gmw.Share, error) {
			sum, err := p.Add(a, b)
			if err != nil {
				return nil, err
			}
			elems, err := sum.Unsimdify()
			if err != nil {
				return nil, err
			}
			if len(elems) != 4 {
				return nil, errors.Newf("Unsimdify: got %d elements",
					len(elems))
			}
			total := elems[0]
			for _, e := range elems[1:] {
				total, err = p.Add(total, e)
				if err != nil {
					return nil, err
				}
			}
			if total.Width() != 1 {
				return nil, errors.Newf("invalid width %d", total.Width())
			}
			return total, nil
		})
	requireResults(t, results, []uint8{120})
}

func TestUsage(t *testing.T) {
	conn0, _ := p2p.Pipe()
	p, err := gmw.NewParty(conn0, 0, nil)
	require.NoError(t, err)

	a, err := p.In([]uint8{1, 2}, 0)
	require.NoError(t, err)
	b, err := p.In([]uint8{1, 2, 3}, 1)
	require.NoError(t, err)

	_, err = p.Add(a, b)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
	_, err = p.Mul(a, b)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
	_, err = p.Gt(a, b)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)

	_, err = p.In([]uint8{1}, 2)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)

	_, err = gmw.NewParty(conn0, 2, nil)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)

	out, err := p.Out(a)
	require.NoError(t, err)
	_, err = out.Value()
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
}

func TestBoolKinds(t *testing.T) {
	conn0, _ := p2p.Pipe()
	p, err := gmw.NewParty(conn0, 0, nil)
	require.NoError(t, err)

	a, err := p.In([]uint8{1, 2}, 0)
	require.NoError(t, err)
	b, err := p.In([]uint8{1, 2}, 1)
	require.NoError(t, err)
	gt, err := p.Gt(a, b)
	require.NoError(t, err)

	_, err = p.Add(gt, a)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
	_, err = p.Mul(gt, gt)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
	_, err = p.Gt(gt, a)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
}

func TestRunTwice(t *testing.T) {
	var after [2]error
	compose := func(id int) composer {
		return func(p *gmw.Party) (*gmw.Output, error) {
			a, err := p.In([]uint8{3}, 0)
			if err != nil {
				return nil, err
			}
			out, err := p.Out(a)
			if err != nil {
				return nil, err
			}
			if err := p.Run(); err != nil {
				return nil, err
			}
			after[id] = p.Run()
			if after[id] == nil {
				_, after[id] = p.In([]uint8{1}, 0)
			}
			return out, nil
		}
	}
	conn0, conn1 := p2p.Pipe()
	p0, err := gmw.NewParty(conn0, 0, nil)
	require.NoError(t, err)
	p1, err := gmw.NewParty(conn1, 1, nil)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		_, err := compose(1)(p1)
		done <- err
	}()
	_, err = compose(0)(p0)
	require.NoError(t, err)
	require.NoError(t, <-done)

	for id := 0; id < 2; id++ {
		assert.True(t, errors.Is(after[id], gmw.ErrUsage), "%v", after[id])
	}

	// Composing after Run is a usage error too.
	_, err = p0.In([]uint8{1}, 0)
	assert.True(t, errors.Is(err, gmw.ErrUsage), "%v", err)
}

func TestInputMismatch(t *testing.T) {
	c0 := func(p *gmw.Party) (*gmw.Output, error) {
		a, err := p.In([]uint8{1, 2}, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.In([]uint8{3, 4}, 0); err != nil {
			return nil, err
		}
		return p.Out(a)
	}
	c1 := func(p *gmw.Party) (*gmw.Output, error) {
		a, err := p.In([]uint8{0, 0}, 0)
		if err != nil {
			return nil, err
		}
		return p.Out(a)
	}
	results := run2(t, c0, c1)
	for id, r := range results {
		require.Error(t, r.err, "party %d", id)
	}
	assert.True(t, errors.Is(results[1].err, gmw.ErrEngine), "%v",
		results[1].err)
}

func TestWidthMismatch(t *testing.T) {
	c0 := func(p *gmw.Party) (*gmw.Output, error) {
		a, err := p.In([]uint8{1, 2}, 0)
		if err != nil {
			return nil, err
		}
		return p.Out(a)
	}
	c1 := func(p *gmw.Party) (*gmw.Output, error) {
		a, err := p.In([]uint8{0, 0, 0}, 0)
		if err != nil {
			return nil, err
		}
		return p.Out(a)
	}
	results := run2(t, c0, c1)
	assert.True(t, errors.Is(results[1].err, gmw.ErrEngine), "%v",
		results[1].err)
	require.Error(t, results[0].err)
}

func TestString(t *testing.T) {
	conn0, _ := p2p.Pipe()
	p, err := gmw.NewParty(conn0, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "P¹", p.String())
	assert.Equal(t, 1, p.ID())
}

func TestDebugRounds(t *testing.T) {
	for _, debug := range []bool{false, true} {
		var logs [2]bytes.Buffer
		var parties [2]*gmw.Party

		conn0, conn1 := p2p.Pipe()
		for id, conn := range []*p2p.Conn{conn0, conn1} {
			logger := zerolog.New(&logs[id]).Level(zerolog.DebugLevel)
			p, err := gmw.NewParty(conn, id, &env.Config{
				Logger: &logger,
				Debug:  debug,
			})
			require.NoError(t, err)
			parties[id] = p
		}
		compose := func(p *gmw.Party) (*gmw.Output, error) {
			a, err := p.In([]uint8{3}, 0)
			if err != nil {
				return nil, err
			}
			b, err := p.In([]uint8{5}, 1)
			if err != nil {
				return nil, err
			}
			s, err := p.Mul(a, b)
			if err != nil {
				return nil, err
			}
			return p.Out(s)
		}
		ch := make(chan result)
		go func() {
			ch <- evaluate(parties[1], conn1, compose)
		}()
		r0 := evaluate(parties[0], conn0, compose)
		r1 := <-ch
		requireResults(t, [2]result{r0, r1}, []uint8{15})

		for id := range logs {
			if debug {
				assert.Contains(t, logs[id].String(), `"message":"round"`)
			} else {
				assert.NotContains(t, logs[id].String(), `"message":"round"`)
			}
		}
	}
}
