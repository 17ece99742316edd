//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/gmw"
	"github.com/markkurossi/mpcbench/p2p"
)

// debugInputs is the number of input values printed in debug mode.
const debugInputs = 16

var resultLabels = map[circuit.Operation]string{
	circuit.OpSum:         "Sum result",
	circuit.OpCount:       "Count result",
	circuit.OpReLU:        "ReLU sum result",
	circuit.OpBillionaire: "Billionaire total comparisons (P0 wins + P1 wins)",
}

// Result contains the outcome of one benchmark repetition.
type Result struct {
	Repetition int
	Operation  circuit.Operation
	Value      uint8
	Wall       time.Duration
	Stats      gmw.Statistics
}

func (r Result) String() string {
	return fmt.Sprintf("%s = %s", resultLabels[r.Operation],
		r.Operation.Format(r.Value))
}

// Run runs the benchmark repetitions. Each repetition sets up a fresh
// connection and party. The first failing repetition aborts the
// remaining ones.
func Run(ctx context.Context, cfg *Config, config *env.Config) (
	[]Result, error) {

	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	cfg.Print(out)

	var results []Result
	for rep := 1; rep <= cfg.Repetitions; rep++ {
		fmt.Fprintf(out, "\n--- Repetition %d/%d ---\n", rep, cfg.Repetitions)
		result, err := runRepetition(ctx, cfg, config, out, rep)
		if err != nil {
			return results, errors.Wrapf(err, "repetition %d", rep)
		}
		results = append(results, result)
	}
	if len(results) > 1 {
		fmt.Fprintln(out)
		NewSummary(results).Print(out)
	}
	return results, nil
}

func runRepetition(ctx context.Context, cfg *Config, config *env.Config,
	out io.Writer, rep int) (Result, error) {

	log := config.GetLogger().With().
		Int("party", cfg.Self).
		Int("rep", rep).
		Str("op", cfg.Operation.String()).
		Logger()

	result := Result{
		Repetition: rep,
		Operation:  cfg.Operation,
	}
	timing := circuit.NewTiming()

	nw, err := p2p.Dial(ctx, cfg.Self, cfg.Endpoints, config)
	if err != nil {
		return result, err
	}
	defer nw.Close()
	timing.Sample("Connect", []string{
		circuit.FileSize(nw.Conn.Stats.Sum()).String(),
	})

	p, err := gmw.NewParty(nw.Conn, cfg.Self, config)
	if err != nil {
		return result, err
	}

	inputs := cfg.Operation.Inputs(cfg.Size, cfg.Self)
	if cfg.Debug {
		printInputs(out, p, cfg.Operation, inputs)
	}

	s, err := cfg.Operation.Build(p, inputs)
	if err != nil {
		return result, err
	}
	output, err := p.Out(s)
	if err != nil {
		return result, err
	}
	fmt.Fprintf(out, "Party %d: %v on %d elements\n",
		cfg.Self, cfg.Operation, cfg.Size)
	timing.Sample("Compose", nil)

	log.Debug().Msg("running circuit")
	if err := p.Run(); err != nil {
		return result, err
	}
	values, err := output.Value()
	if err != nil {
		return result, err
	}
	if len(values) != 1 {
		return result, errors.Mark(
			errors.Newf("expected one result value, got %d", len(values)),
			gmw.ErrEngine)
	}
	if err := p.Finish(); err != nil {
		return result, err
	}
	result.Value = values[0]
	result.Stats = p.Stats()

	sample := timing.Sample("Evaluate", []string{
		circuit.FileSize(nw.Conn.Stats.Sum()).String(),
	})
	sample.Phases(result.Stats)
	result.Wall = timing.Total()

	log.Info().Dur("wall", result.Wall).Int("gates", result.Stats.Gates).
		Int("rounds", result.Stats.Rounds).Msg("repetition completed")

	fmt.Fprintln(out, result)
	if cfg.Debug {
		printStats(out, p, result.Stats)
	}
	timing.Print(out, nw.Conn.Stats)
	fmt.Fprintf(out, "Repetition %d completed.\n", rep)

	return result, nil
}

func printInputs(out io.Writer, p *gmw.Party, op circuit.Operation,
	inputs [][]uint8) {

	for _, values := range inputs {
		fmt.Fprintf(out, "[DEBUG] %v local input (first %d):", p, debugInputs)
		for i, v := range values {
			if i >= debugInputs {
				break
			}
			if op == circuit.OpReLU {
				fmt.Fprintf(out, " %d", int8(v))
			} else {
				fmt.Fprintf(out, " %d", v)
			}
		}
		fmt.Fprintln(out)
	}
	if local, ok := op.Local(inputs); ok {
		fmt.Fprintf(out, "[DEBUG] %v local %v = %d\n", p, op, local)
	}
}

func printStats(out io.Writer, p *gmw.Party, stats gmw.Statistics) {
	fmt.Fprintf(out, "[DEBUG] %v gates=%d rounds=%d "+
		"arith-triples=%d and-triples=%d ots=%d\n",
		p, stats.Gates, stats.Rounds, stats.ArithTriples, stats.ANDTriples,
		stats.OTs)
	for _, phase := range stats.Phases {
		fmt.Fprintf(out, "[DEBUG] %v %-12s %v\tsent=%v\trecvd=%v\n",
			p, phase.Name, phase.Duration, circuit.FileSize(phase.Sent),
			circuit.FileSize(phase.Recvd))
	}
}
