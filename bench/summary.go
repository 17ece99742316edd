//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/markkurossi/mpcbench/circuit"
)

// Summary aggregates the wall-clock durations of the benchmark
// repetitions.
type Summary struct {
	Operation   circuit.Operation
	Repetitions int
	Mean        time.Duration
	StdDev      time.Duration
	Min         time.Duration
	Max         time.Duration
	Xfer        uint64
}

// NewSummary computes the summary of the results.
func NewSummary(results []Result) Summary {
	var summary Summary
	if len(results) == 0 {
		return summary
	}
	summary.Operation = results[0].Operation
	summary.Repetitions = len(results)

	walls := make([]float64, len(results))
	for i, r := range results {
		walls[i] = float64(r.Wall)
		for _, phase := range r.Stats.Phases {
			summary.Xfer += phase.Sent + phase.Recvd
		}
	}
	summary.Mean = time.Duration(stat.Mean(walls, nil))
	if len(walls) > 1 {
		summary.StdDev = time.Duration(stat.StdDev(walls, nil))
	}
	summary.Min = time.Duration(floats.Min(walls))
	summary.Max = time.Duration(floats.Max(walls))

	return summary
}

// Print prints the summary table to w.
func (summary Summary) Print(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Operation").SetAlign(tabulate.ML)
	tab.Header("Reps").SetAlign(tabulate.MR)
	tab.Header("Mean").SetAlign(tabulate.MR)
	tab.Header("StdDev").SetAlign(tabulate.MR)
	tab.Header("Min").SetAlign(tabulate.MR)
	tab.Header("Max").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column(summary.Operation.String())
	row.Column(fmt.Sprintf("%d", summary.Repetitions))
	row.Column(summary.Mean.String())
	row.Column(summary.StdDev.String())
	row.Column(summary.Min.String())
	row.Column(summary.Max.String())
	row.Column(circuit.FileSize(summary.Xfer).String())

	tab.Print(w)
}
