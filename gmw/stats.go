//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"time"

	"github.com/markkurossi/mpcbench/p2p"
)

// Phase names.
const (
	PhaseBaseOT      = "Base OT"
	PhaseOTExtension = "OT extension"
	PhaseTriples     = "Triples"
	PhaseOnline      = "Online"
	PhaseOutput      = "Output"
)

// Phase contains the timing and transfer information of one engine
// phase.
type Phase struct {
	Name     string
	Duration time.Duration
	Sent     uint64
	Recvd    uint64
}

// Statistics contains the run-time statistics of a party.
type Statistics struct {
	Phases       []Phase
	Gates        int
	Rounds       int
	ArithTriples int
	ANDTriples   int
	OTs          int
}

// Duration returns the total duration of all phases.
func (stats Statistics) Duration() time.Duration {
	var result time.Duration
	for _, phase := range stats.Phases {
		result += phase.Duration
	}
	return result
}

type phaseTimer struct {
	stats *Statistics
	conn  *p2p.Conn
	start time.Time
	io    p2p.IOStats
}

func (p *Party) newPhaseTimer() *phaseTimer {
	return &phaseTimer{
		stats: &p.stats,
		conn:  p.conn,
		start: time.Now(),
		io:    p.conn.Stats.Snapshot(),
	}
}

// end records the phase since the previous end and starts the next
// one.
func (t *phaseTimer) end(name string) {
	now := time.Now()
	delta := t.conn.Stats.Sub(t.io)

	t.stats.Phases = append(t.stats.Phases, Phase{
		Name:     name,
		Duration: now.Sub(t.start),
		Sent:     delta.Sent.Load(),
		Recvd:    delta.Recvd.Load(),
	})
	t.start = now
	t.io = t.conn.Stats.Snapshot()
}
