//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gmw implements a semi-honest two-party GMW engine over
// additive shares in Z/2^8 and XOR shares in Z/2. Circuits are
// composed gate by gate with In, Add, Mul, and Gt, and evaluated at
// Run. Multiplications and AND gates consume Beaver triples that are
// generated with IKNP OT extension before the online phase.
package gmw

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/text/superscript"
	"github.com/rs/zerolog"

	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
)

var (
	// ErrUsage marks errors where the engine API was used
	// incorrectly: kind or width mismatches, composing after Run, or
	// calling Run twice.
	ErrUsage = errors.New("usage error")

	// ErrEngine marks errors during circuit evaluation or output
	// opening.
	ErrEngine = errors.New("engine error")
)

// syncTag is exchanged at Finish so both parties know the other one
// completed the run.
const syncTag = 0x4d504342

type state int

const (
	stComposing state = iota
	stRun
	stFinished
)

// Party implements one party of the two-party GMW engine.
type Party struct {
	id      int
	conn    *p2p.Conn
	config  *env.Config
	log     zerolog.Logger
	gates   []*gate
	outputs []*Output
	state   state
	stats   Statistics

	arithTriples triples
	andTriples   triples

	otSender   *ot.IKNPSender
	otReceiver *ot.IKNPReceiver
}

// NewParty creates a new party with the ordinal id over the peer
// connection conn.
func NewParty(conn *p2p.Conn, id int, config *env.Config) (*Party, error) {
	if id < 0 || id >= p2p.NumParties {
		return nil, errors.Mark(
			errors.Newf("invalid party ID %d: expected [0...%d[",
				id, p2p.NumParties), ErrUsage)
	}
	return &Party{
		id:     id,
		conn:   conn,
		config: config,
		log:    config.GetLogger().With().Int("party", id).Logger(),
	}, nil
}

// ID returns the party's ordinal.
func (p *Party) ID() int {
	return p.id
}

func (p *Party) String() string {
	return fmt.Sprintf("P%s", superscript.Itoa(p.id))
}

// Stats returns the engine statistics. The statistics are complete
// after Finish.
func (p *Party) Stats() Statistics {
	return p.stats
}

// Finish tears the party down. It exchanges a final synchronization
// tag with the peer and closes the connection.
func (p *Party) Finish() error {
	if p.state == stFinished {
		return errors.Mark(errors.New("party already finished"), ErrUsage)
	}
	p.state = stFinished

	err := p.exchange(func() error {
		if err := p.conn.SendUint32(syncTag); err != nil {
			return err
		}
		return p.conn.Flush()
	}, func() error {
		return p.conn.Expect(syncTag)
	})
	closeErr := p.conn.Close()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "finish"), ErrEngine)
	}
	if closeErr != nil {
		return errors.Mark(errors.Wrap(closeErr, "close"), ErrEngine)
	}
	p.log.Debug().Msg("finished")
	return nil
}

// exchange runs send and receive so that the lower ordinal sends
// first.
func (p *Party) exchange(send, receive func() error) error {
	if p.id == 0 {
		if err := send(); err != nil {
			return err
		}
		return receive()
	}
	if err := receive(); err != nil {
		return err
	}
	return send()
}

func (p *Party) checkComposing() error {
	if p.state != stComposing {
		return errors.Mark(errors.New("circuit already evaluated"), ErrUsage)
	}
	return nil
}
