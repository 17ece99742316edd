//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/xid"

	"github.com/markkurossi/mpcbench/env"
)

var (
	// ErrConnection marks errors where the peer connection could not
	// be established within the retry bound.
	ErrConnection = errors.New("connection error")

	// ErrEndpoints marks invalid endpoint tables.
	ErrEndpoints = errors.New("invalid endpoints")
)

// NumParties is the number of parties in the network.
const NumParties = 2

// Endpoint defines a party's network endpoint.
type Endpoint struct {
	ID   int
	Host string
	Port int
}

// Addr returns the endpoint address in host:port format.
func (ep Endpoint) Addr() string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
}

func (ep Endpoint) String() string {
	return fmt.Sprintf("%d[%s]", ep.ID, ep.Addr())
}

// Network is the peer connection established by Dial.
type Network struct {
	Conn    *Conn
	Self    Endpoint
	Peer    Endpoint
	Session string
}

// Close closes the peer connection.
func (nw *Network) Close() error {
	return nw.Conn.Close()
}

// ValidateEndpoints verifies that the endpoint table names both
// ordinals exactly once and that self is one of them. It returns the
// endpoints indexed by ordinal.
func ValidateEndpoints(self int, endpoints []Endpoint) ([NumParties]Endpoint,
	error) {

	var result [NumParties]Endpoint
	var seen [NumParties]bool

	if len(endpoints) != NumParties {
		return result, errors.Mark(
			errors.Newf("expected %d endpoints, got %d",
				NumParties, len(endpoints)), ErrEndpoints)
	}
	for _, ep := range endpoints {
		if ep.ID < 0 || ep.ID >= NumParties {
			return result, errors.Mark(
				errors.Newf("invalid party ID %d: expected [0...%d[",
					ep.ID, NumParties), ErrEndpoints)
		}
		if seen[ep.ID] {
			return result, errors.Mark(
				errors.Newf("party %d already defined", ep.ID), ErrEndpoints)
		}
		seen[ep.ID] = true
		result[ep.ID] = ep
	}
	if self < 0 || self >= NumParties {
		return result, errors.Mark(
			errors.Newf("invalid ID %d: expected [0...%d[", self, NumParties),
			ErrEndpoints)
	}
	return result, nil
}

// Dial establishes the connection between this party and its peer.
// Party 0 accepts the connection at its endpoint and party 1 connects
// to it. Network failures are retried according to the configured
// retry policy since the peer may not be listening yet. Party 0
// keeps one listener open over all attempts so connections arriving
// between accept deadlines stay in the listen backlog.
func Dial(ctx context.Context, self int, endpoints []Endpoint,
	config *env.Config) (*Network, error) {

	eps, err := ValidateEndpoints(self, endpoints)
	if err != nil {
		return nil, err
	}
	log := config.GetLogger().With().Int("party", self).Logger()
	retry := config.GetRetry()

	var l net.Listener
	defer func() {
		if l != nil {
			l.Close()
		}
	}()

	for attempt := 1; ; attempt++ {
		log.Info().Int("attempt", attempt).
			Msgf("setting up connection to peer %v", eps[1-self])

		var nw *Network
		err = nil
		if self == 0 && l == nil {
			l, err = net.Listen("tcp", eps[0].Addr())
		}
		if err == nil {
			if self == 0 {
				nw, err = accept(l, eps[0], eps[1], retry.Delay)
			} else {
				nw, err = connect(eps[1], eps[0], retry.Delay)
			}
		}
		if err == nil {
			log.Info().Str("session", nw.Session).
				Msgf("connection setup successful")
			return nw, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("connection failed")

		if attempt >= retry.Attempts {
			return nil, errors.Mark(
				errors.Wrapf(err, "max retries (%d) reached",
					retry.Attempts), ErrConnection)
		}
		if l != nil && isTimeout(err) {
			// The accept deadline already waited for the retry delay.
			if err := ctx.Err(); err != nil {
				return nil, errors.Mark(err, ErrConnection)
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil, errors.Mark(ctx.Err(), ErrConnection)
		case <-time.After(retry.Delay):
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func accept(l net.Listener, self, peer Endpoint, timeout time.Duration) (
	*Network, error) {

	if tl, ok := l.(*net.TCPListener); ok {
		if err := tl.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}
	nc, err := l.Accept()
	if err != nil {
		return nil, err
	}
	if err := nc.SetDeadline(time.Now().Add(timeout)); err != nil {
		nc.Close()
		return nil, err
	}
	conn := NewConn(nc)

	// Read peer ID.
	if err := conn.Expect(peer.ID); err != nil {
		conn.Close()
		return nil, err
	}
	session := xid.New().String()
	if err := conn.SendUint32(self.ID); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.SendString(session); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Flush(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := nc.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}

	return &Network{
		Conn:    conn,
		Self:    self,
		Peer:    peer,
		Session: session,
	}, nil
}

func connect(self, peer Endpoint, timeout time.Duration) (*Network, error) {
	nc, err := net.DialTimeout("tcp", peer.Addr(), timeout)
	if err != nil {
		return nil, err
	}
	if err := nc.SetDeadline(time.Now().Add(timeout)); err != nil {
		nc.Close()
		return nil, err
	}
	conn := NewConn(nc)

	if err := conn.SendUint32(self.ID); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Flush(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Expect(peer.ID); err != nil {
		conn.Close()
		return nil, err
	}
	session, err := conn.ReceiveString()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := nc.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}

	return &Network{
		Conn:    conn,
		Self:    self,
		Peer:    peer,
		Session: session,
	}, nil
}
