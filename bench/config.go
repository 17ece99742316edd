//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bench implements the two-party benchmark runner.
package bench

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/p2p"
)

// ErrConfig marks invalid benchmark configurations. Configuration
// errors are detected before any network activity.
var ErrConfig = errors.New("configuration error")

// Usage describes the positional command line arguments.
const Usage = "<my-id> <party0> <party1> <operation> <vector-size> [repetitions]"

// Config defines the benchmark configuration.
type Config struct {
	Self        int
	Endpoints   []p2p.Endpoint
	Operation   circuit.Operation
	Size        int
	Repetitions int
	Debug       bool

	// Out receives the results and reports. Nil discards them.
	Out io.Writer
}

func configError(err error) error {
	return errors.Mark(err, ErrConfig)
}

// ParsePartyInfo parses the party endpoint in the
// <ordinal>,<host>,<port> format.
func ParsePartyInfo(info string) (p2p.Endpoint, error) {
	var ep p2p.Endpoint

	first := strings.IndexByte(info, ',')
	last := strings.LastIndexByte(info, ',')
	if first < 0 || first == last {
		return ep, configError(
			errors.Newf("invalid party info %q: expected party-id,host,port",
				info))
	}
	id, err := strconv.ParseUint(info[:first], 10, 32)
	if err != nil {
		return ep, configError(
			errors.Wrapf(err, "invalid party ID in %q", info))
	}
	host := info[first+1 : last]
	if len(host) == 0 {
		return ep, configError(errors.Newf("empty host in %q", info))
	}
	port, err := strconv.ParseUint(info[last+1:], 10, 16)
	if err != nil {
		return ep, configError(
			errors.Wrapf(err, "invalid port in %q", info))
	}
	ep.ID = int(id)
	ep.Host = host
	ep.Port = int(port)

	return ep, nil
}

// NewConfig creates the benchmark configuration from the positional
// command line arguments.
func NewConfig(args []string) (*Config, error) {
	if len(args) < 5 || len(args) > 6 {
		return nil, configError(
			errors.Newf("invalid arguments: expected %s", Usage))
	}
	self, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, configError(errors.Wrapf(err, "invalid my-id"))
	}

	config := &Config{
		Self:        self,
		Repetitions: 1,
	}
	for _, arg := range args[1:3] {
		ep, err := ParsePartyInfo(arg)
		if err != nil {
			return nil, err
		}
		config.Endpoints = append(config.Endpoints, ep)
	}
	if _, err := p2p.ValidateEndpoints(self, config.Endpoints); err != nil {
		return nil, configError(err)
	}

	config.Operation, err = circuit.ParseOperation(args[3])
	if err != nil {
		return nil, configError(err)
	}
	config.Size, err = positive("vector-size", args[4])
	if err != nil {
		return nil, err
	}
	if len(args) > 5 {
		config.Repetitions, err = positive("repetitions", args[5])
		if err != nil {
			return nil, err
		}
	}

	return config, nil
}

func positive(name, arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, configError(errors.Wrapf(err, "invalid %s", name))
	}
	if v <= 0 {
		return 0, configError(
			errors.Newf("invalid %s %d: must be positive", name, v))
	}
	return v, nil
}

// Print prints the configuration banner to w.
func (config *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "=== %v Benchmark ===\n", config.Operation)
	fmt.Fprintf(w, "My ID      : %d\n", config.Self)
	fmt.Fprintf(w, "Operation  : %v\n", config.Operation)
	fmt.Fprintf(w, "Vector size: %d\n", config.Size)
	fmt.Fprintf(w, "Repetitions: %d\n", config.Repetitions)
	fmt.Fprintf(w, "Debug      : %v\n", config.Debug)
	fmt.Fprintf(w, "Parties    :\n")
	for _, ep := range config.Endpoints {
		var me string
		if ep.ID == config.Self {
			me = " (me)"
		}
		fmt.Fprintf(w, " - Party %d: %s%s\n", ep.ID, ep.Addr(), me)
	}
}
