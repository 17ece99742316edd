//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markkurossi/mpcbench/bench"
	"github.com/markkurossi/mpcbench/env"
)

func main() {
	var debug bool

	command := &cobra.Command{
		Use:   "mpcbench " + bench.Usage,
		Short: "Two-party secure computation benchmark",
		Long: "Run the Sum, Count, ReLU, or Billionaire benchmark between " +
			"two parties over secret-shared 8-bit vectors. " +
			"Party info is in the <party-id>,<host>,<port> format.",
		Args: cobra.RangeArgs(5, 6),
		Run: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			cfg, err := bench.NewConfig(args)
			if err != nil {
				logger.Error().Err(err).Msg("invalid arguments")
				os.Exit(1)
			}
			cfg.Debug = debug
			cfg.Out = os.Stdout

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt)
			defer stop()

			_, err = bench.Run(ctx, cfg, &env.Config{
				Logger: &logger,
				Debug:  debug,
			})
			if err != nil {
				logger.Error().Err(err).Msg("benchmark failed")
				stop()
				os.Exit(1)
			}
		},
	}
	command.Flags().BoolVarP(&debug, "debug", "d", false,
		"Print per-party diagnostics")

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
