//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the benchmark driver.
package env

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultAttempts is the default number of connection attempts.
	DefaultAttempts = 10

	// DefaultDelay is the default delay between connection attempts.
	DefaultDelay = 500 * time.Millisecond
)

// Config defines the global system configuration for the benchmark
// driver. It configures system operation for all modules. Config
// must not be modified after being passed to any module. It is safe
// for concurrent use by multiple modules as they do not modify it.
type Config struct {
	Rand   io.Reader
	Logger *zerolog.Logger
	Retry  Retry
	Debug  bool
}

// Retry defines the connection bootstrap retry policy. The zero
// value selects the defaults.
type Retry struct {
	Attempts int
	Delay    time.Duration
}

var nopLogger = zerolog.Nop()

// GetRandom returns the source of entropy for input masks, OT, and
// other cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the logger. Without a configured logger, all
// events are discarded.
func (config *Config) GetLogger() *zerolog.Logger {
	if config != nil && config.Logger != nil {
		return config.Logger
	}
	return &nopLogger
}

// GetDebug tests if the per-party diagnostics are enabled.
func (config *Config) GetDebug() bool {
	return config != nil && config.Debug
}

// GetRetry returns the connection retry policy with defaults applied.
func (config *Config) GetRetry() Retry {
	var r Retry
	if config != nil {
		r = config.Retry
	}
	if r.Attempts <= 0 {
		r.Attempts = DefaultAttempts
	}
	if r.Delay <= 0 {
		r.Delay = DefaultDelay
	}
	return r
}
