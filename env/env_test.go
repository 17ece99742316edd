//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var config *Config

	require.Equal(t, rand.Reader, config.GetRandom())
	require.NotNil(t, config.GetLogger())
	require.False(t, config.GetDebug())

	r := config.GetRetry()
	require.Equal(t, DefaultAttempts, r.Attempts)
	require.Equal(t, DefaultDelay, r.Delay)
}

func TestOverrides(t *testing.T) {
	src := bytes.NewReader(make([]byte, 16))
	config := &Config{
		Rand:  src,
		Debug: true,
		Retry: Retry{
			Attempts: 2,
			Delay:    time.Millisecond,
		},
	}
	require.Equal(t, src, config.GetRandom())
	require.True(t, config.GetDebug())

	r := config.GetRetry()
	require.Equal(t, 2, r.Attempts)
	require.Equal(t, time.Millisecond, r.Delay)
}
