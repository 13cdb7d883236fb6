package common

import (
	"strings"
	"testing"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestBenchConfigSkipAndString(t *testing.T) {
	c := &BenchConfig{
		Targets:  []string{"ttl", "cache"},
		Skip:     []string{"ttl/put", " cache/get "},
		Threads:  4,
		Keys:     100,
		Lifetime: time.Second,
		LogLevel: "info",
	}

	assert.True(t, c.ShouldSkip("ttl/put"))
	assert.True(t, c.ShouldSkip("cache/get"))
	assert.False(t, c.ShouldSkip("ttl/get"))

	s := c.String()
	assert.True(t, strings.Contains(s, "BENCHMARK"))
	assert.True(t, strings.Contains(s, "ttl, cache"))
	assert.True(t, strings.Contains(s, "1s"))
}
