package util

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestGetBenchConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("skip", "ttl-put, ,cache-weak-get")
	viper.Set("threads", 3)
	viper.Set("keys", 50)
	viper.Set("lifetime", "2s")
	viper.Set("log-level", "debug")

	conf := GetBenchConfig(nil)
	assert.Equal(t, []string{"ttl", "cache", "segmap", "seq"}, conf.Targets)
	assert.Equal(t, []string{"ttl-put", "cache-weak-get"}, conf.Skip)
	assert.Equal(t, 3, conf.Threads)
	assert.Equal(t, 50, conf.Keys)
	assert.Equal(t, 2*time.Second, conf.Lifetime)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.True(t, conf.ShouldSkip("ttl-put"))

	assert.Equal(t, []string{"seq"}, GetBenchConfig([]string{"seq"}).Targets)
}
