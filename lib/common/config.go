package common

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Benchmark configuration struct
// --------------------------------------------------------------------------

// BenchConfig holds all parameters of the `kvkit bench` command.
type BenchConfig struct {
	// Targets are the collections to benchmark (ttl, cache, segmap, seq)
	Targets []string
	// Skip lists benchmarks to skip
	Skip []string

	// Threads is the parallelism used with testing.B.RunParallel
	Threads int
	// Keys is the number of distinct keys (or segments) per benchmark
	Keys int
	// Lifetime is the entry lifetime used by the ttl and cache benchmarks
	Lifetime time.Duration
	// RenewOnRead enables renew-on-read for the ttl benchmark
	RenewOnRead bool

	// CSVPath optionally exports the results
	CSVPath string
	// Metrics prints the cache metrics in Prometheus format after the run
	Metrics bool

	// Logging configuration
	LogLevel string
}

// ShouldSkip reports whether the named benchmark is in the skip list
func (c *BenchConfig) ShouldSkip(name string) bool {
	for _, s := range c.Skip {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}

// String returns a formatted string representation of the configuration
func (c *BenchConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Benchmark")
	addField("Targets", strings.Join(c.Targets, ", "))
	addField("Skip", strings.Join(c.Skip, ", "))
	addField("Threads", fmt.Sprintf("%d", c.Threads))
	addField("Keys", fmt.Sprintf("%d", c.Keys))

	addSection("Expiry")
	addField("Lifetime", c.Lifetime.String())
	addField("Renew On Read", fmt.Sprintf("%t", c.RenewOnRead))

	addSection("Output")
	addField("CSV", c.CSVPath)
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
