// Package cmd implements the command-line interface of kvkit.
//
// The package is organized into several subpackages:
//
//   - bench: Benchmarks for the collections (ttl, cache, segmap, seq)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kvkit -help for a list of all commands.
package cmd
