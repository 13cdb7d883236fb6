package bench

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/kvkit/lib/common"
	"github.com/ValentinKolb/kvkit/lib/util"
)

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-32sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-32s%.0fns/op (%s/op)\t%.0f ops/sec\t%d allocs/op\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, result.AllocsPerOp())
}

// summarize returns statistics over the ns/op of all benchmarks that ran
func summarize(results map[string]testing.BenchmarkResult) util.Stats {
	var values []float64
	for _, result := range results {
		if result.NsPerOp() > 0 {
			values = append(values, float64(result.NsPerOp()))
		}
	}
	return util.NewStats(values)
}

// writeResultsToCSV writes benchmark results to a CSV file in run order
func writeResultsToCSV(csvPath string, order []string, results map[string]testing.BenchmarkResult, conf *common.BenchConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "AllocsPerOp", "Skipped",
		"Threads", "Keys", "Lifetime", "RenewOnRead",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, test := range order {
		result := results[test]

		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatInt(result.AllocsPerOp(), 10),
			skipped,
			strconv.Itoa(conf.Threads),
			strconv.Itoa(conf.Keys),
			conf.Lifetime.String(),
			strconv.FormatBool(conf.RenewOnRead),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", test, err)
		}
	}

	return writer.Error()
}

// formatSummary renders the ns/op statistics of a run
func formatSummary(stats util.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-32s%d\n", "benchmarks", stats.Count))
	sb.WriteString(fmt.Sprintf("%-32s%.0fns\n", "fastest", stats.Min))
	sb.WriteString(fmt.Sprintf("%-32s%.0fns\n", "slowest", stats.Max))
	sb.WriteString(fmt.Sprintf("%-32s%.0fns\n", "mean", stats.Mean))
	sb.WriteString(fmt.Sprintf("%-32s%.0fns\n", "median", stats.Median))
	sb.WriteString(fmt.Sprintf("%-32s%.0fns\n", "std deviation", stats.StdDeviation))
	return sb.String()
}
