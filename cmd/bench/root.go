package bench

import (
	"fmt"
	"io"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/ValentinKolb/kvkit/cmd/util"
	"github.com/ValentinKolb/kvkit/lib/common"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
)

var Logger = logger.GetLogger("bench")

var (
	BenchCmd = &cobra.Command{
		Use:       "bench [ttl|cache|segmap|seq]...",
		Short:     "Benchmark the kvkit collections",
		Long:      "Runs throughput benchmarks for the given collections (all if none is given).",
		ValidArgs: []string{"ttl", "cache", "segmap", "seq"},
		Args:      cobra.OnlyValidArgs,
		RunE:      run,
	}
)

func init() {
	flags := BenchCmd.Flags()

	key := "skip"
	flags.String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. ttl-put,cache-weak-get)"))
	key = "threads"
	flags.Int(key, 10, util.WrapString("Parallelism multiplier used for the parallel benchmarks"))
	key = "keys"
	flags.Int(key, 1000, util.WrapString("How many different keys (or segments) to use for the tests"))
	key = "renew-on-read"
	flags.Bool(key, false, util.WrapString("Whether the ttl store renews the lifetime of a key on every read"))
	key = "csv"
	flags.String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	flags.Bool(key, false, util.WrapString("Print the collected metrics in Prometheus format after the run"))
	util.DurationFlag(flags, "lifetime", time.Minute, "Lifetime of the entries of the ttl store and the ttl cache")
}

// runner holds the state shared by all benchmarks of one run
type runner struct {
	conf     *common.BenchConfig
	runID    string             // unique key namespace of this run
	registry gometrics.Registry // ttl store counters
	results  map[string]testing.BenchmarkResult
	order    []string

	metrics      map[string]prometheusWriter // latest cache per benchmark
	metricsOrder []string
}

// prometheusWriter is implemented by cache.Cache
type prometheusWriter interface {
	WritePrometheus(w io.Writer)
}

func newRunner(conf *common.BenchConfig) *runner {
	return &runner{
		conf:     conf,
		runID:    uuid.NewString(),
		registry: gometrics.NewRegistry(),
		results:  make(map[string]testing.BenchmarkResult),
		metrics:  make(map[string]prometheusWriter),
	}
}

func run(_ *cobra.Command, args []string) error {
	conf := util.GetBenchConfig(args)
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return err
	}
	if conf.Keys <= 0 {
		return fmt.Errorf("keys must be positive, got %d", conf.Keys)
	}
	if conf.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", conf.Threads)
	}

	fmt.Println("Benchmark tool for the kvkit collections")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())

	r := newRunner(conf)
	Logger.Debugf("run id %s", r.runID)

	fmt.Println("starting tests...")

	for _, target := range []string{"ttl", "cache", "segmap", "seq"} {
		if !slices.Contains(conf.Targets, target) {
			continue
		}
		switch target {
		case "ttl":
			r.benchTTL()
		case "cache":
			r.benchCache()
		case "segmap":
			r.benchSegmap()
		case "seq":
			r.benchSeq()
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Print(formatSummary(summarize(r.results)))

	if conf.Metrics {
		fmt.Println()
		fmt.Println("Metrics:")
		r.writeMetrics(os.Stdout)
	}

	// Write results to csv if specified
	if conf.CSVPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", conf.CSVPath)
		if err := writeResultsToCSV(conf.CSVPath, r.order, r.results, conf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %w", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// benchmark runs fn unless it is skipped, then records and prints the result
func (r *runner) benchmark(name string, fn func(b *testing.B)) {
	var result testing.BenchmarkResult
	if !r.conf.ShouldSkip(name) {
		result = testing.Benchmark(fn)
	}
	r.results[name] = result
	r.order = append(r.order, name)
	printResult(name, result)
}

// keys creates the key set for a benchmark inside the namespace of this run
func (r *runner) keys(prefix string) []string {
	keys := make([]string, r.conf.Keys)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", r.runID, prefix, i)
	}
	return keys
}

// trackMetrics remembers c as the metrics source of the named benchmark, replacing the
// cache of an earlier b.N step
func (r *runner) trackMetrics(name string, c prometheusWriter) {
	if _, ok := r.metrics[name]; !ok {
		r.metricsOrder = append(r.metricsOrder, name)
	}
	r.metrics[name] = c
}

// writeMetrics writes the cache counters in Prometheus format and the ttl store counters
func (r *runner) writeMetrics(w io.Writer) {
	for _, name := range r.metricsOrder {
		r.metrics[name].WritePrometheus(w)
	}
	gometrics.WriteOnce(r.registry, w)
}
