package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/restkv/cmd/util"
	"github.com/ValentinKolb/restkv/lib/store"
	"github.com/ValentinKolb/restkv/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for stores",
		Long:    "Runs a set of benchmarks against the store. All keys used are prefixed with __test and deleted afterwards.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfBatchSize        = 10
	perfSkip             = make([]string, 0)

	// latencies of the single operations, one timer per benchmark
	perfTimers = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "batch-size"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("How many entries are written per transaction in the set-many test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfBatchSize = viper.GetInt("batch-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread <= 0 || perfNumThreads <= 0 || perfBatchSize <= 0 {
		return fmt.Errorf("keys, threads and batch-size must be positive")
	}
	return nil
}

// benchmark is a single perf test. prefill sets all keys before the test runs.
type benchmark struct {
	name    string
	prefill bool
	op      func(ctx context.Context, key string, i int) error
}

func benchmarks() []benchmark {
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	return []benchmark{
		{name: "set", op: func(ctx context.Context, key string, _ int) error {
			return rpcStore.Set(ctx, key, []byte("test"))
		}},
		{name: "set-large", op: func(ctx context.Context, key string, _ int) error {
			return rpcStore.Set(ctx, key, largeValue)
		}},
		{name: "get", prefill: true, op: func(ctx context.Context, key string, _ int) error {
			_, _, err := rpcStore.Get(ctx, key)
			return err
		}},
		{name: "delete", prefill: true, op: func(ctx context.Context, key string, _ int) error {
			return rpcStore.Delete(ctx, key)
		}},
		{name: "has", prefill: true, op: func(ctx context.Context, key string, _ int) error {
			_, err := rpcStore.Has(ctx, key)
			return err
		}},
		{name: "has-not", op: func(ctx context.Context, key string, _ int) error {
			_, err := rpcStore.Has(ctx, key+"-not")
			return err
		}},
		{name: "set-many", op: func(ctx context.Context, key string, _ int) error {
			entries := make([]store.Entry, perfBatchSize)
			for j := range entries {
				entries[j] = store.Entry{Key: fmt.Sprintf("%s-%d", key, j), Value: []byte("test")}
			}
			return rpcStore.SetMany(ctx, entries)
		}},
		{name: "mixed", prefill: true, op: func(ctx context.Context, key string, i int) error {
			var err error
			switch i % 4 {
			case 0: // set
				err = rpcStore.Set(ctx, key, []byte("test"))
			case 1: // get
				_, _, err = rpcStore.Get(ctx, key)
			case 2: // delete
				err = rpcStore.Delete(ctx, key)
			case 3: // has
				_, err = rpcStore.Has(ctx, key)
			}
			return err
		}},
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fmt.Println("Performance testing tool for stores")

	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	for _, bm := range benchmarks() {
		if shouldSkip(bm.name) {
			printResult(bm.name, testing.BenchmarkResult{}, nil)
			continue
		}

		timer := gometrics.GetOrRegisterTimer(bm.name, perfTimers)
		result := testing.Benchmark(func(b *testing.B) {
			runBenchmark(ctx, b, bm, timer)
		})

		results[bm.name] = result
		printResult(bm.name, result, timer)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runBenchmark runs bm in parallel and records the latency of every operation in timer
func runBenchmark(ctx context.Context, b *testing.B, bm benchmark, timer gometrics.Timer) {
	// prepare keys
	getKey, iter := getKeys(bm.name)

	if bm.prefill {
		iter(func(k string) {
			if err := rpcStore.Set(ctx, k, []byte("test")); err != nil {
				log.Printf("(%s) - error setting key: %v\n", bm.name, err)
			}
		})
	}

	// cleanup
	b.Cleanup(func() {
		iter(func(k string) {
			if err := rpcStore.Delete(ctx, k); err != nil {
				log.Printf("(%s) - error deleting key: %v\n", bm.name, err)
			}
			if bm.name != "set-many" {
				return
			}
			for j := 0; j < perfBatchSize; j++ {
				_ = rpcStore.Delete(ctx, fmt.Sprintf("%s-%d", k, j))
			}
		})
	})

	b.SetParallelism(perfNumThreads)

	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			start := time.Now()
			err := bm.op(ctx, getKey(counter), counter)
			timer.UpdateSince(start)
			if err != nil {
				log.Printf("(%s) - error: %v\n", bm.name, err)
			}
			counter++
		}
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, timer gometrics.Timer) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
	if timer != nil {
		ps := timer.Percentiles([]float64{0.5, 0.99})
		fmt.Printf("\tp50=%s p99=%s", time.Duration(ps[0]), time.Duration(ps[1]))
	}
	fmt.Println()
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Skipped",
		"Endpoint", "Threads", "LargeValueSizeKB", "Keys Count", "BatchSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string
		p50, p99 := 0.0, 0.0

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
			ps := gometrics.GetOrRegisterTimer(test, perfTimers).Percentiles([]float64{0.5, 0.99})
			p50, p99 = ps[0], ps[1]
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(p50).String(),
			time.Duration(p99).String(),
			skipped,
			config.Endpoint,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
			strconv.Itoa(perfBatchSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
