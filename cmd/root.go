// Package cmd provides the command-line interface for membench.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/membench/benchmark"
	"github.com/sarchlab/membench/recording"
)

var recordPath string

// recordPathAuto is what a bare --record sets; it picks a unique
// run-scoped database name.
const recordPathAuto = "auto"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "membench [size_mb]",
	Short: "membench measures memory bandwidth and access latency per cache level",
	Long: `membench measures the memory subsystem of the host: sequential and ` +
		`random bandwidth, copy throughput, and pointer-chase latency swept ` +
		`across buffer sizes derived from the discovered cache hierarchy. ` +
		`The optional positional argument sets the bandwidth buffer size in ` +
		`megabytes.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBenchmark,
}

func init() {
	rootCmd.Flags().StringVar(&recordPath, "record", "",
		"record results into a SQLite database; the optional value names "+
			"the file (without extension)")
	rootCmd.Flags().Lookup("record").NoOptDefVal = recordPathAuto
}

// Execute runs the root command and sets the process exit code.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func runBenchmark(cmd *cobra.Command, args []string) {
	// An optional .env file supplies defaults; its absence is fine.
	_ = godotenv.Load()

	sizeMB := benchmark.DefaultSizeMB
	if env := os.Getenv("MEMBENCH_SIZE_MB"); env != "" {
		sizeMB = parseBufferSizeMB(env, os.Stderr)
	}
	if len(args) > 0 {
		sizeMB = parseBufferSizeMB(args[0], os.Stderr)
	}

	builder := benchmark.MakeBuilder().WithBufferSizeMB(sizeMB)

	if cmd.Flags().Changed("record") || os.Getenv("MEMBENCH_RECORD") != "" {
		builder = builder.WithRecorder(
			recording.NewSQLiteRecorder(resolveRecordPath(recordPath)))
	}

	err := builder.Build().Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "membench: %s\n", err)
		atexit.Exit(1)
	}
}

// resolveRecordPath maps the bare --record form to the recorder's
// pick-a-unique-name behavior.
func resolveRecordPath(value string) string {
	if value == recordPathAuto {
		return ""
	}

	return value
}

// parseBufferSizeMB parses a buffer-size argument. Non-numeric or
// non-positive input warns and falls back to the default size; it never
// aborts the run.
func parseBufferSizeMB(arg string, errOut io.Writer) int {
	v, err := strconv.Atoi(arg)
	if err != nil || v <= 0 {
		fmt.Fprintf(errOut, "Invalid size specified. Using default %d MB\n",
			benchmark.DefaultSizeMB)
		return benchmark.DefaultSizeMB
	}

	return v
}
