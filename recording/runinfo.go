package recording

import (
	"os"
	"strings"
	"time"
)

// RunInfo is one property of the invocation context of a benchmark run.
type RunInfo struct {
	Property string
	Value    string
}

// RunInfoTable is where the invocation context is stored.
const RunInfoTable = "run_info"

// WriteRunInfo stores the start time, command line, and working directory
// of the current run.
func WriteRunInfo(r Recorder) {
	r.CreateTable(RunInfoTable, RunInfo{})

	start := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.InsertData(RunInfoTable, RunInfo{"Start Time", start})

	r.InsertData(RunInfoTable, RunInfo{"Command", strings.Join(os.Args, " ")})

	wd, err := os.Getwd()
	if err == nil {
		r.InsertData(RunInfoTable, RunInfo{"Working Directory", wd})
	}
}
