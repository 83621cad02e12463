package benchmark

import (
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	gomem "github.com/shirou/gopsutil/mem"

	"github.com/sarchlab/membench/cachetopo"
)

const tableRule = "------------------------------------------------------------------------"

func (m *Benchmark) printHeader(bufferSize int64) {
	fmt.Fprintln(m.out, "Memory Bandwidth Benchmark")
	fmt.Fprintln(m.out, "==========================")
	fmt.Fprintf(m.out, "Buffer size: %d MB (%d bytes)\n",
		m.bufferSizeMB, bufferSize)
	fmt.Fprintf(m.out, "Iterations: %d\n", m.iterations)
	fmt.Fprintf(m.out, "Random accesses per iteration: %d\n",
		m.randomAccesses)
}

// printEnvironment summarizes the host and, when available, its cache
// hierarchy. Probe failures leave lines out instead of failing the run.
func (m *Benchmark) printEnvironment(topo cachetopo.Topology) {
	if logical, err := cpu.Counts(true); err == nil {
		physical, perr := cpu.Counts(false)
		if perr != nil {
			physical = logical
		}
		fmt.Fprintf(m.out, "CPU cores available: %d logical, %d physical\n",
			logical, physical)
	}

	if vm, err := gomem.VirtualMemory(); err == nil {
		fmt.Fprintf(m.out, "Total memory: %d MB\n", vm.Total/(1024*1024))
	}

	if info, err := host.Info(); err == nil {
		fmt.Fprintf(m.out, "Platform: %s %s (%s)\n",
			info.Platform, info.PlatformVersion, info.KernelArch)
	}

	fmt.Fprintln(m.out)

	if !topo.Available() {
		fmt.Fprintln(m.out,
			"Cache topology: unavailable, using static classification heuristics")
		return
	}

	fmt.Fprintln(m.out, "Cache hierarchy:")
	for _, c := range topo {
		fmt.Fprintf(m.out,
			"  L%d %-12s %6d KB, %d B lines, %d-way, shared with CPUs %s\n",
			c.Level, c.Kind, c.CapacityKB, c.LineSize, c.Ways, c.SharedCPUs)
	}
}

func (m *Benchmark) printBandwidth(results []BandwidthResult) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Running bandwidth tests...")
	fmt.Fprintf(m.out, "%-20s  %-50s\n", "Test", "Bandwidth")
	fmt.Fprintln(m.out, tableRule)

	for _, r := range results {
		if r.Skipped {
			continue
		}

		if r.Operations > 0 {
			fmt.Fprintf(m.out,
				"%-20s: %8.3f GB/s (%8.1f MB/s) - %.1f MIOPS - Time: %.3f seconds\n",
				r.Name, r.GBPerSec(), r.MBPerSec(), r.MIOPS(), r.ElapsedSec)
			continue
		}

		fmt.Fprintf(m.out,
			"%-20s: %8.3f GB/s (%8.1f MB/s) - Time: %.3f seconds\n",
			r.Name, r.GBPerSec(), r.MBPerSec(), r.ElapsedSec)
	}
}

func (m *Benchmark) printLatency(results []LatencyResult) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Running memory access latency tests...")
	fmt.Fprintf(m.out, "%-12s %-8s  %-50s\n",
		"Buffer Size", "Unit", "Average Latency")
	fmt.Fprintln(m.out, tableRule)

	for _, r := range results {
		if r.Skipped {
			continue
		}

		fmt.Fprintf(m.out,
			"%-12s (%6s): %8.1f ns/access (%6.2f us/access) - %-11s - %d accesses\n",
			r.SizeLabel(), r.Unit(), r.NSPerAccess(), r.USPerAccess(),
			r.Level, r.Accesses)
	}
}

func (m *Benchmark) printNotes(topo cachetopo.Topology) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Notes:")
	fmt.Fprintln(m.out,
		"- Sequential Read/Write: measures linear memory access patterns")
	fmt.Fprintln(m.out,
		"- Random Read/Write: measures random memory access patterns")
	fmt.Fprintln(m.out,
		"- Memory Copy: measures combined read+write bandwidth")
	fmt.Fprintln(m.out,
		"- MIOPS: Million I/O Operations Per Second")
	fmt.Fprintf(m.out,
		"- Random tests use %d accesses per iteration\n", m.randomAccesses)
	fmt.Fprintf(m.out,
		"- Latency tests chase %d dependent pointers per buffer size\n",
		m.latencyAccesses)
	if topo.Available() {
		fmt.Fprintln(m.out,
			"- Cache levels are classified from the discovered topology")
	} else {
		fmt.Fprintln(m.out,
			"- Cache levels are classified with approximate static thresholds")
	}
	fmt.Fprintln(m.out,
		"- Results vary with CPU cache, memory type, and system load")
}
