package benchmark

import (
	"sort"

	"github.com/sarchlab/membench/cachetopo"
)

const (
	// minLatencySize is the floor and the leading probe of the latency
	// sweep.
	minLatencySize = 4 * 1024

	// maxLatencySizes bounds the sweep length regardless of how many
	// levels introspection reports.
	maxLatencySizes = 20
)

// mainMemoryProbes are the trailing sizes that exceed any cache on the
// target class of machines.
var mainMemoryProbes = []int64{16 * 1024 * 1024, 64 * 1024 * 1024}

// fallbackLatencySizes is the fixed sweep used when no topology is
// available.
var fallbackLatencySizes = []int64{
	4 * 1024,
	16 * 1024,
	256 * 1024,
	1024 * 1024,
	4 * 1024 * 1024,
	16 * 1024 * 1024,
	64 * 1024 * 1024,
}

// LatencySizes derives the buffer sizes of the latency sweep. With a
// topology, each data-holding level contributes one size that fits in it
// (50% of capacity) and one that exceeds it (150%), skipping levels whose
// fitting point falls under the floor. A small leading probe and the
// main-memory probes bracket the sweep. Without a topology, the fixed
// fallback list is returned.
func LatencySizes(topo cachetopo.Topology) []int64 {
	if !topo.Available() {
		return append([]int64(nil), fallbackLatencySizes...)
	}

	sizes := []int64{minLatencySize}

	for _, c := range topo {
		if c.Kind != cachetopo.KindData && c.Kind != cachetopo.KindUnified {
			continue
		}

		capacity := c.CapacityBytes()
		fits := capacity / 2
		if fits < minLatencySize {
			continue
		}

		sizes = append(sizes, fits, capacity+capacity/2)
	}

	sizes = append(sizes, mainMemoryProbes...)

	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	sizes = dedupe(sizes)

	if len(sizes) > maxLatencySizes {
		sizes = sizes[:maxLatencySizes]
	}

	return sizes
}

func dedupe(sorted []int64) []int64 {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}

	return out
}
