package benchmark

import (
	"fmt"

	"github.com/sarchlab/membench/cachetopo"
)

// MainMemory is the label for accesses that fall outside every cache
// level.
const MainMemory = "Main Memory"

// Classify maps a buffer size and measured latency to a cache-level
// label. With a discovered topology, the smallest data-holding level that
// can contain the whole buffer wins. Without one, a static size/latency
// table approximates the answer.
func Classify(
	topo cachetopo.Topology,
	bufferSize int64,
	latencyNS float64,
) string {
	if !topo.Available() {
		return classifyStatic(bufferSize, latencyNS)
	}

	for _, c := range topo {
		if c.Kind != cachetopo.KindData && c.Kind != cachetopo.KindUnified {
			continue
		}

		if c.CapacityBytes() >= bufferSize {
			return fmt.Sprintf("L%d", c.Level)
		}
	}

	return MainMemory
}

// classifyStatic is the fallback heuristic for hosts without cache
// introspection. The thresholds are typical of contemporary desktop
// parts; treat the result as approximate.
func classifyStatic(bufferSize int64, latencyNS float64) string {
	switch {
	case bufferSize <= 32*1024:
		if latencyNS < 5 {
			return "L1"
		}
		return "L2"
	case bufferSize <= 512*1024:
		if latencyNS < 15 {
			return "L2"
		}
		return "L3"
	case bufferSize <= 8*1024*1024:
		if latencyNS < 50 {
			return "L3"
		}
		return MainMemory
	default:
		return MainMemory
	}
}
