package benchmark

import (
	"github.com/sarchlab/membench/cachetopo"
	"github.com/sarchlab/membench/recording"
)

// Row types stored by the optional result recorder. Fields stay flat
// scalars so the reflective SQLite writer can map them to columns.

// A BandwidthRow is one bandwidth result as stored in the database.
type BandwidthRow struct {
	Test       string
	GBPerSec   float64
	MBPerSec   float64
	MIOPS      float64
	ElapsedSec float64
	BytesMoved int64
	Checksum   int64
	Skipped    bool
}

// A LatencyRow is one latency result as stored in the database.
type LatencyRow struct {
	BufferBytes int64
	NSPerAccess float64
	USPerAccess float64
	Level       string
	Accesses    int64
	Checksum    int64
	Skipped     bool
}

// A TopologyRow is one discovered cache level as stored in the database.
type TopologyRow struct {
	Level      int
	Kind       string
	CapacityKB int
	LineSize   int
	Ways       int
	SharedCPUs string
}

func recordTopology(r recording.Recorder, topo cachetopo.Topology) {
	r.CreateTable("cache_topology", TopologyRow{})

	for _, c := range topo {
		r.InsertData("cache_topology", TopologyRow{
			Level:      c.Level,
			Kind:       string(c.Kind),
			CapacityKB: c.CapacityKB,
			LineSize:   c.LineSize,
			Ways:       c.Ways,
			SharedCPUs: c.SharedCPUs,
		})
	}
}

func recordBandwidth(r recording.Recorder, results []BandwidthResult) {
	r.CreateTable("bandwidth_results", BandwidthRow{})

	for _, res := range results {
		row := BandwidthRow{
			Test:       res.Name,
			ElapsedSec: res.ElapsedSec,
			BytesMoved: res.BytesMoved,
			// The SQLite driver rejects uint64 values with the high bit
			// set, so the checksum is stored as its signed bit pattern.
			Checksum: int64(res.Checksum),
			Skipped:  res.Skipped,
		}

		if !res.Skipped {
			row.GBPerSec = res.GBPerSec()
			row.MBPerSec = res.MBPerSec()
			if res.Operations > 0 {
				row.MIOPS = res.MIOPS()
			}
		}

		r.InsertData("bandwidth_results", row)
	}
}

func recordLatency(r recording.Recorder, results []LatencyResult) {
	r.CreateTable("latency_results", LatencyRow{})

	for _, res := range results {
		row := LatencyRow{
			BufferBytes: res.BufferSize,
			Level:       res.Level,
			Accesses:    res.Accesses,
			Checksum:    int64(res.Checksum),
			Skipped:     res.Skipped,
		}

		if !res.Skipped {
			row.NSPerAccess = res.NSPerAccess()
			row.USPerAccess = res.USPerAccess()
		}

		r.InsertData("latency_results", row)
	}
}
