package benchmark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/membench/benchmark"
	"github.com/sarchlab/membench/cachetopo"
)

// Without topology the sweep must be the fixed seven-entry list.
func TestLatencySizesFallback(t *testing.T) {
	sizes := benchmark.LatencySizes(cachetopo.Topology{})

	assert.Equal(t, []int64{
		4 * 1024,
		16 * 1024,
		256 * 1024,
		1024 * 1024,
		4 * 1024 * 1024,
		16 * 1024 * 1024,
		64 * 1024 * 1024,
	}, sizes)
}

func TestLatencySizesFromTopology(t *testing.T) {
	topo := cachetopo.Topology{
		{Level: 1, Kind: cachetopo.KindData, CapacityKB: 32},
		{Level: 1, Kind: cachetopo.KindInstruction, CapacityKB: 32},
		{Level: 2, Kind: cachetopo.KindUnified, CapacityKB: 512},
		{Level: 3, Kind: cachetopo.KindUnified, CapacityKB: 8192},
	}

	sizes := benchmark.LatencySizes(topo)

	// Leading probe, 50%/150% of L1d/L2/L3, trailing main-memory probes.
	assert.Equal(t, []int64{
		4 * 1024,
		16 * 1024,
		48 * 1024,
		256 * 1024,
		768 * 1024,
		4 * 1024 * 1024,
		12 * 1024 * 1024,
		16 * 1024 * 1024,
		64 * 1024 * 1024,
	}, sizes)
}

func TestLatencySizesSkipsLevelsUnderTheFloor(t *testing.T) {
	topo := cachetopo.Topology{
		{Level: 1, Kind: cachetopo.KindData, CapacityKB: 4},
		{Level: 2, Kind: cachetopo.KindUnified, CapacityKB: 256},
	}

	sizes := benchmark.LatencySizes(topo)

	// The 4 KB level's fitting point (2 KB) is under the floor, so the
	// level contributes nothing.
	assert.Equal(t, []int64{
		4 * 1024,
		128 * 1024,
		384 * 1024,
		16 * 1024 * 1024,
		64 * 1024 * 1024,
	}, sizes)
}

func TestLatencySizesAreSortedAndDeduplicated(t *testing.T) {
	topo := cachetopo.Topology{
		// Two levels with the same capacity produce duplicate points.
		{Level: 2, Kind: cachetopo.KindUnified, CapacityKB: 512},
		{Level: 2, Kind: cachetopo.KindUnified, CapacityKB: 512},
		{Level: 3, Kind: cachetopo.KindUnified, CapacityKB: 32 * 1024},
	}

	sizes := benchmark.LatencySizes(topo)

	require.NotEmpty(t, sizes)
	for i := 1; i < len(sizes); i++ {
		assert.Greater(t, sizes[i], sizes[i-1])
	}
}

func TestLatencySizesBounded(t *testing.T) {
	topo := cachetopo.Topology{}
	for i := 0; i < 40; i++ {
		topo = append(topo, cachetopo.Cache{
			Level:      2,
			Kind:       cachetopo.KindUnified,
			CapacityKB: 64 * (i + 1),
		})
	}

	sizes := benchmark.LatencySizes(topo)
	assert.LessOrEqual(t, len(sizes), 20)
}
