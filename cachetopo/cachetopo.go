// Package cachetopo discovers the host's cache hierarchy through the
// sysfs cache description entries of one representative logical CPU.
// Discovery is best effort: a host without the interface yields an empty
// topology, which every consumer treats as a valid state rather than an
// error.
package cachetopo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Kind labels what a cache level holds.
type Kind string

// The cache kinds reported by the kernel.
const (
	KindData        Kind = "Data"
	KindInstruction Kind = "Instruction"
	KindUnified     Kind = "Unified"
)

// DefaultRoot is where Linux exposes per-CPU cache descriptions.
const DefaultRoot = "/sys/devices/system/cpu"

const (
	maxProbes = 8
	maxLevels = 4
)

// A Cache describes one discovered cache level. Fields that could not be
// read keep their zero value; a partially populated entry is acceptable.
type Cache struct {
	Level      int
	Kind       Kind
	CapacityKB int
	LineSize   int
	Ways       int
	SharedCPUs string
}

// CapacityBytes returns the level's capacity in bytes.
func (c Cache) CapacityBytes() int64 {
	return int64(c.CapacityKB) * 1024
}

// A Topology is the ordered set of discovered cache levels, ascending by
// capacity. It is constructed once per run and never mutated afterwards.
type Topology []Cache

// Available reports whether introspection found at least one level.
func (t Topology) Available() bool {
	return len(t) > 0
}

// Read enumerates the cache entries of cpu0 under the default sysfs root.
func Read() Topology {
	return ReadFrom(DefaultRoot)
}

// ReadFrom enumerates cache entries under an alternative root. Probing
// stops at the first missing index slot or after eight slots, and at most
// four levels are retained.
func ReadFrom(root string) Topology {
	topo := Topology{}

	for i := 0; i < maxProbes && len(topo) < maxLevels; i++ {
		dir := filepath.Join(root, "cpu0", "cache", fmt.Sprintf("index%d", i))
		if _, err := os.Stat(dir); err != nil {
			break
		}

		topo = append(topo, readEntry(dir, i))
	}

	sort.SliceStable(topo, func(i, j int) bool {
		return topo[i].CapacityKB < topo[j].CapacityKB
	})

	return topo
}

func readEntry(dir string, position int) Cache {
	c := Cache{
		Kind:       Kind(readString(filepath.Join(dir, "type"))),
		CapacityKB: readSizeKB(filepath.Join(dir, "size")),
		LineSize:   readInt(filepath.Join(dir, "coherency_line_size")),
		Ways:       readInt(filepath.Join(dir, "ways_of_associativity")),
		SharedCPUs: readString(filepath.Join(dir, "shared_cpu_list")),
	}
	c.Level = deriveLevel(c, position)

	return c
}

// deriveLevel assigns a level number from the entry's kind and capacity.
// Data and instruction caches sit at level 1. Unified caches up to 1 MB
// are level 2, larger ones level 3. Anything else falls back to the probe
// position.
func deriveLevel(c Cache, position int) int {
	switch c.Kind {
	case KindData, KindInstruction:
		return 1
	case KindUnified:
		if c.CapacityKB <= 1024 {
			return 2
		}
		return 3
	default:
		return position + 1
	}
}

func readString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func readInt(path string) int {
	v, err := strconv.Atoi(readString(path))
	if err != nil {
		return 0
	}

	return v
}

// readSizeKB parses a capacity such as "32K" or "8M" into kilobytes.
func readSizeKB(path string) int {
	s := readString(path)
	if s == "" {
		return 0
	}

	mult := 1
	switch {
	case strings.HasSuffix(s, "K"):
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		s = strings.TrimSuffix(s, "M")
		mult = 1024
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return v * mult
}
