// Package benchmark drives one full measurement run: topology discovery,
// buffer setup, kernel execution in a fixed order, classification, and
// report emission. Results go to the output writer only; every warning or
// diagnostic goes to the error writer, so the two streams never mix.
package benchmark

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/membench/access"
	"github.com/sarchlab/membench/cachetopo"
	"github.com/sarchlab/membench/kernels"
	"github.com/sarchlab/membench/membuf"
	"github.com/sarchlab/membench/recording"
	"github.com/sarchlab/membench/timing"
)

// DefaultSizeMB is the bandwidth buffer size used when the invocation
// does not specify a valid one.
const DefaultSizeMB = 64

// A Benchmark owns the resources of one run. No kernel runs concurrently
// with another; the two buffers pass from kernel to kernel sequentially.
type Benchmark struct {
	bufferSizeMB    int
	iterations      int
	randomAccesses  int
	latencyAccesses int
	topoRoot        string
	seed            uint64
	recorder        recording.Recorder
	out             io.Writer
	errOut          io.Writer
}

// A Builder configures and creates a Benchmark.
type Builder struct {
	bufferSizeMB    int
	iterations      int
	randomAccesses  int
	latencyAccesses int
	topoRoot        string
	seed            uint64
	seedSet         bool
	recorder        recording.Recorder
	out             io.Writer
	errOut          io.Writer
}

// MakeBuilder creates a Builder with the default workload parameters.
func MakeBuilder() Builder {
	return Builder{
		bufferSizeMB:    DefaultSizeMB,
		iterations:      kernels.Iterations,
		randomAccesses:  kernels.RandomAccesses,
		latencyAccesses: kernels.LatencyAccesses,
		topoRoot:        cachetopo.DefaultRoot,
		out:             os.Stdout,
		errOut:          os.Stderr,
	}
}

// WithBufferSizeMB sets the size of the two bandwidth buffers.
func (b Builder) WithBufferSizeMB(mb int) Builder {
	b.bufferSizeMB = mb
	return b
}

// WithIterations sets the repetition count of the bandwidth kernels.
func (b Builder) WithIterations(n int) Builder {
	b.iterations = n
	return b
}

// WithRandomAccesses sets the index-set size of the random kernels.
func (b Builder) WithRandomAccesses(n int) Builder {
	b.randomAccesses = n
	return b
}

// WithLatencyAccesses sets the timed step count of the pointer chase.
func (b Builder) WithLatencyAccesses(n int) Builder {
	b.latencyAccesses = n
	return b
}

// WithTopologyRoot overrides where cache descriptions are read from.
func (b Builder) WithTopologyRoot(root string) Builder {
	b.topoRoot = root
	return b
}

// WithSeed fixes the index-generator seed instead of deriving one from
// the clock.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	b.seedSet = true
	return b
}

// WithRecorder attaches a result recorder.
func (b Builder) WithRecorder(r recording.Recorder) Builder {
	b.recorder = r
	return b
}

// WithOutput redirects the result stream.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.out = w
	return b
}

// WithErrorOutput redirects the diagnostic stream.
func (b Builder) WithErrorOutput(w io.Writer) Builder {
	b.errOut = w
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.bufferSizeMB <= 0 {
		panic("buffer size must be positive")
	}

	if b.iterations <= 0 {
		panic("iteration count must be positive")
	}
}

// Build creates the Benchmark.
func (b Builder) Build() *Benchmark {
	b.parametersMustBeValid()

	seed := b.seed
	if !b.seedSet {
		seed = timing.Seed()
	}

	return &Benchmark{
		bufferSizeMB:    b.bufferSizeMB,
		iterations:      b.iterations,
		randomAccesses:  b.randomAccesses,
		latencyAccesses: b.latencyAccesses,
		topoRoot:        b.topoRoot,
		seed:            seed,
		recorder:        b.recorder,
		out:             b.out,
		errOut:          b.errOut,
	}
}

// Run executes the full benchmark sequence. It returns an error only when
// a primary buffer cannot be allocated; every other failure degrades to a
// skipped entry, and the remaining tests still run.
func (m *Benchmark) Run() error {
	bufferSize := int64(m.bufferSizeMB) * 1024 * 1024

	m.printHeader(bufferSize)

	topo := cachetopo.ReadFrom(m.topoRoot)
	m.printEnvironment(topo)

	src, err := membuf.Allocate(membuf.CacheLineSize, int(bufferSize))
	if err != nil {
		return fmt.Errorf("allocate source buffer: %w", err)
	}
	defer src.Release()

	dst, err := membuf.Allocate(membuf.CacheLineSize, int(bufferSize))
	if err != nil {
		return fmt.Errorf("allocate destination buffer: %w", err)
	}
	defer dst.Release()

	fmt.Fprintln(m.out, "Initializing buffers...")
	src.Fill(0xAA)
	dst.Fill(0x55)

	bandwidth := m.runBandwidth(src, dst, bufferSize)
	m.printBandwidth(bandwidth)

	latency := m.runLatency(topo)
	m.printLatency(latency)

	m.printNotes(topo)

	if m.recorder != nil {
		m.record(topo, bandwidth, latency)
	}

	return nil
}

// runBandwidth runs the five bandwidth kernels against the two buffers in
// a fixed order. Index sets are generated outside the timed regions; a
// failed generation skips only the affected kernel.
func (m *Benchmark) runBandwidth(
	src, dst *membuf.Buffer,
	bufferSize int64,
) []BandwidthResult {
	words := src.Words()
	reps := m.iterations
	results := []BandwidthResult{}

	sec, sum := kernels.SequentialRead(words, reps)
	results = append(results, BandwidthResult{
		Name:       "Sequential Read",
		ElapsedSec: sec,
		BytesMoved: bufferSize * int64(reps),
		Checksum:   sum,
	})

	sec = kernels.SequentialWrite(words, reps)
	results = append(results, BandwidthResult{
		Name:       "Sequential Write",
		ElapsedSec: sec,
		BytesMoved: bufferSize * int64(reps),
	})

	results = append(results, m.runRandomRead(words, reps))
	results = append(results, m.runRandomWrite(words, reps))

	sec = kernels.Copy(dst.Bytes(), src.Bytes(), reps)
	results = append(results, BandwidthResult{
		Name:       "Memory Copy",
		ElapsedSec: sec,
		// Each repetition reads the source and writes the destination.
		BytesMoved: 2 * bufferSize * int64(reps),
	})

	return results
}

func (m *Benchmark) runRandomRead(words []uint64, reps int) BandwidthResult {
	result := BandwidthResult{
		Name:       "Random Read",
		ElapsedSec: kernels.Skipped,
		Skipped:    true,
	}

	idx, err := access.UniformIndices(m.randomAccesses, len(words), m.seed)
	if err != nil {
		fmt.Fprintf(m.errOut, "Skipping Random Read: %s\n", err)
		return result
	}

	sec, sum := kernels.RandomRead(words, idx, reps)
	ops := int64(m.randomAccesses) * int64(reps)

	return BandwidthResult{
		Name:       "Random Read",
		ElapsedSec: sec,
		BytesMoved: ops * membuf.WordSize,
		Operations: ops,
		Checksum:   sum,
	}
}

func (m *Benchmark) runRandomWrite(words []uint64, reps int) BandwidthResult {
	result := BandwidthResult{
		Name:       "Random Write",
		ElapsedSec: kernels.Skipped,
		Skipped:    true,
	}

	idx, err := access.UniformIndices(m.randomAccesses, len(words), m.seed+1)
	if err != nil {
		fmt.Fprintf(m.errOut, "Skipping Random Write: %s\n", err)
		return result
	}

	sec := kernels.RandomWrite(words, idx, reps)
	ops := int64(m.randomAccesses) * int64(reps)

	return BandwidthResult{
		Name:       "Random Write",
		ElapsedSec: sec,
		BytesMoved: ops * membuf.WordSize,
		Operations: ops,
	}
}

// runLatency sweeps the pointer-chase kernel over the topology-derived
// buffer sizes. Each size gets a fresh buffer that is released before the
// next size runs, on every path.
func (m *Benchmark) runLatency(topo cachetopo.Topology) []LatencyResult {
	sizes := LatencySizes(topo)

	results := make([]LatencyResult, 0, len(sizes))
	for _, size := range sizes {
		results = append(results, m.runLatencyAt(topo, size))
	}

	return results
}

func (m *Benchmark) runLatencyAt(
	topo cachetopo.Topology,
	size int64,
) LatencyResult {
	result := LatencyResult{BufferSize: size, Skipped: true}

	buf, err := membuf.Allocate(membuf.CacheLineSize, int(size))
	if err != nil {
		fmt.Fprintf(m.errOut,
			"Skipping %s latency test: %s\n", sizeLabel(size), err)
		return result
	}
	defer buf.Release()

	buf.Fill(0xCC)

	sec, cursor, err := kernels.Chase(buf, m.latencyAccesses, m.seed^uint64(size))
	if err != nil {
		fmt.Fprintf(m.errOut,
			"Skipping %s latency test: %s\n", sizeLabel(size), err)
		return result
	}

	// The final cursor is carried into the result so the traversal stays
	// observable outside the kernel.
	result = LatencyResult{
		BufferSize: size,
		Accesses:   int64(m.latencyAccesses),
		ElapsedSec: sec,
		Checksum:   cursor,
	}
	result.Level = Classify(topo, size, result.NSPerAccess())

	return result
}

func (m *Benchmark) record(
	topo cachetopo.Topology,
	bandwidth []BandwidthResult,
	latency []LatencyResult,
) {
	recording.WriteRunInfo(m.recorder)
	recordTopology(m.recorder, topo)
	recordBandwidth(m.recorder, bandwidth)
	recordLatency(m.recorder, latency)
	m.recorder.Flush()
}
