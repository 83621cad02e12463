// Package kernels implements the timed memory workloads. Every kernel
// performs identical work on each repetition and keeps generator and
// allocation overhead outside the timed region. Kernels that only read
// return the accumulated sum; the caller reports or records it, which
// creates the external data dependency that keeps the loops observable to
// the optimizer.
package kernels

import (
	"github.com/sarchlab/membench/access"
	"github.com/sarchlab/membench/membuf"
	"github.com/sarchlab/membench/timing"
)

// Workload parameters shared by the report driver.
const (
	// Iterations is the repetition count of every bandwidth kernel.
	Iterations = 3

	// RandomAccesses is the size of the pre-generated index set consumed
	// by one repetition of the random read and write kernels.
	RandomAccesses = 1000000

	// LatencyAccesses is the number of dependent loads timed by the
	// pointer-chase kernel. The larger of the two candidate counts is
	// used so that per-access cost amortizes well below the clock
	// resolution.
	LatencyAccesses = 1000000
)

// Skipped is the sentinel elapsed time reported for a kernel that could
// not run. Callers skip the entry and continue with the remaining tests.
const Skipped = -1.0

// SequentialRead sums every word of the buffer, reps times.
func SequentialRead(words []uint64, reps int) (float64, uint64) {
	var sw timing.Stopwatch
	sw.Start()

	var sum uint64
	for iter := 0; iter < reps; iter++ {
		for _, w := range words {
			sum += w
		}
	}

	return sw.ElapsedSec(), sum
}

// SequentialWrite stores each slot's own index into it, reps times.
func SequentialWrite(words []uint64, reps int) float64 {
	var sw timing.Stopwatch
	sw.Start()

	for iter := 0; iter < reps; iter++ {
		for i := range words {
			words[i] = uint64(i)
		}
	}

	return sw.ElapsedSec()
}

// RandomRead sums the words selected by the pre-generated index set,
// reps times. The index set must address [0, len(words)).
func RandomRead(words []uint64, idx []uint32, reps int) (float64, uint64) {
	var sw timing.Stopwatch
	sw.Start()

	var sum uint64
	for iter := 0; iter < reps; iter++ {
		for _, j := range idx {
			sum += words[j]
		}
	}

	return sw.ElapsedSec(), sum
}

// RandomWrite stores the running access number into the words selected by
// the pre-generated index set, reps times.
func RandomWrite(words []uint64, idx []uint32, reps int) float64 {
	var sw timing.Stopwatch
	sw.Start()

	for iter := 0; iter < reps; iter++ {
		for i, j := range idx {
			words[j] = uint64(i)
		}
	}

	return sw.ElapsedSec()
}

// Copy copies the full source buffer into the destination, reps times.
// The buffers must not overlap; each repetition moves len(src) bytes in
// and the same amount out.
func Copy(dst, src []byte, reps int) float64 {
	var sw timing.Stopwatch
	sw.Start()

	for iter := 0; iter < reps; iter++ {
		copy(dst, src)
	}

	return sw.ElapsedSec()
}

// Chase measures dependent-load latency over cache-line-sized cells. The
// buffer is carved into 64-byte cells, each holding the word offset of
// its successor on a single random cycle covering every cell. Building
// the chain writes every line, forcing residency; an untimed warmup of
// three full sweeps settles cache and TLB state; then a single continuous
// traversal of accesses steps is timed. Each load's address depends on
// the previous load's value, so latency cannot hide behind prefetch or
// out-of-order execution.
//
// The final cursor position is returned alongside the elapsed time so the
// traversal has an observable result. Buffers smaller than two cells are
// degenerate and yield an error.
func Chase(buf *membuf.Buffer, accesses int, seed uint64) (float64, uint64, error) {
	words := buf.Words()

	const stride = membuf.CacheLineSize / membuf.WordSize
	cells := len(words) / stride

	next, err := access.CycleSuccessors(cells, seed)
	if err != nil {
		return Skipped, 0, err
	}

	// Store each cell's successor as a word offset in the cell's first
	// word. The stores also fault every line in.
	for i, n := range next {
		words[i*stride] = uint64(n) * stride
	}

	p := uint64(0)
	for i := 0; i < 3*cells; i++ {
		p = words[p]
	}

	var sw timing.Stopwatch
	sw.Start()

	for i := 0; i < accesses; i++ {
		p = words[p]
	}

	return sw.ElapsedSec(), p, nil
}
