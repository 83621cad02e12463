// Package access generates the buffer-offset sequences consumed by the
// measurement kernels. Generation always happens outside a kernel's timed
// region so that generator cost never pollutes a measurement.
package access

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// rng is a SplitMix64 generator. Measurement quality needs uniformity,
// not cryptographic strength.
type rng struct {
	state uint64
}

func (r *rng) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb

	return z ^ (z >> 31)
}

// bound scales a raw 64-bit draw into [0, n) with the multiply-high
// transform. Modulo reduction would bias the low bits whenever n is not a
// power of two.
func (r *rng) bound(n uint64) uint64 {
	hi, _ := bits.Mul64(r.next(), n)
	return hi
}

// UniformIndices draws count independent indices uniformly over
// [0, max). Draws are independent, so repeated values are expected. Used
// by the bandwidth-style random read and write kernels.
func UniformIndices(count, max int, seed uint64) ([]uint32, error) {
	if count <= 0 {
		return nil, errors.New("access: index count must be positive")
	}

	if max <= 0 {
		return nil, errors.New("access: element count must be positive")
	}

	if max > math.MaxUint32 {
		return nil, fmt.Errorf(
			"access: element count %d exceeds the 32-bit index range", max)
	}

	r := rng{state: seed}
	idx := make([]uint32, count)
	for i := range idx {
		idx[i] = uint32(r.bound(uint64(max)))
	}

	return idx, nil
}

// CycleSuccessors lays out a pointer-chase chain over cells numbered
// 0..cells-1. The returned slice maps each cell to its successor such
// that following successors visits every cell exactly once before
// returning to the start. A single covering cycle is required: disjoint
// sub-cycles would let the chase loop inside one cache window instead of
// sweeping the whole buffer.
func CycleSuccessors(cells int, seed uint64) ([]uint32, error) {
	if cells < 2 {
		return nil, fmt.Errorf(
			"access: chase chain needs at least 2 cells, got %d", cells)
	}

	if cells > math.MaxUint32 {
		return nil, fmt.Errorf(
			"access: cell count %d exceeds the 32-bit index range", cells)
	}

	// Fisher-Yates shuffle of the visiting order.
	order := make([]uint32, cells)
	for i := range order {
		order[i] = uint32(i)
	}

	r := rng{state: seed}
	for i := cells - 1; i > 0; i-- {
		j := int(r.bound(uint64(i + 1)))
		order[i], order[j] = order[j], order[i]
	}

	// Cell order[k] points at cell order[k+1 mod cells], closing one cycle
	// over all cells.
	next := make([]uint32, cells)
	for k := 0; k < cells; k++ {
		next[order[k]] = order[(k+1)%cells]
	}

	return next, nil
}
