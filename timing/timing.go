// Package timing provides the wall-clock primitives that bound every
// measured region and seed the access-pattern generators.
package timing

import "time"

// A Stopwatch measures elapsed wall-clock time over one region. Go's
// time.Now carries a monotonic reading, so the measurement is unaffected
// by wall-clock adjustments.
type Stopwatch struct {
	start time.Time
}

// Start marks the beginning of the measured region.
func (s *Stopwatch) Start() {
	s.start = time.Now()
}

// ElapsedSec returns the seconds since Start. The result is never
// negative.
func (s *Stopwatch) ElapsedSec() float64 {
	d := time.Since(s.start)
	if d < 0 {
		d = 0
	}

	return d.Seconds()
}

// Seed derives a seed for the index generators from the current clock
// reading, XORing the second and nanosecond fields. The seed is
// non-cryptographic; run-to-run reproducibility is not a goal.
func Seed() uint64 {
	now := time.Now()
	return uint64(now.Unix()) ^ uint64(now.Nanosecond())
}
