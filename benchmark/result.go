package benchmark

import "fmt"

// A BandwidthResult captures one bandwidth-style measurement. Derived
// metrics are computed from the raw elapsed time here, never inside the
// kernels.
type BandwidthResult struct {
	Name       string
	ElapsedSec float64
	BytesMoved int64
	Operations int64 // zero when MIOPS does not apply
	Checksum   uint64
	Skipped    bool
}

// GBPerSec returns the bandwidth in binary gigabytes per second.
func (r BandwidthResult) GBPerSec() float64 {
	return float64(r.BytesMoved) / r.ElapsedSec / (1 << 30)
}

// MBPerSec returns the bandwidth in binary megabytes per second.
func (r BandwidthResult) MBPerSec() float64 {
	return r.GBPerSec() * 1024
}

// MIOPS returns million operations per second for random-access tests.
func (r BandwidthResult) MIOPS() float64 {
	return float64(r.Operations) / r.ElapsedSec / 1e6
}

// A LatencyResult captures one pointer-chase measurement together with
// its classified cache level.
type LatencyResult struct {
	BufferSize int64
	Accesses   int64
	ElapsedSec float64
	Level      string
	Checksum   uint64
	Skipped    bool
}

// NSPerAccess returns the average nanoseconds per dependent access.
func (r LatencyResult) NSPerAccess() float64 {
	return r.ElapsedSec * 1e9 / float64(r.Accesses)
}

// USPerAccess returns the average microseconds per dependent access.
func (r LatencyResult) USPerAccess() float64 {
	return r.NSPerAccess() / 1000
}

// SizeLabel renders the buffer size the way the report displays it, e.g.
// "256KB" or "4MB".
func (r LatencyResult) SizeLabel() string {
	return sizeLabel(r.BufferSize)
}

// Unit returns the magnitude bucket of the buffer size.
func (r LatencyResult) Unit() string {
	if r.BufferSize >= 1024*1024 {
		return "MB"
	}

	return "KB"
}

func sizeLabel(size int64) string {
	if size >= 1024*1024 {
		return fmt.Sprintf("%dMB", size/(1024*1024))
	}

	return fmt.Sprintf("%dKB", size/1024)
}
