// Package membuf allocates the cache-line-aligned memory regions that the
// measurement kernels run against.
package membuf

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

// CacheLineSize is the alignment requested at every call site. Cells of
// the pointer-chase kernel use the same granularity so that unrelated
// accesses never share a line.
const CacheLineSize = 64

// WordSize is the access granularity of the bandwidth kernels.
const WordSize = 8

// A Buffer owns a contiguous, aligned region of memory. A buffer belongs
// to exactly one run and is released exactly once after the kernels
// referencing it have completed.
type Buffer struct {
	raw  []byte
	data []byte
}

// Allocate returns a buffer of exactly size bytes whose base address is a
// multiple of alignment. Alignment must be a power of two. A size of zero
// yields a valid zero-length handle that still honors the alignment
// contract.
func Allocate(alignment, size int) (*Buffer, error) {
	if alignment <= 0 || bits.OnesCount(uint(alignment)) != 1 {
		return nil, fmt.Errorf("membuf: alignment %d is not a power of two", alignment)
	}

	if size < 0 {
		return nil, fmt.Errorf("membuf: negative buffer size %d", size)
	}

	if size > math.MaxInt-alignment {
		return nil, fmt.Errorf("membuf: buffer size %d is not satisfiable", size)
	}

	// Over-allocate by one alignment unit and slice at the first aligned
	// offset.
	raw, err := reserve(size + alignment)
	if err != nil {
		return nil, err
	}

	base := uintptr(unsafe.Pointer(&raw[0]))

	off := 0
	if r := int(base & uintptr(alignment-1)); r != 0 {
		off = alignment - r
	}

	return &Buffer{
		raw:  raw,
		data: raw[off : off+size : off+size],
	}, nil
}

// reserve acquires n bytes of backing storage. The runtime rejects
// requests beyond its allocation limit with a panic; that panic is
// converted into an error here so callers can skip the affected test or
// abort per their own policy.
func reserve(n int) (raw []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("membuf: cannot reserve %d bytes: %v", n, r)
		}
	}()

	return make([]byte, n), nil
}

// Size returns the usable byte size of the buffer.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Bytes returns the aligned byte view of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Words views the buffer as 8-byte machine words. The buffer size must be
// a multiple of the word size.
func (b *Buffer) Words() []uint64 {
	if len(b.data)%WordSize != 0 {
		panic(fmt.Sprintf(
			"membuf: buffer size %d is not a multiple of the word size",
			len(b.data)))
	}

	if len(b.data) == 0 {
		return nil
	}

	return unsafe.Slice(
		(*uint64)(unsafe.Pointer(&b.data[0])), len(b.data)/WordSize)
}

// Fill writes the byte v into every position of the buffer.
func (b *Buffer) Fill(v byte) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Release drops the buffer's backing memory. Releasing an already-released
// buffer is a no-op.
func (b *Buffer) Release() {
	b.raw = nil
	b.data = nil
}
