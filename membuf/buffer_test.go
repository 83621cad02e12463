package membuf_test

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/membench/membuf"
)

func TestAllocateAlignsBase(t *testing.T) {
	for _, size := range []int{64, 4096, 1 << 20, 100} {
		buf, err := membuf.Allocate(membuf.CacheLineSize, size)
		require.NoError(t, err)

		base := uintptr(unsafe.Pointer(&buf.Bytes()[0]))
		assert.Zerof(t, base%membuf.CacheLineSize,
			"base of %d-byte buffer is not line aligned", size)
		assert.Equal(t, size, buf.Size())

		buf.Release()
	}
}

func TestAllocateZeroSize(t *testing.T) {
	buf, err := membuf.Allocate(membuf.CacheLineSize, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, buf.Size())
	assert.Empty(t, buf.Bytes())
	assert.Empty(t, buf.Words())

	buf.Release()
}

func TestAllocateRejectsBadAlignment(t *testing.T) {
	for _, alignment := range []int{0, -64, 3, 48} {
		_, err := membuf.Allocate(alignment, 4096)
		assert.Errorf(t, err, "alignment %d must be rejected", alignment)
	}
}

func TestAllocateRejectsNegativeSize(t *testing.T) {
	_, err := membuf.Allocate(64, -1)
	assert.Error(t, err)
}

// An unsatisfiable request must surface as an error the caller can treat
// as fatal or skippable, never as a runtime panic.
func TestAllocateFailsExplicitlyOnUnsatisfiableSize(t *testing.T) {
	for _, size := range []int{1 << 62, math.MaxInt} {
		assert.NotPanicsf(t, func() {
			buf, err := membuf.Allocate(membuf.CacheLineSize, size)
			assert.Error(t, err)
			assert.Nil(t, buf)
		}, "size %d", size)
	}
}

func TestWordsViewSharesStorage(t *testing.T) {
	buf, err := membuf.Allocate(64, 128)
	require.NoError(t, err)
	defer buf.Release()

	words := buf.Words()
	require.Len(t, words, 16)

	words[0] = 0x1122334455667788
	assert.Equal(t, byte(0x88), buf.Bytes()[0])
}

func TestFill(t *testing.T) {
	buf, err := membuf.Allocate(64, 256)
	require.NoError(t, err)
	defer buf.Release()

	buf.Fill(0xCC)
	for _, b := range buf.Bytes() {
		require.Equal(t, byte(0xCC), b)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	buf, err := membuf.Allocate(64, 64)
	require.NoError(t, err)

	buf.Release()
	assert.NotPanics(t, buf.Release)
}
