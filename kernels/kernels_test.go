package kernels_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/membench/kernels"
	"github.com/sarchlab/membench/membuf"
)

var _ = Describe("Bandwidth kernels", func() {
	var (
		buf   *membuf.Buffer
		words []uint64
	)

	BeforeEach(func() {
		var err error
		buf, err = membuf.Allocate(membuf.CacheLineSize, 64*1024)
		Expect(err).NotTo(HaveOccurred())
		words = buf.Words()
	})

	AfterEach(func() {
		buf.Release()
	})

	It("should leave a written buffer summing to a closed form", func() {
		n := uint64(len(words))

		sec := kernels.SequentialWrite(words, 1)
		Expect(sec).To(BeNumerically(">=", 0))

		// After a write pass, slot i holds i, so one read pass sums to
		// n(n-1)/2 regardless of the write repetition count.
		for _, reps := range []int{1, 2, 5} {
			kernels.SequentialWrite(words, reps)

			_, sum := kernels.SequentialRead(words, 1)
			Expect(sum).To(Equal(n * (n - 1) / 2))
		}
	})

	It("should scale the read sum with the repetition count", func() {
		kernels.SequentialWrite(words, 1)

		_, one := kernels.SequentialRead(words, 1)
		_, three := kernels.SequentialRead(words, 3)
		Expect(three).To(Equal(3 * one))
	})

	It("should read back what random write stored", func() {
		idx := []uint32{3, 99, 7}

		sec := kernels.RandomWrite(words, idx, 1)
		Expect(sec).To(BeNumerically(">=", 0))
		Expect(words[3]).To(Equal(uint64(0)))
		Expect(words[99]).To(Equal(uint64(1)))
		Expect(words[7]).To(Equal(uint64(2)))

		_, sum := kernels.RandomRead(words, idx, 2)
		Expect(sum).To(Equal(uint64(2 * (0 + 1 + 2))))
	})

	It("should copy the full source into the destination", func() {
		dst, err := membuf.Allocate(membuf.CacheLineSize, buf.Size())
		Expect(err).NotTo(HaveOccurred())
		defer dst.Release()

		buf.Fill(0xAA)
		dst.Fill(0x55)

		sec := kernels.Copy(dst.Bytes(), buf.Bytes(), 3)
		Expect(sec).To(BeNumerically(">=", 0))
		Expect(dst.Bytes()).To(Equal(buf.Bytes()))
	})
})

var _ = Describe("Chase kernel", func() {
	It("should traverse a chain and report elapsed time", func() {
		buf, err := membuf.Allocate(membuf.CacheLineSize, 16*1024)
		Expect(err).NotTo(HaveOccurred())
		defer buf.Release()

		buf.Fill(0xCC)

		sec, cursor, err := kernels.Chase(buf, 10000, 42)
		Expect(err).NotTo(HaveOccurred())
		Expect(sec).To(BeNumerically(">=", 0))

		// The cursor always lands on a cell boundary.
		const stride = membuf.CacheLineSize / membuf.WordSize
		Expect(cursor % stride).To(BeZero())
	})

	It("should reject a chain of fewer than two cells", func() {
		buf, err := membuf.Allocate(membuf.CacheLineSize, membuf.CacheLineSize)
		Expect(err).NotTo(HaveOccurred())
		defer buf.Release()

		sec, _, err := kernels.Chase(buf, 1000, 1)
		Expect(err).To(HaveOccurred())
		Expect(sec).To(Equal(kernels.Skipped))
	})

	It("should be deterministic in chain layout for a fixed seed", func() {
		a, err := membuf.Allocate(membuf.CacheLineSize, 4096)
		Expect(err).NotTo(HaveOccurred())
		defer a.Release()
		b, err := membuf.Allocate(membuf.CacheLineSize, 4096)
		Expect(err).NotTo(HaveOccurred())
		defer b.Release()

		_, _, err = kernels.Chase(a, 100, 7)
		Expect(err).NotTo(HaveOccurred())
		_, _, err = kernels.Chase(b, 100, 7)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Words()).To(Equal(b.Words()))
	})
})
