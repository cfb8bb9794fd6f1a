package flash

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Window", func() {
	It("should split a 64 KiB window into 16 regions", func() {
		w, err := NewWindow(2*1024*1024, 65536)

		Expect(err).NotTo(HaveOccurred())
		Expect(w.NumRegions()).To(Equal(16))
	})

	It("should reject a storage size that is not sector aligned", func() {
		_, err := NewWindow(2*1024*1024, 5000)

		Expect(errors.Is(err, ErrUnalignedStorageSize)).To(BeTrue())

		var alignErr *AlignmentError
		Expect(errors.As(err, &alignErr)).To(BeTrue())
		Expect(alignErr.Alignment).To(Equal(uint32(SectorSize)))
		Expect(alignErr.StorageSize).To(Equal(uint32(5000)))
		Expect(err.Error()).To(ContainSubstring("4096"))
	})

	DescribeTable("unaligned sizes",
		func(size uint32) {
			_, err := NewWindow(16*1024*1024, size)
			Expect(err).To(MatchError(ErrUnalignedStorageSize))
		},
		Entry("one byte", uint32(1)),
		Entry("one byte short", uint32(SectorSize-1)),
		Entry("one byte over", uint32(SectorSize+1)),
		Entry("half a sector extra", uint32(3*SectorSize+SectorSize/2)),
	)

	DescribeTable("derived addresses",
		func(flashEnd, size, base uint32) {
			w, err := NewWindow(flashEnd, size)

			Expect(err).NotTo(HaveOccurred())
			Expect(w.FlashEnd()).To(Equal(flashEnd))
			Expect(w.StorageSize()).To(Equal(size))
			Expect(w.BaseAddr()).To(Equal(flashEnd - size))
			Expect(w.BaseAddr()).To(Equal(base))
			Expect(w.XIPBaseAddr()).To(Equal(uint32(XIPBase) + base))
		},
		Entry("1 MiB part, 64 KiB window",
			uint32(0x0010_0000), uint32(0x1_0000), uint32(0x000F_0000)),
		Entry("2 MiB part, 128 sectors",
			uint32(0x0020_0000), uint32(128*SectorSize), uint32(0x0018_0000)),
		Entry("whole chip", uint32(0x0020_0000), uint32(0x0020_0000), uint32(0)),
		Entry("empty window", uint32(0x0020_0000), uint32(0), uint32(0x0020_0000)),
	)

	It("should reject a window larger than flash", func() {
		_, err := NewWindow(0x1_0000, 0x2_0000)

		Expect(err).To(MatchError(ErrWindowExceedsFlash))
	})

	It("should translate region addresses", func() {
		w, _ := NewWindow(0x0010_0000, 0x1_0000)

		Expect(w.RegionAddr(0)).To(Equal(uint32(0x000F_0000)))
		Expect(w.RegionAddr(3)).To(Equal(uint32(0x000F_3000)))
		Expect(w.XIPAddr(3, 0x10)).To(Equal(uint32(0x100F_3010)))
		Expect(w.ProgramAddr(0x1234)).To(Equal(uint32(0x000F_1234)))
	})

	It("should tell whether a span is inside the window", func() {
		w, _ := NewWindow(0x0010_0000, 2*SectorSize)

		Expect(w.Contains(0, 2*SectorSize)).To(BeTrue())
		Expect(w.Contains(SectorSize, SectorSize+1)).To(BeFalse())
		Expect(w.Contains(-1, 1)).To(BeFalse())
	})
})
