package rp2040

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/xipflash/flash"
)

var _ = Describe("XIP", func() {
	var board *Board

	BeforeEach(func() {
		board = MakeBuilder().WithFlashSize(0x10_0000).Build("Pico")
	})

	It("should read erased flash", func() {
		Expect(board.XIP().View(flash.XIPBase+3, 5)).
			To(Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}))
	})

	It("should count hits and misses per line", func() {
		board.XIP().View(flash.XIPBase, 16)
		board.XIP().View(flash.XIPBase+4, 4)

		Expect(board.XIP().Stats().Misses).To(Equal(uint64(2)))
		Expect(board.XIP().Stats().Hits).To(Equal(uint64(1)))
	})

	It("should fault outside mapped flash", func() {
		Expect(func() { board.XIP().View(flash.XIPBase+0x10_0000-2, 4) }).
			To(PanicWith(BeAssignableToTypeOf(&BusFault{})))
	})

	It("should fault in command mode", func() {
		board.XIP().exit()

		Expect(func() { board.XIP().View(flash.XIPBase, 1) }).
			To(PanicWith(BeAssignableToTypeOf(&BusFault{})))
	})

	It("should refuse to program while memory-mapped", func() {
		Expect(func() { board.ROM().RangeProgram(0, []byte{0}) }).To(Panic())
	})
})
