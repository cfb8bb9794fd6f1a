package rp2040

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NVIC", func() {
	var (
		board *Board
		order []int
	)

	BeforeEach(func() {
		board = MakeBuilder().Build("Pico")
		order = nil
		for _, irq := range []int{IRQTimer0, IRQTimer1, IRQUART0} {
			irq := irq
			board.NVIC().SetHandler(irq, func() { order = append(order, irq) })
		}
	})

	It("should deliver at once when unmasked", func() {
		board.NVIC().Raise(IRQUART0)

		Expect(order).To(Equal([]int{IRQUART0}))
	})

	It("should deliver pending interrupts in line order on restore", func() {
		was := board.NVIC().Disable()
		board.NVIC().Raise(IRQUART0)
		board.NVIC().Raise(IRQTimer1)
		Expect(order).To(BeEmpty())

		board.NVIC().Restore(was)

		Expect(order).To(Equal([]int{IRQTimer1, IRQUART0}))
	})

	It("should not unmask a nested disable", func() {
		outer := board.NVIC().Disable()
		inner := board.NVIC().Disable()
		board.NVIC().Raise(IRQTimer0)

		board.NVIC().Restore(inner)
		Expect(order).To(BeEmpty())

		board.NVIC().Restore(outer)
		Expect(order).To(Equal([]int{IRQTimer0}))
	})

	It("should raise alarms once they are due", func() {
		board.NVIC().RaiseAt(IRQTimer0, 0.5)

		board.NVIC().Service()
		Expect(order).To(BeEmpty())

		board.Clock().AdvanceTime(0.5)
		board.NVIC().Service()
		Expect(order).To(Equal([]int{IRQTimer0}))
		Expect(board.NVIC().Delivered(IRQTimer0)).To(Equal(1))
	})
})
