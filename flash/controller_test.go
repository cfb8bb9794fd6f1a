package flash

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/xipflash/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Controller", func() {
	var (
		mockCtrl *gomock.Controller
		driver   *MockDriver
		xip      *MockMemoryMap
		section  *MockCriticalSection
		exec     *MockExecutor

		events []string
	)

	record := func(e string) func() {
		return func() { events = append(events, e) }
	}

	builder := func() Builder {
		return MakeBuilder().
			WithFlashEnd(0x0010_0000).
			WithStorageSize(16 * SectorSize).
			WithDriver(driver).
			WithMemoryMap(xip).
			WithCriticalSection(section).
			WithExecutor(exec)
	}

	expectPlacement := func() {
		exec.EXPECT().Resident().Return(RegionSRAM)
		exec.EXPECT().Place(RoutineProgram)
		exec.EXPECT().Place(RoutineErase)
		exec.EXPECT().Place(RoutineEraseAll)
	}

	// expectBracket lets Run and Do execute their bodies and records where
	// the body starts and ends.
	expectBracket := func(routine string) {
		exec.EXPECT().Run(routine, gomock.Any()).
			Do(func(_ string, fn func()) {
				events = append(events, "ram")
				fn()
				events = append(events, "/ram")
			})
		section.EXPECT().Do(gomock.Any()).
			Do(func(fn func()) {
				events = append(events, "irq_off")
				fn()
				events = append(events, "irq_on")
			})
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		driver = NewMockDriver(mockCtrl)
		xip = NewMockMemoryMap(mockCtrl)
		section = NewMockCriticalSection(mockCtrl)
		exec = NewMockExecutor(mockCtrl)
		events = nil
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("building", func() {
		It("should fail on an unaligned window without touching hardware", func() {
			c, err := builder().WithStorageSize(5000).Build("Flash")

			Expect(err).To(MatchError(ErrUnalignedStorageSize))
			Expect(c).To(BeNil())
		})

		It("should refuse an executor that runs from flash", func() {
			exec.EXPECT().Resident().Return(RegionFlash)

			c, err := builder().Build("Flash")

			Expect(err).To(MatchError(ErrFlashResidentMutator))
			Expect(c).To(BeNil())
		})

		It("should place the mutation routines", func() {
			expectPlacement()

			c, err := builder().Build("Flash")

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name()).To(Equal("Flash"))
			Expect(c.NumRegions()).To(Equal(16))
			Expect(c.BaseAddr()).To(Equal(uint32(0x000F_0000)))
			Expect(c.XIPBaseAddr()).To(Equal(uint32(0x100F_0000)))
			Expect(c.FlashEnd()).To(Equal(uint32(0x0010_0000)))
			Expect(c.StorageSize()).To(Equal(uint32(16 * SectorSize)))
		})

		It("should panic without a driver", func() {
			Expect(func() {
				_, _ = builder().WithDriver(nil).Build("Flash")
			}).To(Panic())
		})
	})

	Context("built", func() {
		var c *Controller

		BeforeEach(func() {
			expectPlacement()

			var err error
			c, err = builder().Build("Flash")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should read through the memory map", func() {
			xip.EXPECT().View(uint32(0x100F_2010), 4).
				Return([]byte{1, 2, 3, 4})

			buf := make([]byte, 4)
			err := c.ReadRegion(2, 0x10, buf)

			Expect(err).NotTo(HaveOccurred())
			Expect(buf).To(Equal([]byte{1, 2, 3, 4}))
		})

		It("should program inside the critical section from RAM", func() {
			data := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
			expectBracket(RoutineProgram)
			gomock.InOrder(
				driver.EXPECT().ConnectInternalFlash().Do(record("connect")),
				driver.EXPECT().ExitXIP().Do(record("exit_xip")),
				driver.EXPECT().RangeProgram(uint32(0x000F_0100), data).
					Do(func(uint32, []byte) { events = append(events, "program") }),
				driver.EXPECT().FlushCache().Do(record("flush")),
				driver.EXPECT().EnterCmdXIP().Do(record("enter_xip")),
			)

			err := c.Write(0x100, data)

			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(Equal([]string{
				"ram", "irq_off",
				"connect", "exit_xip", "program", "flush", "enter_xip",
				"irq_on", "/ram",
			}))
		})

		It("should erase one sector of the region", func() {
			expectBracket(RoutineErase)
			gomock.InOrder(
				driver.EXPECT().ConnectInternalFlash(),
				driver.EXPECT().ExitXIP(),
				driver.EXPECT().RangeErase(
					uint32(0x000F_3000), SectorSize, uint32(BlockSize), uint8(0)),
				driver.EXPECT().FlushCache(),
				driver.EXPECT().EnterCmdXIP().Do(record("enter_xip")),
			)

			err := c.EraseRegion(3)

			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(Equal([]string{
				"ram", "irq_off", "enter_xip", "irq_on", "/ram",
			}))
		})

		It("should erase the window with the block command", func() {
			expectBracket(RoutineEraseAll)
			gomock.InOrder(
				driver.EXPECT().ConnectInternalFlash(),
				driver.EXPECT().ExitXIP(),
				driver.EXPECT().RangeErase(
					uint32(0x000F_0000), 16*SectorSize, uint32(BlockSize), Block64Erase),
				driver.EXPECT().FlushCache(),
				driver.EXPECT().EnterCmdXIP(),
			)

			Expect(c.EraseAll()).To(Succeed())
		})

		It("should run hooks outside the critical section", func() {
			var seen []string
			c.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				op := ctx.Item.(Op)
				seen = append(seen, ctx.Pos.Name+":"+op.Kind.String())
				events = append(events, "hook")
			}))

			expectBracket(RoutineErase)
			driver.EXPECT().ConnectInternalFlash()
			driver.EXPECT().ExitXIP()
			driver.EXPECT().RangeErase(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			driver.EXPECT().FlushCache()
			driver.EXPECT().EnterCmdXIP()

			Expect(c.EraseRegion(0)).To(Succeed())

			Expect(seen).To(Equal([]string{"BeforeOp:erase", "AfterOp:erase"}))
			Expect(events).To(Equal([]string{
				"hook", "ram", "irq_off", "irq_on", "/ram", "hook",
			}))
		})

		It("should give each op an ID once hooks are attached", func() {
			var ids []string
			c.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == HookPosAfterOp {
					ids = append(ids, ctx.Item.(Op).ID)
				}
			}))
			xip.EXPECT().View(gomock.Any(), gomock.Any()).
				Return(make([]byte, 1)).Times(2)

			buf := make([]byte, 1)
			Expect(c.ReadRegion(0, 0, buf)).To(Succeed())
			Expect(c.ReadRegion(1, 0, buf)).To(Succeed())

			Expect(ids).To(Equal([]string{"1", "2"}))
		})

		It("should log completed ops", func() {
			out := &bytes.Buffer{}
			c.AcceptHook(NewLogHook(log.New(out, "", 0)))
			xip.EXPECT().View(uint32(0x100F_1000), 8).Return(make([]byte, 8))

			Expect(c.ReadRegion(1, 0, make([]byte, 8))).To(Succeed())

			Expect(out.String()).To(Equal(
				"[flash] read region=1 offset=4096 addr=0x100f1000 len=8\n"))
		})
	})
})
