package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xipflash/datarecording"
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/rp2040"
)

var _ = Describe("OpTracer", func() {
	var (
		board    *rp2040.Board
		ctrl     *flash.Controller
		recorder datarecording.DataRecorder
		dbPath   string
		tracer   *OpTracer
	)

	BeforeEach(func() {
		board = rp2040.MakeBuilder().Build("Pico")

		var err error
		ctrl, err = board.NewFlashController("Storage", 4*flash.SectorSize)
		Expect(err).NotTo(HaveOccurred())

		dbPath = filepath.Join(GinkgoT().TempDir(), "trace")
		recorder = datarecording.New(dbPath)
		tracer = NewOpTracer(board, recorder)
		ctrl.AcceptHook(tracer)
	})

	AfterEach(func() {
		Expect(recorder.Close()).To(Succeed())
	})

	It("should record each op with its emulated duration", func() {
		Expect(ctrl.Write(0, []byte{1, 2, 3})).To(Succeed())
		Expect(ctrl.EraseRegion(2)).To(Succeed())
		tracer.Terminate()

		Expect(tracer.Count()).To(Equal(2))

		reader, err := datarecording.NewReader(dbPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		rows, total, err := ReadOps(context.Background(), reader,
			datarecording.QueryParams{OrderBy: "StartTime"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))

		write := rows[0]
		Expect(write.Kind).To(Equal("write"))
		Expect(write.Controller).To(Equal("Storage"))
		Expect(write.Region).To(Equal(-1))
		Expect(write.Addr).To(Equal(ctrl.BaseAddr()))

		erase := rows[1]
		Expect(erase.Kind).To(Equal("erase"))
		Expect(erase.Region).To(Equal(2))
		Expect(erase.EndTime - erase.StartTime).
			To(BeNumerically(">=", board.Chip().Params().SectorErase.Seconds()))
	})

	It("should panic on ops without an ID", func() {
		Expect(func() {
			tracer.Func(hookCtx(flash.HookPosBeforeOp, flash.Op{}))
		}).To(Panic())
	})
})
