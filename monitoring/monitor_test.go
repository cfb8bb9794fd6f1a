package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/rp2040"
	"github.com/sarchlab/xipflash/tracing"
)

var _ = Describe("Monitor", func() {
	var (
		board  *rp2040.Board
		ctrl   *flash.Controller
		m      *Monitor
		server *httptest.Server
	)

	get := func(path string, v any) int {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		if v != nil && rsp.StatusCode == http.StatusOK {
			Expect(json.NewDecoder(rsp.Body).Decode(v)).To(Succeed())
		}

		return rsp.StatusCode
	}

	BeforeEach(func() {
		board = rp2040.MakeBuilder().Build("Pico")

		var err error
		ctrl, err = board.NewFlashController("Storage", 4*flash.SectorSize)
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor(board)
		m.RegisterController(ctrl)
		m.RegisterOpLog(tracing.NewOpLog(board, 16))

		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should describe the window", func() {
		var rsp windowRsp
		Expect(get("/api/window", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp.Name).To(Equal("Storage"))
		Expect(rsp.NumRegions).To(Equal(4))
		Expect(rsp.XIPBaseAddr).To(Equal(uint32(0x101F_C000)))
	})

	It("should report erase counts per region", func() {
		Expect(ctrl.Write(flash.SectorSize, []byte{0})).To(Succeed())
		Expect(ctrl.EraseRegion(2)).To(Succeed())

		var rsp []regionRsp
		Expect(get("/api/regions", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp).To(HaveLen(4))
		Expect(rsp[1].Erased).To(BeFalse())
		Expect(rsp[2].EraseCount).To(Equal(uint32(1)))
		Expect(rsp[2].Erased).To(BeTrue())
	})

	It("should dump one region", func() {
		Expect(ctrl.Write(0, []byte{0xAB, 0xCD})).To(Succeed())

		var rsp regionRsp
		Expect(get("/api/region/0", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp.Data).To(HavePrefix("abcdff"))
		Expect(rsp.Data).To(HaveLen(2 * flash.SectorSize))
	})

	It("should 404 on unknown regions and controllers", func() {
		Expect(get("/api/region/4", nil)).To(Equal(http.StatusNotFound))
		Expect(get("/api/region/x", nil)).To(Equal(http.StatusNotFound))
		Expect(get("/api/regions?controller=Nope", nil)).
			To(Equal(http.StatusNotFound))
		Expect(get("/api/controller/Nope", nil)).
			To(Equal(http.StatusNotFound))
	})

	It("should list recent ops", func() {
		Expect(ctrl.EraseRegion(0)).To(Succeed())

		var rsp []opRsp
		Expect(get("/api/ops", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Kind).To(Equal("erase"))
		Expect(rsp[0].Controller).To(Equal("Storage"))
		Expect(rsp[0].Duration).To(BeNumerically(">", 0))
	})

	It("should report emulated time", func() {
		Expect(ctrl.EraseRegion(0)).To(Succeed())

		var rsp struct {
			Now float64 `json:"now"`
		}
		Expect(get("/api/now", &rsp)).To(Equal(http.StatusOK))
		Expect(rsp.Now).To(BeNumerically("==", float64(board.CurrentTime())))
	})

	It("should list controllers", func() {
		var rsp []string
		Expect(get("/api/list_controllers", &rsp)).To(Equal(http.StatusOK))
		Expect(rsp).To(Equal([]string{"Storage"}))
	})

	It("should serve the page for the default window", func() {
		rsp, err := http.Get(server.URL + "/")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("<title>xipflash: Storage</title>"))
		Expect(string(body)).To(ContainSubstring("0x101fc000"))
		Expect(string(body)).To(ContainSubstring("4 x 4096 bytes"))
	})

	It("should fall back to a random port", func() {
		Expect(m.WithPortNumber(80).portNumber).To(BeZero())
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})
})
