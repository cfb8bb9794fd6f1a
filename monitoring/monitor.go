// Package monitoring serves the state of an emulated board and its flash
// controllers over HTTP.
package monitoring

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/monitoring/web"
	"github.com/sarchlab/xipflash/rp2040"
	"github.com/sarchlab/xipflash/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor turns a board and its flash controllers into a web server.
type Monitor struct {
	board       *rp2040.Board
	controllers []*flash.Controller
	opLog       *tracing.OpLog
	portNumber  int

	profileDuration time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// NewMonitor creates a Monitor for board.
func NewMonitor(board *rp2040.Board) *Monitor {
	return &Monitor{
		board:           board,
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterController adds a controller to be monitored. The first one
// registered is the default for routes that do not name one. If an OpLog is
// set, it is hooked to the controller.
func (m *Monitor) RegisterController(c *flash.Controller) {
	m.controllers = append(m.controllers, c)

	if m.opLog != nil {
		c.AcceptHook(m.opLog)
	}
}

// RegisterOpLog sets the log /api/ops reports from. It is hooked to every
// registered controller.
func (m *Monitor) RegisterOpLog(l *tracing.OpLog) {
	m.opLog = l

	for _, c := range m.controllers {
		c.AcceptHook(l)
	}
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_controllers", m.listControllers)
	r.HandleFunc("/api/controller/{name}", m.controllerDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/window", m.window)
	r.HandleFunc("/api/regions", m.regions)
	r.HandleFunc("/api/region/{n}", m.region)
	r.HandleFunc("/api/ops", m.ops)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(web.Handler(m.page))

	return r
}

// page describes the default controller for the index page.
func (m *Monitor) page() web.Page {
	if len(m.controllers) == 0 {
		return web.Page{}
	}

	c := m.controllers[0]

	return web.Page{
		Controller:  c.Name(),
		BaseAddr:    c.BaseAddr(),
		FlashEnd:    c.FlashEnd(),
		XIPBaseAddr: c.XIPBaseAddr(),
		NumRegions:  c.NumRegions(),
		RegionSize:  flash.SectorSize,
	}
}

// StartServer starts serving in the background and returns the URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.mu.Lock()
	m.listener = listener
	m.mu.Unlock()

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring flash with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		if err != nil && !isClosed(err) {
			dieOnErr(err)
		}
	}()

	return url
}

// StopServer closes the listener opened by StartServer.
func (m *Monitor) StopServer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listener == nil {
		return nil
	}

	err := m.listener.Close()
	m.listener = nil

	return err
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

func isClosed(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.board.CurrentTime())
}

func (m *Monitor) listControllers(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.controllers))
	for _, c := range m.controllers {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) controllerDetails(w http.ResponseWriter, r *http.Request) {
	c := m.findControllerOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(c)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c := m.findControllerOr404(w, req.CompName)
	if c == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(c)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type windowRsp struct {
	Name        string `json:"name"`
	FlashEnd    uint32 `json:"flash_end"`
	StorageSize uint32 `json:"storage_size"`
	BaseAddr    uint32 `json:"base_addr"`
	XIPBaseAddr uint32 `json:"xip_base_addr"`
	NumRegions  int    `json:"num_regions"`
	RegionSize  int    `json:"region_size"`
}

func (m *Monitor) window(w http.ResponseWriter, r *http.Request) {
	c := m.selectedControllerOr404(w, r)
	if c == nil {
		return
	}

	writeJSON(w, windowRsp{
		Name:        c.Name(),
		FlashEnd:    c.FlashEnd(),
		StorageSize: c.StorageSize(),
		BaseAddr:    c.BaseAddr(),
		XIPBaseAddr: c.XIPBaseAddr(),
		NumRegions:  c.NumRegions(),
		RegionSize:  flash.SectorSize,
	})
}

type regionRsp struct {
	Region     int    `json:"region"`
	Addr       uint32 `json:"addr"`
	EraseCount uint32 `json:"erase_count"`
	Erased     bool   `json:"erased"`
	CRC16      uint16 `json:"crc16"`
	Data       string `json:"data,omitempty"`
}

// regionSummary reads the chip directly. Going through XIP could fault while
// a mutation has flash in command mode.
func (m *Monitor) regionSummary(c *flash.Controller, region int) regionRsp {
	addr := c.Window().RegionAddr(region)
	sector := int(addr / flash.SectorSize)
	chip := m.board.Chip()

	return regionRsp{
		Region:     region,
		Addr:       addr,
		EraseCount: chip.EraseCount(sector),
		Erased:     chip.IsErased(sector),
		CRC16:      chip.SectorCRC(sector),
	}
}

func (m *Monitor) regions(w http.ResponseWriter, r *http.Request) {
	c := m.selectedControllerOr404(w, r)
	if c == nil {
		return
	}

	rsp := make([]regionRsp, 0, c.NumRegions())
	for i := 0; i < c.NumRegions(); i++ {
		rsp = append(rsp, m.regionSummary(c, i))
	}

	writeJSON(w, rsp)
}

func (m *Monitor) region(w http.ResponseWriter, r *http.Request) {
	c := m.selectedControllerOr404(w, r)
	if c == nil {
		return
	}

	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 0 || n >= c.NumRegions() {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}

	rsp := m.regionSummary(c, n)

	data := make([]byte, flash.SectorSize)
	m.board.Chip().ReadAt(data, rsp.Addr)
	rsp.Data = hex.EncodeToString(data)

	writeJSON(w, rsp)
}

type opRsp struct {
	ID         string  `json:"id"`
	Controller string  `json:"controller"`
	Kind       string  `json:"kind"`
	Region     int     `json:"region"`
	Offset     int     `json:"offset"`
	Addr       uint32  `json:"addr"`
	Length     int     `json:"length"`
	StartTime  float64 `json:"start_time"`
	Duration   float64 `json:"duration"`
}

func (m *Monitor) ops(w http.ResponseWriter, _ *http.Request) {
	rsp := []opRsp{}

	if m.opLog != nil {
		for _, c := range m.opLog.Recent() {
			rsp = append(rsp, opRsp{
				ID:         c.Op.ID,
				Controller: c.Controller,
				Kind:       c.Op.Kind.String(),
				Region:     c.Op.Region,
				Offset:     c.Op.Offset,
				Addr:       c.Op.Addr,
				Length:     c.Op.Length,
				StartTime:  float64(c.StartTime),
				Duration:   float64(c.Duration()),
			})
		}
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) findControllerOr404(
	w http.ResponseWriter,
	name string,
) *flash.Controller {
	for _, c := range m.controllers {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Controller not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) selectedControllerOr404(
	w http.ResponseWriter,
	r *http.Request,
) *flash.Controller {
	if name := r.URL.Query().Get("controller"); name != "" {
		return m.findControllerOr404(w, name)
	}

	if len(m.controllers) == 0 {
		http.Error(w, "no controller registered", http.StatusNotFound)
		return nil
	}

	return m.controllers[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
