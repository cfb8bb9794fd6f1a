// Package tracing records flash operations with their start and end times.
package tracing

import (
	"sync"

	"github.com/sarchlab/xipflash/datarecording"
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/hooking"
	"github.com/sarchlab/xipflash/rp2040"
	"github.com/tebeka/atexit"
)

// OpTable is the table an OpTracer writes to.
const OpTable = "flash_ops"

// OpEntry is one row of the flash_ops table.
type OpEntry struct {
	ID         string
	Controller string
	Kind       string
	Region     int
	Offset     int
	Addr       uint32
	Length     int
	StartTime  float64
	EndTime    float64
}

type named interface {
	Name() string
}

// OpTracer is a hook that stores every completed Controller operation in a
// DataRecorder.
type OpTracer struct {
	mu         sync.Mutex
	timeTeller rp2040.TimeTeller
	backend    datarecording.DataRecorder

	inflight map[string]rp2040.VTimeInSec
	count    int
}

// NewOpTracer creates the flash_ops table and returns a tracer writing to
// it. The recorder is flushed when the program exits through atexit.
func NewOpTracer(
	timeTeller rp2040.TimeTeller,
	recorder datarecording.DataRecorder,
) *OpTracer {
	recorder.CreateTable(OpTable, OpEntry{})

	t := &OpTracer{
		timeTeller: timeTeller,
		backend:    recorder,
		inflight:   make(map[string]rp2040.VTimeInSec),
	}

	atexit.Register(t.Terminate)

	return t
}

// Func records op start and end times.
func (t *OpTracer) Func(ctx hooking.HookCtx) {
	op, ok := ctx.Item.(flash.Op)
	if !ok {
		return
	}

	if op.ID == "" {
		panic("op ID must be set")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeTeller.CurrentTime()

	switch ctx.Pos {
	case flash.HookPosBeforeOp:
		t.inflight[op.ID] = now
	case flash.HookPosAfterOp:
		start, found := t.inflight[op.ID]
		if !found {
			return
		}

		delete(t.inflight, op.ID)

		t.backend.InsertData(OpTable, OpEntry{
			ID:         op.ID,
			Controller: domainName(ctx.Domain),
			Kind:       op.Kind.String(),
			Region:     op.Region,
			Offset:     op.Offset,
			Addr:       op.Addr,
			Length:     op.Length,
			StartTime:  float64(start),
			EndTime:    float64(now),
		})
		t.count++
	}
}

// Count returns the number of ops recorded.
func (t *OpTracer) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Terminate drops unfinished ops and flushes the recorder.
func (t *OpTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.inflight = make(map[string]rp2040.VTimeInSec)
	t.backend.Flush()
}

func domainName(d hooking.Hookable) string {
	if n, ok := d.(named); ok {
		return n.Name()
	}

	return ""
}
