package tracing

import (
	"sync"

	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/hooking"
	"github.com/sarchlab/xipflash/rp2040"
)

// CompletedOp is an op together with when it ran.
type CompletedOp struct {
	Op         flash.Op
	Controller string
	StartTime  rp2040.VTimeInSec
	EndTime    rp2040.VTimeInSec
}

// Duration returns how long the op took in emulated time.
func (c CompletedOp) Duration() rp2040.VTimeInSec {
	return c.EndTime - c.StartTime
}

// OpLog is a hook that keeps the most recent ops in memory.
type OpLog struct {
	mu         sync.Mutex
	timeTeller rp2040.TimeTeller

	capacity int
	ring     []CompletedOp
	next     int
	total    int
	starts   map[string]rp2040.VTimeInSec
}

// NewOpLog creates an OpLog that remembers up to capacity ops.
func NewOpLog(timeTeller rp2040.TimeTeller, capacity int) *OpLog {
	if capacity <= 0 {
		panic("op log capacity must be positive")
	}

	return &OpLog{
		timeTeller: timeTeller,
		capacity:   capacity,
		ring:       make([]CompletedOp, 0, capacity),
		starts:     make(map[string]rp2040.VTimeInSec),
	}
}

// Func remembers ops when they complete.
func (l *OpLog) Func(ctx hooking.HookCtx) {
	op, ok := ctx.Item.(flash.Op)
	if !ok {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.timeTeller.CurrentTime()

	if ctx.Pos == flash.HookPosBeforeOp {
		l.starts[op.ID] = now
		return
	}

	if ctx.Pos != flash.HookPosAfterOp {
		return
	}

	start, found := l.starts[op.ID]
	if !found {
		start = now
	}
	delete(l.starts, op.ID)

	c := CompletedOp{
		Op:         op,
		Controller: domainName(ctx.Domain),
		StartTime:  start,
		EndTime:    now,
	}

	if len(l.ring) < l.capacity {
		l.ring = append(l.ring, c)
	} else {
		l.ring[l.next] = c
	}

	l.next = (l.next + 1) % l.capacity
	l.total++
}

// Recent returns the remembered ops, oldest first.
func (l *OpLog) Recent() []CompletedOp {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CompletedOp, 0, len(l.ring))
	if len(l.ring) < l.capacity {
		return append(out, l.ring...)
	}

	out = append(out, l.ring[l.next:]...)

	return append(out, l.ring[:l.next]...)
}

// Total returns how many ops have completed, including forgotten ones.
func (l *OpLog) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.total
}
