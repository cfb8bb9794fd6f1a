package flash

import (
	"log"

	"github.com/sarchlab/xipflash/hooking"
)

// LogHook logs every completed Controller operation.
type LogHook struct {
	*log.Logger
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func logs ops when they complete.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosAfterOp {
		return
	}

	op, ok := ctx.Item.(Op)
	if !ok {
		return
	}

	if op.Region >= 0 {
		h.Printf("[flash] %s region=%d offset=%d addr=0x%08x len=%d",
			op.Kind, op.Region, op.Offset, op.Addr, op.Length)
		return
	}

	h.Printf("[flash] %s offset=%d addr=0x%08x len=%d",
		op.Kind, op.Offset, op.Addr, op.Length)
}
