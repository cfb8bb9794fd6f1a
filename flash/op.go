package flash

import (
	"fmt"

	"github.com/sarchlab/xipflash/hooking"
)

// OpKind says which primitive an Op is.
type OpKind int

// Kinds of operations a Controller performs.
const (
	OpRead OpKind = iota
	OpWrite
	OpErase
	OpEraseAll
)

func (k OpKind) String() string {
	switch k {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpErase:
		return "erase"
	case OpEraseAll:
		return "erase_all"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op describes one Controller operation. It is the Item of every hook the
// Controller raises.
type Op struct {
	ID   string
	Kind OpKind

	// Region is the region index, or -1 for writes and whole-window erases.
	Region int

	// Offset is relative to the start of the storage window.
	Offset int

	// Addr is the physical address used: memory-mapped for reads, command
	// address otherwise.
	Addr uint32

	Length int
}

func (o Op) String() string {
	return fmt.Sprintf("%s addr=0x%08x len=%d", o.Kind, o.Addr, o.Length)
}

// HookPosBeforeOp fires before an operation starts.
var HookPosBeforeOp = &hooking.HookPos{Name: "BeforeOp"}

// HookPosAfterOp fires after an operation completed and, for mutations, after
// flash is memory-mapped again and interrupts are back on.
var HookPosAfterOp = &hooking.HookPos{Name: "AfterOp"}
