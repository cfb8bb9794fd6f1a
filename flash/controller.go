package flash

import (
	"github.com/sarchlab/xipflash/hooking"
	"github.com/sarchlab/xipflash/idgen"
)

// Names under which the mutation routines are placed in RAM.
const (
	RoutineProgram  = "flash_range_program"
	RoutineErase    = "flash_range_erase"
	RoutineEraseAll = "flash_erase_window"
)

// Controller adapts a storage window on XIP flash to the FlashController
// interface. Build one with a Builder.
//
// A Controller has no locking of its own. Exclusion between mutations comes
// from the CriticalSection; callers on platforms where that does not hold
// off every other context must serialize Write and EraseRegion themselves.
type Controller struct {
	*hooking.HookableBase

	name   string
	window Window

	driver  Driver
	xip     MemoryMap
	section CriticalSection
	exec    Executor
	ids     idgen.Generator
}

// Name returns the name given at build time.
func (c *Controller) Name() string { return c.name }

// Window returns the storage window.
func (c *Controller) Window() Window { return c.window }

// FlashEnd returns the end of usable flash.
func (c *Controller) FlashEnd() uint32 { return c.window.FlashEnd() }

// StorageSize returns the size of the storage window.
func (c *Controller) StorageSize() uint32 { return c.window.StorageSize() }

// BaseAddr returns the command address of the window.
func (c *Controller) BaseAddr() uint32 { return c.window.BaseAddr() }

// XIPBaseAddr returns the memory-mapped address of the window.
func (c *Controller) XIPBaseAddr() uint32 { return c.window.XIPBaseAddr() }

// NumRegions returns the number of regions in the window.
func (c *Controller) NumRegions() int { return c.window.NumRegions() }

// ReadRegion copies len(buf) bytes from offset within region. The read goes
// through the memory-mapped view like any other load, so it needs no
// critical section. Bounds are the caller's responsibility.
func (c *Controller) ReadRegion(region, offset int, buf []byte) error {
	op := c.newOp(OpRead, region, region*SectorSize+offset,
		c.window.XIPAddr(region, offset), len(buf))
	c.invoke(HookPosBeforeOp, op)

	copy(buf, c.xip.View(op.Addr, len(buf)))

	c.invoke(HookPosAfterOp, op)

	return nil
}

// Write programs buf at address, an offset into the storage window. Bits can
// only be cleared; the target must have been erased for the bytes to read
// back unchanged.
//
// Write always returns nil. A failed program is not detected.
func (c *Controller) Write(address int, buf []byte) error {
	op := c.newOp(OpWrite, -1, address, c.window.ProgramAddr(address), len(buf))
	c.invoke(HookPosBeforeOp, op)

	c.exec.Run(RoutineProgram, func() {
		c.section.Do(func() {
			c.driver.ConnectInternalFlash()
			c.driver.ExitXIP()
			c.driver.RangeProgram(op.Addr, buf)
			c.driver.FlushCache()
			c.driver.EnterCmdXIP()
		})
	})

	c.invoke(HookPosAfterOp, op)

	return nil
}

// EraseRegion erases one region, leaving every byte at ErasedByte.
//
// EraseRegion always returns nil. A failed erase is not detected.
func (c *Controller) EraseRegion(region int) error {
	op := c.newOp(OpErase, region, region*SectorSize,
		c.window.RegionAddr(region), SectorSize)
	c.invoke(HookPosBeforeOp, op)

	c.exec.Run(RoutineErase, func() {
		c.section.Do(func() {
			c.driver.ConnectInternalFlash()
			c.driver.ExitXIP()
			c.driver.RangeErase(op.Addr, SectorSize, BlockSize, 0)
			c.driver.FlushCache()
			c.driver.EnterCmdXIP()
		})
	})

	c.invoke(HookPosAfterOp, op)

	return nil
}

// EraseAll erases the whole storage window in one critical section, using the
// 64 KiB block erase where the window allows it. It is meant for formatting a
// fresh window, not for the engine's garbage collection.
func (c *Controller) EraseAll() error {
	size := int(c.window.StorageSize())
	op := c.newOp(OpEraseAll, -1, 0, c.window.BaseAddr(), size)
	c.invoke(HookPosBeforeOp, op)

	c.exec.Run(RoutineEraseAll, func() {
		c.section.Do(func() {
			c.driver.ConnectInternalFlash()
			c.driver.ExitXIP()
			c.driver.RangeErase(op.Addr, size, BlockSize, Block64Erase)
			c.driver.FlushCache()
			c.driver.EnterCmdXIP()
		})
	})

	c.invoke(HookPosAfterOp, op)

	return nil
}

func (c *Controller) newOp(kind OpKind, region, offset int, addr uint32, n int) Op {
	op := Op{
		Kind:   kind,
		Region: region,
		Offset: offset,
		Addr:   addr,
		Length: n,
	}

	if c.NumHooks() > 0 {
		op.ID = c.ids.Generate()
	}

	return op
}

// invoke runs hooks. It is never called inside the critical section: hooks
// are ordinary code and may live in flash.
func (c *Controller) invoke(pos *hooking.HookPos, op Op) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   op,
	})
}

var _ FlashController = (*Controller)(nil)
