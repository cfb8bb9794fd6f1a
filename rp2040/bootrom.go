package rp2040

import (
	"fmt"
	"sync"

	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/nor"
)

// BootROM provides the flash routines of the RP2040 boot ROM. The routines
// run from ROM and return to their caller, which must then be able to fetch
// its next instruction.
//
// Like the real ROM, no routine reports failure. Misuse that would hang or
// corrupt a real device panics instead.
type BootROM struct {
	mu    sync.Mutex
	calls map[string]int

	cpu   *CPU
	xip   *XIP
	chip  *nor.Chip
	clock *Clock
	nvic  *NVIC
}

func newBootROM(cpu *CPU, xip *XIP, chip *nor.Chip, clock *Clock, nvic *NVIC) *BootROM {
	return &BootROM{
		calls: make(map[string]int),
		cpu:   cpu,
		xip:   xip,
		chip:  chip,
		clock: clock,
		nvic:  nvic,
	}
}

// Calls returns how many times a ROM routine has been called.
func (r *BootROM) Calls(routine string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls[routine]
}

func (r *BootROM) call(routine string, fn func()) {
	r.mu.Lock()
	r.calls[routine]++
	r.mu.Unlock()

	r.cpu.Exec(flash.RegionROM, fn)
}

// busy lets time pass while the chip works and lets due interrupts arrive.
func (r *BootROM) busy(d VTimeInSec) {
	r.clock.AdvanceTime(d)
	r.nvic.Service()
}

// ConnectInternalFlash routes the QSPI pads to the SSI.
func (r *BootROM) ConnectInternalFlash() {
	r.call("connect_internal_flash", r.xip.connect)
}

// ExitXIP puts the SSI in command mode.
func (r *BootROM) ExitXIP() {
	r.call("flash_exit_xip", r.xip.exit)
}

// RangeProgram programs data at the command address addr.
func (r *BootROM) RangeProgram(addr uint32, data []byte) {
	r.call("flash_range_program", func() {
		r.xip.mustBeInCommandMode("flash_range_program")
		d := r.chip.Program(addr, data)
		r.busy(VTimeInSec(d.Seconds()))
	})
}

// RangeErase erases count bytes from addr. addr and count must be sector
// aligned. Where blockCmd is non-zero and the range covers a whole 64 KiB
// block, the block is erased with one command.
func (r *BootROM) RangeErase(addr uint32, count int, blockSize uint32, blockCmd uint8) {
	r.call("flash_range_erase", func() {
		r.xip.mustBeInCommandMode("flash_range_erase")

		if addr%nor.SectorSize != 0 || count%nor.SectorSize != 0 {
			panic(fmt.Sprintf(
				"flash_range_erase: 0x%08x+%d is not sector aligned", addr, count))
		}

		useBlocks := blockCmd != 0 && blockSize == nor.BlockSize
		end := addr + uint32(count)

		for addr < end {
			if useBlocks && addr%nor.BlockSize == 0 && end-addr >= nor.BlockSize {
				r.busy(VTimeInSec(r.chip.EraseBlock(addr).Seconds()))
				addr += nor.BlockSize

				continue
			}

			r.busy(VTimeInSec(r.chip.EraseSector(addr).Seconds()))
			addr += nor.SectorSize
		}
	})
}

// FlushCache invalidates the XIP cache.
func (r *BootROM) FlushCache() {
	r.call("flash_flush_cache", r.xip.Flush)
}

// EnterCmdXIP returns the SSI to memory-mapped mode with the standard read
// command.
func (r *BootROM) EnterCmdXIP() {
	r.call("flash_enter_cmd_xip", r.xip.enter)
}

var _ flash.Driver = (*BootROM)(nil)
