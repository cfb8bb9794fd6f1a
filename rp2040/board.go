package rp2040

import (
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/nor"
)

// Board is an emulated RP2040 with its external QSPI flash. Core 0 runs the
// application; core 1 only matters through the critical section spinlock.
type Board struct {
	name    string
	sysFreq Freq

	clock     *Clock
	chip      *nor.Chip
	xip       *XIP
	cpu       *CPU
	nvic      *NVIC
	rom       *BootROM
	spinlocks *Spinlocks
	section   *CriticalSection
	ramFuncs  *RAMFuncs
	inPlace   *FlashResident
}

// Name returns the board name.
func (b *Board) Name() string { return b.name }

// SysFreq returns the system clock frequency.
func (b *Board) SysFreq() Freq { return b.sysFreq }

// CurrentTime returns the emulated time.
func (b *Board) CurrentTime() VTimeInSec { return b.clock.CurrentTime() }

// Clock returns the board clock.
func (b *Board) Clock() *Clock { return b.clock }

// Chip returns the flash chip.
func (b *Board) Chip() *nor.Chip { return b.chip }

// FlashSize returns the size of the flash chip.
func (b *Board) FlashSize() uint32 { return b.chip.Size() }

// XIP returns the XIP block.
func (b *Board) XIP() *XIP { return b.xip }

// CPU returns core 0.
func (b *Board) CPU() *CPU { return b.cpu }

// NVIC returns the interrupt controller of core 0.
func (b *Board) NVIC() *NVIC { return b.nvic }

// ROM returns the boot ROM.
func (b *Board) ROM() *BootROM { return b.rom }

// Spinlocks returns the SIO spinlock bank.
func (b *Board) Spinlocks() *Spinlocks { return b.spinlocks }

// RAMFuncs returns the SRAM routine section.
func (b *Board) RAMFuncs() *RAMFuncs { return b.ramFuncs }

// FlashResident returns an executor that runs routines from flash.
func (b *Board) FlashResident() *FlashResident { return b.inPlace }

// Driver returns the boot ROM flash routines.
func (b *Board) Driver() flash.Driver { return b.rom }

// MemoryMap returns the XIP view of flash.
func (b *Board) MemoryMap() flash.MemoryMap { return b.xip }

// CriticalSection returns the spinlock plus PRIMASK critical section.
func (b *Board) CriticalSection() flash.CriticalSection { return b.section }

// Executor returns the SRAM routine section.
func (b *Board) Executor() flash.Executor { return b.ramFuncs }

// NewFlashController builds a flash.Controller that reserves the last
// storageSize bytes of this board's flash.
func (b *Board) NewFlashController(
	name string,
	storageSize uint32,
) (*flash.Controller, error) {
	return flash.MakeBuilder().
		WithFlashEnd(b.chip.Size()).
		WithStorageSize(storageSize).
		WithPlatform(b).
		Build(name)
}

var (
	_ flash.Platform = (*Board)(nil)
	_ TimeTeller     = (*Board)(nil)
)
