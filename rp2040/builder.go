package rp2040

import (
	"github.com/sarchlab/xipflash/nor"
)

// DefaultFlashSize is the flash size of a Raspberry Pi Pico.
const DefaultFlashSize = 2 * 1024 * 1024

// Builder can build Boards.
type Builder struct {
	flashSize uint32
	params    nor.Params
	sysFreq   Freq
	chip      *nor.Chip
}

// MakeBuilder creates a Builder with the settings of a Raspberry Pi Pico.
func MakeBuilder() Builder {
	return Builder{
		flashSize: DefaultFlashSize,
		params:    nor.W25Q16JV,
		sysFreq:   125 * MHz,
	}
}

// WithFlashSize sets the size of the flash chip.
func (b Builder) WithFlashSize(size uint32) Builder {
	b.flashSize = size
	return b
}

// WithParams sets the flash part timing.
func (b Builder) WithParams(p nor.Params) Builder {
	b.params = p
	return b
}

// WithSysFreq sets the system clock frequency.
func (b Builder) WithSysFreq(f Freq) Builder {
	b.sysFreq = f
	return b
}

// WithChip uses an existing flash chip, for example one loaded from an
// image. The flash size and part settings are then ignored.
func (b Builder) WithChip(chip *nor.Chip) Builder {
	b.chip = chip
	return b
}

// Build creates a Board.
func (b Builder) Build(name string) *Board {
	chip := b.chip
	if chip == nil {
		chip = nor.New(b.flashSize, b.params)
	}

	clock := &Clock{}
	xip := newXIP(chip, clock, b.sysFreq)
	cpu := newCPU(xip)
	nvic := newNVIC(cpu, clock)
	spinlocks := &Spinlocks{}

	return &Board{
		name:      name,
		sysFreq:   b.sysFreq,
		clock:     clock,
		chip:      chip,
		xip:       xip,
		cpu:       cpu,
		nvic:      nvic,
		rom:       newBootROM(cpu, xip, chip, clock, nvic),
		spinlocks: spinlocks,
		section: &CriticalSection{
			lock: spinlocks.Lock(CriticalSectionSpinlock),
			nvic: nvic,
		},
		ramFuncs: newRAMFuncs(cpu),
		inPlace:  &FlashResident{cpu: cpu},
	}
}
