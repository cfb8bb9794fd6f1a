package flash

import (
	"errors"
	"fmt"

	"github.com/sarchlab/xipflash/hooking"
	"github.com/sarchlab/xipflash/idgen"
)

// ErrFlashResidentMutator is returned by Build when the Executor would run the
// program and erase routines from flash.
var ErrFlashResidentMutator = errors.New(
	"flash mutation routines must not execute from flash")

// A Builder creates Controllers.
type Builder struct {
	flashEnd    uint32
	storageSize uint32

	driver  Driver
	xip     MemoryMap
	section CriticalSection
	exec    Executor
	ids     idgen.Generator
}

// MakeBuilder returns a Builder with no window and no hardware.
func MakeBuilder() Builder {
	return Builder{}
}

// WithFlashEnd sets the end of usable flash, e.g. 2 MiB for a 2 MiB part.
func (b Builder) WithFlashEnd(flashEnd uint32) Builder {
	b.flashEnd = flashEnd
	return b
}

// WithStorageSize sets the number of bytes reserved at the end of flash. It
// must be a multiple of SectorSize.
func (b Builder) WithStorageSize(storageSize uint32) Builder {
	b.storageSize = storageSize
	return b
}

// WithDriver sets the flash command interface.
func (b Builder) WithDriver(d Driver) Builder {
	b.driver = d
	return b
}

// WithMemoryMap sets the memory-mapped view used for reads.
func (b Builder) WithMemoryMap(m MemoryMap) Builder {
	b.xip = m
	return b
}

// WithCriticalSection sets how mutations get exclusive use of flash.
func (b Builder) WithCriticalSection(cs CriticalSection) Builder {
	b.section = cs
	return b
}

// WithExecutor sets where the mutation routines execute from.
func (b Builder) WithExecutor(e Executor) Builder {
	b.exec = e
	return b
}

// WithPlatform takes the driver, memory map, critical section and executor
// from p.
func (b Builder) WithPlatform(p Platform) Builder {
	b.driver = p.Driver()
	b.xip = p.MemoryMap()
	b.section = p.CriticalSection()
	b.exec = p.Executor()

	return b
}

// WithIDGenerator sets the generator for Op IDs. Sequential IDs are used
// otherwise.
func (b Builder) WithIDGenerator(g idgen.Generator) Builder {
	b.ids = g
	return b
}

// Build validates the configuration and returns a Controller. A storage size
// that is not sector aligned, a window larger than flash, or a flash-resident
// Executor are configuration errors. Missing hardware is a programming error
// and panics.
//
// Build places the mutation routines with the Executor but does not touch
// flash.
func (b Builder) Build(name string) (*Controller, error) {
	b.mustHaveHardware()

	window, err := NewWindow(b.flashEnd, b.storageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if b.exec.Resident() == RegionFlash {
		return nil, fmt.Errorf("%s: %w", name, ErrFlashResidentMutator)
	}

	ids := b.ids
	if ids == nil {
		ids = idgen.NewSequential()
	}

	for _, routine := range []string{
		RoutineProgram, RoutineErase, RoutineEraseAll,
	} {
		b.exec.Place(routine)
	}

	c := &Controller{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		window:       window,
		driver:       b.driver,
		xip:          b.xip,
		section:      b.section,
		exec:         b.exec,
		ids:          ids,
	}

	return c, nil
}

func (b Builder) mustHaveHardware() {
	if b.driver == nil {
		panic("flash controller requires a driver")
	}

	if b.xip == nil {
		panic("flash controller requires a memory map")
	}

	if b.section == nil {
		panic("flash controller requires a critical section")
	}

	if b.exec == nil {
		panic("flash controller requires an executor")
	}
}
