package rp2040

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/xipflash/flash"
)

// RAMFuncSection is the name of the linker section holding RAM routines.
const RAMFuncSection = ".data.ram_func"

// RAMFuncs is the set of routines copied from flash into SRAM at startup.
// Only placed routines can run, and they run with the core fetching from
// SRAM.
type RAMFuncs struct {
	mu     sync.Mutex
	placed map[string]bool
	cpu    *CPU
}

func newRAMFuncs(cpu *CPU) *RAMFuncs {
	return &RAMFuncs{
		placed: make(map[string]bool),
		cpu:    cpu,
	}
}

// Resident returns flash.RegionSRAM.
func (r *RAMFuncs) Resident() flash.Region {
	return flash.RegionSRAM
}

// Place copies a routine into SRAM.
func (r *RAMFuncs) Place(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.placed[name] = true
}

// Placed reports whether a routine has been copied into SRAM.
func (r *RAMFuncs) Placed(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.placed[name]
}

// Names lists the placed routines.
func (r *RAMFuncs) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.placed))
	for name := range r.placed {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Run executes fn as the placed routine name. Running a routine that was
// never placed panics; its code would still be in flash.
func (r *RAMFuncs) Run(name string, fn func()) {
	if !r.Placed(name) {
		panic(fmt.Sprintf("routine %s is not in %s", name, RAMFuncSection))
	}

	r.cpu.Exec(flash.RegionSRAM, fn)
}

// FlashResident runs routines in place from flash. It exists to show what
// goes wrong; flash.Builder refuses it.
type FlashResident struct {
	cpu *CPU
}

// Resident returns flash.RegionFlash.
func (f *FlashResident) Resident() flash.Region {
	return flash.RegionFlash
}

// Place does nothing; the routine already is in flash.
func (f *FlashResident) Place(string) {}

// Run executes fn from flash.
func (f *FlashResident) Run(_ string, fn func()) {
	f.cpu.Exec(flash.RegionFlash, fn)
}
