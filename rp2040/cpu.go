package rp2040

import (
	"sync"

	"github.com/sarchlab/xipflash/flash"
)

// CPU tracks which memory region core 0 is fetching instructions from. Code
// enters a region when it is called and leaves it when it returns.
type CPU struct {
	mu      sync.Mutex
	regions []flash.Region
	xip     *XIP
}

func newCPU(xip *XIP) *CPU {
	return &CPU{
		regions: []flash.Region{flash.RegionFlash},
		xip:     xip,
	}
}

// Region returns the region of the innermost executing routine. Application
// code runs from flash.
func (c *CPU) Region() flash.Region {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.regions[len(c.regions)-1]
}

// Exec runs fn as a routine resident in region. Entering the routine fetches
// from region; returning fetches from the caller's region again.
func (c *CPU) Exec(region flash.Region, fn func()) {
	caller := c.Region()

	c.fetch(region)
	c.push(region)
	func() {
		defer c.pop()
		fn()
	}()

	c.fetch(caller)
}

func (c *CPU) push(r flash.Region) {
	c.mu.Lock()
	c.regions = append(c.regions, r)
	c.mu.Unlock()
}

func (c *CPU) pop() {
	c.mu.Lock()
	c.regions = c.regions[:len(c.regions)-1]
	c.mu.Unlock()
}

// fetch faults if region cannot serve an instruction fetch right now.
func (c *CPU) fetch(region flash.Region) {
	if region == flash.RegionFlash && !c.xip.Enabled() {
		panic(&BusFault{Reason: "instruction fetch from flash while XIP is disabled"})
	}
}
