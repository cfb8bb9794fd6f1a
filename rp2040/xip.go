package rp2040

import (
	"sync"

	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/nor"
)

// XIP cache geometry and timing.
const (
	XIPCacheSize     = 16 * 1024
	XIPCacheLineSize = 8
	xipMissCycles    = 24
	xipHitCycles     = 1
)

// XIPStats counts cache behaviour.
type XIPStats struct {
	Hits    uint64
	Misses  uint64
	Flushes uint64
}

// XIP is the SSI and XIP cache in front of the flash chip. In memory-mapped
// mode reads at flash.XIPBase go through the cache. In command mode the
// memory map is gone and any access bus-faults.
//
// The cache is only invalidated by Flush. Reads after a program or erase
// that skipped the flush can return stale bytes.
type XIP struct {
	mu        sync.Mutex
	chip      *nor.Chip
	enabled   bool
	connected bool
	lines     map[uint32][XIPCacheLineSize]byte
	stats     XIPStats

	clock *Clock
	freq  Freq
}

func newXIP(chip *nor.Chip, clock *Clock, freq Freq) *XIP {
	return &XIP{
		chip:      chip,
		enabled:   true,
		connected: true,
		lines:     make(map[uint32][XIPCacheLineSize]byte),
		clock:     clock,
		freq:      freq,
	}
}

// Enabled reports whether flash is memory-mapped.
func (x *XIP) Enabled() bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.enabled
}

// Stats returns the cache counters.
func (x *XIP) Stats() XIPStats {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.stats
}

// View returns a copy of n bytes at the memory-mapped address addr.
func (x *XIP) View(addr uint32, n int) []byte {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.enabled {
		panic(&BusFault{Addr: addr, Reason: "XIP access while flash is in command mode"})
	}

	if addr < flash.XIPBase ||
		uint64(addr)+uint64(n) > uint64(flash.XIPBase)+uint64(x.chip.Size()) {
		panic(&BusFault{Addr: addr, Reason: "access outside mapped flash"})
	}

	out := make([]byte, n)
	offset := addr - flash.XIPBase
	cycles := 0

	for i := 0; i < n; {
		lineAddr := (offset + uint32(i)) &^ (XIPCacheLineSize - 1)
		line, hit := x.lines[lineAddr]
		if hit {
			x.stats.Hits++
			cycles += xipHitCycles
		} else {
			line = x.fill(lineAddr)
			x.stats.Misses++
			cycles += xipMissCycles
		}

		start := int(offset+uint32(i)) - int(lineAddr)
		i += copy(out[i:], line[start:])
	}

	x.clock.AdvanceTime(x.freq.NCycles(cycles))

	return out
}

func (x *XIP) fill(lineAddr uint32) [XIPCacheLineSize]byte {
	var line [XIPCacheLineSize]byte
	x.chip.ReadAt(line[:], lineAddr)

	if len(x.lines) >= XIPCacheSize/XIPCacheLineSize {
		for victim := range x.lines {
			delete(x.lines, victim)
			break
		}
	}

	x.lines[lineAddr] = line

	return line
}

func (x *XIP) connect() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.connected = true
}

func (x *XIP) exit() {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.connected {
		panic("flash_exit_xip called before connect_internal_flash")
	}

	x.enabled = false
}

func (x *XIP) enter() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.enabled = true
}

// Flush invalidates every cache line.
func (x *XIP) Flush() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.lines = make(map[uint32][XIPCacheLineSize]byte)
	x.stats.Flushes++
}

func (x *XIP) mustBeInCommandMode(routine string) {
	if x.Enabled() {
		panic(routine + " called while flash is memory-mapped")
	}
}

var _ flash.MemoryMap = (*XIP)(nil)
