package rp2040

import (
	"sync"
	"time"
)

// VTimeInSec is emulated time in seconds since the board was built.
type VTimeInSec float64

// Freq is a clock frequency.
type Freq float64

// Units of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
)

// Period returns the duration of one cycle.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// NCycles returns the duration of n cycles.
func (f Freq) NCycles(n int) VTimeInSec {
	return VTimeInSec(n) * f.Period()
}

// A TimeTeller can tell the current emulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// Clock is the board's emulated time. It only moves when hardware reports
// that it was busy; nothing sleeps.
type Clock struct {
	mu  sync.Mutex
	now VTimeInSec
}

// CurrentTime returns the current emulated time.
func (c *Clock) CurrentTime() VTimeInSec {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves time forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) VTimeInSec {
	return c.AdvanceTime(VTimeInSec(d.Seconds()))
}

// AdvanceTime moves time forward by t and returns the new time.
func (c *Clock) AdvanceTime(t VTimeInSec) VTimeInSec {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now += t

	return c.now
}
