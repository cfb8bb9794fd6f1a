package rp2040

import "sync"

// NumSpinlocks is the number of hardware spinlocks in the SIO block.
const NumSpinlocks = 32

// CriticalSectionSpinlock is the spinlock the critical section claims, the
// same one the RP2040 HAL uses.
const CriticalSectionSpinlock = 31

// Spinlocks is the SIO spinlock bank. Each lock excludes the other core.
type Spinlocks struct {
	locks [NumSpinlocks]sync.Mutex
}

// Lock returns spinlock n.
func (s *Spinlocks) Lock(n int) *sync.Mutex {
	return &s.locks[n]
}

// CriticalSection masks interrupts on this core and holds a spinlock so the
// other core cannot enter at the same time. Sections do not nest.
type CriticalSection struct {
	lock *sync.Mutex
	nvic *NVIC
}

// Do runs fn inside the critical section. The spinlock is released before
// interrupts come back on, so a pending handler may itself enter a critical
// section.
func (cs *CriticalSection) Do(fn func()) {
	cs.lock.Lock()
	wasMasked := cs.nvic.Disable()

	defer func() {
		cs.lock.Unlock()
		cs.nvic.Restore(wasMasked)
	}()

	fn()
}
