package rp2040

import (
	"sort"
	"sync"

	"github.com/sarchlab/xipflash/flash"
)

// Interrupt lines used by the emulator.
const (
	IRQTimer0 = 0
	IRQTimer1 = 1
	IRQUART0  = 20
	IRQUSB    = 5
)

type alarm struct {
	irq int
	at  VTimeInSec
}

// NVIC is the interrupt controller of core 0 together with PRIMASK.
// Handlers are application code and therefore run from flash.
type NVIC struct {
	mu        sync.Mutex
	masked    bool
	pending   map[int]bool
	handlers  map[int]func()
	alarms    []alarm
	delivered map[int]int

	cpu   *CPU
	clock *Clock
}

func newNVIC(cpu *CPU, clock *Clock) *NVIC {
	return &NVIC{
		pending:   make(map[int]bool),
		handlers:  make(map[int]func()),
		delivered: make(map[int]int),
		cpu:       cpu,
		clock:     clock,
	}
}

// SetHandler installs the handler for an interrupt line.
func (n *NVIC) SetHandler(irq int, handler func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.handlers[irq] = handler
}

// Masked reports whether PRIMASK is set.
func (n *NVIC) Masked() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.masked
}

// Pending reports whether an interrupt is waiting for delivery.
func (n *NVIC) Pending(irq int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.pending[irq]
}

// Delivered returns how many times the handler of irq has run.
func (n *NVIC) Delivered(irq int) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.delivered[irq]
}

// Raise pends an interrupt and delivers it at once unless interrupts are
// masked.
func (n *NVIC) Raise(irq int) {
	n.mu.Lock()
	n.pending[irq] = true
	n.mu.Unlock()

	n.deliver()
}

// RaiseAt arranges for irq to be raised once emulated time reaches at.
func (n *NVIC) RaiseAt(irq int, at VTimeInSec) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.alarms = append(n.alarms, alarm{irq: irq, at: at})
	sort.Slice(n.alarms, func(i, j int) bool {
		return n.alarms[i].at < n.alarms[j].at
	})
}

// Service raises every alarm that is due and delivers pending interrupts if
// they are not masked. Hardware that keeps the core busy calls it.
func (n *NVIC) Service() {
	now := n.clock.CurrentTime()

	n.mu.Lock()
	for len(n.alarms) > 0 && n.alarms[0].at <= now {
		n.pending[n.alarms[0].irq] = true
		n.alarms = n.alarms[1:]
	}
	n.mu.Unlock()

	n.deliver()
}

// Disable sets PRIMASK and returns its previous state.
func (n *NVIC) Disable() (wasMasked bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	wasMasked = n.masked
	n.masked = true

	return wasMasked
}

// Restore puts PRIMASK back to a state returned by Disable. Interrupts that
// were raised in between are delivered once unmasked.
func (n *NVIC) Restore(wasMasked bool) {
	n.mu.Lock()
	n.masked = wasMasked
	n.mu.Unlock()

	n.deliver()
}

func (n *NVIC) deliver() {
	for {
		handler, ok := n.nextDeliverable()
		if !ok {
			return
		}

		n.cpu.Exec(flash.RegionFlash, handler)
	}
}

func (n *NVIC) nextDeliverable() (func(), bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.masked || len(n.pending) == 0 {
		return nil, false
	}

	lines := make([]int, 0, len(n.pending))
	for irq := range n.pending {
		lines = append(lines, irq)
	}
	sort.Ints(lines)

	irq := lines[0]
	delete(n.pending, irq)
	n.delivered[irq]++

	handler := n.handlers[irq]
	if handler == nil {
		handler = func() {}
	}

	return handler, true
}
