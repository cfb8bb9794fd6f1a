package rp2040

import "fmt"

// BusFault is the panic value raised when emulated code touches flash it
// cannot reach. On hardware the core would lock up.
type BusFault struct {
	Addr   uint32
	Reason string
}

func (f *BusFault) Error() string {
	if f.Addr == 0 {
		return "bus fault: " + f.Reason
	}

	return fmt.Sprintf("bus fault at 0x%08x: %s", f.Addr, f.Reason)
}
