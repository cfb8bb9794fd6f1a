package flash

// Geometry of the flash parts used with the RP2040.
const (
	// SectorSize is the minimum erasable unit. It is also the region size the
	// storage engine works with.
	SectorSize = 4096

	// BlockSize is the block size hint handed to the erase routine.
	BlockSize = 65536

	// PageSize is the largest span a single page program command covers.
	PageSize = 256

	// XIPBase is where flash appears in the CPU memory map.
	XIPBase = 0x1000_0000

	// ErasedByte is the value every byte of an erased sector reads as.
	ErasedByte = 0xFF

	// MaxRecordSize is the largest key plus value an engine with a 17 byte
	// record header can keep in one region.
	MaxRecordSize = SectorSize - 17
)

// Erase commands accepted by Driver.RangeErase as the block command. They
// are part specific; zero means sector erases only.
const (
	PageErase    uint8 = 0x02
	SectorErase  uint8 = 0x20
	Block32Erase uint8 = 0x52
	Block64Erase uint8 = 0xD8
)

// FlashController is the capability set a storage engine needs from its
// medium. Regions are SectorSize bytes.
type FlashController interface {
	// ReadRegion fills buf with the bytes at offset within region.
	ReadRegion(region, offset int, buf []byte) error

	// Write programs buf at address, an offset from the start of the
	// storage window.
	Write(address int, buf []byte) error

	// EraseRegion erases one region.
	EraseRegion(region int) error
}

// Driver is the flash command interface, normally the boot ROM routines.
// Only a Controller may call it, and only from inside its critical section.
// None of the routines report failure.
type Driver interface {
	// ConnectInternalFlash routes the QSPI pins to the flash interface.
	ConnectInternalFlash()

	// ExitXIP leaves memory-mapped mode and puts the interface in command
	// mode.
	ExitXIP()

	// RangeProgram programs data at addr. addr is a command address.
	RangeProgram(addr uint32, data []byte)

	// RangeErase erases count bytes from addr. blockSize and blockCmd let the
	// routine use a larger erase command when the range allows it.
	RangeErase(addr uint32, count int, blockSize uint32, blockCmd uint8)

	// FlushCache invalidates the XIP cache.
	FlushCache()

	// EnterCmdXIP returns the interface to memory-mapped mode.
	EnterCmdXIP()
}

// MemoryMap is a read-only view of memory-mapped flash.
type MemoryMap interface {
	// View returns n bytes starting at the memory-mapped address addr. The
	// slice must not be written to.
	View(addr uint32, n int) []byte
}

// CriticalSection runs a function with exclusive use of the instruction
// fetch path: interrupts masked on this core and the other core held off.
type CriticalSection interface {
	Do(fn func())
}

// Region identifies where code executes from.
type Region int

// Memory regions code can execute from.
const (
	RegionROM Region = iota
	RegionSRAM
	RegionFlash
)

func (r Region) String() string {
	switch r {
	case RegionROM:
		return "ROM"
	case RegionSRAM:
		return "SRAM"
	case RegionFlash:
		return "flash"
	default:
		return "unknown"
	}
}

// Executor runs named routines from a fixed memory region.
type Executor interface {
	// Resident reports the region placed routines execute from.
	Resident() Region

	// Place makes a routine available before its first use. Placing the
	// same name twice is a no-op.
	Place(name string)

	// Run executes fn as the body of the placed routine name.
	Run(name string, fn func())
}

// Platform bundles the hardware capabilities a Controller needs.
type Platform interface {
	Driver() Driver
	MemoryMap() MemoryMap
	CriticalSection() CriticalSection
	Executor() Executor
}
