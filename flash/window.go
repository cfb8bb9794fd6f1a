package flash

import (
	"errors"
	"fmt"
)

// ErrUnalignedStorageSize is matched by errors from NewWindow when the storage
// size is not a whole number of sectors.
var ErrUnalignedStorageSize = errors.New("storage size is not a multiple of the sector size")

// ErrWindowExceedsFlash is returned when the storage window would start
// before the beginning of flash.
var ErrWindowExceedsFlash = errors.New("storage window is larger than flash")

// AlignmentError reports a storage size that is not sector aligned.
type AlignmentError struct {
	StorageSize uint32
	Alignment   uint32
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf(
		"storage size %d is not a multiple of %d bytes", e.StorageSize, e.Alignment)
}

// Unwrap lets errors.Is match ErrUnalignedStorageSize.
func (e *AlignmentError) Unwrap() error {
	return ErrUnalignedStorageSize
}

// Window is the part of flash reserved for the storage engine: the last
// StorageSize bytes before FlashEnd. A Window is immutable once made.
type Window struct {
	flashEnd    uint32
	storageSize uint32
	baseAddr    uint32
	xipBaseAddr uint32
}

// NewWindow validates the window bounds and derives its base addresses.
func NewWindow(flashEnd, storageSize uint32) (Window, error) {
	if storageSize%SectorSize != 0 {
		return Window{}, &AlignmentError{
			StorageSize: storageSize,
			Alignment:   SectorSize,
		}
	}

	if storageSize > flashEnd {
		return Window{}, fmt.Errorf(
			"%w: %d bytes requested, flash ends at 0x%08x",
			ErrWindowExceedsFlash, storageSize, flashEnd)
	}

	base := flashEnd - storageSize

	return Window{
		flashEnd:    flashEnd,
		storageSize: storageSize,
		baseAddr:    base,
		xipBaseAddr: XIPBase + base,
	}, nil
}

// FlashEnd returns the command address one past the last usable byte.
func (w Window) FlashEnd() uint32 { return w.flashEnd }

// StorageSize returns the number of bytes reserved for storage.
func (w Window) StorageSize() uint32 { return w.storageSize }

// BaseAddr returns the command address of the first byte of the window.
func (w Window) BaseAddr() uint32 { return w.baseAddr }

// XIPBaseAddr returns the memory-mapped address of the first byte of the
// window.
func (w Window) XIPBaseAddr() uint32 { return w.xipBaseAddr }

// NumRegions returns how many regions fit in the window.
func (w Window) NumRegions() int {
	return int(w.storageSize / SectorSize)
}

// RegionAddr returns the command address of the first byte of region.
func (w Window) RegionAddr(region int) uint32 {
	return w.baseAddr + uint32(region*SectorSize)
}

// XIPAddr returns the memory-mapped address of offset within region.
func (w Window) XIPAddr(region, offset int) uint32 {
	return w.xipBaseAddr + uint32(region*SectorSize+offset)
}

// ProgramAddr returns the command address of an offset into the window.
func (w Window) ProgramAddr(offset int) uint32 {
	return w.baseAddr + uint32(offset)
}

// Contains reports whether [offset, offset+n) lies inside the window.
func (w Window) Contains(offset, n int) bool {
	return offset >= 0 && n >= 0 && uint64(offset)+uint64(n) <= uint64(w.storageSize)
}

func (w Window) String() string {
	return fmt.Sprintf("0x%08x-0x%08x (%d regions, xip 0x%08x)",
		w.baseAddr, w.flashEnd, w.NumRegions(), w.xipBaseAddr)
}
