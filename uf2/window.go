package uf2

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/xipflash/flash"
)

// Import errors.
var (
	ErrWrongFamily    = errors.New("uf2: block is for another family")
	ErrOutsideWindow  = errors.New("uf2: block is outside the storage window")
	ErrNotMainFlash   = errors.New("uf2: block is not for main flash")
	ErrNoStorageBlock = errors.New("uf2: file has no blocks for the window")
)

// Window is the part of a flash controller an export reads and an import
// writes.
type Window interface {
	flash.FlashController

	XIPBaseAddr() uint32
	NumRegions() int
}

// Export writes the whole window as RP2040 UF2 blocks addressed at its
// memory-mapped location.
func Export(w io.Writer, win Window) error {
	size := win.NumRegions() * flash.SectorSize
	u := NewWriter(w, win.XIPBaseAddr(), 0, FamilyRP2040, size)

	buf := make([]byte, flash.SectorSize)
	for region := 0; region < win.NumRegions(); region++ {
		if err := win.ReadRegion(region, 0, buf); err != nil {
			return err
		}

		if _, err := u.Write(buf); err != nil {
			return err
		}
	}

	return u.Flush()
}

// ImportStats summarizes an import.
type ImportStats struct {
	Blocks  int
	Bytes   int
	Regions []int
}

// Import programs the blocks of a UF2 file into the window, the way the boot
// ROM does when a file is copied to the BOOTSEL drive: every region a block
// touches is erased once, then the payloads are programmed. Blocks must lie
// entirely inside the window. Nothing is written if any block is rejected.
func Import(r io.Reader, win Window) (ImportStats, error) {
	stats := ImportStats{}

	blocks, err := readWindowBlocks(r, win)
	if err != nil {
		return stats, err
	}

	if len(blocks) == 0 {
		return stats, ErrNoStorageBlock
	}

	touched := make(map[int]bool)
	for _, b := range blocks {
		first := int(b.Addr-win.XIPBaseAddr()) / flash.SectorSize
		last := int(b.Addr-win.XIPBaseAddr()+b.Len-1) / flash.SectorSize

		for region := first; region <= last; region++ {
			touched[region] = true
		}
	}

	for region := range touched {
		stats.Regions = append(stats.Regions, region)
	}
	sort.Ints(stats.Regions)

	for _, region := range stats.Regions {
		if err := win.EraseRegion(region); err != nil {
			return stats, err
		}
	}

	for _, b := range blocks {
		err := win.Write(int(b.Addr-win.XIPBaseAddr()), b.Payload())
		if err != nil {
			return stats, err
		}

		stats.Blocks++
		stats.Bytes += int(b.Len)
	}

	return stats, nil
}

func readWindowBlocks(r io.Reader, win Window) ([]*Block, error) {
	start := uint64(win.XIPBaseAddr())
	end := start + uint64(win.NumRegions())*flash.SectorSize

	var blocks []*Block

	u := NewReader(r)
	for {
		b, err := u.Next()
		if err == io.EOF {
			return blocks, nil
		}

		if err != nil {
			return nil, err
		}

		switch {
		case b.Len == 0:
			continue
		case b.Flags&FlagNotMainFlash != 0:
			return nil, fmt.Errorf("%w: seq %d", ErrNotMainFlash, b.Seq)
		case b.Flags&FlagFamilyIDPresent != 0 && b.Family != FamilyRP2040:
			return nil, fmt.Errorf("%w: 0x%08x", ErrWrongFamily, b.Family)
		case b.Len > PayloadSize ||
			uint64(b.Addr) < start || uint64(b.Addr)+uint64(b.Len) > end:
			return nil, fmt.Errorf("%w: 0x%08x+%d", ErrOutsideWindow, b.Addr, b.Len)
		}

		blocks = append(blocks, b)
	}
}
