// Package nor models a serial NOR flash chip: page program that can only
// clear bits, sector and block erase back to 0xFF, and the time each of those
// takes.
package nor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/sigurn/crc16"
)

// Geometry shared by the parts this package models.
const (
	PageSize   = 256
	SectorSize = 4096
	BlockSize  = 65536
	ErasedByte = 0xFF
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// ErrImageTooLarge is returned by LoadImage when the image does not fit.
var ErrImageTooLarge = errors.New("image is larger than the flash chip")

type sector struct {
	index    uint32
	data     [SectorSize]byte
	erases   uint32
	programs uint32
}

func newErasedSector(index uint32) *sector {
	s := &sector{index: index}
	s.erase()

	return s
}

func (s *sector) erase() {
	for i := range s.data {
		s.data[i] = ErasedByte
	}
}

func (s *sector) isErased() bool {
	for _, b := range s.data {
		if b != ErasedByte {
			return false
		}
	}

	return true
}

// Stats counts the commands a Chip has executed.
type Stats struct {
	PagePrograms uint64
	SectorErases uint64
	BlockErases  uint64
	BytesWritten uint64
}

// A Chip is a NOR flash part. Sectors that were never touched are not
// allocated and read as erased.
type Chip struct {
	mu sync.RWMutex

	size    uint32
	params  Params
	sectors *btree.BTreeG[*sector]
	stats   Stats
}

// New creates an erased chip of size bytes. size must be a non-zero multiple
// of BlockSize.
func New(size uint32, params Params) *Chip {
	if size == 0 || size%BlockSize != 0 {
		panic(fmt.Sprintf("flash size %d is not a multiple of %d", size, BlockSize))
	}

	return &Chip{
		size:   size,
		params: params,
		sectors: btree.NewG[*sector](16, func(a, b *sector) bool {
			return a.index < b.index
		}),
	}
}

// Size returns the capacity in bytes.
func (c *Chip) Size() uint32 { return c.size }

// Params returns the timing parameters.
func (c *Chip) Params() Params { return c.params }

// NumSectors returns the number of 4 KiB sectors.
func (c *Chip) NumSectors() int { return int(c.size / SectorSize) }

// Stats returns the command counters.
func (c *Chip) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stats
}

func (c *Chip) mustBeInRange(addr uint32, n int) {
	if uint64(addr)+uint64(n) > uint64(c.size) {
		panic(fmt.Sprintf("flash access 0x%08x+%d beyond 0x%08x", addr, n, c.size))
	}
}

func (c *Chip) lookup(index uint32) (*sector, bool) {
	return c.sectors.Get(&sector{index: index})
}

func (c *Chip) materialize(index uint32) *sector {
	s, ok := c.lookup(index)
	if !ok {
		s = newErasedSector(index)
		c.sectors.ReplaceOrInsert(s)
	}

	return s
}

// ReadAt copies len(p) bytes starting at addr.
func (c *Chip) ReadAt(p []byte, addr uint32) {
	c.mustBeInRange(addr, len(p))

	c.mu.RLock()
	defer c.mu.RUnlock()

	for len(p) > 0 {
		index := addr / SectorSize
		offset := addr % SectorSize
		n := min(len(p), int(SectorSize-offset))

		if s, ok := c.lookup(index); ok {
			copy(p[:n], s.data[offset:])
		} else {
			for i := 0; i < n; i++ {
				p[i] = ErasedByte
			}
		}

		p = p[n:]
		addr += uint32(n)
	}
}

// Program writes data at addr with page program commands, split at page
// boundaries. Each byte becomes old AND new, as on real NOR flash. It returns
// the time the chip was busy.
func (c *Chip) Program(addr uint32, data []byte) time.Duration {
	c.mustBeInRange(addr, len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	var busy time.Duration
	for len(data) > 0 {
		n := min(len(data), int(PageSize-addr%PageSize))
		s := c.materialize(addr / SectorSize)
		offset := addr % SectorSize

		for i := 0; i < n; i++ {
			s.data[int(offset)+i] &= data[i]
		}

		s.programs++
		c.stats.PagePrograms++
		c.stats.BytesWritten += uint64(n)
		busy += c.params.PageProgram

		data = data[n:]
		addr += uint32(n)
	}

	return busy
}

// EraseSector erases the 4 KiB sector at addr, which must be sector aligned.
func (c *Chip) EraseSector(addr uint32) time.Duration {
	if addr%SectorSize != 0 {
		panic(fmt.Sprintf("sector erase at unaligned address 0x%08x", addr))
	}

	c.mustBeInRange(addr, SectorSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.eraseSectorLocked(addr / SectorSize)
	c.stats.SectorErases++

	return c.params.SectorErase
}

// EraseBlock erases the 64 KiB block at addr, which must be block aligned.
func (c *Chip) EraseBlock(addr uint32) time.Duration {
	if addr%BlockSize != 0 {
		panic(fmt.Sprintf("block erase at unaligned address 0x%08x", addr))
	}

	c.mustBeInRange(addr, BlockSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	first := addr / SectorSize
	for i := uint32(0); i < BlockSize/SectorSize; i++ {
		c.eraseSectorLocked(first + i)
	}

	c.stats.BlockErases++

	return c.params.BlockErase
}

func (c *Chip) eraseSectorLocked(index uint32) {
	s := c.materialize(index)
	s.erase()
	s.erases++
}

// EraseCount returns how many times a sector has been erased.
func (c *Chip) EraseCount(index int) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.lookup(uint32(index)); ok {
		return s.erases
	}

	return 0
}

// IsErased reports whether every byte of a sector is ErasedByte.
func (c *Chip) IsErased(index int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.lookup(uint32(index))

	return !ok || s.isErased()
}

// SectorCRC returns the CRC-16/XMODEM of a sector's contents.
func (c *Chip) SectorCRC(index int) uint16 {
	buf := make([]byte, SectorSize)
	c.ReadAt(buf, uint32(index)*SectorSize)

	return crc16.Checksum(buf, crcTable)
}

// Sectors calls fn for every sector that has been programmed or erased, in
// address order, until fn returns false. data must not be retained.
func (c *Chip) Sectors(fn func(index int, data []byte) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.sectors.Ascend(func(s *sector) bool {
		return fn(int(s.index), s.data[:])
	})
}

// WriteImage writes the full contents of the chip as a raw binary image.
func (c *Chip) WriteImage(w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, SectorSize)

	for i := 0; i < c.NumSectors(); i++ {
		c.ReadAt(buf, uint32(i)*SectorSize)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// LoadImage replaces the chip contents with a raw binary image. A short
// image leaves the rest of the chip erased. Loading does not count as
// program or erase cycles.
func (c *Chip) LoadImage(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sectors.Clear(false)

	buf := make([]byte, SectorSize)
	for index := uint32(0); ; index++ {
		n, err := io.ReadFull(r, buf)
		if n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF) {
			return nil
		}

		if index >= c.size/SectorSize {
			return ErrImageTooLarge
		}

		if err != nil && err != io.ErrUnexpectedEOF {
			return err
		}

		for i := n; i < SectorSize; i++ {
			buf[i] = ErasedByte
		}

		s := &sector{index: index}
		copy(s.data[:], buf)
		if !s.isErased() {
			c.sectors.ReplaceOrInsert(s)
		}

		if err == io.ErrUnexpectedEOF {
			return nil
		}
	}
}
