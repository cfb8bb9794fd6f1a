// Package uf2 converts between UF2 files and the storage window of a flash
// controller. A window exported as UF2 can be copied to a board in BOOTSEL
// mode to pre-seed its storage.
package uf2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Block flags.
const (
	FlagNotMainFlash         = 0x00000001
	FlagFileContainer        = 0x00001000
	FlagFamilyIDPresent      = 0x00002000
	FlagMD5ChecksumPresent   = 0x00004000
	FlagExtensionTagsPresent = 0x00008000
)

// Family IDs.
const (
	FamilyRP2040   = 0xe48bff56
	FamilyAbsolute = 0xe48bff57
	FamilyData     = 0xe48bff58
)

const (
	magic0 = 0x0a324655
	magic1 = 0x9e5d5157
	magic2 = 0x0ab16f30

	// BlockSize is the size of one UF2 block on disk.
	BlockSize = 512

	// PayloadSize is the number of data bytes per block.
	PayloadSize = 256
)

// ErrBadMagic is returned for data that is not a UF2 block.
var ErrBadMagic = errors.New("uf2: bad magic")

// Block is one UF2 block.
type Block struct {
	Magic0 uint32
	Magic1 uint32
	Flags  uint32
	Addr   uint32
	Len    uint32
	Seq    uint32
	Total  uint32
	Family uint32
	Data   [476]byte
	Magic2 uint32
}

// Payload returns the data bytes of the block.
func (b *Block) Payload() []byte {
	n := b.Len
	if n > uint32(len(b.Data)) {
		n = uint32(len(b.Data))
	}

	return b.Data[:n]
}

func (b *Block) valid() bool {
	return b.Magic0 == magic0 && b.Magic1 == magic1 && b.Magic2 == magic2
}

// Writer packs a contiguous byte stream into PayloadSize blocks.
type Writer struct {
	w io.Writer
	b Block
}

// NewWriter creates a Writer for size bytes starting at addr.
func NewWriter(w io.Writer, addr, flags, family uint32, size int) *Writer {
	u := &Writer{w: w}
	u.b.Magic0 = magic0
	u.b.Magic1 = magic1
	u.b.Flags = flags | FlagFamilyIDPresent
	u.b.Addr = addr
	u.b.Total = uint32((size + PayloadSize - 1) / PayloadSize)
	u.b.Family = family
	u.b.Magic2 = magic2

	return u
}

// Write implements io.Writer.
func (u *Writer) Write(p []byte) (n int, err error) {
	b := &u.b
	for len(p) != 0 {
		m := copy(b.Data[b.Len:PayloadSize], p)
		n += m
		p = p[m:]
		b.Len += uint32(m)

		if b.Len == PayloadSize {
			if err = u.emit(); err != nil {
				return n, err
			}
		}
	}

	return n, nil
}

// Flush pads and writes a partially filled block.
func (u *Writer) Flush() error {
	b := &u.b
	if b.Len == 0 {
		return nil
	}

	clear(b.Data[b.Len:])
	b.Len = PayloadSize

	return u.emit()
}

func (u *Writer) emit() error {
	b := &u.b

	err := binary.Write(u.w, binary.LittleEndian, b)
	if err != nil {
		return err
	}

	b.Addr += b.Len
	b.Seq++
	b.Len = 0

	return nil
}

// Reader decodes blocks one at a time.
type Reader struct {
	r     io.Reader
	count int
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next block, or io.EOF when there are none left.
func (u *Reader) Next() (*Block, error) {
	b := &Block{}

	err := binary.Read(u.r, binary.LittleEndian, b)
	if err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("uf2: truncated block %d", u.count)
	}

	if err != nil {
		return nil, err
	}

	if !b.valid() {
		return nil, fmt.Errorf("%w in block %d", ErrBadMagic, u.count)
	}

	u.count++

	return b, nil
}
