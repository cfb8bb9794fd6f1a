// Package selftest runs the flash adapter against fresh emulated boards and
// checks the properties firmware relies on.
package selftest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/rp2040"
)

// A Scenario checks one property on a fresh board.
type Scenario struct {
	Name string
	Run  func(b *rp2040.Board) error
}

// Result is the outcome of one Scenario.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the scenario held.
func (r Result) Passed() bool { return r.Err == nil }

const storageSize = 16 * flash.SectorSize

func newController(b *rp2040.Board) (*flash.Controller, error) {
	return b.NewFlashController("Storage", storageSize)
}

func expectBytes(what string, got, want []byte) error {
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: got %x, want %x", what, got, want)
	}

	return nil
}

// Scenarios returns the built-in scenarios.
func Scenarios() []Scenario {
	return []Scenario{
		{"window geometry", windowGeometry},
		{"unaligned storage size is rejected", unalignedRejected},
		{"read after write", readAfterWrite},
		{"erased region reads 0xFF", erasedReadsFF},
		{"reprogramming is idempotent", idempotentReprogram},
		{"program only clears bits", programClearsBits},
		{"flash outside the window is untouched", windowIsolation},
		{"flash-resident mutators are refused", flashResidentRefused},
		{"interrupts wait for XIP", interruptsWait},
	}
}

// Run executes every scenario on its own board and reports each result to
// w. It returns the results in order.
func Run(w io.Writer, scenarios []Scenario) []Result {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		r := Result{Name: s.Name, Err: runOne(s)}
		results = append(results, r)

		if r.Passed() {
			fmt.Fprintf(w, "%s %s\n", pass("PASS"), s.Name)
		} else {
			fmt.Fprintf(w, "%s %s: %v\n", fail("FAIL"), s.Name, r.Err)
		}
	}

	return results
}

// runOne turns a panic, such as a bus fault, into a failure.
func runOne(s Scenario) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	return s.Run(rp2040.MakeBuilder().Build("Pico"))
}

func windowGeometry(b *rp2040.Board) error {
	c, err := b.NewFlashController("Storage", 65536)
	if err != nil {
		return err
	}

	if c.NumRegions() != 16 {
		return fmt.Errorf("got %d regions, want 16", c.NumRegions())
	}

	if want := uint32(flash.XIPBase) + b.FlashSize() - 65536; c.XIPBaseAddr() != want {
		return fmt.Errorf("XIP base 0x%08x, want 0x%08x", c.XIPBaseAddr(), want)
	}

	return nil
}

func unalignedRejected(b *rp2040.Board) error {
	_, err := b.NewFlashController("Storage", 5000)

	var alignErr *flash.AlignmentError
	if !errors.As(err, &alignErr) {
		return fmt.Errorf("got %v, want an alignment error", err)
	}

	return nil
}

func readAfterWrite(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	data := bytes.Repeat([]byte{0xAA}, 8)
	if err := c.Write(0, data); err != nil {
		return err
	}

	buf := make([]byte, 8)
	if err := c.ReadRegion(0, 0, buf); err != nil {
		return err
	}

	return expectBytes("region 0", buf, data)
}

func erasedReadsFF(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	if err := c.Write(3*flash.SectorSize, []byte{0, 0, 0, 0}); err != nil {
		return err
	}

	if err := c.EraseRegion(3); err != nil {
		return err
	}

	buf := make([]byte, 4)
	if err := c.ReadRegion(3, 0, buf); err != nil {
		return err
	}

	return expectBytes("region 3", buf, []byte{0xFF, 0xFF, 0xFF, 0xFF})
}

func idempotentReprogram(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	data := []byte{0x12, 0x34, 0x56}
	for i := 0; i < 2; i++ {
		if err := c.Write(42, data); err != nil {
			return err
		}
	}

	buf := make([]byte, len(data))
	if err := c.ReadRegion(0, 42, buf); err != nil {
		return err
	}

	return expectBytes("offset 42", buf, data)
}

func programClearsBits(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	if err := c.Write(0, []byte{0xF0}); err != nil {
		return err
	}

	if err := c.Write(0, []byte{0x0F}); err != nil {
		return err
	}

	buf := make([]byte, 1)
	if err := c.ReadRegion(0, 0, buf); err != nil {
		return err
	}

	return expectBytes("offset 0", buf, []byte{0x00})
}

func windowIsolation(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	if err := c.EraseAll(); err != nil {
		return err
	}

	if err := c.Write(0, bytes.Repeat([]byte{0}, flash.SectorSize)); err != nil {
		return err
	}

	first := int(c.BaseAddr() / flash.SectorSize)

	var outside []int
	b.Chip().Sectors(func(index int, _ []byte) bool {
		if index < first {
			outside = append(outside, index)
		}

		return true
	})

	if len(outside) > 0 {
		return fmt.Errorf("sectors %v outside the window were touched", outside)
	}

	return nil
}

func flashResidentRefused(b *rp2040.Board) error {
	_, err := flash.MakeBuilder().
		WithFlashEnd(b.FlashSize()).
		WithStorageSize(storageSize).
		WithPlatform(b).
		WithExecutor(b.FlashResident()).
		Build("InPlace")

	if !errors.Is(err, flash.ErrFlashResidentMutator) {
		return fmt.Errorf("got %v, want %v", err, flash.ErrFlashResidentMutator)
	}

	return nil
}

func interruptsWait(b *rp2040.Board) error {
	c, err := newController(b)
	if err != nil {
		return err
	}

	mapped := false
	b.NVIC().SetHandler(rp2040.IRQTimer0, func() {
		mapped = b.XIP().Enabled()
	})
	b.NVIC().RaiseAt(rp2040.IRQTimer0, b.CurrentTime()+0.001)

	if err := c.EraseRegion(0); err != nil {
		return err
	}

	if b.NVIC().Delivered(rp2040.IRQTimer0) != 1 {
		return errors.New("alarm was not delivered")
	}

	if !mapped {
		return errors.New("handler ran while flash was in command mode")
	}

	return nil
}
