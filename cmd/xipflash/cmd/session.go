package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/sarchlab/xipflash/datarecording"
	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/idgen"
	"github.com/sarchlab/xipflash/nor"
	"github.com/sarchlab/xipflash/rp2040"
	"github.com/sarchlab/xipflash/tracing"
	"github.com/tebeka/atexit"
)

// session is one board with its storage controller, loaded from and saved
// to the image file.
type session struct {
	cfg    *config
	board  *rp2040.Board
	ctrl   *flash.Controller
	tracer *tracing.OpTracer
	rec    datarecording.DataRecorder
}

func openSession(c *config) (*session, error) {
	flashSize, err := c.flashBytes()
	if err != nil {
		return nil, err
	}

	storageSize, err := c.storageBytes()
	if err != nil {
		return nil, err
	}

	chip, err := loadChip(c.image, flashSize)
	if err != nil {
		return nil, err
	}

	board := rp2040.MakeBuilder().WithChip(chip).Build("Board")

	builder := flash.MakeBuilder().
		WithFlashEnd(board.FlashSize()).
		WithStorageSize(storageSize).
		WithPlatform(board)

	// Ops from earlier runs share the recording, so IDs must not restart.
	if c.record != "" {
		builder = builder.WithIDGenerator(idgen.NewXID())
	}

	ctrl, err := builder.Build("Storage")
	if err != nil {
		return nil, err
	}

	s := &session{cfg: c, board: board, ctrl: ctrl}

	if c.verbose {
		ctrl.AcceptHook(flash.NewLogHook(log.New(os.Stderr, "", 0)))
	}

	if c.record != "" {
		s.rec = datarecording.NewAppending(c.record)
		s.tracer = tracing.NewOpTracer(board, s.rec)
		ctrl.AcceptHook(s.tracer)
		atexit.Register(func() { _ = s.rec.Close() })
	}

	return s, nil
}

// close writes out the recording so the next run can append to it.
func (s *session) close() {
	if s.rec == nil {
		return
	}

	s.tracer.Terminate()

	if err := s.rec.Close(); err != nil {
		log.Printf("closing recording %s: %v", s.cfg.record, err)
	}

	s.rec = nil
}

func loadChip(image string, flashSize uint32) (*nor.Chip, error) {
	if flashSize == 0 || flashSize%nor.BlockSize != 0 {
		return nil, fmt.Errorf("flash size %d is not a multiple of 64K", flashSize)
	}

	chip := nor.New(flashSize, nor.W25Q16JV)

	f, err := os.Open(image)
	if errors.Is(err, fs.ErrNotExist) {
		return chip, nil
	}

	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := chip.LoadImage(f); err != nil {
		return nil, fmt.Errorf("loading %s: %w", image, err)
	}

	return chip, nil
}

// save writes the chip back to the image file.
func (s *session) save() error {
	dir := filepath.Dir(s.cfg.image)

	tmp, err := os.CreateTemp(dir, ".xipflash-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := s.board.Chip().WriteImage(tmp); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.cfg.image)
}

func (s *session) checkRegion(region int) error {
	if region < 0 || region >= s.ctrl.NumRegions() {
		return fmt.Errorf("region %d out of range [0, %d)",
			region, s.ctrl.NumRegions())
	}

	return nil
}

func (s *session) checkSpan(offset, n int) error {
	if !s.ctrl.Window().Contains(offset, n) {
		return fmt.Errorf("0x%x+%d is outside the %d byte window",
			offset, n, s.ctrl.StorageSize())
	}

	return nil
}
