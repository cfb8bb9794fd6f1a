package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarchlab/xipflash/flash"
	"github.com/sarchlab/xipflash/monitoring"
	"github.com/sarchlab/xipflash/tracing"
	"github.com/spf13/cobra"
)

var (
	servePort     int
	serveOpen     bool
	serveExercise time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storage window over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		m := monitoring.NewMonitor(s.board).WithPortNumber(servePort)
		m.RegisterController(s.ctrl)
		m.RegisterOpLog(tracing.NewOpLog(s.board, 256))

		url := m.StartServer()
		if serveOpen {
			if err := monitoring.OpenBrowser(url); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cannot open browser: %v\n", err)
			}
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		done := make(chan struct{})
		exited := make(chan struct{})
		go func() {
			defer close(exited)
			if serveExercise > 0 && s.ctrl.StorageSize() > 0 {
				err := exercise(s.ctrl, int(s.ctrl.StorageSize()),
					serveExercise, done)
				if err != nil {
					log.Printf("exercise stopped: %v", err)
				}
			}
		}()

		<-stop
		close(done)
		<-exited

		if err := m.StopServer(); err != nil {
			return err
		}

		return s.save()
	},
}

// exercise appends records to the window like a storage engine would,
// erasing each region before it is reused. It stops at the first failed op.
func exercise(
	c flash.FlashController,
	windowSize int,
	interval time.Duration,
	done <-chan struct{},
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	const recordSize = 64

	offset := 0
	for n := 0; ; n++ {
		select {
		case <-done:
			return nil
		case <-ticker.C:
		}

		if offset%flash.SectorSize == 0 {
			region := offset / flash.SectorSize
			if err := c.EraseRegion(region); err != nil {
				return fmt.Errorf("erasing region %d: %w", region, err)
			}
		}

		record := make([]byte, recordSize)
		copy(record, fmt.Sprintf("record %d", n))
		if err := c.Write(offset, record); err != nil {
			return fmt.Errorf("writing record %d at 0x%x: %w", n, offset, err)
		}

		offset = (offset + recordSize) % windowSize
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"port to listen on, random if 0")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false,
		"open the monitor in a browser")
	serveCmd.Flags().DurationVar(&serveExercise, "exercise", 0,
		"append a record at this interval to show activity")
	rootCmd.AddCommand(serveCmd)
}
