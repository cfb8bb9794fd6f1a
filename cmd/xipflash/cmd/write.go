package cmd

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/sarchlab/xipflash/flash"
	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <offset> <hex>",
	Short: "Program bytes at an offset into the storage window",
	Long: `Program bytes at an offset into the storage window. Programming ` +
		`only clears bits; erase the region first to store arbitrary data.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := parseInt("offset", args[0])
		if err != nil {
			return err
		}

		data, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("invalid data: %w", err)
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.checkSpan(offset, len(data)); err != nil {
			return err
		}

		if err := s.ctrl.Write(offset, data); err != nil {
			return err
		}

		if err := s.save(); err != nil {
			return err
		}

		return verifyWrite(cmd, s, offset, data)
	},
}

// verifyWrite warns when the programmed bytes did not land as given, which
// happens when the target was not erased.
func verifyWrite(cmd *cobra.Command, s *session, offset int, data []byte) error {
	got := make([]byte, len(data))
	for done := 0; done < len(data); {
		region := (offset + done) / flash.SectorSize
		inRegion := (offset + done) % flash.SectorSize

		n := min(len(data)-done, flash.SectorSize-inRegion)
		if err := s.ctrl.ReadRegion(region, inRegion, got[done:done+n]); err != nil {
			return err
		}

		done += n
	}

	if !bytes.Equal(got, data) {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(),
			"warning: target was not erased, flash now holds %x\n", got)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes at 0x%x\n", len(data), offset)

	return nil
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
