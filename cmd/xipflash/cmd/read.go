package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/sarchlab/xipflash/flash"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <region> [offset] [length]",
	Short: "Read bytes from a region through XIP",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		region, offset, length, err := parseReadArgs(args)
		if err != nil {
			return err
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.checkRegion(region); err != nil {
			return err
		}

		if offset < 0 || length < 0 ||
			offset > flash.SectorSize || length > flash.SectorSize-offset {
			return fmt.Errorf("0x%x+%d does not fit in a region", offset, length)
		}

		buf := make([]byte, length)
		if err := s.ctrl.ReadRegion(region, offset, buf); err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), hex.Dump(buf))

		return nil
	},
}

func parseReadArgs(args []string) (region, offset, length int, err error) {
	length = 64

	region, err = parseInt("region", args[0])
	if err != nil {
		return
	}

	if len(args) > 1 {
		offset, err = parseInt("offset", args[1])
		if err != nil {
			return
		}
	}

	if len(args) > 2 {
		length, err = parseInt("length", args[2])
	}

	return
}

func init() {
	rootCmd.AddCommand(readCmd)
}
