package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sarchlab/xipflash/flash"
	"github.com/spf13/cobra"
)

var label = color.New(color.FgCyan).SprintFunc()

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the flash chip and the storage window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		chip := s.board.Chip()
		erased := 0
		for i := 0; i < s.ctrl.NumRegions(); i++ {
			if chip.IsErased(int(s.ctrl.Window().RegionAddr(i) / flash.SectorSize)) {
				erased++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", label("image:"), cfg.image,
			chip.Params().Name)
		fmt.Fprintf(out, "%s %d bytes\n", label("flash:"), chip.Size())
		fmt.Fprintf(out, "%s %s\n", label("window:"), s.ctrl.Window())
		fmt.Fprintf(out, "%s %d, %d erased\n", label("regions:"),
			s.ctrl.NumRegions(), erased)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
