package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sarchlab/xipflash/flash"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "List every region with its erase count and checksum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		chip := s.board.Chip()
		dim := color.New(color.Faint).SprintFunc()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "REGION\tXIP ADDR\tERASES\tCRC16\tSTATE")

		for i := 0; i < s.ctrl.NumRegions(); i++ {
			sector := int(s.ctrl.Window().RegionAddr(i) / flash.SectorSize)

			state := "data"
			if chip.IsErased(sector) {
				state = dim("erased")
			}

			fmt.Fprintf(tw, "%d\t0x%08x\t%d\t%04x\t%s\n",
				i, s.ctrl.Window().XIPAddr(i, 0), chip.EraseCount(sector),
				chip.SectorCRC(sector), state)
		}

		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
