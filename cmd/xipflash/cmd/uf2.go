package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/xipflash/uf2"
	"github.com/spf13/cobra"
)

var exportUF2Cmd = &cobra.Command{
	Use:   "export-uf2 <file>",
	Short: "Write the storage window as a UF2 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}

		if err := uf2.Export(f, s.ctrl); err != nil {
			f.Close()
			return err
		}

		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d regions at 0x%08x to %s\n",
			s.ctrl.NumRegions(), s.ctrl.XIPBaseAddr(), args[0])

		return nil
	},
}

var importUF2Cmd = &cobra.Command{
	Use:   "import-uf2 <file>",
	Short: "Program a UF2 file into the storage window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		stats, err := uf2.Import(f, s.ctrl)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"imported %d blocks (%d bytes) into regions %v\n",
			stats.Blocks, stats.Bytes, stats.Regions)

		return s.save()
	},
}

func init() {
	rootCmd.AddCommand(exportUF2Cmd)
	rootCmd.AddCommand(importUF2Cmd)
}
