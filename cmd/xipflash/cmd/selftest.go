package cmd

import (
	"fmt"

	"github.com/sarchlab/xipflash/selftest"
	"github.com/spf13/cobra"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check the adapter against fresh emulated boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		failed := 0
		for _, r := range selftest.Run(cmd.OutOrStdout(), selftest.Scenarios()) {
			if !r.Passed() {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d scenario(s) failed", failed)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}
