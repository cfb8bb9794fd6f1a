package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var eraseAll bool

var eraseCmd = &cobra.Command{
	Use:   "erase <region> | --all",
	Short: "Erase a region or the whole storage window",
	Args: func(_ *cobra.Command, args []string) error {
		if eraseAll != (len(args) == 0) || len(args) > 1 {
			return errors.New("give either one region or --all")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()

		if eraseAll {
			if err := s.ctrl.EraseAll(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "erased %d regions\n",
				s.ctrl.NumRegions())

			return s.save()
		}

		region, err := parseInt("region", args[0])
		if err != nil {
			return err
		}

		if err := s.checkRegion(region); err != nil {
			return err
		}

		if err := s.ctrl.EraseRegion(region); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "erased region %d\n", region)

		return s.save()
	},
}

func init() {
	eraseCmd.Flags().BoolVar(&eraseAll, "all", false,
		"erase every region of the window")
	rootCmd.AddCommand(eraseCmd)
}
