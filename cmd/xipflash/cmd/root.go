// Package cmd provides the command-line interface of xipflash.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var cfg = defaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xipflash",
	Short: "xipflash works with the TicKV storage window of RP2040 flash.",
	Long: `xipflash emulates an RP2040 with its QSPI flash and drives the ` +
		`storage window at the end of flash the way firmware does: reads ` +
		`through XIP, programs and erases from RAM with interrupts masked. ` +
		`The flash contents persist in an image file between runs.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return cfg.applyEnv(cmd.Flags())
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.image, "image", cfg.image,
		"flash image file, created if missing [XIPFLASH_IMAGE]")
	f.StringVar(&cfg.flashSize, "flash-size", cfg.flashSize,
		"flash chip size, e.g. 2M [XIPFLASH_FLASH_SIZE]")
	f.StringVar(&cfg.storageSize, "storage-size", cfg.storageSize,
		"storage window size, a multiple of 4K [XIPFLASH_STORAGE_SIZE]")
	f.StringVar(&cfg.record, "record", cfg.record,
		"record flash operations to this SQLite file [XIPFLASH_RECORD]")
	f.BoolVarP(&cfg.verbose, "verbose", "v", false,
		"log every flash operation")
}

// Execute loads .env, runs the command line and exits through atexit so
// recorders are flushed.
func Execute() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Ignoring .env: %v\n", err)
	}

	err = rootCmd.Execute()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
