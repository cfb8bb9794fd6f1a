package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type config struct {
	image       string
	flashSize   string
	storageSize string
	record      string
	verbose     bool
}

func defaultConfig() *config {
	return &config{
		image:       "xipflash.bin",
		flashSize:   "2M",
		storageSize: "64K",
	}
}

var envVars = map[string]string{
	"image":        "XIPFLASH_IMAGE",
	"flash-size":   "XIPFLASH_FLASH_SIZE",
	"storage-size": "XIPFLASH_STORAGE_SIZE",
	"record":       "XIPFLASH_RECORD",
}

// applyEnv fills flags that were not given on the command line from the
// environment.
func (c *config) applyEnv(flags *pflag.FlagSet) error {
	for flag, env := range envVars {
		value, ok := os.LookupEnv(env)
		if !ok || flags.Changed(flag) {
			continue
		}

		if err := flags.Set(flag, value); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}

	return nil
}

func (c *config) flashBytes() (uint32, error) {
	return parseSize("flash size", c.flashSize)
}

func (c *config) storageBytes() (uint32, error) {
	return parseSize("storage size", c.storageSize)
}

// parseSize reads a byte count such as 4096, 0x10000, 64K or 2M.
func parseSize(what, s string) (uint32, error) {
	multiplier := uint64(1)
	trimmed := strings.TrimSpace(s)

	switch {
	case strings.HasSuffix(strings.ToUpper(trimmed), "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(strings.ToUpper(trimmed), "M"):
		multiplier = 1 << 20
	}

	if multiplier != 1 {
		trimmed = trimmed[:len(trimmed)-1]
	}

	n, err := strconv.ParseUint(trimmed, 0, 32)
	if err != nil || n*multiplier > 1<<32-1 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}

	return uint32(n * multiplier), nil
}

func parseInt(what, s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}

	return int(n), nil
}
