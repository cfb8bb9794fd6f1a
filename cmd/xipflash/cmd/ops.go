package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sarchlab/xipflash/datarecording"
	"github.com/sarchlab/xipflash/tracing"
	"github.com/spf13/cobra"
)

var (
	opsKind  string
	opsLimit int
)

var opsCmd = &cobra.Command{
	Use:   "ops <recording>",
	Short: "List the flash operations stored in a recording",
	Long: `List the flash operations a --record run stored, oldest first. ` +
		`Durations are in emulated seconds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !strings.HasSuffix(path, ".sqlite3") {
			path += ".sqlite3"
		}

		reader, err := datarecording.NewReader(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		params := datarecording.QueryParams{
			OrderBy: "rowid",
			Limit:   opsLimit,
		}
		if opsKind != "" {
			params.Where = "Kind = ?"
			params.Args = []any{opsKind}
		}

		ops, total, err := tracing.ReadOps(cmd.Context(), reader, params)
		if err != nil {
			return err
		}

		printOps(cmd, ops, total)

		return nil
	},
}

func printOps(cmd *cobra.Command, ops []tracing.OpEntry, total int) {
	head := color.New(color.FgCyan).SprintFunc()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, head("ID\tKIND\tREGION\tOFFSET\tADDR\tLENGTH\tDURATION"))

	for _, op := range ops {
		region := "-"
		if op.Region >= 0 {
			region = fmt.Sprint(op.Region)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t0x%x\t0x%08x\t%d\t%.6fs\n",
			op.ID, op.Kind, region, op.Offset, op.Addr, op.Length,
			op.EndTime-op.StartTime)
	}

	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d ops\n", len(ops), total)
}

func init() {
	opsCmd.Flags().StringVar(&opsKind, "kind", "",
		"only list ops of this kind: read, write, erase or erase_all")
	opsCmd.Flags().IntVar(&opsLimit, "limit", 0,
		"list at most this many ops, all if 0")
	rootCmd.AddCommand(opsCmd)
}
