package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.srt>",
	Short: "Show the entries of a subtitle file",
	Long: `Parse a subtitle file and print its entries as a table, or only the
caption text with --plain. Malformed blocks are skipped exactly as the
translate command skips them.

Examples:
  subtrans inspect movie.srt
  subtrans inspect movie.srt --limit 20
  subtrans inspect movie.srt --plain > movie.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("plain", false, "Print only the caption text")
	inspectCmd.Flags().Int("limit", 0, "Show only the first N entries")
}

func runInspect(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := subtitle.Parse(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	logger.Debugw("Parsed subtitle file", "input", args[0], "entries", len(records))

	total := len(records)
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	out := cmd.OutOrStdout()
	if plain {
		fmt.Fprintln(out, subtitle.PlainText(records))
		return nil
	}

	fmt.Fprintln(out, renderRecords(records, total))
	return nil
}

func renderRecords(records []subtitle.Record, total int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Timestamp", "Text"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 60},
	})
	for _, r := range records {
		tw.AppendRow(table.Row{strconv.Itoa(r.Index), r.Timestamp, r.Text})
	}
	tw.AppendFooter(table.Row{"", "Entries", fmt.Sprintf("%d of %d", len(records), total)})
	return tw.Render()
}
