package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mgpai22/subtrans/internal/video"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <video_file>",
	Short: "Extract an embedded subtitle track from a video file",
	Long: `Extract a subtitle stream from a video container and save it as SRT,
ready to be translated.

Streams are numbered among subtitle tracks only, starting at 0. Use --list
to see what the container carries.

Examples:
  subtrans extract movie.mkv
  subtrans extract movie.mkv --stream 1 -o movie.en.srt
  subtrans extract movie.mkv --list`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		Int("stream", 0, "Subtitle stream number to extract")
	extractCmd.Flags().
		Bool("list", false, "List subtitle streams instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	videoPath := args[0]

	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")

	processor, err := video.NewProcessor()
	if err != nil {
		return err
	}

	if list {
		streams, err := processor.SubtitleStreams(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("failed to list subtitle streams: %w", err)
		}
		if len(streams) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subtitle streams found")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderStreams(streams))
		return nil
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
	)

	if err := processor.ExtractSubtitles(ctx, videoPath, outputPath, stream); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s\n", absOutput)

	return nil
}

func renderStreams(streams []video.SubtitleStream) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Stream", "Codec", "Language", "Title", "Default"})
	for _, s := range streams {
		def := ""
		if s.Default {
			def = "yes"
		}
		tw.AppendRow(table.Row{strconv.Itoa(s.Index), s.Codec, s.Language, s.Title, def})
	}
	return tw.Render()
}
