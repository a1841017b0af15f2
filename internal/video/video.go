package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mgpai22/subtrans/internal/ffmpeg"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// a subtitle track inside a video container
type SubtitleStream struct {
	Index    int // position among subtitle streams, as used by ExtractSubtitles
	Codec    string
	Language string
	Title    string
	Default  bool
}

// defines interface for video processing operations
type Processor interface {
	// writes subtitle stream n of the video to outputPath as SRT
	ExtractSubtitles(
		ctx context.Context,
		videoPath, outputPath string,
		stream int,
	) error

	// lists the subtitle streams of the video
	SubtitleStreams(ctx context.Context, videoPath string) ([]SubtitleStream, error)
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewProcessor locates the ffmpeg binaries; see ffmpeg.Ensure.
func NewProcessor() (*DefaultProcessor, error) {
	paths, err := ffmpeg.Ensure()
	if err != nil {
		return nil, err
	}
	return &DefaultProcessor{
		ffmpegPath:  paths.FFmpeg,
		ffprobePath: paths.FFprobe,
	}, nil
}

func (p *DefaultProcessor) ExtractSubtitles(
	ctx context.Context,
	videoPath, outputPath string,
	stream int,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("video file not found: %w", err)
		}
		return fmt.Errorf("failed to access video file: %w", err)
	}
	if stream < 0 {
		return fmt.Errorf("subtitle stream must not be negative, got %d", stream)
	}

	compiled := extractCommand(p.ffmpegPath, videoPath, outputPath, stream)
	if err := run(ctx, compiled.Path, compiled.Args[1:], nil); err != nil {
		return fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}
	return nil
}

// builds the ffmpeg invocation that converts one subtitle stream to SRT
func extractCommand(ffmpegPath, videoPath, outputPath string, stream int) *exec.Cmd {
	return ffmpeggo.Input(videoPath).
		Output(outputPath, ffmpeggo.KwArgs{
			"map": fmt.Sprintf("0:s:%d", stream),
			"c:s": "srt",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Compile()
}

func (p *DefaultProcessor) SubtitleStreams(
	ctx context.Context,
	videoPath string,
) ([]SubtitleStream, error) {
	if _, err := os.Stat(videoPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("video file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to access video file: %w", err)
	}

	var out bytes.Buffer
	args := []string{
		"-v", "error",
		"-select_streams", "s",
		"-show_streams",
		"-of", "json",
		videoPath,
	}
	if err := run(ctx, p.ffprobePath, args, &out); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out.Bytes())
}

type probeOutput struct {
	Streams []struct {
		CodecName   string            `json:"codec_name"`
		CodecType   string            `json:"codec_type"`
		Tags        map[string]string `json:"tags"`
		Disposition struct {
			Default int `json:"default"`
		} `json:"disposition"`
	} `json:"streams"`
}

func parseProbe(data []byte) ([]SubtitleStream, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	streams := make([]SubtitleStream, 0, len(probe.Streams))
	for _, s := range probe.Streams {
		if s.CodecType != "" && s.CodecType != "subtitle" {
			continue
		}
		streams = append(streams, SubtitleStream{
			Index:    len(streams),
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
			Default:  s.Disposition.Default == 1,
		})
	}
	return streams, nil
}

func run(ctx context.Context, bin string, args []string, stdout *bytes.Buffer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
