package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	ffmpegPathEnv  = "SUBTRANS_FFMPEG_PATH"
	ffprobePathEnv = "SUBTRANS_FFPROBE_PATH"
)

var ErrNotInstalled = errors.New("ffmpeg is not installed")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates ffmpeg and ffprobe once per process, preferring the
// SUBTRANS_FFMPEG_PATH / SUBTRANS_FFPROBE_PATH overrides over PATH.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	ffmpegPath, err := find(getenv(ffmpegPathEnv), "ffmpeg", lookPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := find(getenv(ffprobePathEnv), "ffprobe", lookPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func find(
	override, name string,
	lookPath func(string) (string, error),
) (string, error) {
	if override != "" {
		return override, nil
	}
	found, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf(
			"%w: %s not found in PATH (install ffmpeg or set %s)",
			ErrNotInstalled,
			name,
			envFor(name),
		)
	}
	return found, nil
}

func envFor(name string) string {
	if name == "ffprobe" {
		return ffprobePathEnv
	}
	return ffmpegPathEnv
}
