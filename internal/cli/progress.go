package cli

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/translate"
	"github.com/schollz/progressbar/v3"
)

const progressLogEvery = 10

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// returns a progress callback and a function to call once the run ends;
// a bar on interactive stderr, periodic log lines otherwise
func newProgress(
	total int,
	logger *logging.Logger,
) (translate.ProgressFunc, func()) {
	if !isTerminal(os.Stderr) {
		return logProgress(logger), func() {}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Translating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, total int) {
			_ = bar.Set(done)
		}, func() {
			_ = bar.Finish()
		}
}

func logProgress(logger *logging.Logger) translate.ProgressFunc {
	return func(done, total int) {
		if done%progressLogEvery == 0 || done == total {
			logger.Infow("Translation progress", "done", done, "total", total)
		}
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
