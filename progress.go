package engraver

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

// barProgressSink renders plotting progress to a terminal using
// schollz/progressbar, the default ProgressSink wired by cmd/engraver.
type barProgressSink struct {
	bar *progressbar.ProgressBar
}

// NewBarProgressSink creates a byte-denominated progress bar for a plot
// of totalBytes length, described by label.
func NewBarProgressSink(totalBytes int64, label string) ProgressSink {
	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &barProgressSink{bar: bar}
}

func (s *barProgressSink) Add(bytesWritten uint64) {
	_ = s.bar.Add64(int64(bytesWritten))
}

func (s *barProgressSink) Close() {
	_ = s.bar.Finish()
}
