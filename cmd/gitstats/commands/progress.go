package commands

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Sumatoshi-tech/gitstats/pkg/terminal"
)

const (
	progressWidth    = 30
	progressThrottle = 65 * time.Millisecond
)

// progress draws a bar on a terminal while commits are extracted. It stays
// silent when disabled or when w is not a terminal.
type progress struct {
	w       io.Writer
	enabled bool
	once    sync.Once
	bar     *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool) *progress {
	return &progress{w: w, enabled: enabled && terminal.IsTerminal(w)}
}

// update is safe for concurrent use.
func (p *progress) update(_, total int) {
	if !p.enabled {
		return
	}

	p.once.Do(func() {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(progressWidth),
			progressbar.OptionThrottle(progressThrottle),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("[cyan]Reading commits[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	})

	_ = p.bar.Add(1)
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
