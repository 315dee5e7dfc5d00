package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"switchyard-ai/switchyard/pkg/providers"
)

// barWidth is the character width of the download bar.
const barWidth = 30

// PullProgressPrinter renders model download progress in place on one
// terminal line, advancing to a fresh line whenever the runtime moves
// to a new phase ("pulling manifest", per-layer downloads, "success").
//
// The Update method has the signature of the providers.ModelManager
// progress callback, so a printer plugs straight into PullModel:
//
//	printer := cli.NewPullProgressPrinter(os.Stdout)
//	defer printer.Finish()
//	err := mgr.PullModel(ctx, "mistral", printer.Update)
type PullProgressPrinter struct {
	mu     sync.Mutex
	writer io.Writer
	status string
	drew   bool
}

// NewPullProgressPrinter creates a printer writing to w. A nil writer
// defaults to os.Stdout.
func NewPullProgressPrinter(w io.Writer) *PullProgressPrinter {
	if w == nil {
		w = os.Stdout
	}
	return &PullProgressPrinter{writer: w}
}

// Update renders one progress report. Reports with a known byte total
// draw a bar; phase-only reports draw just the status text.
func (p *PullProgressPrinter) Update(prog providers.PullProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prog.Status != p.status {
		if p.drew {
			fmt.Fprintln(p.writer)
		}
		p.status = prog.Status
		p.drew = false
	}

	if prog.Total > 0 {
		percent := float64(prog.Completed) / float64(prog.Total) * 100
		filled := int(float64(barWidth) * percent / 100)
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(p.writer, "\r%s [%s] %.1f%% (%s/%s)",
			prog.Status, bar, percent, formatBytes(prog.Completed), formatBytes(prog.Total))
	} else {
		fmt.Fprintf(p.writer, "\r%s", prog.Status)
	}
	p.drew = true
}

// Finish terminates the in-place line. Safe to call when nothing was
// drawn.
func (p *PullProgressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drew {
		fmt.Fprintln(p.writer)
		p.drew = false
	}
}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
