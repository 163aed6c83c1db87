// Package progress shows how far a per-item crawl loop has got.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Reporter observes a loop over a known number of items
type Reporter interface {
	Start(desc string, total int)
	Advance(label string)
	Finish()
}

// Spinner renders progress as a terminal spinner with an "n/total" suffix.
// Nothing is drawn unless the writer is a file attached to a terminal.
type Spinner struct {
	s     *spinner.Spinner // nil when drawing is disabled
	mu    sync.Mutex
	desc  string
	total int
	done  int
}

// NewSpinner creates a Spinner drawing on w (usually stderr)
func NewSpinner(w io.Writer) *Spinner {
	p := &Spinner{}
	if _, ok := w.(*os.File); ok {
		p.s = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return p
}

// Start begins a new loop of total items
func (p *Spinner) Start(desc string, total int) {
	p.mu.Lock()
	p.desc, p.total, p.done = desc, total, 0
	p.mu.Unlock()
	p.setSuffix("")
	if p.s != nil {
		p.s.Start()
	}
}

// Advance marks one item as processed
func (p *Spinner) Advance(label string) {
	p.mu.Lock()
	p.done++
	p.mu.Unlock()
	p.setSuffix(label)
}

// Finish stops the spinner and prints a summary line
func (p *Spinner) Finish() {
	if p.s == nil {
		return
	}
	final := p.summary() + "\n"
	p.s.Lock()
	p.s.FinalMSG = final
	p.s.Unlock()
	p.s.Stop()
}

// summary is the "desc: n/total" line left on screen by Finish
func (p *Spinner) summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s: %d/%d", p.desc, p.done, p.total)
}

func (p *Spinner) setSuffix(label string) {
	p.mu.Lock()
	suffix := fmt.Sprintf(" %s %d/%d %s", p.desc, p.done, p.total, label)
	p.mu.Unlock()
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = suffix
	p.s.Unlock()
}

// Nop discards progress
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Advance(string)    {}
func (Nop) Finish()           {}
