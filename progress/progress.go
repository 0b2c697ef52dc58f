// Package progress renders terminal activity indicators for CLI commands
// that wait on the server.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const defaultTermWidth = 80

type State interface {
	String() string
}

// Progress redraws a stack of states on a ticker until stopped.
type Progress struct {
	mu sync.Mutex
	// buffered to minimize flickering
	w *bufio.Writer

	pos    int
	ticker *time.Ticker
	states []State
}

func NewProgress(w io.Writer) *Progress {
	p := &Progress{w: bufio.NewWriter(w)}
	go p.start()
	return p
}

func (p *Progress) Add(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.states = append(p.states, state)
}

func (p *Progress) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, state := range p.states {
		if spinner, ok := state.(*Spinner); ok {
			spinner.Stop()
		}
	}

	if p.ticker == nil {
		return false
	}

	p.ticker.Stop()
	p.ticker = nil
	p.render()
	fmt.Fprintln(p.w)
	p.w.Flush()
	return true
}

func (p *Progress) start() {
	p.mu.Lock()
	p.ticker = time.NewTicker(100 * time.Millisecond)
	ticker := p.ticker
	p.mu.Unlock()

	for range ticker.C {
		p.mu.Lock()
		if p.ticker == nil {
			p.mu.Unlock()
			return
		}
		p.render()
		p.mu.Unlock()
	}
}

// render assumes p.mu is held.
func (p *Progress) render() {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		width = defaultTermWidth
	}

	// move the cursor back to the first state's line
	if p.pos > 0 {
		fmt.Fprintf(p.w, "\033[%dA", p.pos)
	}

	for _, state := range p.states {
		line := state.String()
		if len(line) > width {
			line = line[:width]
		}
		fmt.Fprintf(p.w, "\r\033[K%s\n", line)
	}

	p.pos = len(p.states)
	p.w.Flush()
}
