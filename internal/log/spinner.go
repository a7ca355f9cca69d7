package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ProgressSpinner draws a spinner with a message on stderr while a long scan runs.
// It draws nothing when stderr is not a terminal.
type ProgressSpinner struct {
	mu      sync.Mutex
	message string
	frames  []string
	current int
	active  bool
	writer  io.Writer
	tty     bool
	done    chan struct{}
	stopped chan struct{}
}

// NewProgressSpinner creates a new progress spinner
func NewProgressSpinner(message string) *ProgressSpinner {
	return &ProgressSpinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		writer:  os.Stderr,
		tty:     IsTTY(),
	}
}

// Start begins the spinner animation
func (p *ProgressSpinner) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active || !p.tty {
		return
	}
	p.active = true
	p.done = make(chan struct{})
	p.stopped = make(chan struct{})
	go p.animate(p.done, p.stopped)
}

// Stop stops the spinner and clears its line.
func (p *ProgressSpinner) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	close(p.done)
	stopped := p.stopped
	p.mu.Unlock()

	<-stopped
	fmt.Fprint(p.writer, "\r\033[K")
}

// Message updates the spinner message
func (p *ProgressSpinner) Message(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

func (p *ProgressSpinner) animate(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := color.New(color.FgCyan)
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			fmt.Fprintf(p.writer, "\r%s %s", frame.Sprint(p.frames[p.current%len(p.frames)]), p.message)
			p.current++
			p.mu.Unlock()
		case <-done:
			return
		}
	}
}
