package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/graftml/graft/envconfig"
	"github.com/graftml/graft/logutil"
)

type task struct {
	name string
	fn   func() error
}

// Stream is a single ordered work queue. Submit enqueues and returns
// immediately; a dedicated goroutine runs tasks one at a time in submission
// order, so a task always observes the completed writes of every task
// submitted before it. Once a task fails the stream is faulted: later tasks
// are skipped and Synchronize reports the first error.
type Stream struct {
	name  string
	tasks chan task

	mu      sync.Mutex
	cond    *sync.Cond
	pending int
	err     error
	closed  bool
}

func NewStream(name string) *Stream {
	s := &Stream{
		name:  name,
		tasks: make(chan task, envconfig.MaxQueue()),
	}
	s.cond = sync.NewCond(&s.mu)

	go s.run()

	return s
}

func (s *Stream) run() {
	for t := range s.tasks {
		s.mu.Lock()
		faulted := s.err != nil
		s.mu.Unlock()

		if !faulted {
			start := time.Now()
			err := t.fn()
			logutil.Trace("task complete", "stream", s.name, "task", t.name, "duration", time.Since(start))

			if err != nil {
				s.mu.Lock()
				s.err = fmt.Errorf("stream %s: task %s: %w", s.name, t.name, err)
				s.mu.Unlock()
			}
		}

		s.mu.Lock()
		s.pending--
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// Submit enqueues fn. It never waits for fn to run; ordering against other
// submissions on this stream is the only guarantee.
func (s *Stream) Submit(name string, fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic(fmt.Sprintf("device: submit %q on closed stream %s", name, s.name))
	}
	s.pending++
	s.mu.Unlock()

	s.tasks <- task{name: name, fn: fn}
}

// Synchronize blocks until all previously submitted work has completed and
// returns the stream's fault, if any. The fault is sticky: once a task fails
// the stream is unusable for further results.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.pending > 0 {
		s.cond.Wait()
	}

	return s.err
}

// Close drains the stream and stops its worker. Submitting after Close panics.
func (s *Stream) Close() error {
	err := s.Synchronize()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.tasks)
	}
	s.mu.Unlock()

	return err
}
