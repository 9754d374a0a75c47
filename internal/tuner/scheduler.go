// SPDX-License-Identifier: MIT
package tuner

import (
	"sync"
	"time"

	"gtuner/internal/config"
)

// Scheduler runs a task repeatedly until its handle is cancelled.
type Scheduler interface {
	Repeat(task func()) Handle
}

// Handle controls a repeating task.
type Handle interface {
	// Cancel stops future runs. If a run is in flight, Cancel waits for it.
	Cancel()
}

// FrameScheduler runs the task on its own goroutine at a fixed interval,
// roughly the frame rate of a display. A run that overruns the interval
// causes ticks to be dropped rather than queued.
type FrameScheduler struct {
	Interval time.Duration
}

func (f FrameScheduler) Repeat(task func()) Handle {
	interval := f.Interval
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}

	h := &frameHandle{done: make(chan struct{})}
	ticker := time.NewTicker(interval)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				// Both may be ready; cancellation wins.
				select {
				case <-h.done:
					return
				default:
				}
				task()
			}
		}
	}()
	return h
}

type frameHandle struct {
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (h *frameHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
	h.wg.Wait()
}

// ManualScheduler runs tasks only when stepped, on the caller's goroutine.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualHandle
}

// Repeat registers task.
func (m *ManualScheduler) Repeat(task func()) Handle {
	h := &manualHandle{task: task}
	m.mu.Lock()
	m.tasks = append(m.tasks, h)
	m.mu.Unlock()
	return h
}

// Step runs every live task n times and returns the number of runs.
func (m *ManualScheduler) Step(n int) int {
	m.mu.Lock()
	tasks := append([]*manualHandle(nil), m.tasks...)
	m.mu.Unlock()

	runs := 0
	for range n {
		for _, h := range tasks {
			if h.run() {
				runs++
			}
		}
	}
	return runs
}

// Active returns the number of tasks that have not been cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.tasks {
		h.mu.Lock()
		if !h.cancelled {
			n++
		}
		h.mu.Unlock()
	}
	return n
}

type manualHandle struct {
	mu        sync.Mutex // held while the task runs
	task      func()
	cancelled bool
}

func (h *manualHandle) run() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	h.task()
	return true
}

func (h *manualHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

// Compile-time checks for interface implementations.
var (
	_ Scheduler = FrameScheduler{}
	_ Scheduler = (*ManualScheduler)(nil)
)
