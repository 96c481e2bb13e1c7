package watcher

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into batches. A batch is emitted once
// no event has arrived for the window. Events for one path merge:
//   - CREATE then MODIFY stays CREATE
//   - CREATE then DELETE cancels out
//   - DELETE then CREATE becomes MODIFY
//   - anything else keeps the latest operation
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]pendingEvent
	timer   *time.Timer
	output  chan []FileEvent
	stopped bool
}

type pendingEvent struct {
	event   FileEvent
	firstOp Operation
}

// NewDebouncer creates a debouncer whose output buffers `buffer` batches.
func NewDebouncer(window time.Duration, buffer int) *Debouncer {
	if buffer < 1 {
		buffer = 1
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]pendingEvent),
		output:  make(chan []FileEvent, buffer),
	}
}

// Add queues an event and restarts the quiet-period timer.
func (d *Debouncer) Add(ev FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[ev.Path]; ok {
		merged, keep := merge(prev, ev)
		if keep {
			prev.event = merged
			d.pending[ev.Path] = prev
		} else {
			delete(d.pending, ev.Path)
		}
	} else {
		d.pending[ev.Path] = pendingEvent{event: ev, firstOp: ev.Operation}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func merge(prev pendingEvent, ev FileEvent) (FileEvent, bool) {
	switch {
	case prev.firstOp == OpCreate && ev.Operation == OpModify:
		return prev.event, true
	case prev.firstOp == OpCreate && ev.Operation == OpDelete:
		return FileEvent{}, false
	case prev.firstOp == OpDelete && ev.Operation == OpCreate:
		ev.Operation = OpModify
		return ev, true
	default:
		return ev, true
	}
}

// flush emits the pending events sorted by path. A full output drops the
// batch with a warning rather than blocking the timer goroutine.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]FileEvent, 0, len(d.pending))
	for _, pe := range d.pending {
		batch = append(batch, pe.event)
	}
	slices.SortFunc(batch, func(a, b FileEvent) int { return strings.Compare(a.Path, b.Path) })
	d.pending = make(map[string]pendingEvent)

	select {
	case d.output <- batch:
	default:
		slog.Warn("debouncer output full, dropping batch", slog.Int("batch_size", len(batch)))
	}
}

// Output returns the channel of debounced batches.
func (d *Debouncer) Output() <-chan []FileEvent {
	return d.output
}

// Stop discards pending events and closes the output. Safe to call twice.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
