package workflow

import "fmt"

// ProgressReporter fans task-unit progress out to one consumer through a
// buffered channel. Task goroutines emit; delivery never blocks a stage.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion. If the consumer
// falls behind and the buffer fills, the event is silently dropped; progress
// is advisory and never back-pressures the scheduler.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. No Emit may follow.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatEvent renders a ProgressEvent as a human-readable status line,
// prefixed with the stage the task unit belongs to.
func FormatEvent(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("[%s] ○ %s (pending)", event.Stage, event.Task)
	case ProgressWorking:
		return fmt.Sprintf("[%s] ● %s...", event.Stage, event.Task)
	case ProgressComplete:
		return fmt.Sprintf("[%s] ✓ %s complete", event.Stage, event.Task)
	case ProgressCompensated:
		return fmt.Sprintf("[%s] △ %s compensated: %s", event.Stage, event.Task, event.Message)
	case ProgressFailed:
		return fmt.Sprintf("[%s] ✗ %s failed: %s", event.Stage, event.Task, event.Message)
	default:
		return fmt.Sprintf("[%s] ? %s (unknown status)", event.Stage, event.Task)
	}
}
