package pipeline

import "fmt"

// Status tracks one plan through the batch.
type Status int

const (
	StatusPending Status = iota
	StatusWorking
	StatusComplete
	StatusSkipped
	StatusFailed
)

// Event is one progress update emitted while a batch runs.
type Event struct {
	PlanID   string
	Status   Status
	Variants int    // set on StatusComplete
	Message  string // set on StatusFailed and StatusSkipped
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan Event
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan Event, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event Event) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan Event {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatEvent formats an Event as a human-readable status line.
func FormatEvent(event Event) string {
	switch event.Status {
	case StatusPending:
		return fmt.Sprintf("  ○ %s (pending)", event.PlanID)
	case StatusWorking:
		return fmt.Sprintf("  ● %s...", event.PlanID)
	case StatusComplete:
		return fmt.Sprintf("  ✓ %s complete (%d variants)", event.PlanID, event.Variants)
	case StatusSkipped:
		return fmt.Sprintf("  - %s skipped: %s", event.PlanID, event.Message)
	case StatusFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.PlanID, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.PlanID)
	}
}
