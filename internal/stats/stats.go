// Package stats collects the operations a merge applies. Sinks never block
// the merge: a full channel drops events.
package stats

import (
	"fmt"
	"sync/atomic"
)

// Kind is the kind of an applied operation.
type Kind string

const (
	KindAdd      Kind = "add"
	KindDelete   Kind = "delete"
	KindConflict Kind = "conflict"
	KindMerge    Kind = "merge"
)

// Event describes one applied operation.
type Event struct {
	Session  string
	Kind     Kind
	Seq      uint64
	Artifact string
	Rev      string
}

// Sink receives events. Emit must not block.
type Sink interface {
	Emit(Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}

// Reporter emits events through a buffered channel.
type Reporter struct {
	ch chan Event
}

// NewReporter creates a Reporter with a buffered channel of the given size.
// A size below one defaults to 64.
func NewReporter(size int) *Reporter {
	if size < 1 {
		size = 64
	}
	return &Reporter{ch: make(chan Event, size)}
}

// Emit sends an event without blocking. If the channel is full, the event
// is dropped.
func (r *Reporter) Emit(e Event) {
	select {
	case r.ch <- e:
	default:
	}
}

// Subscribe returns a read-only channel for consuming events.
func (r *Reporter) Subscribe() <-chan Event {
	return r.ch
}

// Close closes the event channel.
func (r *Reporter) Close() {
	close(r.ch)
}

// Summary holds operation counts.
type Summary struct {
	Adds      int64 `json:"adds"`
	Deletes   int64 `json:"deletes"`
	Conflicts int64 `json:"conflicts"`
	Merges    int64 `json:"merges"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d merges, %d adds, %d deletes, %d conflicts", s.Merges, s.Adds, s.Deletes, s.Conflicts)
}

// Counter counts events per kind. It is safe for concurrent use, so one
// Counter can be shared by merges running in parallel.
type Counter struct {
	adds, deletes, conflicts, merges atomic.Int64
}

func (c *Counter) Emit(e Event) {
	switch e.Kind {
	case KindAdd:
		c.adds.Add(1)
	case KindDelete:
		c.deletes.Add(1)
	case KindConflict:
		c.conflicts.Add(1)
	case KindMerge:
		c.merges.Add(1)
	}
}

// Summary returns the current counts.
func (c *Counter) Summary() Summary {
	return Summary{
		Adds:      c.adds.Load(),
		Deletes:   c.deletes.Load(),
		Conflicts: c.conflicts.Load(),
		Merges:    c.merges.Load(),
	}
}

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi returns a Sink that forwards every event to all sinks.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

// FormatEvent formats an event as a human-readable status line.
func FormatEvent(e Event) string {
	switch e.Kind {
	case KindAdd:
		return fmt.Sprintf("  + #%d %s (%s)", e.Seq, e.Artifact, e.Rev)
	case KindDelete:
		return fmt.Sprintf("  - #%d %s (%s)", e.Seq, e.Artifact, e.Rev)
	case KindConflict:
		return fmt.Sprintf("  ! #%d conflict at %s", e.Seq, e.Artifact)
	case KindMerge:
		return fmt.Sprintf("  = #%d %s", e.Seq, e.Artifact)
	default:
		return fmt.Sprintf("  ? #%d %s (unknown kind %q)", e.Seq, e.Artifact, e.Kind)
	}
}
