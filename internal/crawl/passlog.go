package crawl

import (
	"fmt"
	"strings"
)

// PassEvent classifies one entry in a generation pass log.
type PassEvent uint8

const (
	EventLattice PassEvent = iota
	EventDiamonds
	EventAccepted
	EventUnreachable
	EventOverlap

	passEventCount
)

// Name returns the event's lowercase tag.
func (e PassEvent) Name() string {
	switch e {
	case EventLattice:
		return "lattice"
	case EventDiamonds:
		return "diamonds"
	case EventAccepted:
		return "accepted"
	case EventUnreachable:
		return "unreachable"
	case EventOverlap:
		return "overlap"
	}
	return "unknown"
}

// PassLogEntry is one recorded event of a generation pass.
type PassLogEntry struct {
	Seq    int
	Event  PassEvent
	Detail string
}

// String formats the entry as a fixed-width log line.
//
//	[#02] accepted     3 -> 1 difficult 28 pts
func (e PassLogEntry) String() string {
	return fmt.Sprintf("[#%02d] %-12s %s", e.Seq, e.Event.Name(), e.Detail)
}

// PassLog collects the decisions of one generation pass: how the lattice
// came out, where diamonds landed, which connectors were accepted and
// which were dropped. Unbounded and machine-readable.
type PassLog struct {
	entries []PassLogEntry
}

// NewPassLog creates an empty pass log.
func NewPassLog() *PassLog {
	return &PassLog{}
}

// add records an event. A nil log drops it, so producers need no guard.
func (pl *PassLog) add(event PassEvent, format string, args ...interface{}) {
	if pl == nil {
		return
	}
	pl.entries = append(pl.entries, PassLogEntry{
		Seq:    len(pl.entries),
		Event:  event,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Entries returns all recorded entries.
func (pl *PassLog) Entries() []PassLogEntry {
	if pl == nil {
		return nil
	}
	return pl.entries
}

// Count returns how many entries match the event.
func (pl *PassLog) Count(event PassEvent) int {
	n := 0
	for _, e := range pl.Entries() {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Format returns the full log as a single string for t.Log output.
func (pl *PassLog) Format() string {
	var sb strings.Builder
	for _, e := range pl.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
