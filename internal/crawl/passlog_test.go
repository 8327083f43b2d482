package crawl

import "testing"

func TestPassEvent_Names(t *testing.T) {
	cases := []struct {
		event PassEvent
		want  string
	}{
		{EventLattice, "lattice"},
		{EventDiamonds, "diamonds"},
		{EventAccepted, "accepted"},
		{EventUnreachable, "unreachable"},
		{EventOverlap, "overlap"},
		{passEventCount, "unknown"},
	}
	for _, c := range cases {
		if got := c.event.Name(); got != c.want {
			t.Fatalf("event %d name %q, want %q", c.event, got, c.want)
		}
	}
}

func TestPassLogEntry_String(t *testing.T) {
	e := PassLogEntry{Seq: 2, Event: EventAccepted, Detail: "3 -> 1 difficult 28 pts"}
	want := "[#02] accepted     3 -> 1 difficult 28 pts"
	if got := e.String(); got != want {
		t.Fatalf("entry formatted %q, want %q", got, want)
	}
}

func TestPassLog_SequenceAndCount(t *testing.T) {
	pl := NewPassLog()
	pl.add(EventLattice, "13 cells")
	pl.add(EventAccepted, "1 -> 2")
	pl.add(EventAccepted, "2 -> 3")
	pl.add(EventOverlap, "3 -> 4 spacing")

	entries := pl.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Seq != i {
			t.Fatalf("entry %d carries sequence %d", i, e.Seq)
		}
	}
	if pl.Count(EventAccepted) != 2 || pl.Count(EventOverlap) != 1 || pl.Count(EventUnreachable) != 0 {
		t.Fatalf("counts wrong: accepted=%d overlap=%d unreachable=%d",
			pl.Count(EventAccepted), pl.Count(EventOverlap), pl.Count(EventUnreachable))
	}
}

func TestPassLog_NilReceiverIsSafe(t *testing.T) {
	var pl *PassLog
	pl.add(EventAccepted, "dropped on the floor")
	if pl.Entries() != nil {
		t.Fatal("nil log should report no entries")
	}
	if pl.Count(EventAccepted) != 0 {
		t.Fatal("nil log should count nothing")
	}
	if pl.Format() != "" {
		t.Fatal("nil log should format empty")
	}
}

func TestPassLog_Format(t *testing.T) {
	pl := NewPassLog()
	pl.add(EventLattice, "13 cells")
	pl.add(EventDiamonds, "4 placed")
	want := "[#00] lattice      13 cells\n[#01] diamonds     4 placed\n"
	if got := pl.Format(); got != want {
		t.Fatalf("formatted log:\n%q\nwant:\n%q", got, want)
	}
}
