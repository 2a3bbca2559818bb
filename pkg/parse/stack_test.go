package parse

import (
	"testing"

	"cluehtml/pkg/html"
)

func ids(entries []Entry) []html.TagID {
	var out []html.TagID
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestStack_PopClosesEverythingAbove(t *testing.T) {
	var s Stack
	s.Push(Entry{ID: html.TagP, Level: levelBlock})
	s.Push(Entry{ID: html.TagB, Level: levelInline})
	s.Push(Entry{ID: html.TagI, Level: levelInline})

	var closed []Entry
	if !s.Pop(html.TagP, func(e Entry) { closed = append(closed, e) }) {
		t.Fatal("expected <p> to close")
	}
	got := ids(closed)
	want := []html.TagID{html.TagI, html.TagB, html.TagP}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("exit %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if s.Len() != 0 {
		t.Errorf("expected empty stack, got %d entries", s.Len())
	}
}

func TestStack_HigherLevelShields(t *testing.T) {
	var s Stack
	s.Push(Entry{ID: html.TagP, Level: levelBlock})
	s.Push(Entry{ID: html.TagTable, Level: levelTable})
	s.Push(Entry{ID: html.TagTD, Level: levelCell})

	if s.Pop(html.TagP, nil) {
		t.Error("expected the table to shield the paragraph")
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", s.Len())
	}
	if !s.Pop(html.TagTable, nil) {
		t.Error("expected </table> to close through the cell")
	}
	if top, _ := s.Top(); top.ID != html.TagP {
		t.Errorf("expected <p> on top, got %v", top.ID)
	}
}

func TestStack_NoMatch(t *testing.T) {
	var s Stack
	s.Push(Entry{ID: html.TagB, Level: levelInline})
	called := false
	if s.Pop(html.TagI, func(Entry) { called = true }) {
		t.Error("expected no match")
	}
	if called {
		t.Error("expected exit not to run")
	}
	if s.Find(html.TagB) != 0 || s.Find(html.TagI) != -1 {
		t.Errorf("unexpected Find results %d %d", s.Find(html.TagB), s.Find(html.TagI))
	}
}

func TestStack_UnwindIgnoresLevels(t *testing.T) {
	var s Stack
	s.Push(Entry{ID: html.TagB, Level: levelInline})
	s.Push(Entry{ID: html.TagTable, Level: levelTable})
	n := 0
	s.Unwind(func(Entry) { n++ })
	if n != 2 || s.Len() != 0 {
		t.Errorf("expected 2 exits and an empty stack, got %d and %d", n, s.Len())
	}
	if _, ok := s.Top(); ok {
		t.Error("expected no top on an empty stack")
	}
}

func TestAction_String(t *testing.T) {
	if ActionEndTable.String() != "endTable" {
		t.Errorf("expected endTable, got %s", ActionEndTable)
	}
	if Action(99).String() != "action(?)" {
		t.Errorf("expected action(?), got %s", Action(99))
	}
}
