package parse

import (
	"cluehtml/pkg/html"
)

// Action is what the builder does when an entry leaves the block stack.
type Action int

const (
	ActionNone Action = iota
	ActionEndFlow
	ActionRestoreAlign
	ActionEndList
	ActionEndFrameset
	ActionEndForm
	ActionEndTitle
	ActionEndIndent
	ActionEndTable
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionEndFlow:      "endFlow",
	ActionRestoreAlign: "restoreAlign",
	ActionEndList:      "endList",
	ActionEndFrameset:  "endFrameset",
	ActionEndForm:      "endForm",
	ActionEndTitle:     "endTitle",
	ActionEndIndent:    "endIndent",
	ActionEndTable:     "endTable",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "action(?)"
}

// Nesting levels. An entry can only be closed through entries of the same
// or a lower level.
const (
	levelInline = 1
	levelBlock  = 3
	levelList   = 5
	levelCell   = 6
	levelTable  = 7
)

// Entry is one open element. Saved is the style in effect before the
// element opened; Aux is action specific.
type Entry struct {
	ID     html.TagID
	Level  int
	Saved  Style
	Action Action
	Aux    int
}

// Stack is the block stack. The top is the last element.
type Stack struct {
	entries []Entry
}

func (s *Stack) Push(e Entry) {
	s.entries = append(s.entries, e)
}

func (s *Stack) Len() int { return len(s.entries) }

// Top returns the innermost open entry.
func (s *Stack) Top() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Find returns the position of the nearest entry with the given id, or -1.
func (s *Stack) Find(id html.TagID) int {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Pop closes the nearest entry with the given id and everything opened
// after it, calling exit for each from the top down. Nothing is popped when
// no entry matches or when an entry above the match has a higher level.
func (s *Stack) Pop(id html.TagID, exit func(Entry)) bool {
	maxLevel := 0
	i := len(s.entries) - 1
	for ; i >= 0; i-- {
		if s.entries[i].ID == id {
			break
		}
		maxLevel = max(maxLevel, s.entries[i].Level)
	}
	if i < 0 || maxLevel > s.entries[i].Level {
		return false
	}
	for len(s.entries) > i {
		e := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		if exit != nil {
			exit(e)
		}
	}
	return true
}

// Unwind pops every entry regardless of level.
func (s *Stack) Unwind(exit func(Entry)) {
	for len(s.entries) > 0 {
		e := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		if exit != nil {
			exit(e)
		}
	}
}
