package layout

import (
	"strings"

	"cluehtml/pkg/text"
)

// Text is a run that never breaks, such as a list number or preformatted
// line.
type Text struct {
	Object
	Text string
	Font *text.Font
	Href string

	runes            []rune
	selStart, selEnd int
}

func NewText(s string, f *text.Font) *Text {
	t := &Text{Text: s, Font: f, runes: []rune(s)}
	t.Width = f.Width(s)
	t.Ascent = f.Ascent()
	t.Descent = f.Descent() + 1
	return t
}

func (t *Text) Kind() Kind { return KindText }

// charIndex is the rune index under x, measured from the run's left edge.
// A rune counts as hit once x passes its middle.
func charIndex(f *text.Font, rs []rune, x int) int {
	xp := 0
	for i, r := range rs {
		cw := f.RuneWidth(r)
		if xp+cw/2 >= x {
			return i
		}
		xp += cw
	}
	return len(rs)
}

// Selection returns the selected rune range.
func (t *Text) Selection() (start, end int) { return t.selStart, t.selEnd }

// TextMaster owns a breakable run of text. The flow asks it to hand the
// text over to a single slave, then the slaves split themselves to fit the
// lines. Slaves only reference the master's runes.
type TextMaster struct {
	Object
	Font *text.Font

	// Href is the link target when the text is inside an anchor.
	Href string

	text      []rune
	prefWidth int
	slaves    []*TextSlave

	// Break positions are computed once per breaker.
	breaks    []int
	breaksFor text.Breaker

	selStart, selEnd int
}

func NewTextMaster(s string, f *text.Font) *TextMaster {
	m := &TextMaster{Font: f, text: []rune(s)}
	m.prefWidth = f.Width(s)
	m.Ascent = f.Ascent()
	m.Descent = f.Descent() + 1
	return m
}

func (m *TextMaster) Kind() Kind { return KindTextMaster }

func (m *TextMaster) Text() string { return string(m.text) }

func (m *TextMaster) Slaves() []*TextSlave { return m.slaves }

func (m *TextMaster) Selection() (start, end int) { return m.selStart, m.selEnd }

// MinWidth is the widest piece between two break positions.
func (m *TextMaster) MinWidth(lc *Context) int {
	widest, prev := 0, 0
	for _, p := range m.breakPositions(lc) {
		widest = max(widest, m.width(skipSpaces(m.text, prev, p), p))
		prev = p
	}
	end := len(m.text)
	return max(widest, m.width(skipSpaces(m.text, prev, end), end))
}

func (m *TextMaster) PreferredWidth(*Context) int { return m.prefWidth }

// FitLine replaces all slaves with one that covers the whole text.
func (m *TextMaster) FitLine(*Context, bool, bool, int, Box) (Fit, Box) {
	s := newTextSlave(m, 0, len(m.text))
	m.slaves = append(m.slaves[:0], s)
	return CompleteFit, s
}

func (m *TextMaster) width(from, to int) int {
	if from >= to {
		return 0
	}
	return m.Font.RunesWidth(m.text[from:to])
}

// breakPositions returns the line break opportunities of the text. A break
// that follows spaces is moved in front of them, so a broken line never
// ends in a space and the next one starts with it.
func (m *TextMaster) breakPositions(lc *Context) []int {
	b := lc.breaker()
	if m.breaks != nil && m.breaksFor == b {
		return m.breaks
	}
	raw := b.Breaks(m.text)
	out := make([]int, 0, len(raw))
	for _, p := range raw {
		for p > 1 && m.text[p-1] == ' ' {
			p--
		}
		if p <= 0 || p >= len(m.text) {
			continue
		}
		if n := len(out); n > 0 && out[n-1] >= p {
			continue
		}
		out = append(out, p)
	}
	m.breaks, m.breaksFor = out, b
	return out
}

// truncateSlaves drops every slave after s.
func (m *TextMaster) truncateSlaves(s *TextSlave) {
	for i, x := range m.slaves {
		if x == s {
			m.slaves = m.slaves[:i+1]
			return
		}
	}
}

func (m *TextMaster) insertSlave(after, s *TextSlave) {
	for i, x := range m.slaves {
		if x == after {
			m.slaves = append(m.slaves[:i+1], append([]*TextSlave{s}, m.slaves[i+1:]...)...)
			return
		}
	}
	m.slaves = append(m.slaves, s)
}

func skipSpaces(rs []rune, from, to int) int {
	for from < to && rs[from] == ' ' {
		from++
	}
	return from
}

// TextSlave is the piece of a master's text that sits on one line.
type TextSlave struct {
	Object
	master *TextMaster

	// origin is where the slave started when it was created; a refit
	// starts over from there.
	origin int
	start  int
	length int
}

func newTextSlave(m *TextMaster, start, length int) *TextSlave {
	s := &TextSlave{master: m, origin: start, start: start, length: length}
	s.Ascent = m.Ascent
	s.Descent = m.Descent
	s.Width = m.width(start, start+length)
	return s
}

func (s *TextSlave) Kind() Kind { return KindTextSlave }

func (s *TextSlave) Master() *TextMaster { return s.master }

// Range returns the slave's rune range in the master's text.
func (s *TextSlave) Range() (start, end int) { return s.start, s.start + s.length }

func (s *TextSlave) Text() string {
	return string(s.master.text[s.start : s.start+s.length])
}

// FitLine shrinks the slave to fit widthLeft. The rest of the text goes to
// a new slave that is returned for the flow to insert after this one.
//
// A slave that fits whole but is glued to a following object splits at its
// last break, so the line may break in front of the glued part. When no
// prefix fits, the slave reports NoFit unless it is the first run on the
// line, in which case it breaks at its first opportunity anyway.
func (s *TextSlave) FitLine(lc *Context, startOfLine, firstRun bool, widthLeft int, next Box) (Fit, Box) {
	m := s.master
	m.truncateSlaves(s)
	s.start = s.origin
	s.length = len(m.text) - s.start

	if startOfLine && s.length > 0 && m.text[s.start] == ' ' && widthLeft >= 0 {
		s.start++
		s.length--
	}
	end := s.start + s.length
	s.Width = m.width(s.start, end)

	if widthLeft < 0 {
		return CompleteFit, nil
	}

	var cuts []int
	for _, p := range m.breakPositions(lc) {
		if p > s.start && p < end {
			cuts = append(cuts, p)
		}
	}

	newLen, newWidth := s.length, s.Width
	split := false

	if s.Width <= widthLeft || s.length <= 1 {
		if next == nil || isSeparator(next) || isNewLine(next) || len(cuts) == 0 {
			return CompleteFit, nil
		}
		p := cuts[len(cuts)-1]
		newLen, newWidth = p-s.start, m.width(s.start, p)
		split = true
	} else if len(cuts) > 0 {
		newLen, newWidth = cuts[0]-s.start, m.width(s.start, cuts[0])
		if newWidth <= widthLeft {
			split = true
			for _, p := range cuts[1:] {
				w := m.width(s.start, p)
				if w > widthLeft {
					break
				}
				newLen, newWidth = p-s.start, w
			}
		}
	}

	if !split && !firstRun {
		return NoFit, nil
	}

	var rest *TextSlave
	if newLen < s.length {
		rest = newTextSlave(m, s.start+newLen, s.length-newLen)
		m.insertSlave(s, rest)
	}
	s.length = newLen
	s.Width = newWidth
	if rest == nil {
		return PartialFit, nil
	}
	return PartialFit, rest
}

func (s *TextSlave) charIndex(x int) int {
	return charIndex(s.master.Font, s.master.text[s.start:s.start+s.length], x)
}

// selectedText appends the master's selected text. Slaves contribute
// nothing on their own.
func (m *TextMaster) selectedText(sb *strings.Builder) {
	if !m.Has(FlagSelected) {
		return
	}
	appendSkippingLineStart(sb, m.text, m.selStart, m.selEnd)
}

func (t *Text) selectedText(sb *strings.Builder) {
	if !t.Has(FlagSelected) {
		return
	}
	if t.Has(FlagNewLine) {
		sb.WriteByte('\n')
		return
	}
	appendSkippingLineStart(sb, t.runes, t.selStart, t.selEnd)
}

func appendSkippingLineStart(sb *strings.Builder, rs []rune, from, to int) {
	from, to = max(from, 0), min(to, len(rs))
	if s := sb.String(); s != "" && s[len(s)-1] == '\n' {
		for from < to && rs[from] == ' ' {
			from++
		}
	}
	if from >= to {
		return
	}
	for _, r := range rs[from:to] {
		sb.WriteRune(r)
	}
}
