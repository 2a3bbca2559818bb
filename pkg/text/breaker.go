package text

import (
	"bufio"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
)

// Breaker finds the positions inside a text run where a line may be broken.
// Positions are rune offsets in (0, len); a break at p puts runes [p:] on the
// next line.
type Breaker interface {
	Breaks(rs []rune) []int
}

// BreakMode selects a Breaker by name.
type BreakMode string

const (
	BreakSpace BreakMode = "space"
	BreakUAX14 BreakMode = "uax14"
)

// NewBreaker returns the breaker for mode; unknown modes break at spaces.
func NewBreaker(mode BreakMode) Breaker {
	if mode == BreakUAX14 {
		return UAX14Breaker{}
	}
	return SpaceBreaker{}
}

// SpaceBreaker breaks in front of every ASCII space. The space then leads
// the next line, where it is skipped.
type SpaceBreaker struct{}

func (SpaceBreaker) Breaks(rs []rune) []int {
	var out []int
	for i := 1; i < len(rs); i++ {
		if rs[i] == ' ' {
			out = append(out, i)
		}
	}
	return out
}

// UAX14Breaker uses the Unicode line breaking algorithm, which also allows
// breaks after hyphens and between ideographs and keeps NBSP unbreakable.
type UAX14Breaker struct{}

func (UAX14Breaker) Breaks(rs []rune) []int {
	if len(rs) < 2 {
		return nil
	}
	linewrap := uax14.NewLineWrap()
	segmenter := segment.NewSegmenter(linewrap)
	segmenter.Init(bufio.NewReader(strings.NewReader(string(rs))))
	var out []int
	pos := 0
	for segmenter.Next() {
		pos += utf8.RuneCount(segmenter.Bytes())
		if pos > 0 && pos < len(rs) {
			out = append(out, pos)
		}
	}
	return out
}
