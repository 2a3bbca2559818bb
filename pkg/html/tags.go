package html

import (
	"golang.org/x/net/html/atom"
)

// TagID identifies a known element. The zero value means "not a tag".
type TagID int

const (
	TagNone TagID = iota
	TagA
	TagAddress
	TagArea
	TagB
	TagBase
	TagBaseFont
	TagBig
	TagBlink
	TagBlockQuote
	TagBody
	TagBr
	TagCaption
	TagCenter
	TagCite
	TagCode
	TagDD
	TagDfn
	TagDir
	TagDiv
	TagDL
	TagDT
	TagEm
	TagFont
	TagForm
	TagFrame
	TagFrameset
	TagH1
	TagH2
	TagH3
	TagH4
	TagH5
	TagH6
	TagHead
	TagHR
	TagHTML
	TagI
	TagImg
	TagInput
	TagKbd
	TagLI
	TagLink
	TagListing
	TagMap
	TagMenu
	TagMeta
	TagNoBr
	TagNoFrames
	TagOL
	TagOption
	TagP
	TagPlainText
	TagPre
	TagS
	TagSamp
	TagScript
	TagSelect
	TagSmall
	TagSpan
	TagStrike
	TagStrong
	TagStyle
	TagSub
	TagSup
	TagTable
	TagTBody
	TagTD
	TagTextArea
	TagTFoot
	TagTH
	TagTHead
	TagTitle
	TagTR
	TagTT
	TagU
	TagUL
	TagVar
	TagWbr
	TagXmp

	tagCount
)

var tagNames = [tagCount]string{
	TagNone:       "",
	TagA:          "a",
	TagAddress:    "address",
	TagArea:       "area",
	TagB:          "b",
	TagBase:       "base",
	TagBaseFont:   "basefont",
	TagBig:        "big",
	TagBlink:      "blink",
	TagBlockQuote: "blockquote",
	TagBody:       "body",
	TagBr:         "br",
	TagCaption:    "caption",
	TagCenter:     "center",
	TagCite:       "cite",
	TagCode:       "code",
	TagDD:         "dd",
	TagDfn:        "dfn",
	TagDir:        "dir",
	TagDiv:        "div",
	TagDL:         "dl",
	TagDT:         "dt",
	TagEm:         "em",
	TagFont:       "font",
	TagForm:       "form",
	TagFrame:      "frame",
	TagFrameset:   "frameset",
	TagH1:         "h1",
	TagH2:         "h2",
	TagH3:         "h3",
	TagH4:         "h4",
	TagH5:         "h5",
	TagH6:         "h6",
	TagHead:       "head",
	TagHR:         "hr",
	TagHTML:       "html",
	TagI:          "i",
	TagImg:        "img",
	TagInput:      "input",
	TagKbd:        "kbd",
	TagLI:         "li",
	TagLink:       "link",
	TagListing:    "listing",
	TagMap:        "map",
	TagMenu:       "menu",
	TagMeta:       "meta",
	TagNoBr:       "nobr",
	TagNoFrames:   "noframes",
	TagOL:         "ol",
	TagOption:     "option",
	TagP:          "p",
	TagPlainText:  "plaintext",
	TagPre:        "pre",
	TagS:          "s",
	TagSamp:       "samp",
	TagScript:     "script",
	TagSelect:     "select",
	TagSmall:      "small",
	TagSpan:       "span",
	TagStrike:     "strike",
	TagStrong:     "strong",
	TagStyle:      "style",
	TagSub:        "sub",
	TagSup:        "sup",
	TagTable:      "table",
	TagTBody:      "tbody",
	TagTD:         "td",
	TagTextArea:   "textarea",
	TagTFoot:      "tfoot",
	TagTH:         "th",
	TagTHead:      "thead",
	TagTitle:      "title",
	TagTR:         "tr",
	TagTT:         "tt",
	TagU:          "u",
	TagUL:         "ul",
	TagVar:        "var",
	TagWbr:        "wbr",
	TagXmp:        "xmp",
}

// tagByAtom maps the interned element names of x/net/html onto our ids.
var tagByAtom map[atom.Atom]TagID

func init() {
	tagByAtom = make(map[atom.Atom]TagID, len(tagNames))
	for id := TagA; id < tagCount; id++ {
		a := atom.Lookup([]byte(tagNames[id]))
		if a == 0 {
			panic("html: tag name not interned: " + tagNames[id])
		}
		tagByAtom[a] = id
	}
}

// LookupTag returns the id for a lower-case element name, or TagNone.
func LookupTag(name []byte) TagID {
	a := atom.Lookup(name)
	if a == 0 {
		return TagNone
	}
	return tagByAtom[a]
}

func (id TagID) String() string {
	if id < 0 || id >= tagCount {
		return "tag(?)"
	}
	if id == TagNone {
		return "none"
	}
	return tagNames[id]
}

// IsHeading reports whether id is one of h1..h6.
func (id TagID) IsHeading() bool {
	return id >= TagH1 && id <= TagH6
}

// allowedInPre reports whether an element may appear inside <pre> without
// terminating the preformatted context.
func allowedInPre(id TagID) bool {
	switch id {
	case TagA, TagB, TagBr, TagCite, TagCode, TagDfn, TagEm, TagFont, TagI,
		TagKbd, TagS, TagSamp, TagSpan, TagStrike, TagStrong, TagTT, TagU,
		TagVar, TagPre, TagNoBr, TagWbr, TagBlink:
		return true
	}
	return false
}
