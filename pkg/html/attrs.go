package html

// AttrID identifies a known attribute. Unknown attributes are dropped by the
// tokenizer, so AttrNone never appears in a Token.
type AttrID int

const (
	AttrNone AttrID = iota
	AttrAction
	AttrAlign
	AttrALink
	AttrAlt
	AttrBackground
	AttrBgColor
	AttrBorder
	AttrCellPadding
	AttrCellSpacing
	AttrCharset
	AttrChecked
	AttrClass
	AttrClear
	AttrColor
	AttrCols
	AttrColSpan
	AttrCompact
	AttrContent
	AttrCoords
	AttrFace
	AttrFrameBorder
	AttrHeight
	AttrHref
	AttrHSpace
	AttrHTTPEquiv
	AttrIdent
	AttrIsMap
	AttrLang
	AttrLink
	AttrMarginHeight
	AttrMarginWidth
	AttrMethod
	AttrMultiple
	AttrName
	AttrNoShade
	AttrNoWrap
	AttrRows
	AttrRowSpan
	AttrScrolling
	AttrSelected
	AttrShape
	AttrSize
	AttrSrc
	AttrStart
	AttrStyle
	AttrTarget
	AttrText
	AttrTitle
	AttrType
	AttrUseMap
	AttrVAlign
	AttrValue
	AttrVLink
	AttrVSpace
	AttrWidth

	attrCount
)

var attrNames = [attrCount]string{
	AttrNone:         "",
	AttrAction:       "action",
	AttrAlign:        "align",
	AttrALink:        "alink",
	AttrAlt:          "alt",
	AttrBackground:   "background",
	AttrBgColor:      "bgcolor",
	AttrBorder:       "border",
	AttrCellPadding:  "cellpadding",
	AttrCellSpacing:  "cellspacing",
	AttrCharset:      "charset",
	AttrChecked:      "checked",
	AttrClass:        "class",
	AttrClear:        "clear",
	AttrColor:        "color",
	AttrCols:         "cols",
	AttrColSpan:      "colspan",
	AttrCompact:      "compact",
	AttrContent:      "content",
	AttrCoords:       "coords",
	AttrFace:         "face",
	AttrFrameBorder:  "frameborder",
	AttrHeight:       "height",
	AttrHref:         "href",
	AttrHSpace:       "hspace",
	AttrHTTPEquiv:    "http-equiv",
	AttrIdent:        "id",
	AttrIsMap:        "ismap",
	AttrLang:         "lang",
	AttrLink:         "link",
	AttrMarginHeight: "marginheight",
	AttrMarginWidth:  "marginwidth",
	AttrMethod:       "method",
	AttrMultiple:     "multiple",
	AttrName:         "name",
	AttrNoShade:      "noshade",
	AttrNoWrap:       "nowrap",
	AttrRows:         "rows",
	AttrRowSpan:      "rowspan",
	AttrScrolling:    "scrolling",
	AttrSelected:     "selected",
	AttrShape:        "shape",
	AttrSize:         "size",
	AttrSrc:          "src",
	AttrStart:        "start",
	AttrStyle:        "style",
	AttrTarget:       "target",
	AttrText:         "text",
	AttrTitle:        "title",
	AttrType:         "type",
	AttrUseMap:       "usemap",
	AttrVAlign:       "valign",
	AttrValue:        "value",
	AttrVLink:        "vlink",
	AttrVSpace:       "vspace",
	AttrWidth:        "width",
}

var attrByName map[string]AttrID

func init() {
	attrByName = make(map[string]AttrID, len(attrNames))
	for id := AttrAction; id < attrCount; id++ {
		attrByName[attrNames[id]] = id
	}
}

// LookupAttr returns the id for a lower-case attribute name, or AttrNone.
func LookupAttr(name string) AttrID {
	return attrByName[name]
}

func (id AttrID) String() string {
	if id <= AttrNone || id >= attrCount {
		return "attr(?)"
	}
	return attrNames[id]
}
