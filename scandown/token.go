package scandown

// TokenType identifies the kind of a block token.
type TokenType int

// Token types. Container tokens come in start/end pairs, with their children
// in between; the sequence itself is flat.
const (
	noToken TokenType = iota
	Space
	Code
	Heading
	Hr
	BlockquoteStart
	BlockquoteEnd
	ListStart
	ListItemStart
	ListItemEnd
	ListEnd
	HTML
	Paragraph
	Text
	Table
)

// Align is the alignment of a table column.
type Align int

// Table column alignments.
const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Token is a single block level token. Which fields are meaningful depends
// on Type:
//   - Code: Text, Lang
//   - Heading: Text, Depth
//   - ListStart: Ordered
//   - ListItemStart: Loose
//   - HTML: Text, Pre
//   - Paragraph, Text: Text
//   - Table: Header, Align, Cells
type Token struct {
	Type    TokenType
	Text    string
	Lang    string
	Depth   int
	Ordered bool
	Loose   bool
	Pre     bool
	Header  []string
	Align   []Align
	Cells   [][]string
}

// Ref is a link reference definition.
type Ref struct {
	Href  string
	Title string
}

// Refs maps folded reference labels to their definitions.
type Refs map[string]Ref

// Lookup resolves a reference label, folding it the same way definitions
// were folded.
func (refs Refs) Lookup(label string) (Ref, bool) {
	ref, ok := refs[foldLabel(label)]
	return ref, ok
}

// IsStart reports whether t opens a container, whose children follow up to
// the matching end token.
func (t TokenType) IsStart() bool {
	switch t {
	case BlockquoteStart, ListStart, ListItemStart:
		return true
	default:
		return false
	}
}

// IsEnd reports whether t closes a container.
func (t TokenType) IsEnd() bool {
	switch t {
	case BlockquoteEnd, ListEnd, ListItemEnd:
		return true
	default:
		return false
	}
}

func (t TokenType) end() TokenType {
	switch t {
	case BlockquoteStart:
		return BlockquoteEnd
	case ListStart:
		return ListEnd
	case ListItemStart:
		return ListItemEnd
	default:
		return noToken
	}
}
