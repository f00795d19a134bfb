package scandown

import (
	"fmt"
	"io"
)

// Format writes a textual representation of the receiver, providing improved
// fmt.Printf display. Produces a verbose "<Type attr=value>" form when
// formatted with `%+v", a terse "Type" form otherwise.
func (tok Token) Format(f fmt.State, _ rune) {
	if f.Flag('+') {
		switch tok.Type {
		case Code:
			fmt.Fprintf(f, "<%v lang=%q text=%q>", tok.Type, tok.Lang, tok.Text)

		case Heading:
			fmt.Fprintf(f, "<%v depth=%v text=%q>", tok.Type, tok.Depth, tok.Text)

		case ListStart:
			fmt.Fprintf(f, "<%v ordered=%v>", tok.Type, tok.Ordered)

		case ListItemStart:
			fmt.Fprintf(f, "<%v loose=%v>", tok.Type, tok.Loose)

		case HTML:
			fmt.Fprintf(f, "<%v pre=%v text=%q>", tok.Type, tok.Pre, tok.Text)

		case Paragraph, Text:
			fmt.Fprintf(f, "<%v text=%q>", tok.Type, tok.Text)

		case Table:
			fmt.Fprintf(f, "<%v header=%q align=%v rows=%v>", tok.Type, tok.Header, tok.Align, len(tok.Cells))

		default:
			fmt.Fprintf(f, "<%v>", tok.Type)
		}
	} else {
		switch tok.Type {
		case Heading:
			fmt.Fprintf(f, "%v%v", tok.Type, tok.Depth)
		case ListStart:
			if tok.Ordered {
				io.WriteString(f, "OrderedListStart")
			} else {
				fmt.Fprint(f, tok.Type)
			}
		case ListItemStart:
			if tok.Loose {
				io.WriteString(f, "LooseItemStart")
			} else {
				fmt.Fprint(f, tok.Type)
			}
		default:
			fmt.Fprint(f, tok.Type)
		}
	}
}

// Format writes a type string representing the receiver code.
func (t TokenType) Format(f fmt.State, _ rune) {
	switch t {
	case noToken:
		io.WriteString(f, "None")
	case Space:
		io.WriteString(f, "Space")
	case Code:
		io.WriteString(f, "Code")
	case Heading:
		io.WriteString(f, "Heading")
	case Hr:
		io.WriteString(f, "Hr")
	case BlockquoteStart:
		io.WriteString(f, "BlockquoteStart")
	case BlockquoteEnd:
		io.WriteString(f, "BlockquoteEnd")
	case ListStart:
		io.WriteString(f, "ListStart")
	case ListItemStart:
		io.WriteString(f, "ListItemStart")
	case ListItemEnd:
		io.WriteString(f, "ListItemEnd")
	case ListEnd:
		io.WriteString(f, "ListEnd")
	case HTML:
		io.WriteString(f, "HTML")
	case Paragraph:
		io.WriteString(f, "Paragraph")
	case Text:
		io.WriteString(f, "Text")
	case Table:
		io.WriteString(f, "Table")
	default:
		fmt.Fprintf(f, "InvalidToken%v", int(t))
	}
}

// Format writes the CSS text-align value of the alignment, or "none".
func (a Align) Format(f fmt.State, _ rune) {
	switch a {
	case AlignNone:
		io.WriteString(f, "none")
	case AlignLeft:
		io.WriteString(f, "left")
	case AlignCenter:
		io.WriteString(f, "center")
	case AlignRight:
		io.WriteString(f, "right")
	default:
		fmt.Fprintf(f, "InvalidAlign%v", int(a))
	}
}
