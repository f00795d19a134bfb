package scandown

import "strings"

// Parser is the second phase of compiling markdown: it consumes a block
// token stream once, left to right, recursing into container tokens, and
// renders each block with inline content run through an InlineLexer.
type Parser struct {
	opts     Options
	renderer Renderer
}

// NewParser returns a parser for the dialect selected by opts, rendering with
// opts.Renderer, or an HTMLRenderer if that is nil.
func NewParser(opts Options) (*Parser, error) {
	if _, err := SelectGrammar(opts); err != nil {
		return nil, err
	}
	return &Parser{opts: opts, renderer: opts.renderer()}, nil
}

// Parse renders tokens, resolving reference links against refs.
// Returns an error only in case of an internal fault, such as an unterminated
// container; see IsInternalFault.
func (p *Parser) Parse(tokens []Token, refs Refs) (_ string, rerr error) {
	defer recoverFault(&rerr)
	inline, err := NewInlineLexer(refs, p.opts, p.renderer)
	if err != nil {
		return "", err
	}
	ps := parseState{
		Parser: p,
		inline: inline,
		tokens: tokens,
	}
	var out strings.Builder
	for ps.i < len(ps.tokens) {
		out.WriteString(ps.tok(ps.next()))
	}
	return out.String(), nil
}

type parseState struct {
	*Parser
	inline *InlineLexer
	tokens []Token
	i      int
}

func (ps *parseState) next() Token {
	tok := ps.tokens[ps.i]
	ps.i++
	return tok
}

func (ps *parseState) peek() TokenType {
	if ps.i < len(ps.tokens) {
		return ps.tokens[ps.i].Type
	}
	return noToken
}

func (ps *parseState) output(text string) string { return ps.inline.output(text, false) }

func (ps *parseState) tok(tok Token) string {
	r := ps.renderer
	switch tok.Type {
	case Space:
		return ""

	case Hr:
		return r.Hr()

	case Heading:
		return r.Heading(ps.output(tok.Text), tok.Depth, tok.Text)

	case Code:
		return r.Code(tok.Text, tok.Lang)

	case Table:
		return ps.table(tok)

	case BlockquoteStart:
		return r.Blockquote(ps.children(tok, false))

	case ListStart:
		return r.List(ps.children(tok, false), tok.Ordered)

	case ListItemStart:
		return r.ListItem(ps.children(tok, !tok.Loose))

	case HTML:
		if tok.Pre || ps.opts.Pedantic {
			return r.HTML(tok.Text)
		}
		return r.HTML(ps.output(tok.Text))

	case Paragraph:
		return r.Paragraph(ps.output(tok.Text))

	case Text:
		return r.Paragraph(ps.text(tok))

	default:
		fault("scandown: unexpected %+v token at %v", tok, ps.i-1)
		return ""
	}
}

// children renders tokens up to the end matching start; tight items render
// their text inline rather than as paragraphs.
func (ps *parseState) children(start Token, tight bool) string {
	end := start.Type.end()
	var body strings.Builder
	for {
		if ps.i >= len(ps.tokens) {
			fault("scandown: unterminated %v, expected %v", start.Type, end)
		}
		tok := ps.next()
		switch {
		case tok.Type == end:
			return body.String()
		case tight && tok.Type == Text:
			body.WriteString(ps.text(tok))
		default:
			body.WriteString(ps.tok(tok))
		}
	}
}

// text renders a run of adjacent text tokens as a single span.
func (ps *parseState) text(tok Token) string {
	body := tok.Text
	for ps.peek() == Text {
		body += "\n" + ps.next().Text
	}
	return ps.output(body)
}

func (ps *parseState) table(tok Token) string {
	r := ps.renderer

	var cells strings.Builder
	for i, cell := range tok.Header {
		cells.WriteString(r.TableCell(ps.output(cell), CellFlags{
			Header: true,
			Align:  alignAt(tok.Align, i),
		}))
	}
	header := r.TableRow(cells.String())

	var body strings.Builder
	for _, row := range tok.Cells {
		cells.Reset()
		for i, cell := range row {
			cells.WriteString(r.TableCell(ps.output(cell), CellFlags{
				Align: alignAt(tok.Align, i),
			}))
		}
		body.WriteString(r.TableRow(cells.String()))
	}

	return r.Table(header, body.String())
}

func alignAt(aligns []Align, i int) Align {
	if i < len(aligns) {
		return aligns[i]
	}
	return AlignNone
}
