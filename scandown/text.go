package scandown

import "strings"

// TextRenderer renders the plain text content of a document: markup and raw
// HTML are dropped, link and image targets are dropped in favor of their
// text, and blocks are separated by blank lines.
type TextRenderer struct{}

var _ Renderer = TextRenderer{}

func (TextRenderer) Code(code, _ string) string { return code + "\n\n" }

func (TextRenderer) Blockquote(body string) string { return body }

func (TextRenderer) HTML(string) string { return "" }

func (TextRenderer) Heading(text string, _ int, _ string) string { return text + "\n\n" }

func (TextRenderer) Hr() string { return "\n" }

func (TextRenderer) List(body string, _ bool) string { return body + "\n" }

func (TextRenderer) ListItem(body string) string {
	return strings.TrimRight(body, "\n") + "\n"
}

func (TextRenderer) Paragraph(text string) string { return text + "\n\n" }

func (TextRenderer) Table(header, body string) string { return header + body + "\n" }

func (TextRenderer) TableRow(content string) string {
	return strings.TrimSuffix(content, "\t") + "\n"
}

func (TextRenderer) TableCell(content string, _ CellFlags) string { return content + "\t" }

func (TextRenderer) Strong(text string) string { return text }

func (TextRenderer) Em(text string) string { return text }

func (TextRenderer) CodeSpan(code string) string { return code }

func (TextRenderer) Br() string { return "\n" }

func (TextRenderer) Del(text string) string { return text }

func (TextRenderer) Link(_, _, text string) string { return text }

func (TextRenderer) Image(_, _, alt string) string { return alt }

func (TextRenderer) Text(text string) string { return text }
