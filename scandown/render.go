package scandown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Renderer produces the output markup of each node kind. Attributes, such as
// link targets, code and alt text, arrive raw; child content arrives already
// rendered. A Renderer knows nothing about the context of a node.
type Renderer interface {
	Code(code, lang string) string
	Blockquote(body string) string
	HTML(html string) string
	Heading(text string, level int, raw string) string
	Hr() string
	List(body string, ordered bool) string
	ListItem(body string) string
	Paragraph(text string) string
	Table(header, body string) string
	TableRow(content string) string
	TableCell(content string, flags CellFlags) string

	Strong(text string) string
	Em(text string) string
	CodeSpan(code string) string
	Br() string
	Del(text string) string
	Link(href, title, text string) string
	Image(href, title, alt string) string
	Text(text string) string
}

// CellFlags describes a table cell.
type CellFlags struct {
	Header bool
	Align  Align
}

// HTMLRenderer renders HTML fragments, each block terminated by a newline.
type HTMLRenderer struct {
	opts Options
}

// NewHTMLRenderer returns an HTML renderer honoring the output related
// fields of opts: Sanitize, HeaderPrefix, LangPrefix, XHTML and Highlight.
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{opts: opts}
}

var _ Renderer = (*HTMLRenderer)(nil)

func (hr *HTMLRenderer) Code(code, lang string) string {
	body := escapeHTML(code, true)
	if hr.opts.Highlight != nil {
		if out := hr.opts.Highlight(code, lang); out != "" && out != code {
			body = out
		}
	}
	if lang == "" {
		return "<pre><code>" + body + "\n</code></pre>\n"
	}
	return `<pre><code class="` + escapeHTML(hr.opts.LangPrefix+lang, true) + `">` +
		body + "\n</code></pre>\n"
}

func (hr *HTMLRenderer) Blockquote(body string) string {
	return "<blockquote>\n" + body + "</blockquote>\n"
}

func (hr *HTMLRenderer) HTML(html string) string { return html }

func (hr *HTMLRenderer) Heading(text string, level int, raw string) string {
	n := strconv.Itoa(level)
	return "<h" + n + ` id="` + escapeHTML(hr.opts.HeaderPrefix+Slug(raw), false) + `">` +
		text + "</h" + n + ">\n"
}

func (hr *HTMLRenderer) Hr() string {
	if hr.opts.XHTML {
		return "<hr/>\n"
	}
	return "<hr>\n"
}

func (hr *HTMLRenderer) List(body string, ordered bool) string {
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	return "<" + tag + ">\n" + body + "</" + tag + ">\n"
}

func (hr *HTMLRenderer) ListItem(body string) string { return "<li>" + body + "</li>\n" }

func (hr *HTMLRenderer) Paragraph(text string) string { return "<p>" + text + "</p>\n" }

func (hr *HTMLRenderer) Table(header, body string) string {
	return "<table>\n<thead>\n" + header + "</thead>\n<tbody>\n" + body + "</tbody>\n</table>\n"
}

func (hr *HTMLRenderer) TableRow(content string) string { return "<tr>\n" + content + "</tr>\n" }

func (hr *HTMLRenderer) TableCell(content string, flags CellFlags) string {
	tag := "td"
	if flags.Header {
		tag = "th"
	}
	var open string
	switch flags.Align {
	case AlignLeft:
		open = "<" + tag + ` style="text-align:left">`
	case AlignCenter:
		open = "<" + tag + ` style="text-align:center">`
	case AlignRight:
		open = "<" + tag + ` style="text-align:right">`
	default:
		open = "<" + tag + ">"
	}
	return open + content + "</" + tag + ">\n"
}

func (hr *HTMLRenderer) Strong(text string) string { return "<strong>" + text + "</strong>" }

func (hr *HTMLRenderer) Em(text string) string { return "<em>" + text + "</em>" }

func (hr *HTMLRenderer) CodeSpan(code string) string {
	return "<code>" + escapeHTML(code, true) + "</code>"
}

func (hr *HTMLRenderer) Br() string {
	if hr.opts.XHTML {
		return "<br/>"
	}
	return "<br>"
}

func (hr *HTMLRenderer) Del(text string) string { return "<del>" + text + "</del>" }

// Link renders an anchor; when sanitizing, a link to a script bearing scheme
// renders only its text.
func (hr *HTMLRenderer) Link(href, title, text string) string {
	if hr.opts.Sanitize && unsafeHref(href) {
		return text
	}
	out := `<a href="` + escapeHTML(href, false) + `"`
	if title != "" {
		out += ` title="` + escapeHTML(title, false) + `"`
	}
	return out + ">" + text + "</a>"
}

// Image renders an img element; when sanitizing, an image with a script
// bearing source renders only its alt text.
func (hr *HTMLRenderer) Image(href, title, alt string) string {
	if hr.opts.Sanitize && unsafeHref(href) {
		return escapeHTML(alt, false)
	}
	out := `<img src="` + escapeHTML(href, false) + `" alt="` + escapeHTML(alt, false) + `"`
	if title != "" {
		out += ` title="` + escapeHTML(title, false) + `"`
	}
	if hr.opts.XHTML {
		return out + "/>"
	}
	return out + ">"
}

func (hr *HTMLRenderer) Text(text string) string { return escapeHTML(text, false) }

// Slug derives a heading anchor from raw heading text: lower cased, with
// every run of characters other than ASCII letters, digits and underscore
// replaced by a single "-".
func Slug(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	run := false
	for _, r := range strings.ToLower(raw) {
		if r < 0x80 && (r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			sb.WriteRune(r)
			run = false
		} else if !run {
			sb.WriteByte('-')
			run = true
		}
	}
	return sb.String()
}

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// unsafeHref reports whether href, once entity and percent decoded and
// stripped of everything but word characters and colons, names a script
// bearing scheme.
func unsafeHref(href string) bool {
	var sb strings.Builder
	for _, r := range strings.ToLower(percentDecode(html.UnescapeString(href))) {
		if r == ':' || r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	prot := sb.String()
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(prot, scheme) {
			return true
		}
	}
	return false
}

// percentDecode decodes every well formed %XX escape in s, leaving any other
// "%" as is.
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if b, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				sb.WriteByte(byte(b))
				i += 2
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// escapeHTML escapes markup characters; unless encode is set, ampersands
// already starting an entity reference are left alone.
func escapeHTML(s string, encode bool) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if !encode && isEntity(s[i+1:]) {
				sb.WriteByte(c)
			} else {
				sb.WriteString("&amp;")
			}
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		case '\'':
			sb.WriteString("&#39;")
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// isEntity reports whether s, following an ampersand, continues an entity
// reference: an optional '#', one or more word characters, then ';'.
func isEntity(s string) bool {
	s = strings.TrimPrefix(s, "#")
	n := 0
	for n < len(s) && isWordByte(s[n]) {
		n++
	}
	return n > 0 && n < len(s) && s[n] == ';'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
