package scandown

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// BlockLexer is the first phase of compiling markdown: it splits source text
// into a flat stream of block Tokens, in document order, and collects link
// reference definitions into a Refs table.
//
// Rules from the selected Grammar are tried in priority order against the
// front of the remaining source; the first match is consumed, and matching
// restarts from the first rule.
//
// A BlockLexer may be reused for sequential Lex calls, but it is not safe to
// use from parallel goroutines.
type BlockLexer struct {
	opts    Options
	grammar *Grammar
	tokens  []Token
	refs    Refs
}

type lexState struct {
	top    bool // outside of any list item
	quoted bool // inside a blockquote
	depth  int  // container nesting
}

// NewBlockLexer returns a lexer for the dialect selected by opts.
func NewBlockLexer(opts Options) (*BlockLexer, error) {
	g, err := SelectGrammar(opts)
	if err != nil {
		return nil, err
	}
	return &BlockLexer{opts: opts, grammar: g}, nil
}

// Lex returns the token stream and reference definitions of src.
// Returns an error only in case of an internal fault, see IsInternalFault.
func (lx *BlockLexer) Lex(src string) (tokens []Token, refs Refs, rerr error) {
	defer recoverFault(&rerr)
	lx.tokens = nil
	lx.refs = make(Refs)
	lx.tokenize(normalizeSource(src), lexState{top: true})
	tokens, refs = lx.tokens, lx.refs
	lx.tokens, lx.refs = nil, nil
	return tokens, refs, nil
}

var sourceReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", "    ",
	"\u00a0", " ",
	"\u2424", "\n",
)

// normalizeSource expands tabs and unifies line endings; invalid UTF-8 is
// replaced so that match lengths agree with source offsets.
func normalizeSource(src string) string {
	return sourceReplacer.Replace(strings.ToValidUTF8(src, "\uFFFD"))
}

func (lx *BlockLexer) tokenize(src string, st lexState) {
	src = clearBlankLines(src)
	for src != "" {
		src = lx.next(src, st)
	}
}

func (lx *BlockLexer) next(src string, st lexState) string {
	nested := st.depth >= lx.opts.maxNesting()
	for _, rule := range lx.grammar.block {
		if !rule.scope.admits(st) {
			continue
		}
		if nested && (rule.name == "blockquote" || rule.name == "list") {
			continue
		}
		cap := match(rule.re, src)
		if cap == nil {
			continue
		}
		n := len(cap.String())
		if n == 0 {
			fault("scandown: block rule %q matched empty input before %q", rule.name, excerpt(src))
		}
		return rule.lex(lx, st, cap) + src[n:]
	}
	fault("scandown: no block rule matched %q", excerpt(src))
	return ""
}

// push appends a token, merging code blocks of the same language that are
// only separated by blank lines.
func (lx *BlockLexer) push(tok Token) {
	if tok.Type == Code {
		i := len(lx.tokens) - 1
		for i >= 0 && lx.tokens[i].Type == Space {
			i--
		}
		if i >= 0 && lx.tokens[i].Type == Code && lx.tokens[i].Lang == tok.Lang {
			lx.tokens[i].Text += "\n\n" + tok.Text
			lx.tokens = lx.tokens[:i+1]
			return
		}
	}
	lx.tokens = append(lx.tokens, tok)
}

func (lx *BlockLexer) lexNewline(_ lexState, cap *regexp2.Match) string {
	if len(cap.String()) > 1 {
		lx.push(Token{Type: Space})
	}
	return ""
}

func (lx *BlockLexer) lexCode(_ lexState, cap *regexp2.Match) string {
	text := mapLines(cap.String(), func(line string) string {
		return strings.TrimPrefix(line, "    ")
	})
	if !lx.opts.Pedantic {
		text = strings.TrimRight(text, "\n")
	}
	lx.push(Token{Type: Code, Text: text})
	return ""
}

func (lx *BlockLexer) lexFences(_ lexState, cap *regexp2.Match) string {
	lx.push(Token{Type: Code, Lang: group(cap, 2), Text: group(cap, 3)})
	return ""
}

func (lx *BlockLexer) lexHeading(_ lexState, cap *regexp2.Match) string {
	lx.push(Token{Type: Heading, Depth: len(group(cap, 1)), Text: group(cap, 2)})
	return ""
}

func (lx *BlockLexer) lexLHeading(_ lexState, cap *regexp2.Match) string {
	depth := 2
	if group(cap, 2) == "=" {
		depth = 1
	}
	lx.push(Token{Type: Heading, Depth: depth, Text: group(cap, 1)})
	return ""
}

func (lx *BlockLexer) lexHr(lexState, *regexp2.Match) string {
	lx.push(Token{Type: Hr})
	return ""
}

func (lx *BlockLexer) lexNpTable(_ lexState, cap *regexp2.Match) string {
	lx.push(tableToken(group(cap, 1), group(cap, 2), group(cap, 3), false))
	return ""
}

func (lx *BlockLexer) lexTable(_ lexState, cap *regexp2.Match) string {
	lx.push(tableToken(group(cap, 1), group(cap, 2), group(cap, 3), true))
	return ""
}

func (lx *BlockLexer) lexBlockquote(st lexState, cap *regexp2.Match) string {
	lx.push(Token{Type: BlockquoteStart})
	// the interior is a fresh document, keeping the toplevel state like
	// markdown.pl does
	lx.tokenize(unquote(cap.String()), lexState{
		top:    st.top,
		quoted: true,
		depth:  st.depth + 1,
	})
	lx.push(Token{Type: BlockquoteEnd})
	return ""
}

func (lx *BlockLexer) lexList(st lexState, cap *regexp2.Match) (pushback string) {
	bull := group(cap, 2)
	lx.push(Token{Type: ListStart, Ordered: len(bull) > 1})

	items := matchAll(itemRe, cap.String())
	next := false
	for i := 0; i < len(items); i++ {
		item := items[i]

		// remove the bullet, then outdent the item by its width
		space := len(item)
		item = trimBullet(item)
		if strings.Contains(item, "\n ") {
			space -= len(item)
			if lx.opts.Pedantic {
				space = 4
			}
			item = outdent(item, space)
		}

		// a different bullet starts a new list
		if lx.opts.SmartLists && i != len(items)-1 {
			if b := bullet(items[i+1]); bull != b && !(len(bull) > 1 && len(b) > 1) {
				whole := cap.String()
				pushback = strings.Join(items[i+1:], "\n") + whole[len(strings.TrimRight(whole, "\n")):]
				items = items[:i+1]
			}
		}

		// loose if separated from its siblings by a blank line, or containing
		// a blank line of its own
		loose := next || matches(looseRe, item)
		if i != len(items)-1 {
			next = strings.HasSuffix(item, "\n")
			if !loose {
				loose = next
			}
		}

		lx.push(Token{Type: ListItemStart, Loose: loose})
		lx.tokenize(item, lexState{
			top:    false,
			quoted: st.quoted,
			depth:  st.depth + 1,
		})
		lx.push(Token{Type: ListItemEnd})
	}

	lx.push(Token{Type: ListEnd})
	return pushback
}

func (lx *BlockLexer) lexHTML(_ lexState, cap *regexp2.Match) string {
	if lx.opts.Sanitize {
		lx.push(Token{Type: Paragraph, Text: strings.TrimRight(cap.String(), "\n")})
		return ""
	}
	tag := group(cap, 1)
	lx.push(Token{
		Type: HTML,
		Pre:  tag == "pre" || tag == "script" || tag == "style",
		Text: cap.String(),
	})
	return ""
}

func (lx *BlockLexer) lexDef(_ lexState, cap *regexp2.Match) string {
	lx.refs[foldLabel(group(cap, 1))] = Ref{
		Href:  group(cap, 2),
		Title: group(cap, 3),
	}
	return ""
}

func (lx *BlockLexer) lexParagraph(_ lexState, cap *regexp2.Match) string {
	lx.push(Token{Type: Paragraph, Text: strings.TrimSuffix(group(cap, 1), "\n")})
	return ""
}

func (lx *BlockLexer) lexText(_ lexState, cap *regexp2.Match) string {
	lx.push(Token{Type: Text, Text: cap.String()})
	return ""
}

var (
	itemRe  = mustCompile(itemSrc)
	looseRe = mustCompile(`\n\n(?!\s*\z)`)
)

func tableToken(header, align, rows string, piped bool) Token {
	tok := Token{
		Type:   Table,
		Header: splitRow(header, false),
	}
	for _, col := range splitRow(align, false) {
		tok.Align = append(tok.Align, parseAlign(col))
	}
	rows = strings.TrimSuffix(rows, "\n")
	if rows == "" {
		return tok
	}
	for _, row := range strings.Split(rows, "\n") {
		tok.Cells = append(tok.Cells, splitRow(row, piped))
	}
	return tok
}

// splitRow splits a table row into its trimmed cells, dropping any outer
// pipes.
func splitRow(row string, leadingPipe bool) []string {
	row = strings.Trim(row, " ")
	if leadingPipe {
		row = strings.TrimLeft(strings.TrimPrefix(row, "|"), " ")
	}
	row = strings.TrimRight(strings.TrimSuffix(row, "|"), " ")
	cells := strings.Split(row, "|")
	for i, cell := range cells {
		cells[i] = strings.Trim(cell, " ")
	}
	return cells
}

func parseAlign(col string) Align {
	col = strings.Trim(col, " ")
	left := strings.HasPrefix(col, ":")
	right := strings.HasSuffix(col, ":") && len(col) > 1
	dashes := strings.TrimSuffix(strings.TrimPrefix(col, ":"), ":")
	if dashes == "" || strings.Trim(dashes, "-") != "" {
		return AlignNone
	}
	switch {
	case left && right:
		return AlignCenter
	case left:
		return AlignLeft
	case right:
		return AlignRight
	default:
		return AlignNone
	}
}

// unquote strips one level of "> " quote markers.
func unquote(s string) string {
	return mapLines(s, func(line string) string {
		_, tail := trimIndent(line, 0, len(line))
		if !strings.HasPrefix(tail, ">") {
			return line
		}
		return strings.TrimPrefix(tail[1:], " ")
	})
}

// outdent removes up to n leading spaces from every line.
func outdent(s string, n int) string {
	return mapLines(s, func(line string) string {
		_, tail := trimIndent(line, 0, n)
		return tail
	})
}

// trimBullet strips the bullet of a list item, along with the spaces after
// it.
func trimBullet(item string) string {
	_, tail := trimIndent(item, 0, len(item))
	if delim, _, rest := ordinal(tail); delim == '.' {
		tail = rest
	} else if len(tail) > 0 && isByte(tail[0], '*', '+', '-') {
		tail = tail[1:]
	}
	return strings.TrimLeft(tail, " ")
}

// bullet returns the bullet of a list item: its marker character, or its
// number followed by a period.
func bullet(item string) string {
	_, tail := trimIndent(item, 0, len(item))
	if delim, width, _ := ordinal(tail); delim == '.' {
		return tail[:width+1]
	}
	if len(tail) > 0 && isByte(tail[0], '*', '+', '-') {
		return tail[:1]
	}
	return ""
}

func ordinal(line string) (delim byte, width int, tail string) {
	tail = line
	for len(tail) > 0 {
		switch c := tail[0]; c {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			width++
			tail = tail[1:]
			continue
		default:
			delim = c
			tail = tail[1:]
		}
		break
	}
	if width < 1 {
		return 0, 0, line
	}
	return delim, width, tail
}

func isByte(b byte, any ...byte) bool {
	for _, ab := range any {
		if b == ab {
			return true
		}
	}
	return false
}

// trimIndent removes up to limit leading spaces, returning how many were
// removed; tabs have already been expanded by normalizeSource.
func trimIndent(line string, n, limit int) (int, string) {
	for n < limit && len(line) > 0 && line[0] == ' ' {
		n++
		line = line[1:]
	}
	return n, line
}

func mapLines(s string, fn func(line string) string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

// clearBlankLines empties lines consisting only of spaces.
func clearBlankLines(s string) string {
	return mapLines(s, func(line string) string {
		if strings.Trim(line, " ") == "" {
			return ""
		}
		return line
	})
}

func match(re *regexp2.Regexp, s string) *regexp2.Match {
	m, err := re.FindStringMatch(s)
	if err != nil {
		fault("scandown: matching %q: %v", excerpt(s), err)
	}
	return m
}

func matches(re *regexp2.Regexp, s string) bool {
	return match(re, s) != nil
}

func matchAll(re *regexp2.Regexp, s string) (all []string) {
	for m := match(re, s); m != nil; {
		all = append(all, m.String())
		var err error
		if m, err = re.FindNextMatch(m); err != nil {
			fault("scandown: matching %q: %v", excerpt(s), err)
		}
	}
	return all
}

// group returns the text of a numbered capture group, or "" if it did not
// participate in the match.
func group(m *regexp2.Match, i int) string {
	if g := m.GroupByNumber(i); g != nil && len(g.Captures) > 0 {
		return g.String()
	}
	return ""
}
