package scandown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// InlineLexer renders the inline content of a single block: emphasis, code
// spans, links, images, breaks and escapes, resolving reference links
// against the Refs collected by a BlockLexer.
//
// Each Output call keeps its delimiter stack in a scan value of its own;
// an InlineLexer is never mutated after construction, and so may be shared
// between goroutines as long as its Renderer may.
type InlineLexer struct {
	opts     Options
	refs     Refs
	renderer Renderer
	rules    []inlineRule
}

// NewInlineLexer returns an inline lexer for the dialect selected by opts,
// rendering with r; a nil r uses the renderer selected by opts.
func NewInlineLexer(refs Refs, opts Options, r Renderer) (*InlineLexer, error) {
	g, err := SelectGrammar(opts)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = opts.renderer()
	}
	return &InlineLexer{
		opts:     opts,
		refs:     refs,
		renderer: r,
		rules:    g.inlineRules(opts),
	}, nil
}

// Output renders the inline markup in src.
// Returns an error only in case of an internal fault, see IsInternalFault.
func (il *InlineLexer) Output(src string) (_ string, rerr error) {
	defer recoverFault(&rerr)
	return il.output(strings.ToValidUTF8(src, "\uFFFD"), false), nil
}

func (il *InlineLexer) output(src string, inLink bool) string {
	sc := inlineScan{
		InlineLexer: il,
		src:         src,
		inLink:      inLink,
		prev:        ' ',
	}
	for sc.src != "" {
		sc.step()
	}
	for len(sc.stack) > 0 {
		sc.rollback()
	}
	return sc.out.String()
}

// delim is an emphasis delimiter kind.
type delim byte

const (
	emStar      delim = '*'
	emUnder     delim = '_'
	strongStar  delim = 'S'
	strongUnder delim = 'U'
)

func delimOf(c byte, strong bool) delim {
	switch {
	case c == '_' && strong:
		return strongUnder
	case c == '_':
		return emUnder
	case strong:
		return strongStar
	default:
		return emStar
	}
}

func (d delim) marker() string {
	switch d {
	case strongStar:
		return "**"
	case strongUnder:
		return "__"
	case emUnder:
		return "_"
	default:
		return "*"
	}
}

func (d delim) char() byte { return d.marker()[0] }

func (d delim) strong() bool { return d == strongStar || d == strongUnder }

// opener is an emphasis delimiter still waiting for its closer, along with
// everything rendered since it opened.
type opener struct {
	kind delim
	out  strings.Builder
}

// inlineScan is the state of a single output call. Output goes to the
// innermost open delimiter, or to out once none remain.
type inlineScan struct {
	*InlineLexer
	src    string
	inLink bool
	prev   rune // last consumed source character
	stack  []*opener
	out    strings.Builder
}

func (sc *inlineScan) step() {
	for _, rule := range sc.rules {
		cap := match(rule.re, sc.src)
		if cap == nil {
			continue
		}
		if len(cap.String()) == 0 {
			fault("scandown: inline rule %q matched empty input before %q", rule.name, excerpt(sc.src))
		}
		if rule.lex(sc, cap) {
			return
		}
	}
	fault("scandown: no inline rule matched %q", excerpt(sc.src))
}

func (sc *inlineScan) advance(n int) {
	if r, _ := utf8.DecodeLastRuneInString(sc.src[:n]); r != utf8.RuneError {
		sc.prev = r
	}
	sc.src = sc.src[n:]
}

func (sc *inlineScan) consume(cap *regexp2.Match) { sc.advance(len(cap.String())) }

func (sc *inlineScan) write(s string) {
	if n := len(sc.stack); n > 0 {
		sc.stack[n-1].out.WriteString(s)
	} else {
		sc.out.WriteString(s)
	}
}

func (sc *inlineScan) text(s string) { sc.write(sc.renderer.Text(s)) }

// lexDelims handles a run of "*" or "_" characters: the run first closes
// what open delimiters it can, and whatever remains of it then opens new
// ones, or is literal.
func (sc *inlineScan) lexDelims(cap *regexp2.Match) bool {
	run := cap.String()
	c := run[0]
	rest := sc.src[len(run):]
	next, _ := utf8.DecodeRuneInString(rest)
	canOpen := rest != "" && !unicode.IsSpace(next)
	canClose := !unicode.IsSpace(sc.prev)
	if c == '_' && !sc.opts.Pedantic {
		canOpen = canOpen && !isAlnum(sc.prev)
		canClose = canClose && (rest == "" || !isAlnum(next))
	}

	n := len(run)
	if canClose {
		n = sc.close(c, n)
	}
	sc.advance(len(run))
	if canOpen {
		sc.open(c, n)
	} else if n > 0 {
		sc.text(run[:n])
	}
	return true
}

// close matches up to n closing c characters against the open delimiters,
// returning how many remain unmatched. A single character closes only an em,
// a pair only a strong; longer runs close the innermost of either kind.
func (sc *inlineScan) close(c byte, n int) int {
	for n > 0 {
		var i int
		switch n {
		case 1:
			i = sc.find(delimOf(c, false))
		case 2:
			i = sc.find(delimOf(c, true))
		default:
			i = sc.findChar(c)
		}
		if i < 0 {
			break
		}
		n -= len(sc.stack[i].kind.marker())
		sc.closeAt(i)
	}
	return n
}

// open pushes openers for n c characters: one is an em, two a strong, and
// a longer run a strong around an em after any excess as literal text.
func (sc *inlineScan) open(c byte, n int) {
	var kinds []delim
	switch {
	case n == 0:
		return
	case n == 1:
		kinds = []delim{delimOf(c, false)}
	case n == 2:
		kinds = []delim{delimOf(c, true)}
	default:
		sc.text(strings.Repeat(string(c), n-3))
		kinds = []delim{delimOf(c, true), delimOf(c, false)}
	}
	for _, d := range kinds {
		if len(sc.stack) >= sc.opts.maxNesting() {
			sc.text(d.marker())
			continue
		}
		sc.stack = append(sc.stack, &opener{kind: d})
	}
}

// find returns the index of the innermost opener of kind d, or -1.
func (sc *inlineScan) find(d delim) int {
	for i := len(sc.stack) - 1; i >= 0; i-- {
		if sc.stack[i].kind == d {
			return i
		}
	}
	return -1
}

// findChar returns the index of the innermost opener written with c, or -1.
func (sc *inlineScan) findChar(c byte) int {
	for i := len(sc.stack) - 1; i >= 0; i-- {
		if sc.stack[i].kind.char() == c {
			return i
		}
	}
	return -1
}

// closeAt closes the opener at stack index i, rolling back any opened after
// it, and wraps what it holds in the opener's markup.
func (sc *inlineScan) closeAt(i int) {
	for len(sc.stack) > i+1 {
		sc.rollback()
	}
	top := sc.stack[i]
	sc.stack = sc.stack[:i]
	if top.kind.strong() {
		sc.write(sc.renderer.Strong(top.out.String()))
	} else {
		sc.write(sc.renderer.Em(top.out.String()))
	}
}

// rollback discards the innermost opener, writing its marker and content to
// the enclosing one as literal text.
func (sc *inlineScan) rollback() {
	n := len(sc.stack) - 1
	top := sc.stack[n]
	sc.stack = sc.stack[:n]
	sc.text(top.kind.marker())
	sc.write(top.out.String())
}

func (sc *inlineScan) lexEscape(cap *regexp2.Match) bool {
	sc.text(group(cap, 1))
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexAutolink(cap *regexp2.Match) bool {
	text, href := group(cap, 1), group(cap, 1)
	if group(cap, 2) == "@" {
		text = strings.TrimPrefix(text, "mailto:")
		href = "mailto:" + text
	}
	sc.write(sc.renderer.Link(href, "", sc.renderer.Text(text)))
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexURL(cap *regexp2.Match) bool {
	if sc.inLink {
		return false
	}
	url := group(cap, 1)
	sc.write(sc.renderer.Link(url, "", sc.renderer.Text(url)))
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexTag(cap *regexp2.Match) bool {
	tag := cap.String()
	lower := strings.ToLower(tag)
	if !sc.inLink && strings.HasPrefix(lower, "<a ") {
		sc.inLink = true
	} else if sc.inLink && strings.HasPrefix(lower, "</a>") {
		sc.inLink = false
	}
	if sc.opts.Sanitize {
		sc.text(tag)
	} else {
		sc.write(sc.renderer.HTML(tag))
	}
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexLink(cap *regexp2.Match) bool {
	sc.link(cap.String(), group(cap, 1), Ref{
		Href:  group(cap, 2),
		Title: group(cap, 3),
	})
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexRefLink(cap *regexp2.Match) bool {
	label := group(cap, 2)
	if label == "" {
		label = group(cap, 1)
	}
	ref, ok := sc.refs.Lookup(label)
	if !ok || ref.Href == "" {
		// unresolved: the bracket is literal, lex what follows it again
		sc.text(cap.String()[:1])
		sc.advance(1)
		return true
	}
	sc.link(cap.String(), group(cap, 1), ref)
	sc.consume(cap)
	return true
}

func (sc *inlineScan) link(src, text string, ref Ref) {
	if strings.HasPrefix(src, "!") {
		sc.write(sc.renderer.Image(ref.Href, ref.Title, text))
	} else {
		sc.write(sc.renderer.Link(ref.Href, ref.Title, sc.output(text, true)))
	}
}

// lexCodeSpan handles a run of backticks: it opens a code span if a run of
// the same length follows, otherwise the whole run is literal.
func (sc *inlineScan) lexCodeSpan(cap *regexp2.Match) bool {
	run := cap.String()
	body, n, ok := codeSpan(sc.src[len(run):], len(run))
	if !ok {
		sc.text(run)
		sc.consume(cap)
		return true
	}
	sc.write(sc.renderer.CodeSpan(body))
	sc.advance(len(run) + n)
	return true
}

// codeSpan finds the closing run of exactly width backticks in s, returning
// the trimmed code before it and the length of s consumed through it.
func codeSpan(s string, width int) (body string, n int, ok bool) {
	for i := 0; i < len(s); {
		j := strings.IndexByte(s[i:], '`')
		if j < 0 {
			break
		}
		j += i
		k := j
		for k < len(s) && s[k] == '`' {
			k++
		}
		if k-j == width {
			body = strings.TrimSpace(s[:j])
			return body, k, body != ""
		}
		i = k
	}
	return "", 0, false
}

func (sc *inlineScan) lexBr(cap *regexp2.Match) bool {
	sc.write(sc.renderer.Br())
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexDel(cap *regexp2.Match) bool {
	sc.write(sc.renderer.Del(sc.output(group(cap, 1), sc.inLink)))
	sc.consume(cap)
	return true
}

func (sc *inlineScan) lexText(cap *regexp2.Match) bool {
	text := cap.String()
	if sc.opts.SmartyPants {
		text = smartypants(text)
	}
	sc.text(text)
	sc.consume(cap)
	return true
}

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// foldLabel normalizes a reference label: case folded, with whitespace runs
// collapsed to a single space.
func foldLabel(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

var smartyRules = []struct {
	re   *regexp2.Regexp
	repl string
}{
	{mustCompile(`---`), "\u2014"},
	{mustCompile(`--`), "\u2013"},
	{mustCompile(`(^|[-\u2014/(\[{"\s])'`), "$1\u2018"},
	{mustCompile(`'`), "\u2019"},
	{mustCompile(`(^|[-\u2014/(\[{\u2018\s])"`), "$1\u201c"},
	{mustCompile(`"`), "\u201d"},
	{mustCompile(`\.{3}`), "\u2026"},
}

// smartypants substitutes typographic dashes, quotes and ellipses.
func smartypants(text string) string {
	for _, rule := range smartyRules {
		out, err := rule.re.Replace(text, rule.repl, -1, -1)
		if err != nil {
			fault("scandown: smartypants %q: %v", excerpt(text), err)
		}
		text = out
	}
	return text
}
