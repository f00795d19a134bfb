package scandown

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Dialect names one of the precomputed grammars.
type Dialect int

// Dialects, in the order their grammars are composed.
const (
	Normal Dialect = iota
	GFM
	GFMTables
	Pedantic
)

// ParseDialect parses a dialect name as used in configuration files.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal", "markdown":
		return Normal, nil
	case "gfm":
		return GFM, nil
	case "gfm-tables", "tables":
		return GFMTables, nil
	case "pedantic":
		return Pedantic, nil
	default:
		return 0, dialectError("unknown dialect %q", name)
	}
}

// Apply sets the dialect flags of opts to select d, leaving all other options
// untouched.
func (d Dialect) Apply(opts *Options) {
	opts.GFM = d == GFM || d == GFMTables
	opts.Tables = d == GFMTables
	opts.Pedantic = d == Pedantic
}

// Format writes the configuration name of the dialect.
func (d Dialect) Format(f fmt.State, _ rune) {
	switch d {
	case Normal:
		io.WriteString(f, "normal")
	case GFM:
		io.WriteString(f, "gfm")
	case GFMTables:
		io.WriteString(f, "gfm-tables")
	case Pedantic:
		io.WriteString(f, "pedantic")
	default:
		fmt.Fprintf(f, "InvalidDialect%v", int(d))
	}
}

// Grammar is an immutable table of ordered block and inline rules for one
// dialect. Grammars are built once during package initialization and shared
// by all compile calls.
type Grammar struct {
	Dialect Dialect
	block   []blockRule
	inline  []inlineRule
	breaks  []inlineRule // inline variant for Options.Breaks, GFM only
}

// SelectGrammar returns the grammar selected by the dialect flags of opts,
// rejecting conflicting flag combinations.
func SelectGrammar(opts Options) (*Grammar, error) {
	switch {
	case opts.Pedantic && opts.GFM:
		return nil, dialectError("pedantic conflicts with gfm")
	case opts.Tables && !opts.GFM:
		return nil, dialectError("tables require gfm")
	case opts.Pedantic:
		return &pedanticGrammar, nil
	case opts.Tables:
		return &gfmTablesGrammar, nil
	case opts.GFM:
		return &gfmGrammar, nil
	default:
		return &normalGrammar, nil
	}
}

func (g *Grammar) inlineRules(opts Options) []inlineRule {
	if opts.Breaks && g.breaks != nil {
		return g.breaks
	}
	return g.inline
}

// blockRule is a named pattern with its token producing handler; scope
// restricts where the rule applies. A handler may push back source text to
// be lexed again after its match.
type blockRule struct {
	name  string
	re    *regexp2.Regexp
	scope ruleScope
	lex   func(lx *BlockLexer, st lexState, cap *regexp2.Match) (pushback string)
}

type ruleScope int

const (
	anywhere    ruleScope = iota
	topOnly               // only outside list items
	topNotQuote           // only outside list items and blockquotes
)

func (scope ruleScope) admits(st lexState) bool {
	switch scope {
	case topOnly:
		return st.top
	case topNotQuote:
		return st.top && !st.quoted
	default:
		return true
	}
}

// inlineRule is a named pattern with its handler; a handler returns false to
// decline a match, passing on to the next rule.
type inlineRule struct {
	name string
	re   *regexp2.Regexp
	lex  func(sc *inlineScan, cap *regexp2.Match) bool
}

// block grammar sources

const (
	bulletSrc  = `(?:[*+-]|\d+\.)`
	newlineSrc = `^\n+`
	codeSrc    = `^( {4}[^\n]+\n*)+`
	fencesSrc  = "^ *(`{3,}|~{3,})[ .]*(\\S+)? *\\n([\\s\\S]*?)\\s*\\1 *(?:\\n+|\\z)"
	hrSrc      = `^( *[-*_]){3,} *(?:\n+|\z)`
	headingSrc = `^ *(#{1,6}) *([^\n]+?) *#* *(?:\n+|\z)`
	gfmHeadSrc = `^ *(#{1,6}) +([^\n]+?) *#* *(?:\n+|\z)`
	lheadSrc   = `^([^\n]+)\n *(=|-){2,} *(?:\n+|\z)`
	defSrc     = `^ *\[([^\]]+)\]: *<?([^\s>]+)>?(?: +["(]([^\n]+)[")])? *(?:\n+|\z)`
	npTableSrc = `^ *(\S.*\|.*)\n *([-:]+ *\|[-| :]*)\n((?:.*\|.*(?:\n|\z))*)\n*`
	tableSrc   = `^ *\|(.+)\n *\|( *[-:]+[-| :]*)\n((?: *\|.*(?:\n|\z))*)\n*`
	textSrc    = `^[^\n]+`

	// element names that never start an html block
	blockTagSrc = `(?!(?:a|em|strong|small|s|cite|q|dfn|abbr|data|time|code` +
		`|var|samp|kbd|sub|sup|i|b|u|mark|ruby|rt|rp|bdi|bdo` +
		`|span|br|wbr|ins|del|img)\b)\w+(?!:/|[^\w\s@]*@)\b`
)

// unanchored strips the leading ^ of a source for embedding.
func unanchored(src string) string { return strings.TrimPrefix(src, "^") }

var (
	blockquoteSrc = `^( *>[^\n]+(\n(?!` + unanchored(defSrc) + `)[^\n]+)*\n*)+`

	listSrc = `^( *)(` + bulletSrc + `) [\s\S]+?(?:` +
		`\n+(?=\1?(?:[-*_] *){3,}(?:\n+|\z))` + `|` +
		`\n+(?=` + unanchored(defSrc) + `)` + `|` +
		`\n{2,}(?! )(?!\1` + bulletSrc + ` )\n*` + `|` +
		`(?<!\s)\s*\z|\z)`

	itemSrc = `(?m)^( *)(` + bulletSrc + `) [^\n]*(?:\n(?!\1` + bulletSrc + ` )[^\n]*)*`

	htmlSrc = `^ *(?:` +
		`<!--[\s\S]*?--> *(?:\n|\s*\z)` + `|` +
		`<(` + blockTagSrc + `)[\s\S]+?</\1> *(?:\n{2,}|\s*\z)` + `|` +
		`<` + blockTagSrc + `(?:"[^"]*"|'[^']*'|[^'">])*?> *(?:\n{2,}|\s*\z)` +
		`)`

	// lines that interrupt a paragraph
	paragraphStops = unanchored(hrSrc) + `|` +
		unanchored(headingSrc) + `|` +
		unanchored(lheadSrc) + `|` +
		unanchored(blockquoteSrc) + `|` +
		`<` + blockTagSrc + `|` +
		unanchored(defSrc)

	// GFM paragraphs are also interrupted by fences and lists; named groups
	// keep the backreferences independent of the enclosing numbering
	gfmParagraphStops = " *(?<pfence>`{3,}|~{3,})[ .]*(?:\\S+)? *\\n[\\s\\S]*?\\s*\\k<pfence> *(?:\\n+|\\z)" + `|` +
		`(?<plist> *)` + bulletSrc + ` [\s\S]+?(?:` +
		`\n+(?=\k<plist>?(?:[-*_] *){3,}(?:\n+|\z))` + `|` +
		`\n+(?=` + unanchored(defSrc) + `)` + `|` +
		`\n{2,}(?! )(?!\k<plist>` + bulletSrc + ` )\n*` + `|` +
		`(?<!\s)\s*\z|\z)` + `|` +
		paragraphStops

	paragraphSrc    = `^((?:[^\n]+\n?(?!` + paragraphStops + `))+)\n*`
	gfmParagraphSrc = `^((?:[^\n]+\n?(?!` + gfmParagraphStops + `))+)\n*`
)

// inline grammar sources

const (
	escapeSrc    = "^\\\\([\\\\`*{}\\[\\]()#+\\-.!_>])"
	gfmEscapeSrc = "^\\\\([\\\\`*{}\\[\\]()#+\\-.!_>~|])"
	autolinkSrc  = `^<([^ >]+(@|:/)[^ >]+)>`
	urlSrc       = `^(https?://[^\s<]+[^<.,:;"')\]\s])`
	tagSrc       = `^<!--[\s\S]*?-->|^</?\w+(?:"[^"]*"|'[^']*'|[^'">])*?>`
	insideSrc    = `(?:\[[^\]]*\]|\\[\[\]]|[^\[\]]|\](?=[^\[]*\]))*`
	hrefSrc      = `\s*<?([\s\S]*?)>?(?:\s+['"]([\s\S]*?)['"])?\s*`
	linkSrc      = `^!?\[(` + insideSrc + `)\]\(` + hrefSrc + `\)`
	refLinkSrc   = `^!?\[(` + insideSrc + `)\]\s*\[([^\]]*)\]`
	noLinkSrc    = `^!?\[((?:\[[^\]]*\]|[^\[\]])*)\]`
	delimSrc     = `^(?:\*+|_+)`
	codeSpanSrc  = "^`+"
	brSrc        = `^ {2,}\n(?!\s*\z)`
	breaksBrSrc  = `^ *\n(?!\s*\z)`
	delSrc       = `^~~(?=\S)([\s\S]*?\S)~~`
	inlineTxtSrc = "^[\\s\\S]+?(?=[\\\\<!\\[_*`]|(?<! ) {2,}\\n|\\z)"
	gfmTextSrc   = "^[\\s\\S]+?(?=[\\\\<!\\[_*`~]|https?://|(?<! ) {2,}\\n|\\z)"
	breaksTxtSrc = "^[\\s\\S]+?(?=[\\\\<!\\[_*`~]|https?://|(?<! ) *\\n|\\z)"
)

// matchTimeout bounds any single rule match; exceeding it is an internal fault.
const matchTimeout = 2 * time.Second

func mustCompile(src string) *regexp2.Regexp {
	re := regexp2.MustCompile(src, regexp2.None)
	re.MatchTimeout = matchTimeout
	return re
}

func blockRuleFor(name, src string, scope ruleScope, lex func(*BlockLexer, lexState, *regexp2.Match) string) blockRule {
	return blockRule{name: name, re: mustCompile(src), scope: scope, lex: lex}
}

func inlineRuleFor(name, src string, lex func(*inlineScan, *regexp2.Match) bool) inlineRule {
	return inlineRule{name: name, re: mustCompile(src), lex: lex}
}

var (
	newlineRule = blockRuleFor("newline", newlineSrc, anywhere, (*BlockLexer).lexNewline)
	codeRule    = blockRuleFor("code", codeSrc, anywhere, (*BlockLexer).lexCode)
	fencesRule  = blockRuleFor("fences", fencesSrc, anywhere, (*BlockLexer).lexFences)
	headingRule = blockRuleFor("heading", headingSrc, anywhere, (*BlockLexer).lexHeading)
	gfmHeadRule = blockRuleFor("heading", gfmHeadSrc, anywhere, (*BlockLexer).lexHeading)
	npTableRule = blockRuleFor("nptable", npTableSrc, topOnly, (*BlockLexer).lexNpTable)
	lheadRule   = blockRuleFor("lheading", lheadSrc, anywhere, (*BlockLexer).lexLHeading)
	hrRule      = blockRuleFor("hr", hrSrc, anywhere, (*BlockLexer).lexHr)
	quoteRule   = blockRuleFor("blockquote", blockquoteSrc, anywhere, (*BlockLexer).lexBlockquote)
	listRule    = blockRuleFor("list", listSrc, anywhere, (*BlockLexer).lexList)
	htmlRule    = blockRuleFor("html", htmlSrc, anywhere, (*BlockLexer).lexHTML)
	defRule     = blockRuleFor("def", defSrc, topNotQuote, (*BlockLexer).lexDef)
	tableRule   = blockRuleFor("table", tableSrc, topOnly, (*BlockLexer).lexTable)
	paraRule    = blockRuleFor("paragraph", paragraphSrc, topOnly, (*BlockLexer).lexParagraph)
	gfmParaRule = blockRuleFor("paragraph", gfmParagraphSrc, topOnly, (*BlockLexer).lexParagraph)
	textRule    = blockRuleFor("text", textSrc, anywhere, (*BlockLexer).lexText)

	normalBlock = []blockRule{
		newlineRule, codeRule, headingRule, lheadRule, hrRule, quoteRule,
		listRule, htmlRule, defRule, paraRule, textRule,
	}
	gfmBlock = []blockRule{
		newlineRule, codeRule, fencesRule, gfmHeadRule, lheadRule, hrRule,
		quoteRule, listRule, htmlRule, defRule, gfmParaRule, textRule,
	}
	gfmTablesBlock = []blockRule{
		newlineRule, codeRule, fencesRule, gfmHeadRule, npTableRule, lheadRule,
		hrRule, quoteRule, listRule, htmlRule, defRule, tableRule, gfmParaRule,
		textRule,
	}
)

var (
	escapeRule   = inlineRuleFor("escape", escapeSrc, (*inlineScan).lexEscape)
	gfmEscRule   = inlineRuleFor("escape", gfmEscapeSrc, (*inlineScan).lexEscape)
	autolinkRule = inlineRuleFor("autolink", autolinkSrc, (*inlineScan).lexAutolink)
	urlRule      = inlineRuleFor("url", urlSrc, (*inlineScan).lexURL)
	tagRule      = inlineRuleFor("tag", tagSrc, (*inlineScan).lexTag)
	linkRule     = inlineRuleFor("link", linkSrc, (*inlineScan).lexLink)
	refLinkRule  = inlineRuleFor("reflink", refLinkSrc, (*inlineScan).lexRefLink)
	noLinkRule   = inlineRuleFor("nolink", noLinkSrc, (*inlineScan).lexRefLink)
	delimRule    = inlineRuleFor("emphasis", delimSrc, (*inlineScan).lexDelims)
	codeSpanRule = inlineRuleFor("code", codeSpanSrc, (*inlineScan).lexCodeSpan)
	brRule       = inlineRuleFor("br", brSrc, (*inlineScan).lexBr)
	breaksBrRule = inlineRuleFor("br", breaksBrSrc, (*inlineScan).lexBr)
	delRule      = inlineRuleFor("del", delSrc, (*inlineScan).lexDel)
	textInRule   = inlineRuleFor("text", inlineTxtSrc, (*inlineScan).lexText)
	gfmTextRule  = inlineRuleFor("text", gfmTextSrc, (*inlineScan).lexText)
	breaksText   = inlineRuleFor("text", breaksTxtSrc, (*inlineScan).lexText)

	normalInline = []inlineRule{
		escapeRule, autolinkRule, tagRule, linkRule, refLinkRule, noLinkRule,
		delimRule, codeSpanRule, brRule, textInRule,
	}
	gfmInline = []inlineRule{
		gfmEscRule, autolinkRule, urlRule, tagRule, linkRule, refLinkRule,
		noLinkRule, delimRule, codeSpanRule, brRule, delRule,
		gfmTextRule,
	}
	breaksInline = []inlineRule{
		gfmEscRule, autolinkRule, urlRule, tagRule, linkRule, refLinkRule,
		noLinkRule, delimRule, codeSpanRule, breaksBrRule, delRule,
		breaksText,
	}
)

var (
	normalGrammar    = Grammar{Dialect: Normal, block: normalBlock, inline: normalInline}
	pedanticGrammar  = Grammar{Dialect: Pedantic, block: normalBlock, inline: normalInline}
	gfmGrammar       = Grammar{Dialect: GFM, block: gfmBlock, inline: gfmInline, breaks: breaksInline}
	gfmTablesGrammar = Grammar{Dialect: GFMTables, block: gfmTablesBlock, inline: gfmInline, breaks: breaksInline}
)
