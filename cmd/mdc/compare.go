package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dlclark/regexp2"
	"github.com/russross/blackfriday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/jcorbin/mdc/internal/cliui"
	"github.com/jcorbin/mdc/scandown"
)

func init() {
	builtinServer("compare", serveCompare, "compare output against other markdown engines", `# Compare

> {{ .Ctx.Command }} [FILE]

Renders FILE, or standard input, with scandown, blackfriday and goldmark, and
reports whether the other engines agree with scandown. Outputs are compared
after dropping heading ids and whitespace between tags, since each engine
derives ids its own way. Engines implement different markdown variants, so
disagreement is expected on edge cases.
`)
}

func serveCompare(sess *session, req *cliui.Request, res *cliui.Response) error {
	name := "-"
	if req.ScanArg() {
		name = req.Arg()
	}
	src, err := sess.read(name)
	if err != nil {
		return err
	}
	results, err := compareEngines(src, sess.opts)
	if err != nil {
		return err
	}
	return writeComparison(res, results)
}

// engine is another markdown implementation to compare with.
type engine struct {
	name   string
	render func(src []byte, opts scandown.Options) ([]byte, error)
}

var engines = []engine{
	{"blackfriday", renderBlackfriday},
	{"goldmark", renderGoldmark},
}

func renderBlackfriday(src []byte, opts scandown.Options) ([]byte, error) {
	exts := blackfriday.NoExtensions
	if opts.GFM {
		exts |= blackfriday.FencedCode | blackfriday.Autolink | blackfriday.Strikethrough
	}
	if opts.Tables {
		exts |= blackfriday.Tables
	}
	if opts.Breaks {
		exts |= blackfriday.HardLineBreak
	}

	flags := blackfriday.HTMLFlagsNone
	if opts.XHTML {
		flags |= blackfriday.UseXHTML
	}
	if opts.Sanitize {
		flags |= blackfriday.SkipHTML | blackfriday.Safelink
	}
	if opts.SmartyPants {
		flags |= blackfriday.Smartypants | blackfriday.SmartypantsDashes
	}

	return blackfriday.Run(src,
		blackfriday.WithExtensions(exts),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: flags,
		})),
	), nil
}

func renderGoldmark(src []byte, opts scandown.Options) ([]byte, error) {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.Strikethrough, extension.Linkify)
	}
	if opts.Tables {
		exts = append(exts, extension.Table)
	}
	if opts.SmartyPants {
		exts = append(exts, extension.Typographer)
	}

	var rendererOptions []renderer.Option
	if !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	if opts.Breaks {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.XHTML {
		rendererOptions = append(rendererOptions, html.WithXHTML())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("goldmark: %w", err)
	}
	return buf.Bytes(), nil
}

type comparison struct {
	engine string
	out    string
	same   bool
	at     int // offset of the first difference in normalized output
}

// compareEngines renders src with scandown, then every other engine; the
// first result is always scandown's.
func compareEngines(src string, opts scandown.Options) ([]comparison, error) {
	out, err := scandown.Compile(src, opts)
	if err != nil {
		return nil, err
	}
	base, err := normalizeHTML(out)
	if err != nil {
		return nil, err
	}
	results := []comparison{{engine: "scandown", out: base, same: true, at: -1}}
	for _, eng := range engines {
		b, err := eng.render([]byte(src), opts)
		if err != nil {
			return nil, err
		}
		other, err := normalizeHTML(string(b))
		if err != nil {
			return nil, err
		}
		at := firstDifference(base, other)
		results = append(results, comparison{
			engine: eng.name,
			out:    other,
			same:   at < 0,
			at:     at,
		})
	}
	return results, nil
}

var (
	headingIDPattern = regexp2.MustCompile(`(<h[1-6])\s+id="[^"]*"`, regexp2.None)
	interTagSpace    = regexp2.MustCompile(`>\s+<`, regexp2.None)
)

func normalizeHTML(s string) (string, error) {
	s, err := headingIDPattern.Replace(s, "$1", -1, -1)
	if err != nil {
		return "", err
	}
	s, err = interTagSpace.Replace(s, "><", -1, -1)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace([]byte(s))), nil
}

func firstDifference(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func writeComparison(w io.Writer, results []comparison) error {
	base := results[0]
	for _, r := range results[1:] {
		var err error
		if r.same {
			_, err = fmt.Fprintf(w, "%v: same\n", r.engine)
		} else {
			_, err = fmt.Fprintf(w, "%v: differs at %v\n  %v: %q\n  %v: %q\n",
				r.engine, r.at,
				base.engine, excerptAt(base.out, r.at),
				r.engine, excerptAt(r.out, r.at))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func excerptAt(s string, at int) string {
	const context = 24
	start, end := at-context, at+context
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		start = end
	}
	return s[start:end]
}
