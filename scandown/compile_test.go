package scandown_test

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func TestCompile(t *testing.T) {
	gfm := scandown.DefaultOptions()
	breaks := scandown.DefaultOptions()
	breaks.Breaks = true
	xhtml := scandown.DefaultOptions()
	xhtml.XHTML = true
	prefixed := scandown.DefaultOptions()
	prefixed.HeaderPrefix = "doc-"
	normal := scandown.Options{}

	for _, tc := range []struct {
		name string
		opts scandown.Options
		in   string
		out  string
	}{
		{"empty", gfm, "", ""},
		{"heading", gfm, "# Title", "<h1 id=\"title\">Title</h1>\n"},
		{"heading prefix", prefixed, "## Sub", "<h2 id=\"doc-sub\">Sub</h2>\n"},
		{"strong", gfm, "**a**", "<p><strong>a</strong></p>\n"},
		{"em", gfm, "*a*", "<p><em>a</em></p>\n"},
		{"link", gfm, "[x](http://y)", "<p><a href=\"http://y\">x</a></p>\n"},
		{"tight list", gfm, "- a\n- b", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"},
		{"loose list", gfm, "- a\n\n- b", "<ul>\n<li><p>a</p>\n</li>\n<li><p>b</p>\n</li>\n</ul>\n"},
		{"unresolved reference", gfm, "[foo][bar]", "<p>[foo][bar]</p>\n"},
		{"resolved reference", gfm, "[foo][bar]\n\n[bar]: /b", "<p><a href=\"/b\">foo</a></p>\n"},
		{
			"table alignment", gfm, "a|b\n:--|--:\n1|2",
			"<table>\n<thead>\n<tr>\n" +
				"<th style=\"text-align:left\">a</th>\n" +
				"<th style=\"text-align:right\">b</th>\n" +
				"</tr>\n</thead>\n<tbody>\n<tr>\n" +
				"<td style=\"text-align:left\">1</td>\n" +
				"<td style=\"text-align:right\">2</td>\n" +
				"</tr>\n</tbody>\n</table>\n",
		},
		{"no tables without the extension", normal, "a|b\n:--|--:\n1|2", "<p>a|b\n:--|--:\n1|2</p>\n"},
		{"fenced code", gfm, "```go\nx := 1\n```", "<pre><code class=\"lang-go\">x := 1\n</code></pre>\n"},
		{"no fences without gfm", normal, "~~~\nx\n~~~", "<p>~~~\nx\n~~~</p>\n"},
		{"soft break", gfm, "a\nb", "<p>a\nb</p>\n"},
		{"breaks", breaks, "a\nb", "<p>a<br>b</p>\n"},
		{"xhtml", xhtml, "a  \nb\n\n---", "<p>a<br/>b</p>\n<hr/>\n"},
		{"blockquote", gfm, "> *q*", "<blockquote>\n<p><em>q</em></p>\n</blockquote>\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := scandown.Compile(tc.in, tc.opts)
			require.NoError(t, err, "unexpected compile error")
			assert.Equal(t, tc.out, out, "expected output")
		})
	}
}

func TestCompile_sanitize(t *testing.T) {
	opts := scandown.DefaultOptions()
	opts.Sanitize = true
	for _, src := range []string{
		"[x](javascript:alert(1))",
		"[x](JAVASCRIPT:alert(1))",
		"[x](&#106;avascript:alert(1))",
		"<a href=\"javascript:alert(1)\">x</a>",
		"<script>javascript:alert(1)</script>\n",
	} {
		out, err := scandown.Compile(src, opts)
		require.NoError(t, err, "Compile(%q)", src)
		assert.NotContains(t, strings.ToLower(out), "href=\"javascript", "Compile(%q)", src)
		assert.NotContains(t, out, "<a ", "Compile(%q)", src)
		assert.NotContains(t, out, "<script", "Compile(%q)", src)
	}
}

func TestCompile_deepNesting(t *testing.T) {
	for _, src := range []string{
		strings.Repeat(">", 5000) + " a",
		strings.Repeat("* ", 2000) + "a",
		strings.Repeat("*", 500) + "a" + strings.Repeat("*", 500),
		strings.Repeat("_a ", 1000),
	} {
		_, err := scandown.Compile(src, scandown.DefaultOptions())
		assert.NoError(t, err, "expected deep nesting to degrade rather than fail")
	}
}

func TestCompile_deepList(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 160; i++ {
		sb.WriteString(strings.Repeat("  ", i))
		sb.WriteString("- item\n")
	}
	start := time.Now()
	out, err := scandown.Compile(sb.String(), scandown.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "<li>item")
	assert.Less(t, time.Since(start), 10*time.Second, "expected deep lists to compile in bounded time")
}

func TestCompile_textRenderer(t *testing.T) {
	opts := scandown.DefaultOptions()
	opts.Renderer = scandown.TextRenderer{}
	out, err := scandown.Compile("# T\n\nsome *em* text with [a link](/x)", opts)
	require.NoError(t, err)
	assert.Equal(t, "T\n\nsome em text with a link\n\n", out)
}

func TestCompile_properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("plain words render as a paragraph", prop.ForAll(
		func(s string) bool {
			out, err := scandown.Compile(s, scandown.DefaultOptions())
			return err == nil && out == "<p>"+s+"</p>\n"
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.Property("any input compiles", prop.ForAll(
		func(s string) bool {
			_, err := scandown.Compile(s, scandown.DefaultOptions())
			return err == nil
		},
		gen.AnyString(),
	))

	properties.Property("headings carry a slug id", prop.ForAll(
		func(s string) bool {
			out, err := scandown.Compile("# "+s, scandown.DefaultOptions())
			want := "<h1 id=\"" + scandown.Slug(s) + "\">" + s + "</h1>\n"
			return err == nil && out == want
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}
