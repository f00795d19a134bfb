package scandown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func TestParser(t *testing.T) {
	gfm := scandown.DefaultOptions()
	pedantic := scandown.Options{Pedantic: true}

	for _, tc := range []struct {
		name   string
		opts   scandown.Options
		tokens []scandown.Token
		refs   scandown.Refs
		out    string
	}{
		{
			name: "empty",
			opts: gfm,
		},
		{
			name: "space",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.Space},
			},
		},
		{
			name: "tight item merges text",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.ListStart},
				{Type: scandown.ListItemStart},
				{Type: scandown.Text, Text: "a"},
				{Type: scandown.Text, Text: "*b*"},
				{Type: scandown.ListItemEnd},
				{Type: scandown.ListEnd},
			},
			out: "<ul>\n<li>a\n<em>b</em></li>\n</ul>\n",
		},
		{
			name: "loose item paragraphs",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.ListStart, Ordered: true},
				{Type: scandown.ListItemStart, Loose: true},
				{Type: scandown.Text, Text: "a"},
				{Type: scandown.Space},
				{Type: scandown.Text, Text: "b"},
				{Type: scandown.ListItemEnd},
				{Type: scandown.ListEnd},
			},
			out: "<ol>\n<li><p>a</p>\n<p>b</p>\n</li>\n</ol>\n",
		},
		{
			name: "blockquote",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.BlockquoteStart},
				{Type: scandown.Paragraph, Text: "q"},
				{Type: scandown.BlockquoteEnd},
			},
			out: "<blockquote>\n<p>q</p>\n</blockquote>\n",
		},
		{
			name: "html is inline processed",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.HTML, Text: "<div>*x*</div>\n"},
			},
			out: "<div><em>x</em></div>\n",
		},
		{
			name: "pre html is verbatim",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.HTML, Pre: true, Text: "<pre>*x*</pre>\n"},
			},
			out: "<pre>*x*</pre>\n",
		},
		{
			name: "pedantic html is verbatim",
			opts: pedantic,
			tokens: []scandown.Token{
				{Type: scandown.HTML, Text: "<div>*x*</div>\n"},
			},
			out: "<div>*x*</div>\n",
		},
		{
			name: "heading",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.Heading, Depth: 3, Text: "Some *thing*"},
			},
			out: "<h3 id=\"some-thing-\">Some <em>thing</em></h3>\n",
		},
		{
			name: "reference",
			opts: gfm,
			tokens: []scandown.Token{
				{Type: scandown.Paragraph, Text: "[x]"},
			},
			refs: scandown.Refs{"x": {Href: "/x"}},
			out:  "<p><a href=\"/x\">x</a></p>\n",
		},
		{
			name: "ragged table",
			opts: gfm,
			tokens: []scandown.Token{
				{
					Type:   scandown.Table,
					Header: []string{"a"},
					Cells:  [][]string{{"1", "2"}},
				},
			},
			out: "<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n" +
				"<tbody>\n<tr>\n<td>1</td>\n<td>2</td>\n</tr>\n</tbody>\n</table>\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := scandown.NewParser(tc.opts)
			require.NoError(t, err)
			out, err := p.Parse(tc.tokens, tc.refs)
			require.NoError(t, err)
			assert.Equal(t, tc.out, out)
		})
	}
}

func TestParser_faults(t *testing.T) {
	for _, tc := range []struct {
		name   string
		tokens []scandown.Token
	}{
		{"unterminated list", []scandown.Token{
			{Type: scandown.ListStart},
		}},
		{"unterminated item", []scandown.Token{
			{Type: scandown.ListStart},
			{Type: scandown.ListItemStart},
			{Type: scandown.Text, Text: "a"},
		}},
		{"stray end", []scandown.Token{
			{Type: scandown.BlockquoteEnd},
		}},
		{"mismatched end", []scandown.Token{
			{Type: scandown.BlockquoteStart},
			{Type: scandown.ListEnd},
		}},
		{"invalid type", []scandown.Token{
			{Type: scandown.TokenType(99)},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := scandown.NewParser(scandown.DefaultOptions())
			require.NoError(t, err)
			_, err = p.Parse(tc.tokens, nil)
			require.Error(t, err, "expected an internal fault")
			assert.True(t, scandown.IsInternalFault(err), "expected an internal fault, got %v", err)
		})
	}
}
