package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func Test_compareEngines(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
	}{
		{"emphasis", "hello *world*\n"},
		{"heading ids", "# Title\n\nhello *world*\n"},
		{"list", "- one\n- two\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			results, err := compareEngines(tc.in, scandown.DefaultOptions())
			require.NoError(t, err)
			require.Len(t, results, 1+len(engines))
			assert.Equal(t, "scandown", results[0].engine)
			for _, r := range results[1:] {
				assert.True(t, r.same, "expected %v to agree, got %q vs %q", r.engine, results[0].out, r.out)
			}
		})
	}
}

func Test_writeComparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeComparison(&buf, []comparison{
		{engine: "scandown", out: "<p>a</p>", same: true, at: -1},
		{engine: "one", out: "<p>a</p>", same: true, at: -1},
		{engine: "other", out: "<p>b</p>", same: false, at: 3},
	}))
	assert.Equal(t,
		"one: same\n"+
			"other: differs at 3\n"+
			"  scandown: \"<p>a</p>\"\n"+
			"  other: \"<p>b</p>\"\n",
		buf.String())
}

func Test_normalizeHTML(t *testing.T) {
	out, err := normalizeHTML("<h1 id=\"x\">A</h1>\n\n<p>b</p>\n")
	require.NoError(t, err)
	assert.Equal(t, "<h1>A</h1><p>b</p>", out)
}

func Test_firstDifference(t *testing.T) {
	assert.Equal(t, -1, firstDifference("abc", "abc"))
	assert.Equal(t, 2, firstDifference("abc", "abd"))
	assert.Equal(t, 2, firstDifference("ab", "abc"))
	assert.Equal(t, 0, firstDifference("", "a"))
}

func Test_excerptAt(t *testing.T) {
	s := "0123456789012345678901234567890123456789012345678901234567890123456789"
	assert.Equal(t, s[:24], excerptAt(s, 0))
	assert.Equal(t, s[26:], excerptAt(s, 50))
	assert.Equal(t, "ab", excerptAt("ab", 5))
}
