package cliutil_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/mdc/internal/cliutil"
)

func TestQuotedArgs(t *testing.T) {
	for _, tc := range []struct {
		args []string
		out  string
	}{
		{nil, ""},
		{[]string{"render"}, "render"},
		{[]string{"render", "a.md", "b.md"}, "render a.md b.md"},
		{[]string{"render", "my notes.md"}, `render "my notes.md"`},
		{[]string{"say", `it's`}, `say "it's"`},
		{[]string{"empty", ""}, `empty ""`},
	} {
		assert.Equal(t, tc.out, string(cliutil.QuotedArgs(tc.args)), "QuotedArgs(%q)", tc.args)
	}
}

func TestScanArgs(t *testing.T) {
	for _, tc := range []struct {
		in   string
		args []string
	}{
		{"", nil},
		{"   ", nil},
		{"render", []string{"render"}},
		{"  render   a.md ", []string{"render", "a.md"}},
		{`render "my notes.md" b.md`, []string{"render", "my notes.md", "b.md"}},
		{`say 'single quoted'`, []string{"say", "single quoted"}},
		{`say "escaped \" quote"`, []string{"say", `escaped " quote`}},
		{`unterminated "quote`, []string{"unterminated", "quote"}},
	} {
		sc := bufio.NewScanner(strings.NewReader(tc.in))
		sc.Split(cliutil.ScanArgs)
		var args []string
		for sc.Scan() {
			args = append(args, cliutil.UnquoteArg(sc.Text()))
		}
		if assert.NoError(t, sc.Err()) {
			assert.Equal(t, tc.args, args, "scanning %q", tc.in)
		}
	}
}

func TestQuotedArgs_roundTrip(t *testing.T) {
	args := []string{"compare", "a b.md", `"quoted"`, "tab\there", ""}
	sc := bufio.NewScanner(strings.NewReader(string(cliutil.QuotedArgs(args))))
	sc.Split(cliutil.ScanArgs)
	var back []string
	for sc.Scan() {
		back = append(back, cliutil.UnquoteArg(sc.Text()))
	}
	assert.Equal(t, args, back)
}
