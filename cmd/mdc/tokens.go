package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jcorbin/mdc/internal/cliui"
	"github.com/jcorbin/mdc/internal/cliutil"
	"github.com/jcorbin/mdc/scandown"
)

func init() {
	builtinServer("tokens", serveTokens, "print the block tokens of a document", `# Tokens

> {{ .Ctx.Command }} [FILE]

Prints the numbered block token stream of FILE, or standard input, followed by
its link reference definitions.
`)
}

func serveTokens(sess *session, req *cliui.Request, res *cliui.Response) error {
	name := "-"
	if req.ScanArg() {
		name = req.Arg()
	}
	src, err := sess.read(name)
	if err != nil {
		return err
	}
	tokens, refs, err := scandown.Lex(src, sess.opts)
	if err != nil {
		return fmt.Errorf("unable to lex %v: %w", name, err)
	}
	return writeTokens(res, tokens, refs)
}

// writeTokens writes one numbered line per token, indented by container
// depth, then one line per reference definition, in label order.
func writeTokens(w io.Writer, tokens []scandown.Token, refs scandown.Refs) error {
	depth := 0
	i := 0
	labels := make([]string, 0, len(refs))
	for label := range refs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return cliutil.WriteLines(w, func(w io.Writer, _ func()) bool {
		if i < len(tokens) {
			tok := tokens[i]
			i++
			if tok.Type.IsEnd() && depth > 0 {
				depth--
			}
			fmt.Fprintf(w, "%v. %*s%+v\n", i, 2*depth, "", tok)
			if tok.Type.IsStart() {
				depth++
			}
			return true
		}
		if j := i - len(tokens); j < len(labels) {
			i++
			ref := refs[labels[j]]
			if ref.Title != "" {
				fmt.Fprintf(w, "[%v]: %v %q\n", labels[j], ref.Href, ref.Title)
			} else {
				fmt.Fprintf(w, "[%v]: %v\n", labels[j], ref.Href)
			}
			return true
		}
		return false
	})
}
