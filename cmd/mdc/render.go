package main

import (
	"fmt"
	"strings"

	"github.com/jcorbin/mdc/internal/cliui"
)

func init() {
	builtinServer("render", serveRender, "render markdown documents to HTML", `# Render

> {{ .Ctx.Command }} [FILE...]

Compiles each FILE, or standard input if none are given, and writes the
concatenated output to standard output, or to the -o file, which is replaced
atomically. With -text, renders plain text instead of HTML.
`)
}

func serveRender(sess *session, req *cliui.Request, res *cliui.Response) error {
	var out strings.Builder
	for _, name := range sourceNames(req.Args()) {
		src, err := sess.read(name)
		if err != nil {
			return err
		}
		html, err := sess.compile(src)
		if err != nil {
			return fmt.Errorf("unable to render %v: %w", name, err)
		}
		out.WriteString(html)
		sess.logf("rendered %v (%v bytes)", name, len(html))
	}
	return sess.emit(res, out.String())
}
