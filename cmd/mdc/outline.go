package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/mdc/internal/cliui"
	"github.com/jcorbin/mdc/scandown"
)

func init() {
	builtinServer("outline", serveOutline, "print the heading outline of a document", `# Outline

> {{ .Ctx.Command }} [FILE]

Prints the headings of FILE, or standard input, as a nested list of titles
with their anchor ids. Headings within blockquotes and lists are not part of
the outline. Ids used by more than one heading are marked as duplicates.
`)
}

func serveOutline(sess *session, req *cliui.Request, res *cliui.Response) error {
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
	var out outline
	if err := out.build(tokens, refs, sess.opts); err != nil {
		return err
	}
	return out.writeTo(res)
}

// outline is the document tree defined by top level headings.
//
// A heading's level within the outline is the number of enclosing headings
// of lesser depth, rather than its depth, so skipped depths do not deepen
// the tree:
//
// 	# Title
// 	### Section
// 	## Another Section
//
// outlines as:
//
// 	- Title (#title)
// 	  - Section (#section)
// 	  - Another Section (#another-section)
type outline struct {
	items []outlineItem
	open  []int // depths of the enclosing headings
}

type outlineItem struct {
	level int
	title string
	id    string
	dup   bool
}

func (out *outline) build(tokens []scandown.Token, refs scandown.Refs, opts scandown.Options) error {
	titles, err := scandown.NewInlineLexer(refs, opts, scandown.TextRenderer{})
	if err != nil {
		return err
	}
	seen := make(map[string]int)
	nested := 0
	for _, tok := range tokens {
		switch {
		case tok.Type.IsStart():
			nested++
		case tok.Type.IsEnd():
			nested--
		case tok.Type == scandown.Heading && nested == 0:
			title, err := titles.Output(tok.Text)
			if err != nil {
				return err
			}
			id := opts.HeaderPrefix + scandown.Slug(tok.Text)
			item := outlineItem{
				level: out.enter(tok.Depth),
				title: title,
				id:    id,
			}
			if i, dup := seen[id]; dup {
				item.dup = true
				out.items[i].dup = true
			} else {
				seen[id] = len(out.items)
			}
			out.items = append(out.items, item)
		}
	}
	return nil
}

// enter closes any open headings at least as deep as depth, opens it, and
// returns its outline level.
func (out *outline) enter(depth int) int {
	i := len(out.open)
	for i > 0 && out.open[i-1] >= depth {
		i--
	}
	out.open = append(out.open[:i], depth)
	return i
}

func (out outline) writeTo(w io.Writer) error {
	for _, item := range out.items {
		var dup string
		if item.dup {
			dup = " duplicate"
		}
		if _, err := fmt.Fprintf(w, "%s- %s (#%s%s)\n",
			strings.Repeat("  ", item.level), item.title, item.id, dup,
		); err != nil {
			return err
		}
	}
	return nil
}
