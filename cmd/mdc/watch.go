package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/jcorbin/mdc/internal/cliui"
)

func init() {
	builtinServer("watch", serveWatch, "re-render a document whenever it changes", `# Watch

> {{ .Ctx.Command }} FILE

Renders FILE to the -o file, or to FILE with an .html extension, and renders
it again whenever FILE changes, until interrupted.
`)
}

func serveWatch(sess *session, req *cliui.Request, res *cliui.Response) error {
	if !req.ScanArg() {
		return errors.New("watch requires a FILE argument")
	}
	name := req.Arg()

	dest := sess.output
	if dest == nil {
		dest = fileStore(htmlName(name))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return sess.watch(ctx, name, dest, nil)
}

// htmlName replaces the extension of name with .html.
func htmlName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".html"
}

// watch renders name to dest, and again after every change to name, until
// ctx is done; rendered, if not nil, is called after every render attempt.
// Render failures are logged rather than ending the watch.
func (sess *session) watch(ctx context.Context, name string, dest store, rendered func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// editors often replace files rather than write them, which only the
	// containing directory sees
	if err := w.Add(filepath.Dir(name)); err != nil {
		return err
	}

	render := func() {
		err := sess.renderTo(name, dest)
		if err != nil {
			log.Printf("unable to render %v: %v", name, err)
		} else {
			sess.logf("rendered %v", name)
		}
		if rendered != nil {
			rendered(err)
		}
	}
	render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if watchRelevant(ev, name) {
				render()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

// watchRelevant reports whether ev may have changed the content of name.
func watchRelevant(ev fsnotify.Event, name string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(name) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (sess *session) renderTo(name string, dest store) error {
	src, err := sess.read(name)
	if err != nil {
		return err
	}
	out, err := sess.compile(src)
	if err != nil {
		return err
	}
	return writeStore(dest, out)
}
