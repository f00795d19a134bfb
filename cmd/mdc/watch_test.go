package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func Test_htmlName(t *testing.T) {
	assert.Equal(t, "doc.html", htmlName("doc.md"))
	assert.Equal(t, "dir/doc.html", htmlName("dir/doc"))
	assert.Equal(t, "a.b.html", htmlName("a.b.markdown"))
}

func Test_watchRelevant(t *testing.T) {
	for _, tc := range []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: "dir/doc.md", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "dir/doc.md", Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: "dir/doc.md", Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: "dir/doc.md", Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: "dir/doc.md", Op: fsnotify.Remove}, false},
		{"unclean name", fsnotify.Event{Name: "dir//doc.md", Op: fsnotify.Write}, true},
		{"other file", fsnotify.Event{Name: "dir/doc.html", Op: fsnotify.Write}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, watchRelevant(tc.ev, "dir/doc.md"))
		})
	}
}

func Test_session_watch(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.md")
	dest := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(name, []byte("# One\n"), 0o644))

	sess := session{
		opts:   scandown.DefaultOptions(),
		source: fileStore,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rendered := make(chan error, 64)
	done := make(chan error, 1)
	go func() {
		done <- sess.watch(ctx, name, fileStore(dest), func(err error) {
			select {
			case rendered <- err:
			default:
			}
		})
	}()

	select {
	case err := <-rendered:
		require.NoError(t, err, "initial render")
	case <-time.After(10 * time.Second):
		require.FailNow(t, "timed out waiting for initial render")
	}
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<h1 id=\"one\">One</h1>\n", string(b))

	require.NoError(t, os.WriteFile(name, []byte("# Two\n"), 0o644))
	assert.Eventually(t, func() bool {
		b, err := os.ReadFile(dest)
		return err == nil && string(b) == "<h1 id=\"two\">Two</h1>\n"
	}, 10*time.Second, 20*time.Millisecond, "expected re-render after write")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		assert.Fail(t, "timed out waiting for watch to stop")
	}
}
