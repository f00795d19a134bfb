package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/renameio"
)

var (
	errStoreExists    = errors.New("document already exists")
	errStoreNotExists = errors.New("document does not exist")
	errBufferClosed   = errors.New("write to closed buffer")
)

// store holds a single document: a markdown source, or rendered output.
// Writers returned by create and update only take effect once closed; any
// writer not closed is discarded by Cleanup.
type store interface {
	open() (io.ReadCloser, error)
	create() (cleanupWriteCloser, error)
	update() (cleanupWriteCloser, error)
}

type cleanupWriteCloser interface {
	io.WriteCloser
	Cleanup() error
}

// replace opens st for writing, whether or not it exists yet.
func replace(st store) (cleanupWriteCloser, error) {
	w, err := st.update()
	if errors.Is(err, errStoreNotExists) {
		w, err = st.create()
	}
	return w, err
}

func readStore(st store) (_ string, rerr error) {
	rc, err := st.open()
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := rc.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	var sb strings.Builder
	if _, err := io.Copy(&sb, rc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeStore(st store, content string) (rerr error) {
	w, err := replace(st)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Cleanup(); rerr == nil {
			rerr = cerr
		}
	}()
	if _, err := io.WriteString(w, content); err != nil {
		return err
	}
	return w.Close()
}

type memStore struct {
	cur     string
	defined bool
}

func (ms *memStore) open() (io.ReadCloser, error) {
	if !ms.defined {
		return nil, errStoreNotExists
	}
	return io.NopCloser(strings.NewReader(ms.cur)), nil
}

func (ms *memStore) create() (cleanupWriteCloser, error) {
	if ms.defined {
		return nil, errStoreExists
	}
	return ms.pendBuf(ms.set), nil
}

func (ms *memStore) update() (cleanupWriteCloser, error) {
	if !ms.defined {
		return nil, errStoreNotExists
	}
	return ms.pendBuf(ms.set), nil
}

func (ms *memStore) pendBuf(sink func(string) error) *pendingBuffer {
	const minSize = 1024
	pb := &pendingBuffer{sink: sink}
	if n := len(ms.cur); n > minSize {
		pb.buf.Grow(n)
	} else {
		pb.buf.Grow(minSize)
	}
	return pb
}

func (ms *memStore) set(content string) error {
	ms.cur = content
	ms.defined = true
	return nil
}

// memStores maps document names to in-memory stores, creating them on
// demand.
type memStores map[string]*memStore

func (mss memStores) store(name string) store {
	ms := mss[name]
	if ms == nil {
		ms = &memStore{}
		mss[name] = ms
	}
	return ms
}

type pendingBuffer struct {
	buf    bytes.Buffer
	closed bool
	sink   func(string) error
}

func (pb *pendingBuffer) Write(p []byte) (int, error) {
	if pb.closed {
		return 0, errBufferClosed
	}
	return pb.buf.Write(p)
}

func (pb *pendingBuffer) WriteString(s string) (int, error) {
	if pb.closed {
		return 0, errBufferClosed
	}
	return pb.buf.WriteString(s)
}

func (pb *pendingBuffer) Close() error {
	if !pb.closed {
		pb.closed = true
		return pb.sink(pb.buf.String())
	}
	return nil
}

func (pb *pendingBuffer) Cleanup() error {
	if !pb.closed {
		// discarded
		pb.closed = true
	}
	return nil
}

// fsStore is a document file; writes go to a temporary file that atomically
// replaces the document when closed.
type fsStore struct {
	filename string
}

func fileStore(name string) store { return fsStore{filename: name} }

func (fst fsStore) exists() (bool, error) {
	_, err := os.Stat(fst.filename)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (fst fsStore) open() (io.ReadCloser, error) {
	f, err := os.Open(fst.filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%v: %w", fst.filename, errStoreNotExists)
	}
	return f, err
}

func (fst fsStore) create() (cleanupWriteCloser, error) {
	if exists, err := fst.exists(); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%v: %w", fst.filename, errStoreExists)
	}
	return fst.pend()
}

func (fst fsStore) update() (cleanupWriteCloser, error) {
	if exists, err := fst.exists(); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("%v: %w", fst.filename, errStoreNotExists)
	}
	return fst.pend()
}

func (fst fsStore) pend() (cleanupWriteCloser, error) {
	pf, err := renameio.TempFile("", fst.filename)
	if err != nil {
		return nil, err
	}
	if err := pf.Chmod(0o644); err != nil {
		pf.Cleanup()
		return nil, err
	}
	return &pendingFile{PendingFile: pf}, nil
}

type pendingFile struct {
	*renameio.PendingFile
	done bool
}

func (pf *pendingFile) Close() error {
	if pf.done {
		return nil
	}
	err := pf.CloseAtomicallyReplace()
	pf.done = err == nil
	return err
}

func (pf *pendingFile) Cleanup() error {
	if pf.done {
		return nil
	}
	pf.done = true
	return pf.PendingFile.Cleanup()
}
