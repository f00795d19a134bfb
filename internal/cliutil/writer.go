package cliutil

import (
	"bytes"
	"io"
)

// WriteBuffer combines a byte buffer with a destination writer and flush
// policy. Example use:
//
// 	var buf WriteBuffer
// 	buf.To = os.Stdout
// 	for _, tok := range tokens {
// 		fmt.Fprintln(&buf, tok)
// 		if err := buf.MaybeFlush(); err != nil {
// 			return err
// 		}
// 	}
// 	return buf.Flush()
//
// NOTE: the flush methods may be typically deferred when a function scope is available.
type WriteBuffer struct {
	FlushPolicy
	To io.Writer
	bytes.Buffer
}

// FlushPolicy determines when a WriteBuffer should flush during its main write
// phase.
type FlushPolicy interface {
	ShouldFlush(b []byte) int
}

// FlushPolicyFunc is a convenience adaptor for FlushPolicy around a compatible
// anonymous function.
type FlushPolicyFunc func(b []byte) int

// ShouldFlush calls the receiver function pointer.
func (f FlushPolicyFunc) ShouldFlush(b []byte) int { return f(b) }

// Flush writes all buffered bytes, regardless of the FlushPolicy.
// Should be called after the main write phase.
func (buf *WriteBuffer) Flush() error {
	if buf.To == nil {
		buf.Reset()
		return nil
	}
	_, err := buf.WriteTo(buf.To)
	return err
}

// MaybeFlush writes N bytes into To if FlushPolicy returns N > 0.
// The M bytes written are then discarded from the receiver buffer.
// If FlushPolicy is nil, it will be set to FlushLineChunks.
func (buf *WriteBuffer) MaybeFlush() error {
	if buf.FlushPolicy == nil {
		buf.FlushPolicy = FlushPolicyFunc(FlushLineChunks)
	}
	if buf.To == nil {
		return nil
	}
	b := buf.Bytes()
	if n := buf.ShouldFlush(b); n > 0 {
		m, err := buf.To.Write(b[:n])
		buf.Next(m)
		return err
	}
	return nil
}

// FlushLineChunks is a FlushPolicy(Func) that flushes as large a chunk as
// possible, through the last written newline byte.
func FlushLineChunks(b []byte) int {
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// ErrWriter wraps a writer, tracking its last error, and preventing further
// writes after a non-nil one.
type ErrWriter struct {
	io.Writer
	Err error
}

// Write passes through to Writer if Err is nil, retaining any returned error.
func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// Prefixer prepends Prefix before every line written through it.
// Lines are buffered until complete; Close flushes any partial final line.
type Prefixer struct {
	Prefix string

	// Skip suppresses the prefix of the next line only, useful when its
	// start has already been written, e.g. a list item number.
	Skip bool

	buf    WriteBuffer
	inLine bool
}

// PrefixWriter returns a writer that prepends the given string before every
// line written through it.
// The caller SHOULD close it if they care to flush any partial final line.
func PrefixWriter(prefix string, w io.Writer) *Prefixer {
	p := &Prefixer{Prefix: prefix}
	p.buf.To = w
	return p
}

// Close flushes any buffered partial line.
func (p *Prefixer) Close() error { return p.buf.Flush() }

// Flush flushes any buffered partial line.
func (p *Prefixer) Flush() error { return p.buf.Flush() }

func (p *Prefixer) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		if !p.inLine {
			if p.Skip {
				p.Skip = false
			} else {
				p.buf.WriteString(p.Prefix)
			}
			p.inLine = true
		}
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line = b[:i+1]
			p.inLine = false
		}
		b = b[len(line):]
		m, _ := p.buf.Write(line)
		n += m
	}
	return n, p.buf.MaybeFlush()
}

// WriteLines calls next around an internal WriteBuffer, calling MaybeFlush
// after every true return, stopping on false return.
// Iteration also stops early if a write error is encountered.
func WriteLines(to io.Writer, next func(w io.Writer, flush func()) bool) error {
	ew, _ := to.(*ErrWriter)
	if ew == nil {
		ew = &ErrWriter{Writer: to}
	}
	var buf WriteBuffer
	buf.To = ew
	for ew.Err == nil && next(&buf, func() { buf.Flush() }) {
		buf.MaybeFlush()
	}
	buf.Flush()
	return ew.Err
}

// FlushWriter writes through to a WriteBuffer, calling MaybeFlush after every
// write.
type FlushWriter struct {
	*WriteBuffer
}

func (fw FlushWriter) Write(p []byte) (int, error) {
	n, _ := fw.WriteBuffer.Write(p)
	return n, fw.MaybeFlush()
}
