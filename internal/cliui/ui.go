/* Package cliui implements a small request/response paradigm for command line
tools.

A Request carries free form user request text, split into line delimited
commands with space delimited (maybe quoted) args within, along with the time
of the request and an input stream. The initial use case is adapting CLI args
into a single command; the same handlers may serve commands read from any
other source of text.

A Handler writes its answer into a buffered Response, which is flushed to the
real destination once the handler returns.
*/
package cliui

import (
	"bufio"
	"bytes"
	"flag"
	"io"
	"os"
	"time"

	"github.com/jcorbin/mdc/internal/cliutil"
)

// Handler is the interface implemented by pieces of user request handling
// logic.
type Handler interface {
	ServeUser(req *Request, resp *Response) error
}

// HandlerFunc is a functional adaptor for Handler.
type HandlerFunc func(req *Request, resp *Response) error

// ServeUser calls the receiver function pointer.
func (f HandlerFunc) ServeUser(req *Request, resp *Response) error { return f(req, resp) }

// Request represents a user request being handled, providing error tracking,
// the time of request, an input stream, and command tokenization.
type Request struct {
	err   error
	now   time.Time
	input io.Reader
	body  io.Reader
	cmd   *bufio.Scanner
	arg   *bufio.Scanner
}

// Response represents a response being written by a Handler.
type Response struct {
	cliutil.WriteBuffer
}

// CLIRequest builds an ArgsRequest from the current time and OS-provided args,
// reading input from os.Stdin.
// Uses flag.Args() if flags have been parsed.
func CLIRequest() Request {
	args := os.Args[1:]
	if flag.Parsed() {
		args = flag.Args()
	}
	return ArgsRequest(time.Now(), args).WithInput(os.Stdin)
}

// ArgsRequest builds a Request from a given time and argument strings.
func ArgsRequest(now time.Time, args []string) Request {
	return TextRequest(now, bytes.NewReader(cliutil.QuotedArgs(args)))
}

// TextRequest builds a Request from a given time and line delimited command
// text.
func TextRequest(now time.Time, body io.Reader) Request {
	var req Request
	req.now = now
	req.body = body
	return req
}

// WithInput returns a copy of the receiver request that reads its input from
// r.
func (req Request) WithInput(r io.Reader) Request {
	req.input = r
	return req
}

// Serve runs the given handler with the receiver request and a new Response
// writing to the given writer.
// Returns any handler, request, or response error (in that order of precedence).
func (req Request) Serve(w io.Writer, handler Handler) (rerr error) {
	if err := req.err; err != nil {
		return err
	}
	defer func() {
		if rerr == nil {
			rerr = req.err
		}
	}()
	var resp Response
	resp.To = w
	defer func() {
		if ferr := resp.Flush(); rerr == nil {
			rerr = ferr
		}
	}()
	return handler.ServeUser(&req, &resp)
}

// Err returns any request scan error encountered.
func (req Request) Err() error { return req.err }

// Now returns the time user submitted the request.
func (req Request) Now() time.Time { return req.now }

// Input returns the request input stream, or an empty reader if none was
// given.
func (req Request) Input() io.Reader {
	if req.input == nil {
		return bytes.NewReader(nil)
	}
	return req.input
}

// Scan scans the next user command from the body stream, preparing ScanArg state.
func (req *Request) Scan() bool {
	if req.err != nil || req.body == nil {
		return false
	}
	if req.cmd == nil {
		req.cmd = bufio.NewScanner(req.body)
		req.cmd.Split(bufio.ScanLines)
	}
	req.arg = nil
	if req.cmd.Scan() {
		return true
	}
	req.err = req.cmd.Err()
	return false
}

// ScanArg scans the next argument within the current user command scanned from body.
func (req *Request) ScanArg() bool {
	if req.err != nil {
		return false
	}
	if req.arg == nil {
		if req.cmd == nil && !req.Scan() {
			return false
		}
		req.arg = bufio.NewScanner(bytes.NewReader(req.cmd.Bytes()))
		req.arg.Split(cliutil.ScanArgs)
	}
	if req.arg.Scan() {
		return true
	}
	req.err = req.arg.Err()
	return false
}

// Command returns a string containing all current bytes scanned from body.
func (req *Request) Command() string {
	if req.cmd == nil {
		return ""
	}
	return req.cmd.Text()
}

// Arg returns a string containing the current argument.
func (req *Request) Arg() string {
	if req.arg == nil {
		return ""
	}
	return cliutil.UnquoteArg(req.arg.Text())
}

// Args scans and returns all remaining arguments of the current command.
func (req *Request) Args() (args []string) {
	for req.ScanArg() {
		args = append(args, req.Arg())
	}
	return args
}
