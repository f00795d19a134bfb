package cliui_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/jcorbin/mdc/internal/cliui"
)

func TestArgsRequest(t *testing.T) {
	for _, tc := range []struct {
		name string
		now  time.Time
		args []string
		out  []string
	}{
		{
			name: "nothing",
			now:  time.Date(2020, 8, 6, 7, 5, 3, 0, time.UTC),
			out: []string{
				"now: 2020-08-06T07:05:03Z",
				"",
			},
		},

		{
			name: "some args",
			now:  time.Date(2020, 8, 6, 7, 5, 3, 0, time.UTC),
			args: []string{"render", "my notes.md"},
			out: []string{
				"now: 2020-08-06T07:05:03Z",
				"",
				`1) command: "render \"my notes.md\""`,
				`  1. arg: "render"`,
				`  2. arg: "my notes.md"`,
				"",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := ArgsRequest(tc.now, tc.args).Serve(&out, HandlerFunc(dumpRequest))
			require.NoError(t, err)
			assert.Equal(t, tc.out, strings.Split(out.String(), "\n"), "expected output")
		})
	}
}

func TestTextRequest(t *testing.T) {
	now := time.Date(2020, 8, 6, 7, 5, 3, 0, time.UTC)
	var out bytes.Buffer
	err := TextRequest(now, strings.NewReader("tokens a.md\noutline 'b c.md'\n")).Serve(&out, HandlerFunc(dumpRequest))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"now: 2020-08-06T07:05:03Z",
		"",
		`1) command: "tokens a.md"`,
		`  1. arg: "tokens"`,
		`  2. arg: "a.md"`,
		"",
		`2) command: "outline 'b c.md'"`,
		`  1. arg: "outline"`,
		`  2. arg: "b c.md"`,
		"",
	}, strings.Split(out.String(), "\n"))
}

func TestRequest_Input(t *testing.T) {
	now := time.Now()
	var out bytes.Buffer
	echo := HandlerFunc(func(req *Request, resp *Response) error {
		_, err := io.Copy(resp, req.Input())
		return err
	})

	require.NoError(t, ArgsRequest(now, nil).Serve(&out, echo))
	assert.Empty(t, out.String(), "expected empty input by default")

	require.NoError(t, ArgsRequest(now, nil).WithInput(strings.NewReader("# hi\n")).Serve(&out, echo))
	assert.Equal(t, "# hi\n", out.String())
}

func TestRequest_Args(t *testing.T) {
	var got []string
	err := ArgsRequest(time.Now(), []string{"render", "a.md", "b.md"}).Serve(io.Discard,
		HandlerFunc(func(req *Request, resp *Response) error {
			if req.ScanArg() {
				got = append(got, "cmd:"+req.Arg())
			}
			got = append(got, req.Args()...)
			return nil
		}))
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd:render", "a.md", "b.md"}, got)
}

func TestRequest_Serve_handlerError(t *testing.T) {
	var out bytes.Buffer
	err := ArgsRequest(time.Now(), nil).Serve(&out, HandlerFunc(func(req *Request, resp *Response) error {
		fmt.Fprintln(resp, "partial output")
		return fmt.Errorf("handler failed")
	}))
	assert.EqualError(t, err, "handler failed")
	assert.Equal(t, "partial output\n", out.String(), "expected response to still be flushed")
}

func dumpRequest(req *Request, resp *Response) error {
	fmt.Fprintf(resp, "now: %v\n", req.Now().Format(time.RFC3339))
	for i := 1; req.Scan(); i++ {
		fmt.Fprintf(resp, "\n%v) command: %q\n", i, req.Command())
		for j := 1; req.ScanArg(); j++ {
			fmt.Fprintf(resp, "  %v. arg: %q\n", j, req.Arg())
		}
	}
	return nil
}
