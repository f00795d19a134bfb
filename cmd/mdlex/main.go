// Command mdlex prints the block tokens that scandown lexes from standard
// input, one numbered item per token, followed by the link reference
// definitions found.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jcorbin/mdc/internal/cliutil"
	"github.com/jcorbin/mdc/scandown"
)

func main() {
	var (
		dialect string
		verbose bool
	)
	flag.StringVar(&dialect, "dialect", "gfm-tables", "markdown dialect: normal, gfm, gfm-tables or pedantic")
	flag.BoolVar(&verbose, "v", false, "enable verbose output, with token text hexdumps")
	flag.Parse()

	out := &cliutil.ErrWriter{Writer: os.Stdout}
	logOut := cliutil.PrefixWriter("> log: ", out)
	defer logOut.Close()
	log.SetOutput(logOut)
	log.SetFlags(0)

	opts := scandown.DefaultOptions()
	d, err := scandown.ParseDialect(dialect)
	if err != nil {
		log.Fatalln(err)
	}
	d.Apply(&opts)

	if err := lex(os.Stdin, out, opts, verbose); err != nil {
		logOut.Close()
		fmt.Fprintf(os.Stderr, "# lex error\n%v\n", err)
		os.Exit(1)
	}
}

func lex(in io.Reader, out io.Writer, opts scandown.Options, verbose bool) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	tokens, refs, err := scandown.Lex(string(src), opts)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("lexed %v tokens, %v refs from %v bytes", len(tokens), len(refs), len(src))
	}

	n := 0
	if err := cliutil.WriteLines(out, func(w io.Writer, _ func()) bool {
		if n >= len(tokens) {
			return false
		}
		tok := tokens[n]
		n++

		width, _ := fmt.Fprintf(w, "%v. ", n)
		itemOut := cliutil.PrefixWriter(strings.Repeat(" ", width), w)
		itemOut.Skip = true
		defer itemOut.Close()

		if !verbose {
			fmt.Fprintf(itemOut, "%v\n", tok)
			return true
		}

		fmt.Fprintf(itemOut, "%+v\n", tok)
		if len(tok.Text) > 0 {
			io.WriteString(itemOut, "```hexdump\n")
			dumper := hex.Dumper(itemOut)
			io.WriteString(dumper, tok.Text)
			dumper.Close()
			io.WriteString(itemOut, "```\n")
		}
		return true
	}); err != nil {
		return err
	}

	labels := make([]string, 0, len(refs))
	for label := range refs {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		ref := refs[label]
		if _, err := fmt.Fprintf(out, "[%v]: %v %q\n", label, ref.Href, ref.Title); err != nil {
			return err
		}
	}
	return nil
}
