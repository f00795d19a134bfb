package cliutil

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// QuotedArgs returns a byte slice with each arg appended separated by a space.
// Any arg that contains a space is quoted with strconv.
func QuotedArgs(args []string) []byte {
	n := len(args)
	for _, arg := range args {
		n += 2 * len(arg)
	}
	b := make([]byte, 0, n)
	return AppendQuotedArgs(b, args)
}

// AppendQuotedArgs appends each element of args, quoting them with strconv if
// they contain a space or quote, or are empty.
func AppendQuotedArgs(b []byte, args []string) []byte {
	for i, arg := range args {
		if i > 0 {
			b = append(b, ' ')
		}
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			b = strconv.AppendQuote(b, arg)
		} else {
			b = append(b, arg...)
		}
	}
	return b
}

// ScanArgs implements a bufio.SplitFunc that scans space separated, optionally
// quoted, arg tokens. Quoted tokens retain their quotes; see UnquoteArg.
func ScanArgs(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading spaces.
	start := 0
	var r rune
	for width := 0; start < len(data); start += width {
		r, width = utf8.DecodeRune(data[start:])
		if !unicode.IsSpace(r) {
			break
		}
	}

	if start < len(data) && (r == '"' || r == '\'') {
		// Scan until end quote, skipping escaped quotes.
		q := r
		esc := false
		for width, i := 0, start+1; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			switch {
			case esc:
				esc = false
			case r == '\\':
				esc = true
			case r == q:
				return i + width, data[start : i+width], nil
			}
		}
	} else {
		// Scan until space.
		for width, i := 0, start; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			if unicode.IsSpace(r) {
				return i + width, data[start:i], nil
			}
		}
	}

	// If we're at EOF, we have a final, non-empty, non-terminated arg. Return it.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	// Request more data.
	return start, nil, nil
}

// UnquoteArg reverses the quoting done by AppendQuotedArgs; unquoted args, and
// any malformed remainder of a quoted one, are returned as is.
func UnquoteArg(arg string) string {
	if len(arg) < 2 || (arg[0] != '"' && arg[0] != '\'') {
		return arg
	}
	q := arg[0]
	arg = arg[1:]
	var buf strings.Builder
	buf.Grow(len(arg))
	for len(arg) > 0 && arg[0] != q {
		r, _, tail, err := strconv.UnquoteChar(arg, q)
		if err != nil {
			buf.WriteString(arg)
			break
		}
		buf.WriteRune(r)
		arg = tail
	}
	return buf.String()
}
