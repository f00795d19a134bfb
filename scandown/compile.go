package scandown

// Compile renders markdown source to an HTML fragment, or to whatever
// opts.Renderer produces.
//
// Malformed markdown is never an error: it degrades to literal text. Errors
// are either configuration errors, wrapping ErrDialect, or internal faults,
// see IsInternalFault.
func Compile(src string, opts Options) (string, error) {
	tokens, refs, err := Lex(src, opts)
	if err != nil {
		return "", err
	}
	p, err := NewParser(opts)
	if err != nil {
		return "", err
	}
	return p.Parse(tokens, refs)
}

// Lex returns the block token stream and reference definitions of src.
func Lex(src string, opts Options) ([]Token, Refs, error) {
	lx, err := NewBlockLexer(opts)
	if err != nil {
		return nil, nil, err
	}
	return lx.Lex(src)
}
