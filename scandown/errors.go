package scandown

import (
	"github.com/cockroachdb/errors"
)

// ErrDialect is wrapped by every configuration error: an unknown dialect
// name, or a conflicting combination of dialect flags.
var ErrDialect = errors.New("invalid markdown dialect")

// IsInternalFault reports whether err is a scandown internal fault: input
// that no grammar rule could consume, or a malformed token stream. Such
// errors indicate a defect in the grammar rather than in the markdown
// source, which never causes an error by itself.
func IsInternalFault(err error) bool {
	return errors.IsAssertionFailure(err)
}

func dialectError(format string, args ...interface{}) error {
	return errors.WithHint(
		errors.Wrapf(ErrDialect, format, args...),
		"valid dialects are normal, gfm, gfm-tables and pedantic")
}

// fault aborts the current compile call; recoverFault converts it back into
// an error at the public entry points.
func fault(format string, args ...interface{}) {
	panic(errors.AssertionFailedf(format, args...))
}

func recoverFault(rerr *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok && errors.IsAssertionFailure(err) {
		*rerr = err
		return
	}
	panic(r)
}

// excerpt returns a short prefix of s for fault messages.
func excerpt(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
