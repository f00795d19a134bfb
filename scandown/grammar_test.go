package scandown_test

import (
	"errors"
	"fmt"
	"testing"

	crdberrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func TestSelectGrammar(t *testing.T) {
	for _, tc := range []struct {
		name    string
		opts    scandown.Options
		dialect scandown.Dialect
		err     string
	}{
		{name: "zero value", opts: scandown.Options{}, dialect: scandown.Normal},
		{name: "defaults", opts: scandown.DefaultOptions(), dialect: scandown.GFMTables},
		{name: "gfm", opts: scandown.Options{GFM: true}, dialect: scandown.GFM},
		{name: "gfm breaks", opts: scandown.Options{GFM: true, Breaks: true}, dialect: scandown.GFM},
		{name: "pedantic", opts: scandown.Options{Pedantic: true}, dialect: scandown.Pedantic},
		{name: "tables without gfm", opts: scandown.Options{Tables: true}, err: "tables require gfm"},
		{name: "pedantic gfm", opts: scandown.Options{GFM: true, Pedantic: true}, err: "pedantic conflicts with gfm"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g, err := scandown.SelectGrammar(tc.opts)
			if tc.err != "" {
				require.Error(t, err, "expected a configuration error")
				assert.Contains(t, err.Error(), tc.err)
				assert.True(t, errors.Is(err, scandown.ErrDialect), "expected ErrDialect")
				assert.False(t, scandown.IsInternalFault(err), "must not be an internal fault")
				assert.Contains(t, crdberrors.FlattenHints(err), "gfm-tables", "expected a dialect hint")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.dialect, g.Dialect, "expected dialect")
		})
	}
}

func TestSelectGrammar_errorsBeforeLexing(t *testing.T) {
	bad := scandown.Options{Tables: true}

	_, err := scandown.NewBlockLexer(bad)
	assert.True(t, errors.Is(err, scandown.ErrDialect), "NewBlockLexer")

	_, err = scandown.NewParser(bad)
	assert.True(t, errors.Is(err, scandown.ErrDialect), "NewParser")

	_, err = scandown.Compile("# never lexed", bad)
	assert.True(t, errors.Is(err, scandown.ErrDialect), "Compile")
}

func TestParseDialect(t *testing.T) {
	for _, tc := range []struct {
		name    string
		dialect scandown.Dialect
	}{
		{"normal", scandown.Normal},
		{"markdown", scandown.Normal},
		{"GFM", scandown.GFM},
		{" gfm-tables ", scandown.GFMTables},
		{"tables", scandown.GFMTables},
		{"pedantic", scandown.Pedantic},
	} {
		d, err := scandown.ParseDialect(tc.name)
		if assert.NoError(t, err, "ParseDialect(%q)", tc.name) {
			assert.Equal(t, tc.dialect, d, "ParseDialect(%q)", tc.name)
		}
	}

	_, err := scandown.ParseDialect("commonmark")
	assert.True(t, errors.Is(err, scandown.ErrDialect), "expected unknown dialect to be rejected")
}

func TestDialect_Apply(t *testing.T) {
	for _, d := range []scandown.Dialect{
		scandown.Normal,
		scandown.GFM,
		scandown.GFMTables,
		scandown.Pedantic,
	} {
		t.Run(fmt.Sprint(d), func(t *testing.T) {
			opts := scandown.DefaultOptions()
			opts.Sanitize = true
			d.Apply(&opts)
			g, err := scandown.SelectGrammar(opts)
			require.NoError(t, err)
			assert.Equal(t, d, g.Dialect, "expected round trip")
			assert.True(t, opts.Sanitize, "expected other options to be untouched")

			back, err := scandown.ParseDialect(fmt.Sprint(d))
			require.NoError(t, err)
			assert.Equal(t, d, back, "expected name round trip")
		})
	}
}
