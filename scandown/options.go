package scandown

// DefaultMaxNesting is the container and emphasis nesting depth beyond which
// markup is no longer opened, and instead treated as plain text.
const DefaultMaxNesting = 64

// Options configures a compile call. Options is a plain value: every
// component reads it, none modify it.
//
// Use DefaultOptions to start from the default configuration; the zero value
// selects the Normal dialect with no language prefix.
type Options struct {
	// GFM enables GitHub flavored extensions: fenced code, bare URL
	// autolinks, strikethrough, and a looser paragraph interruption.
	GFM bool `yaml:"gfm"`

	// Tables enables GFM pipe tables, requires GFM.
	Tables bool `yaml:"tables"`

	// Breaks renders single newlines within paragraphs as hard breaks,
	// only meaningful with GFM.
	Breaks bool `yaml:"breaks"`

	// Pedantic conforms to the quirks of the original markdown.pl; conflicts
	// with GFM.
	Pedantic bool `yaml:"pedantic"`

	// Sanitize escapes raw HTML and refuses script-bearing link targets.
	Sanitize bool `yaml:"sanitize"`

	// SmartLists starts a new list whenever the bullet type changes.
	SmartLists bool `yaml:"smart_lists"`

	// SmartyPants replaces quotes, dashes and ellipses by their typographic
	// counterparts in text runs.
	SmartyPants bool `yaml:"smartypants"`

	// HeaderPrefix is prepended to every generated heading id.
	HeaderPrefix string `yaml:"header_prefix"`

	// LangPrefix is prepended to the language class of fenced code.
	LangPrefix string `yaml:"lang_prefix"`

	// XHTML emits self-closing void elements.
	XHTML bool `yaml:"xhtml"`

	// MaxNesting bounds blockquote, list and emphasis nesting; values less
	// than one mean DefaultMaxNesting.
	MaxNesting int `yaml:"max_nesting"`

	// Highlight, if not nil, is called with the raw code and language of
	// every code block. Any result other than "" or the code itself is
	// emitted verbatim, without escaping.
	Highlight func(code, lang string) string `yaml:"-"`

	// Renderer replaces the default HTMLRenderer when not nil.
	Renderer Renderer `yaml:"-"`
}

// DefaultOptions returns a fresh copy of the default options: GFM with
// tables, and a "lang-" code class prefix.
func DefaultOptions() Options {
	return Options{
		GFM:        true,
		Tables:     true,
		LangPrefix: "lang-",
		MaxNesting: DefaultMaxNesting,
	}
}

func (opts Options) maxNesting() int {
	if opts.MaxNesting < 1 {
		return DefaultMaxNesting
	}
	return opts.MaxNesting
}

func (opts Options) renderer() Renderer {
	if opts.Renderer != nil {
		return opts.Renderer
	}
	return NewHTMLRenderer(opts)
}
