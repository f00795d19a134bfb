package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/mdc/internal/cliutil"
	"github.com/jcorbin/mdc/scandown"
)

const configName = ".mdc.yaml"

// config is the content of an options file; it inlines scandown.Options, so
// an options file looks like:
//
// 	dialect: gfm
// 	sanitize: true
// 	header_prefix: doc-
// 	output: out.html
type config struct {
	// Dialect, if set, overrides the gfm, tables and pedantic fields.
	Dialect string `yaml:"dialect"`

	Output string `yaml:"output"`
	Listen string `yaml:"listen"`
	Text   bool   `yaml:"text"`

	scandown.Options `yaml:",inline"`
}

func defaultConfig() config {
	return config{
		Listen:  "localhost:8080",
		Options: scandown.DefaultOptions(),
	}
}

// loadConfig reads the options file at path, or the nearest options file
// found from the working directory upward if path is empty; having no
// options file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		info, found, err := cliutil.FindWDFile(configName)
		if err != nil || info == nil {
			return cfg, err
		}
		path = found
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid options file %v: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if cfg.Dialect != "" {
		d, err := scandown.ParseDialect(cfg.Dialect)
		if err != nil {
			return err
		}
		d.Apply(&cfg.Options)
	}
	_, err := scandown.SelectGrammar(cfg.Options)
	return err
}

// flagConfig collects command line flags, which override any options file.
type flagConfig struct {
	path    string
	dialect string
	verbose bool
	config
}

func (fc *flagConfig) register(fs *flag.FlagSet) {
	def := defaultConfig()
	fs.StringVar(&fc.path, "config", "", "options file (default: nearest "+configName+")")
	fs.StringVar(&fc.dialect, "dialect", "", "markdown dialect: normal, gfm, gfm-tables or pedantic")
	fs.BoolVar(&fc.verbose, "v", false, "log progress")
	fs.StringVar(&fc.Output, "o", "", "write output to file, atomically replacing it")
	fs.StringVar(&fc.Listen, "listen", def.Listen, "default serve address")
	fs.BoolVar(&fc.Text, "text", false, "render plain text instead of HTML")
	fs.BoolVar(&fc.GFM, "gfm", def.GFM, "enable GitHub flavored markdown")
	fs.BoolVar(&fc.Tables, "tables", def.Tables, "enable GFM tables")
	fs.BoolVar(&fc.Breaks, "breaks", def.Breaks, "render single newlines as breaks")
	fs.BoolVar(&fc.Pedantic, "pedantic", def.Pedantic, "conform to markdown.pl quirks; implies -gfm=false")
	fs.BoolVar(&fc.Sanitize, "sanitize", def.Sanitize, "escape raw html and unsafe links")
	fs.BoolVar(&fc.SmartLists, "smart-lists", def.SmartLists, "start new lists on bullet changes")
	fs.BoolVar(&fc.SmartyPants, "smartypants", def.SmartyPants, "use typographic quotes, dashes and ellipses")
	fs.BoolVar(&fc.XHTML, "xhtml", def.XHTML, "emit self-closing void elements")
	fs.StringVar(&fc.HeaderPrefix, "header-prefix", def.HeaderPrefix, "heading id prefix")
	fs.StringVar(&fc.LangPrefix, "lang-prefix", def.LangPrefix, "code class language prefix")
	fs.IntVar(&fc.MaxNesting, "max-nesting", def.MaxNesting, "nesting depth limit")
}

// flagFields copies each flag value onto a config, by flag name.
var flagFields = map[string]func(dst *config, src config){
	"o":             func(dst *config, src config) { dst.Output = src.Output },
	"listen":        func(dst *config, src config) { dst.Listen = src.Listen },
	"text":          func(dst *config, src config) { dst.Text = src.Text },
	"gfm":           func(dst *config, src config) { dst.GFM = src.GFM },
	"tables":        func(dst *config, src config) { dst.Tables = src.Tables },
	"breaks":        func(dst *config, src config) { dst.Breaks = src.Breaks },
	"pedantic":      func(dst *config, src config) { dst.Pedantic = src.Pedantic },
	"sanitize":      func(dst *config, src config) { dst.Sanitize = src.Sanitize },
	"smart-lists":   func(dst *config, src config) { dst.SmartLists = src.SmartLists },
	"smartypants":   func(dst *config, src config) { dst.SmartyPants = src.SmartyPants },
	"xhtml":         func(dst *config, src config) { dst.XHTML = src.XHTML },
	"header-prefix": func(dst *config, src config) { dst.HeaderPrefix = src.HeaderPrefix },
	"lang-prefix":   func(dst *config, src config) { dst.LangPrefix = src.LangPrefix },
	"max-nesting":   func(dst *config, src config) { dst.MaxNesting = src.MaxNesting },
}

// apply overrides cfg with every flag explicitly set in fs.
func (fc *flagConfig) apply(fs *flag.FlagSet, cfg *config) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["dialect"] {
		d, err := scandown.ParseDialect(fc.dialect)
		if err != nil {
			return err
		}
		d.Apply(&cfg.Options)
	}
	for name := range set {
		if assign := flagFields[name]; assign != nil {
			assign(cfg, fc.config)
		}
	}

	// dialect flags imply each other unless given explicitly
	if set["pedantic"] && cfg.Pedantic {
		if !set["gfm"] {
			cfg.GFM = false
		}
		if !set["tables"] {
			cfg.Tables = false
		}
	}
	if set["gfm"] && !cfg.GFM && !set["tables"] {
		cfg.Tables = false
	}

	_, err := scandown.SelectGrammar(cfg.Options)
	return err
}
