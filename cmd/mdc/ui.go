package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"text/template"

	"github.com/jcorbin/mdc/internal/cliui"
	"github.com/jcorbin/mdc/internal/cliutil"
	"github.com/jcorbin/mdc/scandown"
)

// session is the state shared by every command of a single user request.
type session struct {
	args    []string
	mux     serveMux
	opts    scandown.Options
	text    bool
	listen  string
	verbose bool

	// source maps a document name to its store; "-" names the request input
	source func(name string) store

	// output receives rendered documents; nil writes them into the response
	output store

	input io.Reader
}

type server interface {
	serve(*session, *cliui.Request, *cliui.Response) error
}

type helpServer interface {
	server
	describe() string
	help() server
}

type serverFunc func(*session, *cliui.Request, *cliui.Response) error

type serverHelp struct {
	server
	d string
	h server
}

func (fn serverFunc) serve(sess *session, req *cliui.Request, res *cliui.Response) error {
	return fn(sess, req, res)
}

func (sh serverHelp) describe() string { return sh.d }
func (sh serverHelp) help() server     { return sh.h }

func textServer(text string) tmplServer {
	tmpl := template.Must(template.New("").Funcs(serverTemplateFuncs).Parse(text))
	return tmplServer{tmpl}
}

type tmplServer struct {
	tmpl *template.Template
}

func (srv tmplServer) serve(sess *session, req *cliui.Request, res *cliui.Response) error {
	return srv.tmpl.Execute(res, struct {
		Ctx *session
	}{sess})
}

type serveMux map[string]server

const helpTopicsKey = ".helpTopics"

func (mux serveMux) handle(name string, srv server) {
	if mux[name] != nil {
		panic(fmt.Sprintf("%q server already defined", name))
	}
	mux[name] = srv
}

func (mux serveMux) helpTopic(name string, srv server) {
	topics, _ := mux[helpTopicsKey].(serveMux)
	if topics[name] != nil {
		panic(fmt.Sprintf("%q topic already defined", name))
	}
	if topics == nil {
		topics = serveMux{}
		mux[helpTopicsKey] = topics
	}
	topics[name] = srv
}

func (mux serveMux) helpTopics() serveMux {
	topics, _ := mux[helpTopicsKey].(serveMux)
	return topics
}

// serve dispatches every command of req by its first arg; a request without
// commands is served by the "" entry, or help.
func (mux serveMux) serve(sess *session, req *cliui.Request, res *cliui.Response) error {
	served := false
	for req.Scan() && req.ScanArg() {
		served = true
		if err := mux.serveCommand(sess, req, res); err != nil {
			return err
		}
	}
	if served {
		return nil
	}
	if cmd := mux[""]; cmd != nil {
		return cmd.serve(sess, req, res)
	}
	if cmd := mux["help"]; cmd != nil {
		return cmd.serve(sess, req, res)
	}
	return mux.serveHelp(sess, req, res)
}

func (mux serveMux) serveCommand(sess *session, req *cliui.Request, res *cliui.Response) error {
	name := req.Arg()
	sess.args = append(sess.args[:len(sess.args):len(sess.args)], name)
	sess.mux = mux

	if cmd := mux[name]; cmd != nil && !strings.HasPrefix(name, ".") {
		return cmd.serve(sess, req, res)
	}
	if name == "help" {
		return mux.serveHelp(sess, req, res)
	}
	return fmt.Errorf("unrecognized command %q, see %q", name, sess.args[0]+" help")
}

func (mux serveMux) serveHelp(sess *session, req *cliui.Request, res *cliui.Response) error {
	var name string
	if req.ScanArg() {
		name = req.Arg()
	}

	srv := mux.helpTopics()[name]
	if srv == nil {
		if hs, ok := mux[name].(helpServer); ok {
			srv = hs.help()
			// command help shows the command, not the help request
			if i := len(sess.args) - 1; srv != nil && sess.args[i] == "help" {
				sess.args = append(sess.args[:i:i], name)
			}
		}
	}

	if srv != nil {
		return srv.serve(sess, req, res)
	}

	if name != "" {
		fmt.Fprintf(res, "> %s %s\nno help available\n", sess.Command(), name)
		return nil
	}

	fmt.Fprintf(res, "# Usage\n")
	if sess.CommandHead() != "help" {
		fmt.Fprintf(res, "> %s [flags] [command args...]\n", sess.Command())
	} else if topics := mux.helpTopics(); len(topics) > 0 {
		fmt.Fprintf(res, "> %s [topic|command]\n", sess.Command())
		fmt.Fprintf(res, "\n## Available Help Topics\n")
		printAvail(res, topics)
	} else {
		fmt.Fprintf(res, "> %s [command]\n", sess.Command())
	}

	fmt.Fprintf(res, "\n## Available Commands\n")
	printAvail(res, sess)

	return nil
}

func (mux serveMux) help() server {
	if srv := mux["help"]; srv != nil {
		return srv
	}
	return serverFunc(mux.serveHelp)
}

// Commands returns the sorted names served, excluding hidden entries.
func (mux serveMux) Commands() []string {
	var names []string
	for name := range mux {
		if name != "" && !strings.HasPrefix(name, ".") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (mux serveMux) Describe(name string) string {
	if hs, _ := mux[name].(helpServer); hs != nil {
		return hs.describe()
	}
	return ""
}

func (sess session) Command() string {
	return string(cliutil.QuotedArgs(sess.args))
}

func (sess session) CommandHead() string {
	return sess.args[len(sess.args)-1]
}

func (sess session) Commands() []string {
	if sess.mux == nil {
		return nil
	}
	names := sess.mux.Commands()
	if sess.mux["help"] == nil {
		names = append(names, "help")
		sort.Strings(names)
	}
	return names
}

func (sess session) Describe(name string) string {
	if sess.mux == nil {
		return ""
	}
	if name == "help" && sess.mux["help"] == nil {
		return "show help overview or on a specific topic or command"
	}
	return sess.mux.Describe(name)
}

// compile renders markdown source under the session options.
func (sess *session) compile(src string) (string, error) {
	opts := sess.opts
	if sess.text {
		opts.Renderer = scandown.TextRenderer{}
	}
	return scandown.Compile(src, opts)
}

// read returns the content of the named source document.
func (sess *session) read(name string) (string, error) {
	if name == "-" {
		var sb strings.Builder
		_, err := io.Copy(&sb, sess.input)
		return sb.String(), err
	}
	return readStore(sess.source(name))
}

// emit writes rendered content to the session output, or into res.
func (sess *session) emit(res *cliui.Response, content string) error {
	if sess.output == nil {
		_, err := res.WriteString(content)
		return err
	}
	return writeStore(sess.output, content)
}

func (sess *session) logf(format string, args ...interface{}) {
	if sess.verbose {
		log.Printf(format, args...)
	}
}

// sourceNames returns names, or the request input if there are none.
func sourceNames(names []string) []string {
	if len(names) == 0 {
		return []string{"-"}
	}
	return names
}

type commandList interface {
	Commands() []string
	Describe(string) string
}

var serverTemplateFuncs = template.FuncMap{
	"commandList": func(cl commandList) string {
		var sb strings.Builder
		if !printAvail(&sb, cl) {
			return ""
		}
		return sb.String()
	},
}

func printAvail(w io.Writer, cl commandList) bool {
	names := cl.Commands()
	if len(names) == 0 {
		return false
	}
	width := 0
	for _, name := range names {
		if width < len(name) {
			width = len(name)
		}
	}
	for _, name := range names {
		if desc := cl.Describe(name); desc != "" {
			fmt.Fprintf(w, "- %-*s: %s\n", width, name, desc)
		} else {
			fmt.Fprintf(w, "- %s\n", name)
		}
	}
	return true
}

func serve(srv interface{}, args ...interface{}) (actual server) {
	switch val := srv.(type) {
	case server:
		actual = val
	case func(*session, *cliui.Request, *cliui.Response) error:
		actual = serverFunc(val)
	case string:
		actual = textServer(val)
	default:
		panic(fmt.Sprintf("unsupported serve base arg type %T", srv))
	}
	for _, arg := range args {
		switch val := arg.(type) {
		case string:
			hs, hadHelp := actual.(serverHelp)
			if !hadHelp {
				hs.server = actual
			}
			if hs.d == "" {
				hs.d = val
			} else if hs.h == nil {
				hs.h = textServer(val)
			} else {
				panic("server already has both a description and help")
			}
			actual = hs
		}
	}
	return actual
}

var builtins []func(mux serveMux)

func builtinServer(name string, srv interface{}, args ...interface{}) {
	actual := serve(srv, args...)
	builtins = append(builtins, func(mux serveMux) {
		mux.handle(name, actual)
	})
}

func builtinHelpTopic(name string, srv interface{}, args ...interface{}) {
	actual := serve(srv, args...)
	builtins = append(builtins, func(mux serveMux) {
		mux.helpTopic(name, actual)
	})
}

func init() {
	builtinHelpTopic("dialects", `# Dialects

- normal: markdown.pl syntax
- gfm: GitHub flavored markdown; fenced code, strikethrough, bare url links
- gfm-tables: gfm with pipe tables (default)
- pedantic: markdown.pl syntax, including its quirks

Select with -dialect NAME, or the dialect key of {{ .Ctx.ConfigName }}.
`, "markdown dialects and how to select one")

	builtinHelpTopic("config", `# Options File

Options are read from the nearest {{ .Ctx.ConfigName }} found from the working
directory upward, or from -config FILE; flags override the file.

	dialect: gfm
	sanitize: true
	header_prefix: doc-
	lang_prefix: language-
	smartypants: true
	output: out.html
	listen: localhost:8080
`, "options file format")
}

// ConfigName is the name of options files, for help templates.
func (sess session) ConfigName() string { return configName }

type ui struct {
	session
	flags flagConfig
}

// configure loads the options file and applies flags set in fs.
func (ui *ui) configure(fs *flag.FlagSet) error {
	cfg, err := loadConfig(ui.flags.path)
	if err != nil {
		return err
	}
	if err := ui.flags.apply(fs, &cfg); err != nil {
		return err
	}
	ui.opts = cfg.Options
	ui.text = cfg.Text
	ui.listen = cfg.Listen
	ui.verbose = ui.flags.verbose
	if cfg.Output != "" {
		ui.output = fileStore(cfg.Output)
	}
	return nil
}

func (ui *ui) init() error {
	if ui.source == nil {
		ui.source = fileStore
	}
	if ui.mux == nil {
		ui.mux = make(serveMux)
		for _, addBuiltin := range builtins {
			addBuiltin(ui.mux)
		}
	}
	return nil
}

func (ui *ui) ServeUser(req *cliui.Request, res *cliui.Response) error {
	logOut := cliutil.PrefixWriter("> log: ", cliutil.FlushWriter{WriteBuffer: &res.WriteBuffer})
	defer logs.restore()()
	defer logOut.Close()
	logs.setOutput(logOut).setFlags(0)

	if err := ui.init(); err != nil {
		return err
	}

	sess := ui.session
	sess.input = req.Input()
	return ui.mux.serve(&sess, req, res)
}
