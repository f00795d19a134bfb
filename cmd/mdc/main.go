// Command mdc compiles markdown documents to HTML, and serves a few tools
// around that: token dumps, heading outlines, comparison against other
// engines, a render service, and a file watcher.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/jcorbin/mdc/internal/cliui"
)

func main() {
	var ui ui
	ui.args = []string{filepath.Base(os.Args[0])}
	ui.flags.register(flag.CommandLine)
	flag.Parse()

	if err := ui.configure(flag.CommandLine); err != nil {
		log.Fatalln(err)
	}

	if err := cliui.CLIRequest().Serve(os.Stdout, &ui); err != nil {
		log.Fatalln(err)
	}
}
