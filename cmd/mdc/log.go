package main

import (
	"io"
	"log"
)

// logs adjusts the standard logger, which commands use for progress and
// diagnostic output.
var logs logConfig

type logConfig struct{}

// restore returns a function that restores the current standard logger
// output, flags and prefix.
func (logConfig) restore() func() {
	out, flags, prefix := log.Writer(), log.Flags(), log.Prefix()
	return func() {
		log.SetOutput(out)
		log.SetFlags(flags)
		log.SetPrefix(prefix)
	}
}

func (lc logConfig) setOutput(w io.Writer) logConfig {
	log.SetOutput(w)
	return lc
}

func (lc logConfig) setFlags(flags int) logConfig {
	log.SetFlags(flags)
	return lc
}
