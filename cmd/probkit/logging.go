package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func configureLogging(stderr io.Writer, debug int, quiet bool) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case debug >= 2:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case debug == 1:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
