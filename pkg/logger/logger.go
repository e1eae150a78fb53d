package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. Dev gets a human readable console writer
// at debug level; everything else is JSON at info.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stdout
	lvl := zerolog.InfoLevel
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(lvl).With().
		Timestamp().
		Str("service", "munidenuncia").
		Logger()
}
