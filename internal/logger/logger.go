package logger

import (
	"io"
	"os"
	"time"

	"github.com/chronos-tachyon/texthuff/internal/config"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger from the logger.* keys.  Output goes to
// stderr so that stdout stays free for data.
func NewLogger(conf *config.Conf) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = conf.String("logger.timeformat", time.RFC3339)

	var out io.Writer = os.Stderr
	if conf.Bool("logger.prettier", true) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: zerolog.TimeFieldFormat}
	}

	l, err := zerolog.ParseLevel(conf.String("logger.level", "info"))
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(out).Level(l).With().Timestamp().Logger(), nil
}
