package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	Level   string
	Console bool
	File    string
}

// Setup configures the global zerolog logger. Console output is meant for
// development; otherwise lines are JSON. When File is set, lines are also
// written to a rotating file.
func Setup(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	zlog.Logger = zerolog.New(out).With().Timestamp().Logger()
	return zlog.Logger
}

type gormWriter struct{ l zerolog.Logger }

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.l.Info().Msgf(format, args...)
}

// Gorm returns a gorm logger that writes through l. With debug set every
// statement is logged, otherwise only slow queries and errors.
func Gorm(l zerolog.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{l: l.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
