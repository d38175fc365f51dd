package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the diagnostic logger.
type Options struct {
	Level  string // debug, info, warn, error; defaults to warn
	Format string // "json" or "text"
	File   string // optional rotating log file, in addition to stderr
}

// New builds a logrus logger. User-facing output goes to stdout elsewhere;
// the logger writes to stderr and, when File is set, to a rotated file.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	level := opts.Level
	if level == "" {
		level = "warn"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.WarnLevel)
		log.WithField("invalid_level", opts.Level).Warn("Invalid log level, using WARN")
	}

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var out io.Writer = os.Stderr
	if opts.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	log.SetOutput(out)

	return log
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
