package config

import (
	"io"
	"strings"

	"github.com/phuslu/log"
)

// NewLogger builds a leveled logger writing to w. Text format uses a
// console writer, json writes one object per line.
func (l LoggingConfig) NewLogger(w io.Writer) *log.Logger {
	logger := &log.Logger{
		Level:      log.ParseLevel(strings.ToLower(l.Level)),
		TimeFormat: "15:04:05",
	}
	if strings.EqualFold(l.Format, "json") {
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w, ColorOutput: false, QuoteString: true, EndWithMessage: true}
	}
	return logger
}
