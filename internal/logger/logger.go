// Package logger configures the process-wide zerolog logger and the
// adapters that route gin and gorm output through it.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Development gets a console writer,
// everything else gets JSON lines on stdout.
func Setup(level string, production bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if !production {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	l := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = l
	return l
}

// GormLogWriter satisfies gorm's logger.Writer.
type GormLogWriter struct {
	l zerolog.Logger
}

// Printf logs gorm's errors and slow queries at error and warn level. Plain
// SQL traces stay at debug.
func (g GormLogWriter) Printf(format string, args ...interface{}) {
	g.l.WithLevel(gormLevel(format, args)).
		Str("component", "gorm").
		Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func gormLevel(format string, args []interface{}) zerolog.Level {
	switch {
	case strings.Contains(format, "[error]"):
		return zerolog.ErrorLevel
	case strings.Contains(format, "[warn]"):
		return zerolog.WarnLevel
	}
	// traces are (file, err or slow notice, elapsed, rows, sql) or (file, elapsed, rows, sql)
	if len(args) > 1 {
		switch v := args[1].(type) {
		case error:
			return zerolog.ErrorLevel
		case string:
			if strings.HasPrefix(v, "SLOW SQL") {
				return zerolog.WarnLevel
			}
		}
	}
	return zerolog.DebugLevel
}

// GormWriter returns a writer for gorm's logger backed by the global logger.
func GormWriter() GormLogWriter {
	return GormLogWriter{l: log.Logger}
}

// RequestLogger logs one line per request after the handler chain ran.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev = ev.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if userID, ok := c.Get("user_id"); ok {
			ev = ev.Interface("user_id", userID)
		}
		ev.Msg("request")
	}
}
