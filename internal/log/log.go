// Package log is a thin facade over zerolog with key/value pairs.
package log

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// Configure sets the global level and output format. Format is either
// "console" or "json"; unknown levels fall back to info.
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	}
}

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func Debug(msg string, kv ...any) { emit(logger.Debug(), msg, kv) }
func Info(msg string, kv ...any)  { emit(logger.Info(), msg, kv) }
func Warn(msg string, kv ...any)  { emit(logger.Warn(), msg, kv) }
func Error(msg string, kv ...any) { emit(logger.Error(), msg, kv) }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, args ...any) {
	logger.Fatal().Msg(fmt.Sprintf(format, args...))
}
