// Package logger adapts github.com/rs/zerolog to the logger.Logger
// interface with a colored console formatter (teacher idiom, kept
// verbatim: caller truncation, message padding, ANSI coloring via
// github.com/google/goterm/term).
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/raykavin/aegis/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// ZerologLogger wraps a *zerolog.Logger and implements logger.Logger.
type ZerologLogger struct {
	*zerolog.Logger
}

// NewZerolog constructs the console-formatted (or JSON) root logger.
func NewZerolog(level, dateTimeLayout string, colored, jsonFormat bool) (*ZerologLogger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(logMode)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    !colored,
		TimeFormat: dateTimeLayout,
	}

	if !jsonFormat {
		output.FormatLevel = formatLevel
		output.FormatMessage = formatMessage
		output.FormatCaller = formatCaller
		output.FormatTimestamp = func(i interface{}) string {
			return formatTimestamp(i, dateTimeLayout)
		}
	}

	l := log.Output(output).With().CallerWithSkipFrameCount(3).Logger()
	return &ZerologLogger{&l}, nil
}

func (z *ZerologLogger) WithField(key string, value any) logger.Logger {
	l := z.With().Interface(key, value).Logger()
	return &ZerologLogger{&l}
}

func (z *ZerologLogger) WithFields(fields map[string]any) logger.Logger {
	l := z.With().Fields(fields).Logger()
	return &ZerologLogger{&l}
}

func (z *ZerologLogger) WithError(err error) logger.Logger {
	l := z.With().Err(err).Logger()
	return &ZerologLogger{&l}
}

func (z *ZerologLogger) Print(args ...any)  { z.Logger.Print(args...) }
func (z *ZerologLogger) Debug(args ...any)  { z.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (z *ZerologLogger) Info(args ...any)   { z.Logger.Info().Msg(fmt.Sprint(args...)) }
func (z *ZerologLogger) Warn(args ...any)   { z.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (z *ZerologLogger) Error(args ...any)  { z.Logger.Error().Msg(fmt.Sprint(args...)) }
func (z *ZerologLogger) Fatal(args ...any)  { z.Logger.Fatal().Msg(fmt.Sprint(args...)) }
func (z *ZerologLogger) Panic(args ...any)  { z.Logger.Panic().Msg(fmt.Sprint(args...)) }

func (z *ZerologLogger) Printf(format string, args ...any) { z.Logger.Printf(format, args...) }
func (z *ZerologLogger) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }
func (z *ZerologLogger) Infof(format string, args ...any)  { z.Logger.Info().Msgf(format, args...) }
func (z *ZerologLogger) Warnf(format string, args ...any)  { z.Logger.Warn().Msgf(format, args...) }
func (z *ZerologLogger) Errorf(format string, args ...any) { z.Logger.Error().Msgf(format, args...) }
func (z *ZerologLogger) Fatalf(format string, args ...any) { z.Logger.Fatal().Msgf(format, args...) }
func (z *ZerologLogger) Panicf(format string, args ...any) { z.Logger.Panic().Msgf(format, args...) }

// Critical logs at error level tagged critical=true, the severity the
// trading engine uses for alerts that should also reach the notification
// sinks.
func (z *ZerologLogger) Critical(args ...any) {
	z.Logger.Error().Bool("critical", true).Msg(fmt.Sprint(args...))
}

func formatLevel(i interface{}) string {
	levelStr, ok := i.(string)
	if !ok {
		return "UNKNOWN"
	}
	return getLevelColor(levelStr)
}

func getLevelColor(level string) string {
	switch level {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i interface{}) string {
	const maxSize = 80

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	if len(msg) > maxSize {
		msg = msg[:maxSize]
	}
	if len(msg) < maxSize {
		msg += strings.Repeat(" ", maxSize-len(msg))
	}

	return term.Whitef("> %s", msg)
}

func formatCaller(i interface{}) string {
	const maxFileSize = 18
	const maxLineSize = 4

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	caller := filepath.Base(fname)
	callerSplit := strings.Split(caller, ":")
	if len(callerSplit) != 2 {
		return caller
	}

	fileBase := callerSplit[0]
	line := callerSplit[1]

	if len(fileBase) > maxFileSize {
		fileBase = fileBase[:maxFileSize]
	} else {
		fileBase = fmt.Sprintf("%-*s", maxFileSize, fileBase)
	}

	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	} else {
		line = fmt.Sprintf("%*s", maxLineSize, line)
	}

	caller = fmt.Sprintf("%s:%s", fileBase, line)
	return term.Yellowf("[%s]", caller)
}

func formatTimestamp(i interface{}, timeLayout string) string {
	strTime, ok := i.(string)
	if !ok {
		return term.Cyanf("[%s]", i)
	}

	ts, err := time.ParseInLocation(time.RFC3339, strTime, time.Local)
	if err != nil {
		strTime = i.(string)
	} else {
		strTime = ts.In(time.Local).Format(timeLayout)
	}

	return term.Cyanf("[%s]", strTime)
}
