package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Mandelbrot 🌀 ",
			})
			l.SetLevel(log.InfoLevel)
			// the helpers below add one frame on top of the caller
			l.SetCallerOffset(1)
			singleton = &logger{l}
		})
	return singleton
}

// LogConfigure sets the level by name ("debug", "info", "warn", "error") and
// tags every line with the given session id.
func LogConfigure(level string, session string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	l := getLogger()
	l.SetLevel(lvl)
	if session != "" {
		l.SetPrefix("Mandelbrot 🌀 " + session)
	}
	return nil
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}
