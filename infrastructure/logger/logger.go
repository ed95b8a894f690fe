package logger

import (
	"os"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetLevel changes the process log level. Unknown or empty values fall back to debug.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
}

// Base exposes the underlying logger, mainly so tests can swap its output.
func Base() *log.Logger {
	return logger
}

func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	name := ""
	if functionObject != nil {
		name = functionObject.Name()
	}
	entry := logger.WithFields(log.Fields{
		"function": name,
		"file":     file,
		"line":     line,
	})

	return entry
}
