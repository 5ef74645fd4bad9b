package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// LogOptions configures both loggers. File enables a rotated copy of the output.
type LogOptions struct {
	Format string
	Level  string
	File   string
}

func InitLogger() {
	ConfigureLogger(LogOptions{})
}

func ConfigureLogger(opts LogOptions) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	var infoOut io.Writer = os.Stdout
	var errOut io.Writer = os.Stderr
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		infoOut = io.MultiWriter(os.Stdout, rotated)
		errOut = io.MultiWriter(os.Stderr, rotated)
	}
	InfoLogger.SetOutput(infoOut)
	ErrorLogger.SetOutput(errOut)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if opts.Format == "json" {
		formatter = &logrus.JSONFormatter{}
	}
	InfoLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)

	level := logrus.InfoLevel
	if opts.Level != "" {
		if parsed, err := logrus.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}
	InfoLogger.SetLevel(level)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}
