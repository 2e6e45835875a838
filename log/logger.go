// Package log provides logging helpers on top of logrus.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

var (
	// JSONFormat log in json format
	JSONFormat bool
	// ColorFormat log with color
	ColorFormat bool
)

// SetLogger set log level and format
func SetLogger(verbosity uint32, jsonFormat, colorFormat bool) {
	logrus.SetLevel(logrus.Level(verbosity))

	JSONFormat = jsonFormat
	ColorFormat = colorFormat

	if jsonFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000",
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
		})
	}
}

// SetLogFile set log file path and rotation
func SetLogFile(logFile string, logRotation, logMaxAge uint64) {
	if logFile == "" {
		return
	}

	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		logrus.Fatalf("create log dir '%v' failed. %v", logDir, err)
	}

	if logRotation == 0 {
		logRotation = 24
	}

	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(time.Duration(logRotation)*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(logMaxAge)*time.Hour),
	)
	if err != nil {
		logrus.Fatalf("create rotate logs for file '%v' failed. %v", logFile, err)
	}

	logrus.SetOutput(writer)
}

// WithFields encapsulate logrus.WithFields
func WithFields(ctx ...interface{}) *logrus.Entry {
	length := len(ctx)
	fields := make(logrus.Fields, length/2)
	for k := 0; k+1 < length; k += 2 {
		key, ok := ctx[k].(string)
		if !ok {
			key = fmt.Sprintf("%v", ctx[k])
		}
		fields[key] = ctx[k+1]
	}
	return logrus.WithFields(fields)
}

// Trace trace
func Trace(msg string, ctx ...interface{}) {
	WithFields(ctx...).Trace(msg)
}

// Tracef tracef
func Tracef(format string, args ...interface{}) {
	logrus.Tracef(format, args...)
}

// Debug debug
func Debug(msg string, ctx ...interface{}) {
	WithFields(ctx...).Debug(msg)
}

// Debugf debugf
func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}

// Info info
func Info(msg string, ctx ...interface{}) {
	WithFields(ctx...).Info(msg)
}

// Infof infof
func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}

// Warn warn
func Warn(msg string, ctx ...interface{}) {
	WithFields(ctx...).Warn(msg)
}

// Warnf warnf
func Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}

// Error error
func Error(msg string, ctx ...interface{}) {
	WithFields(ctx...).Error(msg)
}

// Errorf errorf
func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}

// Fatal fatal
func Fatal(msg string, ctx ...interface{}) {
	WithFields(ctx...).Fatal(msg)
}

// Fatalf fatalf
func Fatalf(format string, args ...interface{}) {
	logrus.Fatalf(format, args...)
}

// Println println
func Println(args ...interface{}) {
	logrus.Println(args...)
}

// Printf printf
func Printf(format string, args ...interface{}) {
	logrus.Printf(format, args...)
}
