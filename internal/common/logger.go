/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/common/logger.go
*/

// Package common holds small pieces of shared infrastructure used across
// every layer of the server: the leveled logger and ASCII case folding.
package common

import (
	"log"
	"os"
)

// Log levels
const (
	INFO_  = "INFO"
	WARN_  = "WARN"
	ERROR_ = "ERROR"
)

// Logger is a custom logger with different log levels.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger initializes and returns a new Logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stderr, "[INFO]  ", log.Ldate|log.Ltime),
		warnLogger:  log.New(os.Stderr, "[WARN]  ", log.Ldate|log.Ltime),
		errorLogger: log.New(os.Stderr, "[ERROR] ", log.Ldate|log.Ltime),
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.Printf(INFO_, format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.Printf(WARN_, format, v...)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	l.Printf(ERROR_, format, v...)
}

// Printf:
func (l *Logger) Printf(level string, format string, v ...interface{}) {
	switch level {
	case INFO_:
		l.infoLogger.Printf(format, v...) // v... unpacks the slice
	case WARN_:
		l.warnLogger.Printf(format, v...)
	case ERROR_:
		l.errorLogger.Printf(format, v...)
	default:
		l.infoLogger.Printf(format, v...)
	}
}
