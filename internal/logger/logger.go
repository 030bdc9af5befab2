package logger

import (
	"fmt"
	"io"
	"log"
)

type logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	errorLogger *log.Logger
}

func NewLogger(level Level, out io.Writer) *logger {
	var (
		debugLogger *log.Logger
		infoLogger  *log.Logger
		errorLogger *log.Logger
	)

	flag := log.LstdFlags | log.Lshortfile

	if level >= LevelDebug {
		debugLogger = log.New(out, "DEBUG:", flag)
	}
	if level >= LevelInfo {
		infoLogger = log.New(out, "INFO :", flag)
	}
	if level >= LevelError {
		errorLogger = log.New(out, "ERROR:", flag)
	}

	return &logger{
		debugLogger: debugLogger,
		infoLogger:  infoLogger,
		errorLogger: errorLogger,
	}
}

func (l *logger) Debug(v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Info(v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Error(v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Debugf(format string, v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Infof(format string, v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Errorf(format string, v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintf(format, v...))
	}
}
