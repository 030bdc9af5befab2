package logger

import (
	"github.com/pkg/errors"
	"strings"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Level -linecomment

type Level int

const (
	LevelOff   Level = iota // OFF
	LevelError              // ERROR
	LevelInfo               // INFO
	LevelDebug              // DEBUG
)

var levelMap = map[string]Level{
	"OFF":   LevelOff,
	"ERROR": LevelError,
	"INFO":  LevelInfo,
	"DEBUG": LevelDebug,
}

func ParseLevel(s string) (Level, error) {
	level, ok := levelMap[strings.ToUpper(s)]
	if !ok {
		return -1, errors.Errorf("invalid level: %s", s)
	}
	return level, nil
}
