package log

import (
	"strings"

	"github.com/sagernet/sing/common"
	E "github.com/sagernet/sing/common/exceptions"
)

type Level = uint8

const (
	LevelPanic Level = iota
	LevelFatal
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var (
	levelToString = map[Level]string{
		LevelPanic: "panic",
		LevelFatal: "fatal",
		LevelError: "error",
		LevelWarn:  "warn",
		LevelInfo:  "info",
		LevelDebug: "debug",
		LevelTrace: "trace",
	}
	stringToLevel = common.ReverseMap(levelToString)
)

func FormatLevel(level Level) string {
	name, loaded := levelToString[level]
	if !loaded {
		return "unknown"
	}
	return name
}

// ParseLevel accepts the level names in any case, plus "warning".
func ParseLevel(level string) (Level, error) {
	level = strings.ToLower(level)
	if level == "warning" {
		return LevelWarn, nil
	}
	parsed, loaded := stringToLevel[level]
	if !loaded {
		return LevelTrace, E.New("unknown log level: ", level)
	}
	return parsed, nil
}
