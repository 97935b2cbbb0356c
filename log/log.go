package log

import (
	"io"
	"os"
	"time"

	"github.com/snxvpn/snxconnect/option"

	E "github.com/sagernet/sing/common/exceptions"
)

type Options struct {
	Options       option.LogOptions
	Debug         bool
	DefaultWriter io.Writer
	BaseTime      time.Time
}

func New(options Options) (Factory, error) {
	logOptions := options.Options

	if logOptions.Disabled {
		return NewNOPFactory(), nil
	}

	var logFile *os.File
	var logWriter io.Writer

	switch logOptions.Output {
	case "":
		logWriter = options.DefaultWriter
		if logWriter == nil {
			logWriter = os.Stderr
		}
	case "stderr":
		logWriter = os.Stderr
	case "stdout":
		logWriter = os.Stdout
	default:
		var err error
		logFile, err = os.OpenFile(logOptions.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, E.Cause(err, "open log output")
		}
		logWriter = logFile
	}
	logFormatter := Formatter{
		BaseTime:         options.BaseTime,
		DisableColors:    logOptions.DisableColor || logFile != nil,
		DisableTimestamp: !logOptions.Timestamp && logFile != nil,
		FullTimestamp:    logOptions.Timestamp,
		TimestampFormat:  "-0700 2006-01-02 15:04:05",
	}
	factory := &simpleFactory{
		formatter: logFormatter,
		writer:    logWriter,
		level:     LevelInfo,
	}
	if logFile != nil {
		factory.closer = logFile
	}
	switch {
	case logOptions.Level != "":
		logLevel, err := ParseLevel(logOptions.Level)
		if err != nil {
			factory.Close()
			return nil, E.Cause(err, "parse log level")
		}
		factory.SetLevel(logLevel)
	case options.Debug:
		factory.SetLevel(LevelDebug)
	}
	return factory, nil
}
