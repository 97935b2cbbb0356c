//go:build !generate

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/snxvpn/snxconnect/log"
	"github.com/snxvpn/snxconnect/option"

	"github.com/spf13/cobra"
)

var (
	globalCtx     context.Context
	globalOptions option.Options
	globalLogger  log.ContextLogger
	configPath    string
	rcPath        string
	disableColor  bool
)

var mainCommand = &cobra.Command{
	Use:              "snxconnect",
	Short:            "Log in to a Check Point SSL VPN portal and hand the session to snx",
	Args:             cobra.NoArgs,
	PersistentPreRun: preRun,
	Run: func(cmd *cobra.Command, args []string) {
		err := connect(globalCtx, globalOptions)
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	flags := mainCommand.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "set configuration file path")
	flags.StringVar(&rcPath, "rc", "", "set rc file path (default \"~/.snxvpnrc\")")
	flags.BoolVarP(&disableColor, "disable-color", "", false, "disable color output")
	registerOptionFlags(mainCommand)
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		log.Fatal(err)
	}
}

func preRun(cmd *cobra.Command, args []string) {
	if disableColor {
		log.SetStdLogger(log.NewFactory(log.Formatter{BaseTime: time.Now(), DisableColors: true}, os.Stderr).Logger())
	}
	options, err := readOptions(cmd)
	if err != nil {
		log.Fatal(err)
	}
	globalLogger, err = newLogger(options)
	if err != nil {
		log.Fatal(E.Cause(err, "create logger"))
	}
	globalOptions = options
	globalCtx = log.ContextWithNewID(signalContext())
}

// newLogger builds the run logger. The package level std logger keeps writing
// to stderr so fatal errors are reported even when logging is disabled.
func newLogger(options option.Options) (log.ContextLogger, error) {
	logOptions := option.LogOptions{}
	if options.Log != nil {
		logOptions = *options.Log
	}
	if disableColor {
		logOptions.DisableColor = true
	}
	factory, err := log.New(log.Options{
		Options:       logOptions,
		Debug:         options.Debug,
		DefaultWriter: os.Stderr,
		BaseTime:      time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return factory.Logger(), nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-osSignals
		cancel()
	}()
	return ctx
}
