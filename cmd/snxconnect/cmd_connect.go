package main

import (
	"context"
	"errors"
	"os"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/snxvpn/snxconnect/common/cookiestore"
	"github.com/snxvpn/snxconnect/option"
	"github.com/snxvpn/snxconnect/portal"
	"github.com/snxvpn/snxconnect/snx"
)

const defaultAnswerPath = "snxanswer"

func connect(ctx context.Context, options option.Options) error {
	err := options.Validate()
	if err != nil {
		return err
	}
	lookupNetrc(&options)
	jar, cookiesLoaded := loadCookies(ctx, options.Cookie.Path)
	transport, err := newTransport(options, jar)
	if err != nil {
		return err
	}
	defer transport.Close()
	resolver, err := snx.NewResolver(options.Tunnel.DNSServer)
	if err != nil {
		return err
	}
	machine := portal.NewMachine(globalLogger, transport, portal.NewHTMLExtractor(), portal.NewTerminalPrompter(os.Stdin, os.Stderr), resolver, portal.MachineOptions{
		LoginFile:        options.Portal.File,
		Realm:            options.Portal.Realm,
		LoginType:        options.Portal.LoginType,
		HeightData:       options.Portal.HeightData,
		Username:         options.Auth.Username,
		Password:         options.Auth.Password,
		MultiChallenge:   options.Auth.MultiChallenge,
		CookiePath:       options.Cookie.Path,
		SaveCookies:      options.Cookie.Save,
		CookiesLoaded:    cookiesLoaded,
		UseHostAsGateway: options.Tunnel.UseHostAsGateway,
	})
	result, err := machine.Login(ctx)
	if err != nil {
		return E.Cause(err, "login")
	}
	transport.Close()
	answerPath := options.Tunnel.AnswerPath
	if answerPath == "" && options.Debug {
		answerPath = defaultAnswerPath
	}
	launcher := snx.NewLauncher(globalLogger, snx.LauncherOptions{
		Path:       options.Tunnel.SNXPath,
		AnswerPath: answerPath,
	})
	err = launcher.Launch(ctx, result.Record)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newTransport(options option.Options, jar *cookiestore.Jar) (*portal.Transport, error) {
	return portal.NewTransport(globalLogger, jar, portal.TransportOptions{
		Protocol:       options.Portal.Protocol,
		Host:           options.Portal.Host,
		UserAgent:      options.Portal.UserAgent,
		SkipCertVerify: options.Portal.SkipCertVerify,
	})
}

// loadCookies reports whether a saved session was found at path.
func loadCookies(ctx context.Context, path string) (*cookiestore.Jar, bool) {
	jar := cookiestore.New()
	if path == "" {
		return jar, false
	}
	err := jar.Load(path)
	switch {
	case err == nil:
		globalLogger.DebugContext(ctx, "loaded ", jar.Len(), " cookies from ", path)
		return jar, true
	case errors.Is(err, os.ErrNotExist):
	default:
		globalLogger.WarnContext(ctx, E.Cause(err, "load cookies"))
	}
	return cookiestore.New(), false
}
