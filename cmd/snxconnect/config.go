package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/snxvpn/snxconnect/option"

	"github.com/jdx/go-netrc"
	"github.com/spf13/cobra"
)

var (
	flagCookiePath     string
	flagDebug          bool
	flagFile           string
	flagHost           string
	flagHeightData     string
	flagLoginType      string
	flagMultiChallenge string
	flagPassword       string
	flagProtocol       string
	flagRealm          string
	flagSaveCookies    bool
	flagSNXPath        string
	flagUsername       string
	flagUserAgent      string
	flagSkipCert       bool
	flagUseHostAsGW    bool
	flagDNSServer      string
	flagAnswerPath     string
	flagVPIDPrefix     string
)

func registerOptionFlags(command *cobra.Command) {
	flags := command.PersistentFlags()
	flags.StringVarP(&flagCookiePath, "cookiefile", "c", "", "cookie file to save and attempt reconnect (default \"~/.snxcookies\")")
	flags.BoolVarP(&flagDebug, "debug", "D", false, "debug handshake")
	flags.StringVarP(&flagFile, "file", "F", "", "file part of URL (default \"sslvpn/Login/Login\")")
	flags.StringVarP(&flagHost, "host", "H", "", "host part of URL")
	flags.StringVar(&flagHeightData, "height-data", "", "height data in form")
	flags.StringVarP(&flagLoginType, "login-type", "L", "", "login type (default \"Standard\")")
	flags.StringVar(&flagMultiChallenge, "multi-challenge", "", "enable the MultiChallenge step, pass a code as --multi-challenge=CODE")
	flags.Lookup("multi-challenge").NoOptDefVal = "true"
	flags.StringVarP(&flagPassword, "password", "P", "", "login password, not a good idea to specify on the command line")
	flags.StringVarP(&flagProtocol, "protocol", "p", "", "http or https, should always be https except for tests")
	flags.StringVarP(&flagRealm, "realm", "R", "", "selected realm (default \"ssl_vpn\")")
	flags.BoolVarP(&flagSaveCookies, "save-cookies", "s", false, "save cookies to the cookie file, might be a security risk")
	flags.StringVarP(&flagSNXPath, "snxpath", "S", "", "snx binary to call (default \"snx\")")
	flags.StringVarP(&flagUsername, "username", "U", "", "login username")
	flags.StringVarP(&flagUserAgent, "useragent", "u", "", "User-Agent passed to the portal")
	flags.BoolVar(&flagSkipCert, "skip-cert", false, "skip certificate verification")
	flags.BoolVar(&flagUseHostAsGW, "use-host-as-gw", false, "use host as connection gateway")
	flags.StringVar(&flagDNSServer, "dns-server", "", "resolve the gateway with this DNS server instead of the system resolver")
	flags.StringVar(&flagAnswerPath, "answer-path", "", "write the snx answer to this file (default \"snxanswer\" in debug mode)")
	flags.StringVarP(&flagVPIDPrefix, "vpid-prefix", "V", "", "VPID prefix")
	flags.MarkHidden("vpid-prefix")
}

// readOptions layers defaults, the rc file, the JSON config and the changed
// command line flags, in that order.
func readOptions(cmd *cobra.Command) (option.Options, error) {
	homeDir, _ := os.UserHomeDir()
	options := option.Default(homeDir)
	path := rcPath
	if path == "" && homeDir != "" {
		path = filepath.Join(homeDir, ".snxvpnrc")
	}
	if path != "" {
		err := readRC(path, &options)
		if err != nil && (rcPath != "" || !errors.Is(err, os.ErrNotExist)) {
			return option.Options{}, err
		}
	}
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return option.Options{}, E.Cause(err, "read config at ", configPath)
		}
		err = options.UnmarshalJSON(content)
		if err != nil {
			return option.Options{}, E.Cause(err, "decode config at ", configPath)
		}
	}
	applyFlags(cmd, &options)
	return options, nil
}

func readRC(path string, options *option.Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	err = option.LoadRC(bytes.NewReader(content), options)
	if err != nil {
		return E.Cause(err, "read rc file at ", path)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, options *option.Options) {
	changed := cmd.Flags().Changed
	if changed("cookiefile") {
		options.Cookie.Path = flagCookiePath
	}
	if changed("debug") {
		options.Debug = flagDebug
	}
	if changed("file") {
		options.Portal.File = flagFile
	}
	if changed("host") {
		options.Portal.Host = flagHost
	}
	if changed("height-data") {
		options.Portal.HeightData = flagHeightData
	}
	if changed("login-type") {
		options.Portal.LoginType = flagLoginType
	}
	if changed("multi-challenge") {
		options.Auth.MultiChallenge = option.ParseMultiChallenge(flagMultiChallenge)
	}
	if changed("password") {
		options.Auth.Password = flagPassword
	}
	if changed("protocol") {
		options.Portal.Protocol = flagProtocol
	}
	if changed("realm") {
		options.Portal.Realm = flagRealm
	}
	if changed("save-cookies") {
		options.Cookie.Save = flagSaveCookies
	}
	if changed("snxpath") {
		options.Tunnel.SNXPath = flagSNXPath
	}
	if changed("username") {
		options.Auth.Username = flagUsername
	}
	if changed("useragent") {
		options.Portal.UserAgent = flagUserAgent
	}
	if changed("skip-cert") {
		options.Portal.SkipCertVerify = flagSkipCert
	}
	if changed("use-host-as-gw") {
		options.Tunnel.UseHostAsGateway = flagUseHostAsGW
	}
	if changed("dns-server") {
		options.Tunnel.DNSServer = flagDNSServer
	}
	if changed("answer-path") {
		options.Tunnel.AnswerPath = flagAnswerPath
	}
}

// lookupNetrc fills missing credentials from the netrc entry of the host.
func lookupNetrc(options *option.Options) {
	if options.Auth.Username != "" && options.Auth.Password != "" {
		return
	}
	path := os.Getenv("NETRC")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path = filepath.Join(homeDir, ".netrc")
	}
	credentials, err := netrc.Parse(path)
	if err != nil {
		return
	}
	machine := credentials.Machine(options.Portal.Host)
	if machine == nil {
		return
	}
	if options.Auth.Username == "" {
		options.Auth.Username = machine.Get("login")
	}
	if options.Auth.Password == "" {
		options.Auth.Password = machine.Get("password")
	}
}
