package option

import (
	"bufio"
	"io"
	"strings"

	E "github.com/sagernet/sing/common/exceptions"
)

// LoadRC applies a ~/.snxvpnrc style file: one "key value" pair per line,
// '#' starts a comment line.
func LoadRC(reader io.Reader, options *Options) error {
	scanner := bufio.NewScanner(reader)
	var lineNumber int
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, " ")
		if !found {
			key, value, found = strings.Cut(line, "\t")
		}
		if !found {
			return E.New("line ", lineNumber, ": missing value for ", key)
		}
		key = strings.ReplaceAll(key, "-", "_")
		err := applyRC(options, key, strings.TrimSpace(value))
		if err != nil {
			return E.Cause(err, "line ", lineNumber)
		}
	}
	return scanner.Err()
}

func applyRC(options *Options, key string, value string) error {
	switch key {
	case "host", "server":
		options.Portal.Host = value
	case "protocol":
		options.Portal.Protocol = value
	case "file":
		options.Portal.File = value
	case "realm":
		options.Portal.Realm = value
	case "login_type":
		options.Portal.LoginType = value
	case "height_data":
		options.Portal.HeightData = value
	case "useragent":
		options.Portal.UserAgent = value
	case "skip_cert":
		options.Portal.SkipCertVerify = rcBool(value)
	case "username":
		options.Auth.Username = value
	case "password":
		options.Auth.Password = value
	case "multi_challenge":
		options.Auth.MultiChallenge = ParseMultiChallenge(value)
	case "cookiefile":
		options.Cookie.Path = value
	case "save_cookies":
		options.Cookie.Save = rcBool(value)
	case "snxpath":
		options.Tunnel.SNXPath = value
	case "use_host_as_gw":
		options.Tunnel.UseHostAsGateway = rcBool(value)
	case "dns_server":
		options.Tunnel.DNSServer = value
	case "answer_path":
		options.Tunnel.AnswerPath = value
	case "debug":
		options.Debug = rcBool(value)
	case "vpid_prefix":
		// accepted for compatibility, the portal flow never sends it
	default:
		return E.New("unknown option: ", key)
	}
	return nil
}

func rcBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes":
		return true
	default:
		return false
	}
}
