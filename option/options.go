package option

import (
	"bytes"
	"strings"

	C "github.com/snxvpn/snxconnect/constant"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/json"
)

type _Options struct {
	Log    *LogOptions   `json:"log,omitempty"`
	Portal PortalOptions `json:"portal"`
	Auth   AuthOptions   `json:"auth"`
	Cookie CookieOptions `json:"cookie"`
	Tunnel TunnelOptions `json:"tunnel"`
	Debug  bool          `json:"debug,omitempty"`
}

type Options _Options

// UnmarshalJSON decodes on top of the current values, so defaults and
// earlier sources survive for every key the document leaves out.
func (o *Options) UnmarshalJSON(content []byte) error {
	decoder := json.NewDecoder(json.NewCommentFilter(bytes.NewReader(content)))
	decoder.DisallowUnknownFields()
	err := decoder.Decode((*_Options)(o))
	if err == nil {
		return nil
	}
	if syntaxError, isSyntaxError := err.(*json.SyntaxError); isSyntaxError {
		prefix := string(content[:syntaxError.Offset])
		row := strings.Count(prefix, "\n") + 1
		column := len(prefix) - strings.LastIndex(prefix, "\n") - 1
		return E.Extend(syntaxError, "row ", row, ", column ", column)
	}
	return err
}

type LogOptions struct {
	Disabled     bool   `json:"disabled,omitempty"`
	Level        string `json:"level,omitempty"`
	Output       string `json:"output,omitempty"`
	Timestamp    bool   `json:"timestamp,omitempty"`
	DisableColor bool   `json:"-"`
}

type PortalOptions struct {
	Host           string `json:"host,omitempty"`
	Protocol       string `json:"protocol,omitempty"`
	File           string `json:"file,omitempty"`
	Realm          string `json:"realm,omitempty"`
	LoginType      string `json:"login_type,omitempty"`
	HeightData     string `json:"height_data,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
	SkipCertVerify bool   `json:"skip_cert,omitempty"`
}

type AuthOptions struct {
	Username       string         `json:"username,omitempty"`
	Password       string         `json:"password,omitempty"`
	MultiChallenge MultiChallenge `json:"multi_challenge"`
}

type CookieOptions struct {
	Path string `json:"path,omitempty"`
	Save bool   `json:"save,omitempty"`
}

type TunnelOptions struct {
	SNXPath          string `json:"snx_path,omitempty"`
	UseHostAsGateway bool   `json:"use_host_as_gateway,omitempty"`
	DNSServer        string `json:"dns_server,omitempty"`
	AnswerPath       string `json:"answer_path,omitempty"`
}

// Default returns the built-in values; homeDir may be empty.
func Default(homeDir string) Options {
	var cookiePath string
	if homeDir != "" {
		cookiePath = homeDir + "/.snxcookies"
	}
	return Options{
		Portal: PortalOptions{
			Protocol:  C.DefaultProtocol,
			File:      C.DefaultLoginFile,
			Realm:     C.DefaultRealm,
			LoginType: C.DefaultLoginType,
			UserAgent: C.DefaultUserAgent,
		},
		Cookie: CookieOptions{
			Path: cookiePath,
		},
		Tunnel: TunnelOptions{
			SNXPath: C.DefaultSNXPath,
		},
	}
}

func (o Options) Validate() error {
	if o.Portal.Host == "" {
		return C.ErrMissingHost
	}
	switch o.Portal.Protocol {
	case "http", "https":
	default:
		return E.New("unsupported protocol: ", o.Portal.Protocol)
	}
	if o.Cookie.Save && o.Cookie.Path == "" {
		return E.New("save_cookies requires a cookie file")
	}
	return nil
}
