package snx

import (
	"sort"
	"strings"

	E "github.com/sagernet/sing/common/exceptions"
)

// Extender variable names published by the portal's SNX extender page.
const (
	ExtenderHostName          = "host_name"
	ExtenderPort              = "port"
	ExtenderServerCN          = "server_cn"
	ExtenderUserName          = "user_name"
	ExtenderPassword          = "password"
	ExtenderServerFingerprint = "server_fingerprint"
)

var requiredExtenderKeys = []string{
	ExtenderHostName,
	ExtenderPort,
	ExtenderServerCN,
	ExtenderUserName,
	ExtenderPassword,
	ExtenderServerFingerprint,
}

// Extender holds the session parameters the portal hands to the tunnel
// helper. Values are kept as the raw bytes found on the page.
type Extender map[string]string

func (e Extender) Validate() error {
	var missing []string
	for _, key := range requiredExtenderKeys {
		if _, loaded := e[key]; !loaded {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return E.New("missing ", strings.Join(missing, ", "))
	}
	return nil
}

// String lists the variables with the password masked.
func (e Extender) String() string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(" ")
		}
		value := e[key]
		if key == ExtenderPassword {
			value = "***"
		}
		builder.WriteString(key + "=" + value)
	}
	return builder.String()
}
