package option

import (
	"strings"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/json"
)

// MultiChallenge enables the one-time code step. Code may be left empty,
// the code is then prompted for when the portal asks for it.
type MultiChallenge struct {
	Enabled bool
	Code    string
}

func (m MultiChallenge) MarshalJSON() ([]byte, error) {
	if m.Code != "" {
		return json.Marshal(m.Code)
	}
	return json.Marshal(m.Enabled)
}

func (m *MultiChallenge) UnmarshalJSON(content []byte) error {
	var enabled bool
	err := json.Unmarshal(content, &enabled)
	if err == nil {
		*m = MultiChallenge{Enabled: enabled}
		return nil
	}
	var code string
	err = json.Unmarshal(content, &code)
	if err != nil {
		return E.New("multi_challenge: expected boolean or code string")
	}
	*m = ParseMultiChallenge(code)
	return nil
}

// ParseMultiChallenge reads the textual form used on the command line and
// in the rc file: a boolean word or the code itself.
func ParseMultiChallenge(value string) MultiChallenge {
	switch strings.ToLower(value) {
	case "", "false", "no":
		return MultiChallenge{}
	case "true", "yes":
		return MultiChallenge{Enabled: true}
	default:
		return MultiChallenge{Enabled: true, Code: value}
	}
}
