package portal

import (
	"net/http"
	"net/url"
	"strings"

	C "github.com/snxvpn/snxconnect/constant"

	"github.com/sagernet/sing/common"
)

// Page is one fetched portal resource.
type Page struct {
	URL     *url.URL
	Header  http.Header
	Content []byte
	// Truncated is set when the body read ended early. Content holds what
	// arrived before that.
	Truncated bool
}

func (p *Page) Location() string {
	if p == nil || p.URL == nil {
		return ""
	}
	return p.URL.String()
}

func (p *Page) path() string {
	if p == nil || p.URL == nil {
		return ""
	}
	return p.URL.Path
}

func (p *Page) IsMain() bool {
	return strings.HasSuffix(p.path(), C.MainSuffix)
}

func (p *Page) IsActivateLogin() bool {
	return strings.HasSuffix(p.path(), C.ActivateLoginSuffix)
}

func (p *Page) IsMultiChallenge() bool {
	return strings.Contains(p.Location(), C.MultiChallengeToken)
}

type Field struct {
	Name  string
	Value string
}

// Form is a portal form ready to be resubmitted.
type Form struct {
	Action string
	Method string
	Fields []Field
}

func (f *Form) Values() url.Values {
	values := make(url.Values)
	for _, field := range f.Fields {
		values.Set(field.Name, field.Value)
	}
	return values
}

func (f *Form) Names() []string {
	return common.Map(f.Fields, func(it Field) string {
		return it.Name
	})
}
