package portal

import (
	"bytes"
	"math/big"
	"strings"

	C "github.com/snxvpn/snxconnect/constant"
	"github.com/snxvpn/snxconnect/snx"

	E "github.com/sagernet/sing/common/exceptions"

	"github.com/PuerkitoBio/goquery"
)

type RSAPublicParams struct {
	Modulus  *big.Int
	Exponent *big.Int
}

// FormSelector picks a form by its id or name attribute.
type FormSelector struct {
	Attribute string
	Value     string
}

func FormByID(id string) FormSelector {
	return FormSelector{Attribute: "id", Value: id}
}

func FormByName(name string) FormSelector {
	return FormSelector{Attribute: "name", Value: name}
}

func (s FormSelector) String() string {
	return "form " + s.Attribute + "=" + s.Value
}

type Extractor interface {
	FindRSAScript(page *Page) (string, bool)
	ParseRSAParams(content []byte) (*RSAPublicParams, error)
	FindForm(page *Page, selector FormSelector) (*Form, error)
	ParseExtender(page *Page) (snx.Extender, error)
	CheckError(page *Page) (string, bool)
}

var _ Extractor = (*HTMLExtractor)(nil)

// Inputs the login sequence fills itself.
var excludedFormInputs = map[string]bool{
	"password":              true,
	"btnCancel":             true,
	"SendMethod":            true,
	"phoneNumbersSelection": true,
}

type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) document(page *Page) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(page.Content))
}

func (e *HTMLExtractor) FindRSAScript(page *Page) (string, bool) {
	document, err := e.document(page)
	if err != nil {
		return "", false
	}
	var source string
	document.Find("script[src]").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		src, _ := script.Attr("src")
		if strings.Contains(src, C.RSAScriptMarker) {
			source = src
			return false
		}
		return true
	})
	return source, source != ""
}

func (e *HTMLExtractor) ParseRSAParams(content []byte) (*RSAPublicParams, error) {
	values := make(map[string]string, 2)
	for _, line := range strings.Split(string(content), "\n") {
		if len(values) == 2 {
			break
		}
		for _, key := range []string{"modulus", "exponent"} {
			if !strings.Contains(line, "var "+key) {
				continue
			}
			value := strings.TrimRight(strings.TrimSpace(line), ";")
			if index := strings.IndexByte(value, '='); index >= 0 {
				value = value[index+1:]
			}
			values[key] = strings.Trim(strings.TrimSpace(value), `'"`)
			break
		}
	}
	if len(values) < 2 {
		return nil, &ExtractionError{Expected: "RSA parameters"}
	}
	modulus, loaded := new(big.Int).SetString(values["modulus"], 16)
	if !loaded {
		return nil, &ExtractionError{Expected: "RSA parameters", Err: E.New("bad modulus: ", values["modulus"])}
	}
	exponent, loaded := new(big.Int).SetString(values["exponent"], 16)
	if !loaded {
		return nil, &ExtractionError{Expected: "RSA parameters", Err: E.New("bad exponent: ", values["exponent"])}
	}
	return &RSAPublicParams{Modulus: modulus, Exponent: exponent}, nil
}

func (e *HTMLExtractor) FindForm(page *Page, selector FormSelector) (*Form, error) {
	document, err := e.document(page)
	if err != nil {
		return nil, &ExtractionError{Expected: selector.String(), URL: page.Location(), Err: err}
	}
	selection := document.Find("form").FilterFunction(func(_ int, form *goquery.Selection) bool {
		value, loaded := form.Attr(selector.Attribute)
		return loaded && value == selector.Value
	}).First()
	if selection.Length() == 0 {
		return nil, &ExtractionError{Expected: selector.String(), URL: page.Location()}
	}
	form := &Form{
		Action: selection.AttrOr("action", ""),
		Method: selection.AttrOr("method", ""),
	}
	if !strings.EqualFold(form.Method, "post") {
		return nil, &ExtractionError{Expected: selector.String(), URL: page.Location(), Err: E.New("unexpected method: ", form.Method)}
	}
	selection.Find("input").Each(func(_ int, input *goquery.Selection) {
		if input.AttrOr("type", "") == "password" {
			return
		}
		name, loaded := input.Attr("name")
		if !loaded || excludedFormInputs[name] {
			return
		}
		form.Fields = append(form.Fields, Field{Name: name, Value: input.AttrOr("value", "")})
	})
	return form, nil
}

func (e *HTMLExtractor) ParseExtender(page *Page) (snx.Extender, error) {
	document, err := e.document(page)
	if err != nil {
		return nil, &ExtractionError{Expected: "extender variables", URL: page.Location(), Err: err}
	}
	var block string
	document.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if strings.Contains(text, C.ExtenderMarker) {
			block = text
			return false
		}
		return true
	})
	if block == "" {
		return nil, &ExtractionError{Expected: "extender variables", URL: page.Location()}
	}
	var line string
	for _, candidate := range strings.Split(block, "\n") {
		if strings.Contains(candidate, C.ExtenderMarker) {
			line = candidate
			break
		}
	}
	extender := parseExtenderLine(line)
	err = extender.Validate()
	if err != nil {
		return nil, &ExtractionError{Expected: "extender variables", URL: page.Location(), Err: err}
	}
	return extender, nil
}

// parseExtenderLine reads `Extender.<name> = "<value>";` statements. A
// statement without an assignment ends the line.
func parseExtenderLine(line string) snx.Extender {
	extender := make(snx.Extender)
	for _, statement := range splitStatements(line) {
		lhs, rhs, found := strings.Cut(statement, "=")
		if !found {
			break
		}
		_, name, found := strings.Cut(lhs, ".")
		if !found {
			continue
		}
		extender[strings.TrimSpace(name)] = strings.Trim(strings.TrimSpace(rhs), `"`)
	}
	return extender
}

// splitStatements splits on semicolons outside double quotes.
func splitStatements(line string) []string {
	var (
		statements []string
		quoted     bool
		start      int
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				statements = append(statements, line[start:i])
				start = i + 1
			}
		}
	}
	return append(statements, line[start:])
}

func (e *HTMLExtractor) CheckError(page *Page) (string, bool) {
	document, err := e.document(page)
	if err != nil {
		return "", false
	}
	selection := document.Find(C.ErrorMessageSelector).First()
	if selection.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(selection.Text()), true
}
