package portal

import (
	"net/url"
	"testing"

	"github.com/snxvpn/snxconnect/snx"

	"github.com/stretchr/testify/require"
)

func htmlPage(content string) *Page {
	pageURL, _ := url.Parse("https://portal.example.com/sslvpn/Login/Login")
	return &Page{URL: pageURL, Content: []byte(content)}
}

func TestFindRSAScript(t *testing.T) {
	t.Parallel()
	extractor := NewHTMLExtractor()
	source, found := extractor.FindRSAScript(htmlPage(`<html><head>
<script src="/sslvpn/js/jquery.js"></script>
<script>var RSA = 1;</script>
<script src="/sslvpn/js/RSA.js"></script>
<script src="/sslvpn/js/RSA2.js"></script>
</head></html>`))
	require.True(t, found)
	require.Equal(t, "/sslvpn/js/RSA.js", source)

	_, found = extractor.FindRSAScript(htmlPage(`<html><script src="/a.js"></script></html>`))
	require.False(t, found)
}

func TestParseRSAParams(t *testing.T) {
	t.Parallel()
	extractor := NewHTMLExtractor()
	params, err := extractor.ParseRSAParams([]byte("// key\nvar modulus = 'c0ffee';\r\nvar exponent = \"10001\";\nvar modulus = 'ff';\n"))
	require.NoError(t, err)
	require.Equal(t, "c0ffee", params.Modulus.Text(16))
	require.EqualValues(t, 65537, params.Exponent.Int64())

	_, err = extractor.ParseRSAParams([]byte("var modulus = 'c0ffee';\n"))
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.ErrorContains(t, err, "RSA parameters")

	_, err = extractor.ParseRSAParams([]byte("var modulus = 'xyz';\nvar exponent = '3';\n"))
	require.ErrorAs(t, err, &extractionErr)
}

const challengePage = `<html><body>
<form name="other" action="/nowhere" method="post"><input name="a" value="b"></form>
<form name="MCForm" action="MultiChallenge" method="post">
<input type="hidden" name="token" value="abc">
<input type="hidden" name="empty">
<input type="password" name="otp">
<input name="password" value="x">
<input name="btnCancel" value="Cancel">
<input name="SendMethod" value="sms">
<input name="phoneNumbersSelection" value="1">
<input value="unnamed">
</form></body></html>`

func TestFindForm(t *testing.T) {
	t.Parallel()
	extractor := NewHTMLExtractor()
	form, err := extractor.FindForm(htmlPage(challengePage), FormByName("MCForm"))
	require.NoError(t, err)
	require.Equal(t, "MultiChallenge", form.Action)
	require.Equal(t, []string{"token", "empty"}, form.Names())
	require.Equal(t, url.Values{"token": {"abc"}, "empty": {""}}, form.Values())

	_, err = extractor.FindForm(htmlPage(challengePage), FormByID("loginForm"))
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.ErrorContains(t, err, "loginForm")

	_, err = extractor.FindForm(htmlPage(`<form id="loginForm" action="/x" method="get"></form>`), FormByID("loginForm"))
	require.ErrorAs(t, err, &extractionErr)
	require.ErrorContains(t, err, "method")
}

func TestParseExtender(t *testing.T) {
	t.Parallel()
	extractor := NewHTMLExtractor()
	extender, err := extractor.ParseExtender(htmlPage(`<html><script>var x = 1;</script><script>
function init() {}
Extender.host_name = "gw.example.com"; Extender.port = "443"; Extender.server_cn = "gw"; Extender.user_name = "alice"; Extender.password = "to;k=en"; Extender.server_fingerprint = "FP"; /* Extender.user_name */
Extender.ignored = "yes";
</script></html>`))
	require.NoError(t, err)
	require.Equal(t, snx.Extender{
		"host_name":          "gw.example.com",
		"port":               "443",
		"server_cn":          "gw",
		"user_name":          "alice",
		"password":           "to;k=en",
		"server_fingerprint": "FP",
	}, extender)

	_, err = extractor.ParseExtender(htmlPage(`<script>Extender.host_name = "gw"; /* Extender.user_name */</script>`))
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.ErrorContains(t, err, "extender variables")
	require.ErrorContains(t, err, "server_fingerprint")

	_, err = extractor.ParseExtender(htmlPage(`<script>nothing here</script>`))
	require.ErrorAs(t, err, &extractionErr)
}

func TestParseExtenderLineStopsWithoutAssignment(t *testing.T) {
	t.Parallel()
	extender := parseExtenderLine(`Extender.a = "1"; oops; Extender.b = "2"`)
	require.Equal(t, snx.Extender{"a": "1"}, extender)
	extender = parseExtenderLine(`plain = "1"; Extender.b = "2"`)
	require.Equal(t, snx.Extender{"b": "2"}, extender)
}

func TestCheckError(t *testing.T) {
	t.Parallel()
	extractor := NewHTMLExtractor()
	message, found := extractor.CheckError(htmlPage(`<div class="errorMessage"> Access denied </div><div class="errorMessage">second</div>`))
	require.True(t, found)
	require.Equal(t, "Access denied", message)
	_, found = extractor.CheckError(htmlPage(`<div class="info">fine</div>`))
	require.False(t, found)
}
