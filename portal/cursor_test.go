package portal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorResolve(t *testing.T) {
	t.Parallel()
	for _, testCase := range []struct {
		current   Cursor
		reference string
		expected  Cursor
	}{
		{"sslvpn/Login/Login", "/sslvpn/js/RSA.js", "sslvpn/js/RSA.js"},
		{"sslvpn/Login/Login", "https://portal.example.com/sslvpn/Portal/Main", "sslvpn/Portal/Main"},
		{"sslvpn/Login/Login", "http://portal.example.com:8080/sslvpn/Login/Login?x=1", "sslvpn/Login/Login?x=1"},
		{"sslvpn/Login/Login", "MultiChallenge", "sslvpn/Login/MultiChallenge"},
		{"sslvpn/Login/Login?lang=en", "../js/RSA.js", "sslvpn/Login/../js/RSA.js"},
		{"Login", "Portal", "Portal"},
	} {
		require.Equal(t, testCase.expected, testCase.current.Resolve(testCase.reference), "%s + %s", testCase.current, testCase.reference)
	}
}

func TestCursorResolveIdempotent(t *testing.T) {
	t.Parallel()
	for _, reference := range []string{
		"/sslvpn/Portal/Main",
		"https://portal.example.com/sslvpn/Portal/Main",
	} {
		for _, base := range []Cursor{"", "sslvpn/Login/Login", "a/b/c/d"} {
			once := base.Resolve(reference)
			require.Equal(t, once, once.Resolve(reference))
			require.Equal(t, Cursor("sslvpn/Portal/Main"), once)
		}
	}
}

func TestCursorRelativeReplacesFinalSegment(t *testing.T) {
	t.Parallel()
	base := Cursor("sslvpn/Login/Login")
	next := base.Resolve("ActivateLogin")
	require.Equal(t, Cursor("sslvpn/Login/ActivateLogin"), next)
	require.Equal(t, Cursor("sslvpn/Login/Other"), next.Resolve("Other"))
}
