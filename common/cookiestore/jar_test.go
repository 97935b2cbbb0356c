package cookiestore

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}

func TestSaveLoadRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	jar := New()
	jar.now = func() time.Time { return now }
	portal := mustParse(t, "https://vpn.example.com/sslvpn/Login/Login")
	jar.SetCookies(portal, []*http.Cookie{
		{Name: "CPCVPN_SESSION_ID", Value: "session", Path: "/", Secure: true, HttpOnly: true},
		{Name: "selected_realm", Value: "ssl_vpn", Path: "/sslvpn", Expires: now.Add(time.Hour)},
		{Name: "old", Value: "gone", Expires: now.Add(-time.Hour)},
		{Name: "shared", Value: "domain", Domain: ".example.com", Path: "/", MaxAge: 600},
	})

	path := filepath.Join(t.TempDir(), "cookies")
	require.NoError(t, jar.Save(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded := New()
	loaded.now = jar.now
	require.NoError(t, loaded.Load(path))
	require.Equal(t, jar.Entries(), loaded.Entries())
	require.Len(t, loaded.Entries(), 3)

	names := make(map[string]string)
	for _, cookie := range loaded.Cookies(mustParse(t, "https://vpn.example.com/sslvpn/Portal/Main")) {
		names[cookie.Name] = cookie.Value
	}
	require.Equal(t, map[string]string{
		"CPCVPN_SESSION_ID": "session",
		"selected_realm":    "ssl_vpn",
		"shared":            "domain",
	}, names)
}

func TestLoadSkipsExpired(t *testing.T) {
	now := time.Now()
	jar := New()
	portal := mustParse(t, "http://vpn.example.com/")
	jar.SetCookies(portal, []*http.Cookie{
		{Name: "short", Value: "1", Expires: now.Add(time.Minute)},
		{Name: "long", Value: "2", Expires: now.Add(time.Hour)},
	})
	path := filepath.Join(t.TempDir(), "cookies")
	require.NoError(t, jar.Save(path))

	loaded := New()
	loaded.now = func() time.Time { return now.Add(10 * time.Minute) }
	require.NoError(t, loaded.Load(path))
	entries := loaded.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "long", entries[0].Name)
	require.True(t, entries[0].HostOnly)
	require.Equal(t, "vpn.example.com", entries[0].Domain)
}

func TestDeleteAndClear(t *testing.T) {
	jar := New()
	portal := mustParse(t, "https://vpn.example.com/sslvpn/Login/Login")
	jar.SetCookies(portal, []*http.Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}})
	require.Equal(t, 2, jar.Len())
	require.Equal(t, "/sslvpn/Login", jar.Entries()[0].Path)

	jar.SetCookies(portal, []*http.Cookie{{Name: "a", MaxAge: -1}})
	require.Equal(t, 1, jar.Len())
	require.Len(t, jar.Cookies(portal), 1)

	jar.Clear()
	require.Zero(t, jar.Len())
	require.Empty(t, jar.Cookies(portal))
}

func TestLoadMissingFile(t *testing.T) {
	err := New().Load(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultPath(t *testing.T) {
	require.Equal(t, "/", defaultPath(""))
	require.Equal(t, "/", defaultPath("/Main"))
	require.Equal(t, "/sslvpn/Portal", defaultPath("/sslvpn/Portal/Main"))
	require.Equal(t, "/", defaultPath("relative"))
}
