// Package cookiestore keeps the portal session cookies and persists them
// between runs.
package cookiestore

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

var _ http.CookieJar = (*Jar)(nil)

type entryKey struct {
	domain string
	path   string
	name   string
}

// Entry is the persisted form of one cookie. A zero Expires marks a session
// cookie, which is saved as well.
type Entry struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	HostOnly bool      `json:"host_only,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
}

func (e Entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

func (e Entry) key() entryKey {
	return entryKey{e.Domain, e.Path, e.Name}
}

// Jar matches cookies with net/http/cookiejar and mirrors everything it was
// given so the set can be written out again.
type Jar struct {
	access  sync.Mutex
	jar     *cookiejar.Jar
	entries map[entryKey]Entry
	now     func() time.Time
}

func New() *Jar {
	return &Jar{
		jar:     newCookieJar(),
		entries: make(map[entryKey]Entry),
		now:     time.Now,
	}
}

func newCookieJar() *cookiejar.Jar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.access.Lock()
	defer j.access.Unlock()
	j.jar.SetCookies(u, cookies)
	now := j.now()
	for _, cookie := range cookies {
		entry := newEntry(u, cookie, now)
		if cookie.MaxAge < 0 || entry.expired(now) {
			delete(j.entries, entry.key())
			continue
		}
		j.entries[entry.key()] = entry
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.access.Lock()
	defer j.access.Unlock()
	return j.jar.Cookies(u)
}

// Clear forgets every cookie.
func (j *Jar) Clear() {
	j.access.Lock()
	defer j.access.Unlock()
	j.jar = newCookieJar()
	j.entries = make(map[entryKey]Entry)
}

// Entries returns the live cookies ordered by domain, path and name.
func (j *Jar) Entries() []Entry {
	j.access.Lock()
	defer j.access.Unlock()
	now := j.now()
	entries := make([]Entry, 0, len(j.entries))
	for _, entry := range j.entries {
		if entry.expired(now) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, k int) bool {
		a, b := entries[i], entries[k]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
	return entries
}

func (j *Jar) Len() int {
	return len(j.Entries())
}

func (j *Jar) restore(entry Entry) {
	scheme := "http"
	if entry.Secure {
		scheme = "https"
	}
	cookie := &http.Cookie{
		Name:     entry.Name,
		Value:    entry.Value,
		Path:     entry.Path,
		Secure:   entry.Secure,
		HttpOnly: entry.HttpOnly,
		Expires:  entry.Expires,
	}
	if !entry.HostOnly {
		cookie.Domain = entry.Domain
	}
	j.SetCookies(&url.URL{Scheme: scheme, Host: entry.Domain, Path: entry.Path}, []*http.Cookie{cookie})
}

func newEntry(u *url.URL, cookie *http.Cookie, now time.Time) Entry {
	entry := Entry{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     cookie.Path,
		Secure:   cookie.Secure,
		HttpOnly: cookie.HttpOnly,
	}
	if cookie.Domain != "" {
		entry.Domain = strings.TrimPrefix(strings.ToLower(cookie.Domain), ".")
	} else {
		entry.Domain = strings.ToLower(u.Hostname())
		entry.HostOnly = true
	}
	if entry.Path == "" || entry.Path[0] != '/' {
		entry.Path = defaultPath(u.Path)
	}
	switch {
	case cookie.MaxAge > 0:
		entry.Expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
	case !cookie.Expires.IsZero():
		entry.Expires = cookie.Expires
	}
	return entry
}

// defaultPath is the RFC 6265 section 5.1.4 default-path of a request path.
func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
