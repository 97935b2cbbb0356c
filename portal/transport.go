package portal

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/snxvpn/snxconnect/common/cookiestore"
	C "github.com/snxvpn/snxconnect/constant"
	"github.com/snxvpn/snxconnect/log"

	E "github.com/sagernet/sing/common/exceptions"
	M "github.com/sagernet/sing/common/metadata"
	N "github.com/sagernet/sing/common/network"
)

type TransportOptions struct {
	Protocol       string
	Host           string
	UserAgent      string
	SkipCertVerify bool
	Timeout        time.Duration
	Dialer         N.Dialer
}

// Transport issues requests against one portal and keeps its cookies.
type Transport struct {
	logger    log.ContextLogger
	protocol  string
	host      string
	userAgent string
	jar       *cookiestore.Jar
	client    *http.Client
}

func NewTransport(logger log.ContextLogger, jar *cookiestore.Jar, options TransportOptions) (*Transport, error) {
	if options.Host == "" {
		return nil, C.ErrMissingHost
	}
	protocol := options.Protocol
	if protocol == "" {
		protocol = C.DefaultProtocol
	}
	switch protocol {
	case "http", "https":
	default:
		return nil, E.New("unsupported protocol: ", protocol)
	}
	timeout := options.Timeout
	if timeout == 0 {
		timeout = C.HTTPTimeout
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = N.SystemDialer
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = C.DefaultUserAgent
	}
	if jar == nil {
		jar = cookiestore.New()
	}
	return &Transport{
		logger:    logger,
		protocol:  protocol,
		host:      options.Host,
		userAgent: userAgent,
		jar:       jar,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.DialContext(ctx, network, M.ParseSocksaddr(addr))
				},
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: options.SkipCertVerify,
				},
				ForceAttemptHTTP2: true,
			},
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (t *Transport) Jar() *cookiestore.Jar {
	return t.jar
}

func (t *Transport) Host() string {
	return t.host
}

// URL joins filePart under the portal root.
func (t *Transport) URL(filePart string) string {
	return t.protocol + "://" + t.host + "/" + strings.TrimLeft(filePart, "/")
}

// Fetch opens filePart, posting form when it is not nil.
func (t *Transport) Fetch(ctx context.Context, filePart string, form url.Values) (*Page, error) {
	requestURL := t.URL(filePart)
	var (
		request *http.Request
		err     error
	)
	if form != nil {
		request, err = http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()))
		if err == nil {
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		request, err = http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	}
	if err != nil {
		return nil, E.Cause(err, "create request")
	}
	request.Header.Set("User-Agent", t.userAgent)
	t.logger.TraceContext(ctx, request.Method, " ", requestURL)
	response, err := t.client.Do(request)
	if err != nil {
		return nil, &NetworkError{URL: requestURL, Err: err}
	}
	defer response.Body.Close()
	if response.StatusCode >= http.StatusBadRequest {
		return nil, &NetworkError{URL: requestURL, StatusCode: response.StatusCode, Err: E.New("server returned ", response.Status)}
	}
	page := &Page{
		URL:    response.Request.URL,
		Header: response.Header,
	}
	var buffer bytes.Buffer
	_, err = io.Copy(&buffer, response.Body)
	if err != nil {
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &NetworkError{URL: requestURL, Err: err}
		}
		page.Truncated = true
		t.logger.WarnContext(ctx, "incomplete read from ", page.Location(), ", continuing with ", buffer.Len(), " bytes")
	}
	page.Content = buffer.Bytes()
	t.logger.DebugContext(ctx, response.Status, " ", page.Location())
	return page, nil
}

func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// Session is the navigation state of one login: where the next request
// goes and what the last one returned.
type Session struct {
	transport *Transport
	Cursor    Cursor
	Page      *Page
}

func NewSession(transport *Transport, cursor Cursor) *Session {
	return &Session{transport: transport, Cursor: cursor}
}

func (s *Session) Transport() *Transport {
	return s.transport
}

// Open fetches filePart, or the cursor when filePart is empty.
func (s *Session) Open(ctx context.Context, filePart string, form url.Values) (*Page, error) {
	if filePart == "" {
		filePart = string(s.Cursor)
	}
	page, err := s.transport.Fetch(ctx, filePart, form)
	if err != nil {
		return nil, err
	}
	s.Page = page
	return page, nil
}

// Follow moves the cursor along reference.
func (s *Session) Follow(reference string) {
	s.Cursor = s.Cursor.Resolve(reference)
}
