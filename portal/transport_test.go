package portal

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/snxvpn/snxconnect/log"

	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, host string) *Transport {
	transport, err := NewTransport(log.NewNOPFactory().Logger(), nil, TransportOptions{Protocol: "http", Host: host})
	require.NoError(t, err)
	t.Cleanup(func() {
		transport.Close()
	})
	return transport
}

func TestFetchTruncatedBody(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, err = http.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		fmt.Fprint(conn, "HTTP/1.1 200 OK\r\nContent-Length: 1000\r\nContent-Type: text/html\r\n\r\n<html><form id=\"loginForm\"")
	}()
	transport := newTestTransport(t, listener.Addr().String())
	page, err := transport.Fetch(context.Background(), "sslvpn/Login/Login", nil)
	require.NoError(t, err)
	require.True(t, page.Truncated)
	require.Equal(t, `<html><form id="loginForm"`, string(page.Content))
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()
	transport := newTestTransport(t, strings.TrimPrefix(server.URL, "http://"))
	_, err := transport.Fetch(context.Background(), "sslvpn/SNX/extender", nil)
	var networkError *NetworkError
	require.ErrorAs(t, err, &networkError)
	require.Equal(t, http.StatusForbidden, networkError.StatusCode)
	require.Equal(t, server.URL+"/sslvpn/SNX/extender", networkError.URL)
	require.ErrorContains(t, err, "403 Forbidden")
}

func TestFetchPostsForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		require.Equal(t, "alice", request.PostFormValue("userName"))
		fmt.Fprint(writer, "<html></html>")
	}))
	defer server.Close()
	transport := newTestTransport(t, strings.TrimPrefix(server.URL, "http://"))
	page, err := transport.Fetch(context.Background(), "sslvpn/Login/Login", map[string][]string{"userName": {"alice"}})
	require.NoError(t, err)
	require.False(t, page.Truncated)
	require.Equal(t, "<html></html>", string(page.Content))
	require.Equal(t, server.URL+"/sslvpn/Login/Login", page.Location())
}
