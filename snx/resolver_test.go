package snx

import (
	"context"
	"net"
	"net/netip"
	"testing"

	M "github.com/sagernet/sing/common/metadata"

	mDNS "github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func startDNSServer(t *testing.T, handler mDNS.HandlerFunc) M.Socksaddr {
	packetConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	started := make(chan struct{})
	server := &mDNS.Server{
		PacketConn:        packetConn,
		Handler:           handler,
		NotifyStartedFunc: func() { close(started) },
	}
	go server.ActivateAndServe()
	<-started
	t.Cleanup(func() {
		server.Shutdown()
	})
	return M.SocksaddrFromNet(packetConn.LocalAddr())
}

func TestDNSResolver(t *testing.T) {
	t.Parallel()
	serverAddr := startDNSServer(t, func(writer mDNS.ResponseWriter, request *mDNS.Msg) {
		response := new(mDNS.Msg)
		response.SetReply(request)
		if request.Question[0].Name == "gw.example.com." {
			record, _ := mDNS.NewRR("gw.example.com. 60 IN A 192.0.2.10")
			response.Answer = append(response.Answer, record)
		} else {
			response.Rcode = mDNS.RcodeNameError
		}
		writer.WriteMsg(response)
	})
	resolver, err := NewResolver(serverAddr.String())
	require.NoError(t, err)
	address, err := resolver.LookupIPv4(context.Background(), "gw.example.com")
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddr("192.0.2.10"), address)

	_, err = resolver.LookupIPv4(context.Background(), "missing.example.com")
	require.ErrorContains(t, err, "NXDOMAIN")
}

func TestResolverLiteral(t *testing.T) {
	t.Parallel()
	for _, resolver := range []Resolver{&SystemResolver{}, &DNSResolver{Server: M.ParseSocksaddr("127.0.0.1:1")}} {
		address, err := resolver.LookupIPv4(context.Background(), "203.0.113.7")
		require.NoError(t, err)
		require.Equal(t, netip.MustParseAddr("203.0.113.7"), address)
		_, err = resolver.LookupIPv4(context.Background(), "2001:db8::1")
		require.Error(t, err)
	}
}

func TestNewResolverDefaultPort(t *testing.T) {
	t.Parallel()
	resolver, err := NewResolver("192.0.2.53")
	require.NoError(t, err)
	require.Equal(t, uint16(53), resolver.(*DNSResolver).Server.Port)

	resolver, err = NewResolver("")
	require.NoError(t, err)
	require.IsType(t, &SystemResolver{}, resolver)
}
