package snx

import (
	"context"
	"net"
	"net/netip"

	C "github.com/snxvpn/snxconnect/constant"

	E "github.com/sagernet/sing/common/exceptions"
	M "github.com/sagernet/sing/common/metadata"
	N "github.com/sagernet/sing/common/network"

	mDNS "github.com/miekg/dns"
)

type Resolver interface {
	LookupIPv4(ctx context.Context, host string) (netip.Addr, error)
}

// NewResolver returns the system resolver, or a resolver querying server
// directly when one is configured.
func NewResolver(server string) (Resolver, error) {
	if server == "" {
		return &SystemResolver{}, nil
	}
	serverAddr := M.ParseSocksaddr(server)
	if !serverAddr.IsValid() {
		return nil, E.New("invalid DNS server: ", server)
	}
	if serverAddr.Port == 0 {
		serverAddr.Port = 53
	}
	return &DNSResolver{Server: serverAddr}, nil
}

type SystemResolver struct{}

func (r *SystemResolver) LookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if address, err := netip.ParseAddr(host); err == nil {
		return checkIPv4(address)
	}
	addresses, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addresses) == 0 {
		return netip.Addr{}, E.New("no IPv4 address for ", host)
	}
	return addresses[0].Unmap(), nil
}

type DNSResolver struct {
	Server M.Socksaddr
}

func (r *DNSResolver) LookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if address, err := netip.ParseAddr(host); err == nil {
		return checkIPv4(address)
	}
	ctx, cancel := context.WithTimeout(ctx, C.DNSTimeout)
	defer cancel()
	message := new(mDNS.Msg)
	message.SetQuestion(mDNS.Fqdn(host), mDNS.TypeA)
	response, err := r.exchange(ctx, N.NetworkUDP, message)
	if err != nil {
		return netip.Addr{}, err
	}
	if response.Truncated {
		response, err = r.exchange(ctx, N.NetworkTCP, message)
		if err != nil {
			return netip.Addr{}, err
		}
	}
	if response.Rcode != mDNS.RcodeSuccess {
		return netip.Addr{}, E.New("lookup ", host, ": ", mDNS.RcodeToString[response.Rcode])
	}
	for _, answer := range response.Answer {
		if record, isA := answer.(*mDNS.A); isA {
			address, loaded := netip.AddrFromSlice(record.A.To4())
			if loaded {
				return address, nil
			}
		}
	}
	return netip.Addr{}, E.New("no IPv4 address for ", host)
}

func (r *DNSResolver) exchange(ctx context.Context, network string, message *mDNS.Msg) (*mDNS.Msg, error) {
	client := &mDNS.Client{Net: network, Timeout: C.DNSTimeout}
	response, _, err := client.ExchangeContext(ctx, message, r.Server.String())
	if err != nil {
		return nil, E.Cause(err, "exchange ", network, " ", r.Server)
	}
	return response, nil
}

func checkIPv4(address netip.Addr) (netip.Addr, error) {
	address = address.Unmap()
	if !address.Is4() {
		return netip.Addr{}, E.New("not an IPv4 address: ", address)
	}
	return address, nil
}
