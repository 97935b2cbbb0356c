package snx

import (
	"context"
	"net"
	"strconv"
	"strings"

	E "github.com/sagernet/sing/common/exceptions"
)

// Build resolves the gateway and lays the extender variables out as a
// handshake record.
func Build(ctx context.Context, resolver Resolver, extender Extender, portalHost string, useHostAsGateway bool) (*Record, error) {
	err := extender.Validate()
	if err != nil {
		return nil, E.Cause(err, "build handshake record")
	}
	gatewayHost := extender[ExtenderHostName]
	if useHostAsGateway {
		gatewayHost = stripPort(portalHost)
	}
	port, err := strconv.ParseUint(strings.TrimSpace(extender[ExtenderPort]), 10, 32)
	if err != nil {
		return nil, E.Cause(err, "parse gateway port")
	}
	address, err := resolver.LookupIPv4(ctx, gatewayHost)
	if err != nil {
		return nil, E.Cause(err, "resolve gateway ", gatewayHost)
	}
	record := NewRecord()
	record.SetGateway(address)
	record.Port = uint32(port)
	putString(record.GatewayHost[:], gatewayHost)
	putString(record.ServerCN[:], extender[ExtenderServerCN])
	putString(record.UserName[:], extender[ExtenderUserName])
	putString(record.Password[:], extender[ExtenderPassword])
	putString(record.Fingerprint[:], extender[ExtenderServerFingerprint])
	return record, nil
}

func stripPort(host string) string {
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		return hostname
	}
	return strings.Trim(host, "[]")
}
