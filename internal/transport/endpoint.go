// Package transport implements the non-blocking UDP datagram abstraction
// every instance and the lobby dispatcher send and receive through: a
// value-typed Endpoint, a closed error taxonomy, and a Socket exposing
// sendTo/recvFrom plus a backoff-paced polling helper for transient
// WouldBlock/Interrupted conditions.
package transport

import (
	"fmt"
	"net"
)

// Endpoint is a four-octet IPv4 address plus a 16-bit port, value-typed and
// hashable by its dotted-string form so it can key a map directly.
type Endpoint struct {
	ip   [4]byte
	port uint16
}

// AnyEndpoint is the zero value, meaning "no particular endpoint" per the
// (0.0.0.0, 0) invariant.
var AnyEndpoint = Endpoint{}

// NewEndpoint builds an Endpoint from an IPv4 address and port. It returns
// an error for anything that isn't a 4-byte (or 4-in-6) address.
func NewEndpoint(ip net.IP, port uint16) (Endpoint, error) {
	v4 := ip.To4()
	if v4 == nil {
		return Endpoint{}, fmt.Errorf("transport: %s is not an IPv4 address", ip)
	}
	var e Endpoint
	copy(e.ip[:], v4)
	e.port = port
	return e, nil
}

// IsAny reports whether e is the (0.0.0.0, 0) sentinel.
func (e Endpoint) IsAny() bool { return e == AnyEndpoint }

func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", e.ip[0], e.ip[1], e.ip[2], e.ip[3], e.port)
}

// UDPAddr converts e to the stdlib net package's address type.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IP(e.ip[:]), Port: int(e.port)}
}

func endpointFromUDPAddr(addr *net.UDPAddr) (Endpoint, error) {
	return NewEndpoint(addr.IP, uint16(addr.Port))
}

// ResolveEndpoint parses a "host:port" string (as accepted by
// net.ResolveUDPAddr) into an Endpoint, resolving hostnames through DNS
// the way a client's server-address flag or menu entry does.
func ResolveEndpoint(hostport string) (Endpoint, error) {
	addr, err := net.ResolveUDPAddr("udp4", hostport)
	if err != nil {
		return Endpoint{}, fmt.Errorf("transport: resolving %s: %w", hostport, err)
	}
	return endpointFromUDPAddr(addr)
}
