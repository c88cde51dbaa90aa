package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// pollInterval bounds how long a single RecvFrom call blocks before
// reporting WouldBlock — short enough that the receive thread's stop flag
// (§5) is checked frequently, long enough to avoid a hot spin loop.
const pollInterval = 20 * time.Millisecond

// Socket is a thin non-blocking UDP datagram endpoint: sendTo/recvFrom
// plus the bound local endpoint, exactly the two operations spec.md §4.B
// names.
type Socket struct {
	conn  *net.UDPConn
	local Endpoint
}

// Open binds a UDP socket to bindAddr ("host:port"; port 0 picks an
// ephemeral port) and returns it with its bound local endpoint already
// resolved, so callers can observe ephemeral-port allocation.
func Open(bindAddr string) (*Socket, error) {
	addr, err := net.ResolveUDPAddr("udp4", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolving %s: %w", bindAddr, err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: binding %s: %w", bindAddr, err)
	}
	local, err := endpointFromUDPAddr(conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: resolving bound local address: %w", err)
	}
	return &Socket{conn: conn, local: local}, nil
}

// LocalEndpoint returns the endpoint this socket is bound to.
func (s *Socket) LocalEndpoint() Endpoint { return s.local }

// Close releases the underlying file descriptor. Subsequent SendTo/RecvFrom
// calls report the Closed tag.
func (s *Socket) Close() error { return s.conn.Close() }

// SendTo writes payload to dst, returning the byte count written and a
// tag from the closed error taxonomy.
func (s *Socket) SendTo(payload []byte, dst Endpoint) (int, ErrorTag) {
	n, err := s.conn.WriteToUDP(payload, dst.UDPAddr())
	return n, classify(err)
}

// RecvFrom reads one datagram into buf, blocking for at most pollInterval
// before reporting WouldBlock if nothing arrived — the non-blocking
// semantics spec.md §4.B requires without a raw syscall-level O_NONBLOCK
// socket option, which net.UDPConn doesn't expose directly.
func (s *Socket) RecvFrom(buf []byte) (int, Endpoint, ErrorTag) {
	if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return 0, Endpoint{}, classify(err)
	}
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return n, Endpoint{}, classify(err)
	}
	ep, epErr := endpointFromUDPAddr(addr)
	if epErr != nil {
		return n, Endpoint{}, Other
	}
	return n, ep, Ok
}

// Poll calls RecvFrom in a loop, backing off on transient WouldBlock /
// Interrupted results (§7's "short exponential back-off on transient recv
// errors") and returning as soon as a datagram arrives, a fatal error
// occurs, or ctx is cancelled.
func Poll(ctx context.Context, s *Socket, buf []byte) (int, Endpoint, ErrorTag) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Millisecond
	b.MaxInterval = pollInterval
	b.MaxElapsedTime = 0 // caller controls lifetime via ctx

	for {
		select {
		case <-ctx.Done():
			return 0, Endpoint{}, Closed
		default:
		}

		n, from, tag := s.RecvFrom(buf)
		if tag == Ok {
			return n, from, tag
		}
		if !tag.Transient() {
			return n, from, tag
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return 0, Endpoint{}, tag
		}
		select {
		case <-ctx.Done():
			return 0, Endpoint{}, Closed
		case <-time.After(wait):
		}
	}
}
