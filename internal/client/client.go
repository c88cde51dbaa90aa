// Package client implements the client-side message pipeline and
// replication spec.md §4.K/§4.L describe: a receiver loop that decodes
// inbound frames and routes them onto typed queues, a parallel welcome
// loop that drives the handshake until the server acknowledges it, and a
// remote->local entity replicator that applies snapshots against a local
// entity.Store with interpolation state for a renderer to consume.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// DefaultQueueSize bounds every queue the pipeline feeds; when a slow
// consumer lets a queue fill up, the newly arrived event is dropped rather
// than stalling the receive loop (spec.md §4.C discipline carried over
// from the server side).
const DefaultQueueSize = 256

// Config is what a caller supplies to Dial: which server to talk to and
// the display name carried on ClientJoinRequest.
type Config struct {
	ServerAddr  string
	DisplayName string
}

// Client owns one game-instance connection: its socket, the inbound
// pipeline, the welcome loop, and the local entity replicator.
type Client struct {
	sock   *transport.Socket
	server transport.Endpoint
	name   string
	log    *slog.Logger

	Pipeline *Pipeline
	Repl     *Replicator

	headerSeq atomic.Uint32
	inputSeq  atomic.Uint32

	cancel context.CancelFunc
}

// Dial opens a local UDP socket and prepares a Client to talk to
// cfg.ServerAddr. It does not block on the handshake; call Run to start
// the receive loop and welcome loop.
func Dial(cfg Config, log *slog.Logger) (*Client, error) {
	sock, err := transport.Open("0.0.0.0:0")
	if err != nil {
		return nil, fmt.Errorf("client: opening socket: %w", err)
	}
	addr, err := transport.ResolveEndpoint(cfg.ServerAddr)
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("client: resolving %s: %w", cfg.ServerAddr, err)
	}

	c := &Client{
		sock:   sock,
		server: addr,
		name:   cfg.DisplayName,
		log:    log,
		Repl:   NewReplicator(entity.New()),
	}
	c.Pipeline = NewPipeline(sock, addr, log.With("component", "pipeline"))
	return c, nil
}

// LocalEndpoint returns the ephemeral endpoint the client's socket bound
// to.
func (c *Client) LocalEndpoint() transport.Endpoint { return c.sock.LocalEndpoint() }

// Run starts the receive loop and the parallel welcome loop, and blocks
// until ctx is cancelled or Close is called.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	defer cancel()

	done := make(chan struct{}, 1)
	go func() { c.Pipeline.Run(ctx); done <- struct{}{} }()

	c.runWelcomeLoop(ctx)
	<-done
}

// Close stops Run and releases the socket.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.sock.Close()
}

// nextHeaderSeq returns the next header-level sequence id, wrapping at
// uint16 the way the wire format's sequenceId field does.
func (c *Client) nextHeaderSeq() uint16 {
	return uint16(c.headerSeq.Add(1))
}

// send frames and writes payload to the server. Non-transient send
// failures are logged rather than surfaced — the welcome loop and
// gameplay sends are all best-effort over UDP (spec.md §1 Non-goals).
func (c *Client) send(mt wire.MessageType, payload interface{ Marshal() []byte }) {
	buf, err := wire.Encode(wire.ClientToServer, mt, c.nextHeaderSeq(), 0, payload.Marshal())
	if err != nil {
		c.log.Error("failed to encode outbound message", "messageType", mt, "err", err)
		return
	}
	if _, tag := c.sock.SendTo(buf, c.server); tag != transport.Ok && !tag.Transient() {
		c.log.Debug("sendTo failed", "dst", c.server, "tag", tag)
	}
}

// SendInput transmits one ClientInput sample, allocating the next
// strictly-increasing sequence id the server's monotone-sequence
// invariant (spec.md §5/§8) requires.
func (c *Client) SendInput(x, y, angle float32, buttons uint8) {
	seq := c.inputSeq.Add(1)
	c.send(wire.MsgClientInput, wire.ClientInput{
		SequenceID: seq,
		X:          x,
		Y:          y,
		Angle:      angle,
		Buttons:    buttons,
	})
}

// SendChat broadcasts a chat line through the server's room roster
// rebroadcast path (internal/instance's ControlChat handling).
func (c *Client) SendChat(text string) {
	c.send(wire.MsgChat, wire.Chat{From: c.name, Text: text})
}

// SendLeaveRoom notifies the server of an explicit, non-timeout
// disconnect.
func (c *Client) SendLeaveRoom() {
	c.send(wire.MsgLeaveRoom, wire.LeaveRoom{})
}

func (c *Client) runWelcomeLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	c.sendWelcomeRound()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Pipeline.HandshakeDone() {
				return
			}
			c.sendWelcomeRound()
		}
	}
}

// sendWelcomeRound fires the handshake quartet spec.md §4.K names, once
// per second, until handshakeDone — idempotent on the server side, so
// repeated Hello/Join/Ready sends collapse onto the same session
// (spec.md §8's "idempotent session" property).
func (c *Client) sendWelcomeRound() {
	c.send(wire.MsgClientHello, wire.ClientHello{ProtocolVersion: wire.CurrentVersion})
	c.send(wire.MsgClientJoinRequest, wire.ClientJoinRequest{DisplayName: c.name})
	c.send(wire.MsgClientReady, wire.ClientReady{})
	c.send(wire.MsgClientPing, wire.ClientPing{Nonce: c.headerSeq.Load()})
}
