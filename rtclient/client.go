// Package rtclient owns the WebSocket lifecycle for the real-time push/RPC
// channel: connection state, request id allocation, pending-request
// correlation, and demultiplexing of replies and pushes into typed events.
package rtclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hathora/fleetsdk/rtproto"
)

// ConnectionStatus is the client's connection state. Observers registered
// via OnStatusChanged receive a notification on every transition.
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connecting
	Connected
	Disconnecting
)

func (s ConnectionStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// ErrClientClosed is returned by any method call made after Close.
var ErrClientClosed = errors.New("rtclient: client closed")

// ErrNotConnected is returned by a method call made while the client is not
// in the Connected state.
var ErrNotConnected = errors.New("rtclient: not connected")

// Client is the real-time RPC/push client described by rtproto. A Client
// owns exactly one logical connection; construct a new one to reconnect.
// The client itself never retries automatically.
type Client struct {
	url       string
	transport Transport
	logger    *slog.Logger

	mu       sync.Mutex
	status   ConnectionStatus
	closed   bool
	nextID   uint32
	pending  map[uint32]rtproto.Method
	writeMu  sync.Mutex

	handlers handlers
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithLogger sets the logger used for "logged and dropped" notices
// (unknown push types, replies for unknown ids, unparseable frames). A nil
// logger (the default) discards these notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a Client that will dial url with the production
// gorilla/websocket transport when Connect is called.
func New(url string, opts ...Option) *Client {
	return NewWithTransport(url, NewWebSocketTransport(url), opts...)
}

// NewWithTransport constructs a Client over a caller-supplied Transport,
// letting tests substitute a fake transport instead of a real socket.
func NewWithTransport(url string, transport Transport, opts ...Option) *Client {
	c := &Client{
		url:       url,
		transport: transport,
		pending:   make(map[uint32]rtproto.Method),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the client's current connection state.
func (c *Client) Status() ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return c.logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func (c *Client) setStatus(s ConnectionStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	if c.handlers.onStatusChanged != nil {
		c.handlers.onStatusChanged(s)
	}
}

// Connect is legal only from Disconnected; it transitions to Connecting and
// asks the transport to open. Calling it from any other state is a no-op
// logged as a warning.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log().Warn("Connect called after Close")
		return
	}
	if c.status != Disconnected {
		status := c.status
		c.mu.Unlock()
		c.log().Warn("Connect called from illegal state", "status", status.String())
		return
	}
	c.mu.Unlock()

	c.setStatus(Connecting)
	c.transport.Open(TransportEvents{
		OnOpen:    c.onTransportOpen,
		OnError:   c.onTransportError,
		OnClose:   c.onTransportClose,
		OnMessage: c.onTransportMessage,
	})
}

// Disconnect is legal from Connecting or Connected, so a hung open can
// always be aborted. It transitions to Disconnecting and asks the
// transport to close.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.status != Connecting && c.status != Connected {
		status := c.status
		c.mu.Unlock()
		c.log().Warn("Disconnect called from illegal state", "status", status.String())
		return
	}
	c.mu.Unlock()

	c.setStatus(Disconnecting)
	if err := c.transport.Close(); err != nil {
		c.log().Warn("error closing transport", "error", err)
	}
}

// Close idempotently tears the client down, including mid-handshake. Unlike
// Disconnect it also releases the pending-request map and permanently
// refuses further method calls.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = make(map[uint32]rtproto.Method)
	status := c.status
	c.mu.Unlock()

	if status != Disconnected {
		_ = c.transport.Close()
	}
	c.setStatus(Disconnected)
}

func (c *Client) onTransportOpen() {
	c.setStatus(Connected)
	// The implicit Connect command is always the first outbound message.
	if _, err := c.sendCommand(rtproto.MethodConnect, rtproto.ConnectRequest{}); err != nil {
		c.log().Warn("sending implicit connect command failed", "error", err)
	}
}

func (c *Client) onTransportError(err error) {
	c.mu.Lock()
	wasConnecting := c.status == Connecting
	c.mu.Unlock()
	if wasConnecting {
		c.setStatus(Disconnected)
	}
	c.log().Warn("transport error", "error", err)
}

func (c *Client) onTransportClose(code int, reason string, clean bool) {
	c.log().Info("transport closed", "code", code, "reason", reason, "clean", clean)
	c.setStatus(Disconnected)
}

func (c *Client) onTransportMessage(text string) {
	for _, piece := range strings.Split(text, "\n") {
		if piece == "" {
			continue
		}
		c.handleFrame(piece)
	}
}

func (c *Client) handleFrame(raw string) {
	frame := rtproto.ParseFrame([]byte(raw))
	switch frame.Kind {
	case rtproto.FrameError:
		if c.handlers.onProtocolError != nil {
			c.handlers.onProtocolError(frame.Error)
		} else {
			c.log().Warn("protocol error envelope", "code", frame.Error.Code, "message", frame.Error.Message)
		}

	case rtproto.FrameReply:
		c.mu.Lock()
		method, ok := c.pending[frame.ReplyID]
		if ok {
			delete(c.pending, frame.ReplyID)
		}
		c.mu.Unlock()

		if !ok {
			c.log().Warn("reply for unknown id", "id", frame.ReplyID)
			return
		}
		if method == rtproto.MethodSend {
			// Send has no reply in the protocol; the entry is simply removed.
			return
		}

		result, err := rtproto.DecodeResult(method, frame.ReplyBody)
		if err != nil {
			c.log().Warn("dropping unparseable result", "method", method.String(), "error", err)
			return
		}
		c.handlers.dispatchResult(method, result)

	case rtproto.FramePush:
		push, err := rtproto.DecodePush(frame.PushType, frame.PushData)
		if err != nil {
			c.log().Warn("dropping unknown or unparseable push", "type", frame.PushType.String(), "error", err)
			return
		}
		c.handlers.dispatchPush(push)

	default:
		c.log().Warn("dropping unparseable frame", "frame", raw)
	}
}

// sendCommand allocates the next request id, records a PendingRequest,
// serializes the command, and hands it to the transport. It does not wait
// for any reply.
func (c *Client) sendCommand(method rtproto.Method, params rtproto.Request) (uint32, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClientClosed
	}
	id := c.allocateID()
	c.pending[id] = method
	c.mu.Unlock()

	data, err := json.Marshal(rtproto.Command{ID: id, Method: method, Params: params})
	if err != nil {
		return 0, fmt.Errorf("rtclient: marshaling %s command: %w", method, err)
	}

	c.writeMu.Lock()
	err = c.transport.Send(string(data))
	c.writeMu.Unlock()
	if err != nil {
		return id, fmt.Errorf("rtclient: sending %s command: %w", method, err)
	}
	return id, nil
}

// allocateID returns the next non-zero id that is not already outstanding.
// Id 0 is reserved for pushes and is never allocated. Callers must hold
// c.mu.
func (c *Client) allocateID() uint32 {
	for {
		c.nextID++
		if c.nextID == 0 {
			c.nextID = 1
		}
		if _, exists := c.pending[c.nextID]; exists {
			continue
		}
		return c.nextID
	}
}

func (c *Client) requireConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	if c.status != Connected {
		return ErrNotConnected
	}
	return nil
}

// Subscribe issues a Subscribe command and returns its request id. The
// reply arrives later via OnSubscribeResult.
func (c *Client) Subscribe(req rtproto.SubscribeRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodSubscribe, req)
}

// Unsubscribe issues an Unsubscribe command.
func (c *Client) Unsubscribe(req rtproto.UnsubscribeRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodUnsubscribe, req)
}

// Publish issues a Publish command.
func (c *Client) Publish(req rtproto.PublishRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodPublish, req)
}

// Presence issues a Presence command.
func (c *Client) Presence(req rtproto.PresenceRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodPresence, req)
}

// PresenceStats issues a PresenceStats command.
func (c *Client) PresenceStats(req rtproto.PresenceStatsRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodPresenceStats, req)
}

// History issues a History command.
func (c *Client) History(req rtproto.HistoryRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodHistory, req)
}

// Ping issues a Ping command.
func (c *Client) Ping(req rtproto.PingRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodPing, req)
}

// Send issues a Send command. The protocol defines no reply for Send; the
// PendingRequest entry is removed silently when (if) a reply-shaped frame
// with its id ever arrives.
func (c *Client) Send(req rtproto.SendRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodSend, req)
}

// RPC issues an RPC command.
func (c *Client) RPC(req rtproto.RPCRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodRPC, req)
}

// Refresh issues a Refresh command.
func (c *Client) Refresh(req rtproto.RefreshRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodRefresh, req)
}

// SubRefresh issues a SubRefresh command.
func (c *Client) SubRefresh(req rtproto.SubRefreshRequest) (uint32, error) {
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	return c.sendCommand(rtproto.MethodSubRefresh, req)
}
