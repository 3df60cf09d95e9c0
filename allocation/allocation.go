// Package allocation wires the bootstrap config, the real-time client, and
// the control-plane HTTP client into the single coordinator a game server
// process embeds: it tracks the server's current allocation and exposes
// the operations a game loop calls to ready/unready itself and fetch
// match payload data.
package allocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/hathora/fleetsdk/bootstrap"
	"github.com/hathora/fleetsdk/control"
	"github.com/hathora/fleetsdk/rtclient"
	"github.com/hathora/fleetsdk/rtproto"
)

const localControlBaseURL = "http://localhost:8086"
const localRTURL = "ws://localhost:8086/v1/connection/websocket"

// Notification is broadcast to subscribers on every allocate/deallocate
// event observed on the server's channel.
type Notification struct {
	EventID      uuid.UUID
	ServerID     int64
	AllocationID uuid.UUID
	Allocated    bool // false for a deallocation notification
}

// Coordinator is the single owner value a game server process constructs
// once, wiring its config, RT client, and control client together.
type Coordinator struct {
	config  bootstrap.ServerConfig
	rt      *rtclient.Client
	control *control.Client
	logger  *slog.Logger

	mu           sync.Mutex
	allocationID *uuid.UUID

	onAllocation func(Notification)
}

// Option customizes a Coordinator at construction time.
type Option func(*Coordinator)

// WithLogger sets the logger used for dropped/malformed event notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithRTClient overrides the RT client, letting tests inject one built
// over a fake transport instead of a real WebSocket.
func WithRTClient(rt *rtclient.Client) Option {
	return func(c *Coordinator) { c.rt = rt }
}

// WithControlClient overrides the control-plane client, letting tests
// point it at a fake server.
func WithControlClient(cc *control.Client) Option {
	return func(c *Coordinator) { c.control = cc }
}

// New constructs a Coordinator for cfg. By default it dials the local
// sidecar's RT and control endpoints; use WithRTClient/WithControlClient
// to substitute fakes in tests.
func New(cfg bootstrap.ServerConfig, opts ...Option) *Coordinator {
	c := &Coordinator{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	if c.control == nil {
		c.control = control.New(localControlBaseURL)
	}
	if c.rt == nil {
		c.rt = rtclient.New(localRTURL, rtclient.WithLogger(c.logger))
	}

	c.rt.OnConnectResult(c.onConnectResult)
	c.rt.OnPublicationPush(c.onPublicationPush)

	return c
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// OnAllocationChanged registers the handler fired on every allocate or
// deallocate notification.
func (c *Coordinator) OnAllocationChanged(fn func(Notification)) {
	c.mu.Lock()
	c.onAllocation = fn
	c.mu.Unlock()
}

// AllocationID returns the current allocation id and whether one is set.
func (c *Coordinator) AllocationID() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.allocationID == nil {
		return uuid.UUID{}, false
	}
	return *c.allocationID, true
}

func (c *Coordinator) onConnectResult(*rtproto.ConnectResult) {
	channel := fmt.Sprintf("server#%s", strconv.FormatInt(c.config.ServerID, 10))
	if _, err := c.rt.Subscribe(rtproto.SubscribeRequest{Channel: channel}); err != nil {
		c.logger.Warn("allocation: subscribing to server channel failed", "channel", channel, "error", err)
	}
}

func (c *Coordinator) onPublicationPush(push *rtproto.PublicationPush) {
	var allocate rtproto.AllocateEvent
	if err := json.Unmarshal(push.Data, &allocate); err == nil && allocate.EventType == rtproto.AllocateEventType {
		c.mu.Lock()
		id := allocate.AllocationID
		c.allocationID = &id
		handler := c.onAllocation
		c.mu.Unlock()

		if handler != nil {
			handler(Notification{
				EventID:      allocate.EventID,
				ServerID:     allocate.ServerID,
				AllocationID: allocate.AllocationID,
				Allocated:    true,
			})
		}
		return
	}

	var deallocate rtproto.DeallocateEvent
	if err := json.Unmarshal(push.Data, &deallocate); err == nil && deallocate.EventType == rtproto.DeallocateEventType {
		c.mu.Lock()
		c.allocationID = nil
		handler := c.onAllocation
		c.mu.Unlock()

		if handler != nil {
			handler(Notification{
				EventID:      deallocate.EventID,
				ServerID:     deallocate.ServerID,
				AllocationID: deallocate.AllocationID,
				Allocated:    false,
			})
		}
		return
	}

	c.logger.Warn("allocation: publication is neither an allocate nor deallocate event", "data", string(push.Data))
}

// SubscribeToServerEvents opens the RT connection.
func (c *Coordinator) SubscribeToServerEvents() {
	c.rt.Connect()
}

// UnsubscribeToServerEvents closes the RT connection.
func (c *Coordinator) UnsubscribeToServerEvents() {
	c.rt.Disconnect()
}

// ReadyServerForPlayers marks the server instance ready. It requires an
// AllocationId to be present; otherwise it fails synchronously with status
// 400 without issuing any HTTP request.
func (c *Coordinator) ReadyServerForPlayers(ctx context.Context, onSuccess func(), onFailure func(*control.FailureDetail)) {
	allocationID, ok := c.AllocationID()
	if !ok {
		onFailure(&control.FailureDetail{Status: 400, Title: "Invalid Allocation ID", Detail: "no allocation is currently assigned"})
		return
	}
	c.control.ReadyServer(ctx, c.config.ServerID, allocationID.String(), onSuccess, onFailure)
}

// UnreadyServer marks the server instance no longer ready, regardless of
// whether an allocation is currently assigned.
func (c *Coordinator) UnreadyServer(ctx context.Context, onSuccess func(), onFailure func(*control.FailureDetail)) {
	c.control.UnreadyServer(ctx, c.config.ServerID, onSuccess, onFailure)
}

// GetPayloadAllocation fetches the raw match payload for the current
// allocation.
func (c *Coordinator) GetPayloadAllocation(ctx context.Context, onSuccess func(string), onFailure func(*control.FailureDetail)) {
	allocationID, ok := c.AllocationID()
	if !ok {
		onFailure(&control.FailureDetail{Status: 400, Title: "Invalid Allocation ID", Detail: "no allocation is currently assigned"})
		return
	}
	c.control.GetPayloadAllocation(ctx, allocationID.String(), onSuccess, onFailure)
}

// GetPayloadToken fetches a fresh payload-access token.
func (c *Coordinator) GetPayloadToken(ctx context.Context, onSuccess func(string), onFailure func(*control.FailureDetail)) {
	c.control.GetPayloadToken(ctx, onSuccess, onFailure)
}

// Shutdown tears the coordinator down: it unreadies the server (best
// effort, errors are logged not returned) and closes the RT connection.
func (c *Coordinator) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	c.control.UnreadyServer(ctx, c.config.ServerID, func() { close(done) }, func(f *control.FailureDetail) {
		c.logger.Warn("allocation: unready during shutdown failed", "error", f)
		close(done)
	})
	<-done
	c.rt.Close()
}
