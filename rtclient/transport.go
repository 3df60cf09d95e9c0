package rtclient

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// TransportEvents are the lifecycle callbacks a Transport invokes. They are
// always invoked on a transport-owned goroutine; Client serializes its own
// state under these callbacks so subscribers never see concurrent events.
type TransportEvents struct {
	OnOpen    func()
	OnError   func(err error)
	OnClose   func(code int, reason string, clean bool)
	OnMessage func(text string)
	// OnSent is optional and used for logging only.
	OnSent func(text string)
}

// Transport is the external collaborator that owns the physical WebSocket
// connection. rtclient depends only on this small interface so tests can
// substitute a fake transport instead of opening a real socket.
type Transport interface {
	// Open asks the transport to begin connecting. It must not block;
	// events.OnOpen/OnError report the outcome asynchronously.
	Open(events TransportEvents)
	// Send writes a single text frame. Safe to call only after OnOpen and
	// before OnClose.
	Send(text string) error
	// Close asks the transport to close the connection. events.OnClose
	// reports completion.
	Close() error
}

const (
	handshakeTimeout = 15 * time.Second
	writeTimeout     = 10 * time.Second
	pongWait         = 60 * time.Second
	pingInterval     = 30 * time.Second
)

// wsTransport is the production Transport, a thin wrapper over
// github.com/gorilla/websocket.
type wsTransport struct {
	url    string
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewWebSocketTransport builds the default production Transport for the
// given WebSocket URL.
func NewWebSocketTransport(url string) Transport {
	return &wsTransport{url: url}
}

func (t *wsTransport) Open(events TransportEvents) {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go t.run(ctx, events)
}

func (t *wsTransport) run(ctx context.Context, events TransportEvents) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		if events.OnError != nil {
			events.OnError(fmt.Errorf("dialing %s: %w", t.url, err))
		}
		return
	}
	t.conn = conn

	if events.OnOpen != nil {
		events.OnOpen()
	}

	go t.pingLoop(ctx)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			t.closeWith(events, websocket.CloseAbnormalClosure, err.Error(), false)
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			clean := false
			if ce, ok := err.(*websocket.CloseError); ok {
				code = ce.Code
				clean = true
			}
			t.closeWith(events, code, err.Error(), clean)
			return
		}

		if events.OnMessage != nil {
			events.OnMessage(string(message))
		}
	}
}

func (t *wsTransport) closeWith(events TransportEvents, code int, reason string, clean bool) {
	_ = t.conn.Close()
	if events.OnClose != nil {
		events.OnClose(code, reason, clean)
	}
}

func (t *wsTransport) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.conn == nil {
				return
			}
			if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (t *wsTransport) Send(text string) error {
	if t.conn == nil {
		return fmt.Errorf("transport not open")
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *wsTransport) Close() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.conn == nil {
		return nil
	}
	deadline := time.Now().Add(writeTimeout)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.conn.Close()
}
