package rtproto

import "encoding/json"

// Request is implemented by every outbound command's params type. Method
// reports the wire method tag the enclosing Command envelope must carry.
type Request interface {
	Method() Method
}

// ConnectRequest is the client handshake, sent automatically by rtclient
// as the first outbound message once the transport opens.
type ConnectRequest struct {
	Token   string                     `json:"token,omitempty"`
	Data    json.RawMessage            `json:"data,omitempty"`
	Subs    map[string]SubscribeRequest `json:"subs,omitempty"`
	Name    string                     `json:"name,omitempty"`
	Version string                     `json:"version,omitempty"`
}

func (ConnectRequest) Method() Method { return MethodConnect }

// SubscribeRequest asks the server to subscribe the connection to a
// channel. Offset and Epoch support resuming a recoverable subscription;
// leave them unset for a fresh subscription.
type SubscribeRequest struct {
	Channel string  `json:"channel,omitempty"`
	Token   string  `json:"token,omitempty"`
	Recover *bool   `json:"recover,omitempty"`
	Epoch   string  `json:"epoch,omitempty"`
	Offset  *uint64 `json:"offset,omitempty"`
}

func (SubscribeRequest) Method() Method { return MethodSubscribe }

// UnsubscribeRequest asks the server to remove the connection's
// subscription to Channel.
type UnsubscribeRequest struct {
	Channel string `json:"channel"`
}

func (UnsubscribeRequest) Method() Method { return MethodUnsubscribe }

// PublishRequest publishes an application payload to Channel.
type PublishRequest struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (PublishRequest) Method() Method { return MethodPublish }

// PresenceRequest asks for the list of clients currently subscribed to
// Channel.
type PresenceRequest struct {
	Channel string `json:"channel"`
}

func (PresenceRequest) Method() Method { return MethodPresence }

// PresenceStatsRequest asks for aggregate presence counts for Channel.
type PresenceStatsRequest struct {
	Channel string `json:"channel"`
}

func (PresenceStatsRequest) Method() Method { return MethodPresenceStats }

// HistoryRequest asks for past publications on Channel.
type HistoryRequest struct {
	Channel string         `json:"channel"`
	Limit   int32          `json:"limit,omitempty"`
	Since   StreamPosition `json:"since,omitempty"`
	Reverse bool           `json:"reverse,omitempty"`
}

func (HistoryRequest) Method() Method { return MethodHistory }

// PingRequest carries no fields; the protocol has no Send reply, and Ping's
// reply is likewise empty.
type PingRequest struct{}

func (PingRequest) Method() Method { return MethodPing }

// SendRequest is a fire-and-forget payload: the protocol defines no reply
// for it, so rtclient removes its PendingRequest entry without dispatching
// any event.
type SendRequest struct {
	Data json.RawMessage `json:"data,omitempty"`
}

func (SendRequest) Method() Method { return MethodSend }

// RPCRequest invokes a server-side RPC method by name.
type RPCRequest struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Method string          `json:"method"`
}

func (RPCRequest) Method() Method { return MethodRPC }

// RefreshRequest extends the connection's session with a freshly obtained
// token.
type RefreshRequest struct {
	Token string `json:"token"`
}

func (RefreshRequest) Method() Method { return MethodRefresh }

// SubRefreshRequest extends a single channel subscription's expiry with a
// freshly obtained token.
type SubRefreshRequest struct {
	Channel string `json:"channel"`
	Token   string `json:"token"`
}

func (SubRefreshRequest) Method() Method { return MethodSubRefresh }
