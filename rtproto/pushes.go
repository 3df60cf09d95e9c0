package rtproto

import (
	"encoding/json"
	"fmt"
)

// PublicationPush carries an application-level payload delivered to every
// subscriber of a channel. This is the push used to carry
// AllocateEvent/DeallocateEvent payloads on the per-server channel.
type PublicationPush struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Info   *ClientInfo     `json:"info,omitempty"`
	Offset uint64          `json:"offset"`
}

// JoinPush is delivered when a client joins a channel the connection is
// subscribed to.
type JoinPush struct {
	Info *ClientInfo `json:"info,omitempty"`
}

// LeavePush is delivered when a client leaves a channel the connection is
// subscribed to.
type LeavePush struct {
	Info *ClientInfo `json:"info,omitempty"`
}

// UnsubscribePush is delivered when the server unilaterally removes the
// connection's subscription to a channel. It carries no fields.
type UnsubscribePush struct{}

// MessagePush is an out-of-channel message sent directly to the
// connection.
type MessagePush struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// SubscribePush is delivered when the server grants a server-side
// subscription the connection did not itself request.
type SubscribePush struct {
	Recoverable bool            `json:"recoverable"`
	Epoch       string          `json:"epoch"`
	Offset      uint64          `json:"offset"`
	Positioned  bool            `json:"positioned"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// ConnectPush is delivered on unilateral server-initiated connect info,
// distinct from the reply to an explicit ConnectRequest.
type ConnectPush struct {
	Client  string                     `json:"client"`
	Version string                     `json:"version"`
	Data    json.RawMessage            `json:"data,omitempty"`
	Subs    map[string]SubscribeResult `json:"subs,omitempty"`
	Expires bool                       `json:"expires"`
	TTL     uint32                     `json:"ttl"`
}

// DisconnectPush notifies the client it is about to be (or has been)
// disconnected. See DisconnectCode for the caveat around code 3013.
type DisconnectPush struct {
	Code      DisconnectCode `json:"code"`
	Reason    string         `json:"reason"`
	Reconnect bool           `json:"reconnect"`
}

// RefreshPush notifies the client of updated session expiry information.
type RefreshPush struct {
	Expires bool   `json:"expires"`
	TTL     uint32 `json:"ttl"`
}

// DecodePush unmarshals raw into the Push type associated with pushType.
func DecodePush(pushType PushType, raw json.RawMessage) (any, error) {
	var target any
	switch pushType {
	case PushPublication:
		target = &PublicationPush{}
	case PushJoin:
		target = &JoinPush{}
	case PushLeave:
		target = &LeavePush{}
	case PushUnsubscribe:
		target = &UnsubscribePush{}
	case PushMessage:
		target = &MessagePush{}
	case PushSubscribe:
		target = &SubscribePush{}
	case PushConnect:
		target = &ConnectPush{}
	case PushDisconnect:
		target = &DisconnectPush{}
	case PushRefresh:
		target = &RefreshPush{}
	default:
		return nil, fmt.Errorf("rtproto: unknown push type %d", pushType)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("rtproto: decoding %s push: %w", pushType, err)
		}
	}
	return target, nil
}
