package rtproto

import (
	"encoding/json"
	"fmt"
)

// ConnectResult is the decoded result of a ConnectRequest.
type ConnectResult struct {
	Client  string                    `json:"client"`
	Version string                    `json:"version"`
	Expires bool                      `json:"expires"`
	TTL     uint32                    `json:"ttl"`
	Data    json.RawMessage           `json:"data,omitempty"`
	Subs    map[string]SubscribeResult `json:"subs,omitempty"`
}

// SubscribeResult is the decoded result of a SubscribeRequest. Every
// documented field is populated; the upstream SDK this protocol was
// distilled from left most of these as unread TODOs, which this package
// deliberately does not reproduce.
type SubscribeResult struct {
	Expires     bool          `json:"expires"`
	TTL         uint32        `json:"ttl"`
	Recoverable bool          `json:"recoverable"`
	Epoch       string        `json:"epoch"`
	Publications []Publication `json:"publications,omitempty"`
	Recovered   bool          `json:"recovered"`
	Offset      uint64        `json:"offset"`
	Positioned  bool          `json:"positioned"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// UnsubscribeResult carries no fields.
type UnsubscribeResult struct{}

// PublishResult carries no fields.
type PublishResult struct{}

// PresenceResult is the decoded result of a PresenceRequest.
type PresenceResult struct {
	Presence map[string]ClientInfo `json:"presence,omitempty"`
}

// PresenceStatsResult is the decoded result of a PresenceStatsRequest.
type PresenceStatsResult struct {
	NumClients uint32 `json:"num_clients"`
	NumUsers   uint32 `json:"num_users"`
}

// HistoryResult is the decoded result of a HistoryRequest.
type HistoryResult struct {
	Publications []Publication `json:"publications,omitempty"`
	Epoch        string        `json:"epoch"`
	Offset       uint64        `json:"offset"`
}

// PingResult carries no fields.
type PingResult struct{}

// RPCResult is the decoded result of an RPCRequest.
type RPCResult struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// RefreshResult is the decoded result of a RefreshRequest.
type RefreshResult struct {
	Client  string `json:"client"`
	Version string `json:"version"`
	Expires bool   `json:"expires"`
	TTL     uint32 `json:"ttl"`
}

// SubRefreshResult is the decoded result of a SubRefreshRequest.
type SubRefreshResult struct {
	Expires bool   `json:"expires"`
	TTL     uint32 `json:"ttl"`
}

// DecodeResult unmarshals raw into the Result type associated with method.
// The Send method has no reply and is not a valid argument here.
func DecodeResult(method Method, raw json.RawMessage) (any, error) {
	var target any
	switch method {
	case MethodConnect:
		target = &ConnectResult{}
	case MethodSubscribe:
		target = &SubscribeResult{}
	case MethodUnsubscribe:
		target = &UnsubscribeResult{}
	case MethodPublish:
		target = &PublishResult{}
	case MethodPresence:
		target = &PresenceResult{}
	case MethodPresenceStats:
		target = &PresenceStatsResult{}
	case MethodHistory:
		target = &HistoryResult{}
	case MethodPing:
		target = &PingResult{}
	case MethodRPC:
		target = &RPCResult{}
	case MethodRefresh:
		target = &RefreshResult{}
	case MethodSubRefresh:
		target = &SubRefreshResult{}
	default:
		return nil, fmt.Errorf("rtproto: method %s has no result decoder", method)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("rtproto: decoding %s result: %w", method, err)
		}
	}
	return target, nil
}
