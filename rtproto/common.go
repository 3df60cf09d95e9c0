package rtproto

import "encoding/json"

// Error is the payload of a protocol-level error envelope.
type Error struct {
	Code    uint32 `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// ClientInfo identifies the client and, optionally, the user behind a
// presence-related event.
type ClientInfo struct {
	User   string `json:"user,omitempty"`
	Client string `json:"client,omitempty"`
}

// StreamPosition marks a point in a channel's publication stream, used by
// HistoryRequest to request publications since a given offset/epoch pair.
type StreamPosition struct {
	Offset uint64 `json:"offset"`
	Epoch  string `json:"epoch"`
}

// Publication is an application-level message delivered either as the
// payload of a PublicationPush or as an entry in a History/Subscribe
// result's publication list.
type Publication struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Info   *ClientInfo     `json:"info,omitempty"`
	Offset uint64          `json:"offset"`
}
