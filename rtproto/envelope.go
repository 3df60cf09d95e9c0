package rtproto

import (
	"encoding/json"
	"fmt"
)

// Command is the outbound envelope `{id, method, params}`.
type Command struct {
	ID     uint32
	Method Method
	Params Request
}

// MarshalJSON writes the command as a compact JSON object. Params is
// marshaled inline so that optional fields the Request leaves unset are
// omitted entirely rather than sent as null.
func (c Command) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(c.Params)
	if err != nil {
		return nil, fmt.Errorf("rtproto: marshaling %s params: %w", c.Method, err)
	}
	return json.Marshal(struct {
		ID     uint32          `json:"id"`
		Method Method          `json:"method"`
		Params json.RawMessage `json:"params"`
	}{ID: c.ID, Method: c.Method, Params: params})
}

// wireEnvelope is the shape of any single decoded JSON object arriving on
// the transport, before it is classified as an error, a reply, or a push.
// ID is a pointer so a present-but-zero id (illegal per the protocol, id 0
// is reserved for pushes) is still distinguishable from an absent id.
type wireEnvelope struct {
	ID     *uint32         `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// pushResult is the shape of the "result" field on a push envelope: a
// (possibly absent, defaulting to Publication) type tag plus the payload.
type pushResult struct {
	Type *PushType       `json:"type,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frame classifies one decoded JSON message as exactly one of the three
// kinds defined by the protocol.
type Frame struct {
	Kind       FrameKind
	ReplyID    uint32
	ReplyBody  json.RawMessage
	Error      *Error
	PushType   PushType
	PushData   json.RawMessage
}

// FrameKind distinguishes the three shapes a decoded JSON message can take.
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameError
	FrameReply
	FramePush
)

// ParseFrame classifies a single JSON object (already split out of any
// LF-delimited multi-message text frame). It never returns an error for
// malformed input. Instead it returns FrameUnknown, matching the
// "logged and dropped" contract callers apply to unparseable frames.
func ParseFrame(raw []byte) Frame {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Frame{Kind: FrameUnknown}
	}

	if env.Error != nil {
		return Frame{Kind: FrameError, Error: env.Error}
	}

	if env.ID != nil && len(env.Result) > 0 {
		return Frame{Kind: FrameReply, ReplyID: *env.ID, ReplyBody: env.Result}
	}

	if len(env.Result) > 0 {
		var pr pushResult
		if err := json.Unmarshal(env.Result, &pr); err != nil {
			return Frame{Kind: FrameUnknown}
		}
		pushType := PushPublication
		if pr.Type != nil {
			pushType = *pr.Type
		}
		return Frame{Kind: FramePush, PushType: pushType, PushData: pr.Data}
	}

	return Frame{Kind: FrameUnknown}
}
