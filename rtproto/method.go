// Package rtproto is the message catalogue for the real-time push/RPC
// channel: typed requests with their wire method tags, typed results, and
// typed server-initiated pushes, plus JSON encode/decode for all three.
package rtproto

// Method identifies the RPC method of an outbound command. The integer
// values are wire constants from the push server's protocol and must never
// be renumbered.
type Method int32

const (
	MethodConnect       Method = 0
	MethodSubscribe     Method = 1
	MethodUnsubscribe   Method = 2
	MethodPublish       Method = 3
	MethodPresence      Method = 4
	MethodPresenceStats Method = 5
	MethodHistory       Method = 6
	MethodPing          Method = 7
	MethodSend          Method = 8
	MethodRPC           Method = 9
	MethodRefresh       Method = 10
	MethodSubRefresh    Method = 11
)

func (m Method) String() string {
	switch m {
	case MethodConnect:
		return "connect"
	case MethodSubscribe:
		return "subscribe"
	case MethodUnsubscribe:
		return "unsubscribe"
	case MethodPublish:
		return "publish"
	case MethodPresence:
		return "presence"
	case MethodPresenceStats:
		return "presence_stats"
	case MethodHistory:
		return "history"
	case MethodPing:
		return "ping"
	case MethodSend:
		return "send"
	case MethodRPC:
		return "rpc"
	case MethodRefresh:
		return "refresh"
	case MethodSubRefresh:
		return "sub_refresh"
	default:
		return "unknown"
	}
}
