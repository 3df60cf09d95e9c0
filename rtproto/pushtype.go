package rtproto

// PushType identifies the kind of server-initiated push. When a push
// envelope omits its type tag entirely, it is treated as PushPublication.
// This is observed server behavior, not just a convenient default.
type PushType int32

const (
	PushPublication PushType = 0
	PushJoin        PushType = 1
	PushLeave       PushType = 2
	PushUnsubscribe PushType = 3
	PushMessage     PushType = 4
	PushSubscribe   PushType = 5
	PushConnect     PushType = 6
	PushDisconnect  PushType = 7
	PushRefresh     PushType = 8
)

func (p PushType) String() string {
	switch p {
	case PushPublication:
		return "publication"
	case PushJoin:
		return "join"
	case PushLeave:
		return "leave"
	case PushUnsubscribe:
		return "unsubscribe"
	case PushMessage:
		return "message"
	case PushSubscribe:
		return "subscribe"
	case PushConnect:
		return "connect"
	case PushDisconnect:
		return "disconnect"
	case PushRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}
