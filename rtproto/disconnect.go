package rtproto

// DisconnectCode is the inbound code carried by a Disconnect push.
//
// DisconnectConnectionLimit and DisconnectChannelLimit share the wire value
// 3013. That is not a typo here: the upstream protocol assigns the same
// number to both conditions. Decoding a Disconnect push always maps 3013 to
// DisconnectConnectionLimit; code that cares about the distinction must
// look at the accompanying Reason string instead of the numeric code.
type DisconnectCode uint32

const (
	DisconnectNormal             DisconnectCode = 3000
	DisconnectShutdown           DisconnectCode = 3001
	DisconnectInvalidToken       DisconnectCode = 3002
	DisconnectBadRequest         DisconnectCode = 3003
	DisconnectServerError        DisconnectCode = 3004
	DisconnectExpired            DisconnectCode = 3005
	DisconnectSubExpired         DisconnectCode = 3006
	DisconnectStale              DisconnectCode = 3007
	DisconnectSlow               DisconnectCode = 3008
	DisconnectWriteError         DisconnectCode = 3009
	DisconnectInsufficientState  DisconnectCode = 3010
	DisconnectForceReconnect     DisconnectCode = 3011
	DisconnectForceNoReconnect   DisconnectCode = 3012
	DisconnectConnectionLimit    DisconnectCode = 3013
	DisconnectChannelLimit       DisconnectCode = 3013
)
