package rtclient

import "github.com/hathora/fleetsdk/rtproto"

// handlers holds one optional callback slot per Reply kind, per Push kind,
// plus the connection status and protocol-error notifications. A nil slot
// means no subscriber is registered; the client silently skips dispatch
// rather than requiring every caller to subscribe to everything.
type handlers struct {
	onStatusChanged func(ConnectionStatus)
	onProtocolError func(*rtproto.Error)

	onConnectResult       func(*rtproto.ConnectResult)
	onSubscribeResult     func(*rtproto.SubscribeResult)
	onUnsubscribeResult   func(*rtproto.UnsubscribeResult)
	onPublishResult       func(*rtproto.PublishResult)
	onPresenceResult      func(*rtproto.PresenceResult)
	onPresenceStatsResult func(*rtproto.PresenceStatsResult)
	onHistoryResult       func(*rtproto.HistoryResult)
	onPingResult          func(*rtproto.PingResult)
	onRPCResult           func(*rtproto.RPCResult)
	onRefreshResult       func(*rtproto.RefreshResult)
	onSubRefreshResult    func(*rtproto.SubRefreshResult)

	onPublicationPush func(*rtproto.PublicationPush)
	onJoinPush        func(*rtproto.JoinPush)
	onLeavePush       func(*rtproto.LeavePush)
	onUnsubscribePush func(*rtproto.UnsubscribePush)
	onMessagePush     func(*rtproto.MessagePush)
	onSubscribePush   func(*rtproto.SubscribePush)
	onConnectPush     func(*rtproto.ConnectPush)
	onDisconnectPush  func(*rtproto.DisconnectPush)
	onRefreshPush     func(*rtproto.RefreshPush)
}

// OnStatusChanged registers the handler fired on every ConnectionStatus
// transition.
func (c *Client) OnStatusChanged(fn func(ConnectionStatus)) { c.handlers.onStatusChanged = fn }

// OnProtocolError registers the handler fired when an ErrorReply envelope
// arrives. It does not unwind any PendingRequest.
func (c *Client) OnProtocolError(fn func(*rtproto.Error)) { c.handlers.onProtocolError = fn }

func (c *Client) OnConnectResult(fn func(*rtproto.ConnectResult))             { c.handlers.onConnectResult = fn }
func (c *Client) OnSubscribeResult(fn func(*rtproto.SubscribeResult))         { c.handlers.onSubscribeResult = fn }
func (c *Client) OnUnsubscribeResult(fn func(*rtproto.UnsubscribeResult))     { c.handlers.onUnsubscribeResult = fn }
func (c *Client) OnPublishResult(fn func(*rtproto.PublishResult))             { c.handlers.onPublishResult = fn }
func (c *Client) OnPresenceResult(fn func(*rtproto.PresenceResult))           { c.handlers.onPresenceResult = fn }
func (c *Client) OnPresenceStatsResult(fn func(*rtproto.PresenceStatsResult)) { c.handlers.onPresenceStatsResult = fn }
func (c *Client) OnHistoryResult(fn func(*rtproto.HistoryResult))             { c.handlers.onHistoryResult = fn }
func (c *Client) OnPingResult(fn func(*rtproto.PingResult))                  { c.handlers.onPingResult = fn }
func (c *Client) OnRPCResult(fn func(*rtproto.RPCResult))                    { c.handlers.onRPCResult = fn }
func (c *Client) OnRefreshResult(fn func(*rtproto.RefreshResult))            { c.handlers.onRefreshResult = fn }
func (c *Client) OnSubRefreshResult(fn func(*rtproto.SubRefreshResult))      { c.handlers.onSubRefreshResult = fn }

func (c *Client) OnPublicationPush(fn func(*rtproto.PublicationPush)) { c.handlers.onPublicationPush = fn }
func (c *Client) OnJoinPush(fn func(*rtproto.JoinPush))               { c.handlers.onJoinPush = fn }
func (c *Client) OnLeavePush(fn func(*rtproto.LeavePush))             { c.handlers.onLeavePush = fn }
func (c *Client) OnUnsubscribePush(fn func(*rtproto.UnsubscribePush)) { c.handlers.onUnsubscribePush = fn }
func (c *Client) OnMessagePush(fn func(*rtproto.MessagePush))         { c.handlers.onMessagePush = fn }
func (c *Client) OnSubscribePush(fn func(*rtproto.SubscribePush))     { c.handlers.onSubscribePush = fn }
func (c *Client) OnConnectPush(fn func(*rtproto.ConnectPush))         { c.handlers.onConnectPush = fn }
func (c *Client) OnDisconnectPush(fn func(*rtproto.DisconnectPush))   { c.handlers.onDisconnectPush = fn }
func (c *Client) OnRefreshPush(fn func(*rtproto.RefreshPush))         { c.handlers.onRefreshPush = fn }

// dispatchResult fires the handler registered for a decoded Result value.
func (h *handlers) dispatchResult(method rtproto.Method, result any) {
	switch r := result.(type) {
	case *rtproto.ConnectResult:
		if h.onConnectResult != nil {
			h.onConnectResult(r)
		}
	case *rtproto.SubscribeResult:
		if h.onSubscribeResult != nil {
			h.onSubscribeResult(r)
		}
	case *rtproto.UnsubscribeResult:
		if h.onUnsubscribeResult != nil {
			h.onUnsubscribeResult(r)
		}
	case *rtproto.PublishResult:
		if h.onPublishResult != nil {
			h.onPublishResult(r)
		}
	case *rtproto.PresenceResult:
		if h.onPresenceResult != nil {
			h.onPresenceResult(r)
		}
	case *rtproto.PresenceStatsResult:
		if h.onPresenceStatsResult != nil {
			h.onPresenceStatsResult(r)
		}
	case *rtproto.HistoryResult:
		if h.onHistoryResult != nil {
			h.onHistoryResult(r)
		}
	case *rtproto.PingResult:
		if h.onPingResult != nil {
			h.onPingResult(r)
		}
	case *rtproto.RPCResult:
		if h.onRPCResult != nil {
			h.onRPCResult(r)
		}
	case *rtproto.RefreshResult:
		if h.onRefreshResult != nil {
			h.onRefreshResult(r)
		}
	case *rtproto.SubRefreshResult:
		if h.onSubRefreshResult != nil {
			h.onSubRefreshResult(r)
		}
	}
}

// dispatchPush fires the handler registered for a decoded Push value.
func (h *handlers) dispatchPush(push any) {
	switch p := push.(type) {
	case *rtproto.PublicationPush:
		if h.onPublicationPush != nil {
			h.onPublicationPush(p)
		}
	case *rtproto.JoinPush:
		if h.onJoinPush != nil {
			h.onJoinPush(p)
		}
	case *rtproto.LeavePush:
		if h.onLeavePush != nil {
			h.onLeavePush(p)
		}
	case *rtproto.UnsubscribePush:
		if h.onUnsubscribePush != nil {
			h.onUnsubscribePush(p)
		}
	case *rtproto.MessagePush:
		if h.onMessagePush != nil {
			h.onMessagePush(p)
		}
	case *rtproto.SubscribePush:
		if h.onSubscribePush != nil {
			h.onSubscribePush(p)
		}
	case *rtproto.ConnectPush:
		if h.onConnectPush != nil {
			h.onConnectPush(p)
		}
	case *rtproto.DisconnectPush:
		if h.onDisconnectPush != nil {
			h.onDisconnectPush(p)
		}
	case *rtproto.RefreshPush:
		if h.onRefreshPush != nil {
			h.onRefreshPush(p)
		}
	}
}
