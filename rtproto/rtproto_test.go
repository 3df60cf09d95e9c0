package rtproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_MarshalJSON_OmitsUnsetOptionalFields(t *testing.T) {
	cmd := Command{
		ID:     5,
		Method: MethodSubscribe,
		Params: SubscribeRequest{Channel: "server#12345"},
	}

	data, err := json.Marshal(cmd)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":5,"method":1,"params":{"channel":"server#12345"}}`, string(data))
}

func TestParseFrame_Reply(t *testing.T) {
	frame := ParseFrame([]byte(`{"id":5,"result":{}}`))
	assert.Equal(t, FrameReply, frame.Kind)
	assert.Equal(t, uint32(5), frame.ReplyID)
}

func TestParseFrame_PushDefaultsToPublication(t *testing.T) {
	frame := ParseFrame([]byte(`{"result":{"data":{"foo":"bar"}}}`))
	assert.Equal(t, FramePush, frame.Kind)
	assert.Equal(t, PushPublication, frame.PushType)
}

func TestParseFrame_PushExplicitType(t *testing.T) {
	frame := ParseFrame([]byte(`{"result":{"type":7,"data":{"code":3000,"reason":"bye","reconnect":false}}}`))
	assert.Equal(t, FramePush, frame.Kind)
	assert.Equal(t, PushDisconnect, frame.PushType)

	push, err := DecodePush(frame.PushType, frame.PushData)
	require.NoError(t, err)
	disconnect := push.(*DisconnectPush)
	assert.Equal(t, DisconnectNormal, disconnect.Code)
	assert.Equal(t, "bye", disconnect.Reason)
}

func TestParseFrame_Error(t *testing.T) {
	frame := ParseFrame([]byte(`{"error":{"code":109,"message":"expired"}}`))
	require.Equal(t, FrameError, frame.Kind)
	assert.Equal(t, uint32(109), frame.Error.Code)
}

func TestParseFrame_Unknown(t *testing.T) {
	frame := ParseFrame([]byte(`{"totally":"unrelated"}`))
	assert.Equal(t, FrameUnknown, frame.Kind)
}

func TestE1_MultiMessageFrame(t *testing.T) {
	rawFrame := `{"id":5,"result":{}}` + "\n" +
		`{"result":{"data":{"EventID":"e3e455f8-f977-11e9-bccf-1a111111f111","EventType":"AllocateEventType","ServerID":12345,"AllocationID":"e3e455f8-f977-11e9-bccf-2a222222f222"}}}`

	var frames []Frame
	for _, piece := range splitLF(rawFrame) {
		frames = append(frames, ParseFrame([]byte(piece)))
	}

	require.Len(t, frames, 2)

	require.Equal(t, FrameReply, frames[0].Kind)
	subResult, err := DecodeResult(MethodSubscribe, frames[0].ReplyBody)
	require.NoError(t, err)
	assert.IsType(t, &SubscribeResult{}, subResult)

	require.Equal(t, FramePush, frames[1].Kind)
	assert.Equal(t, PushPublication, frames[1].PushType)

	var event AllocateEvent
	require.NoError(t, json.Unmarshal(frames[1].PushData, &event))
	assert.Equal(t, AllocateEventType, event.EventType)
	assert.Equal(t, int64(12345), event.ServerID)
	assert.Equal(t, "e3e455f8-f977-11e9-bccf-2a222222f222", event.AllocationID.String())
}

func splitLF(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if piece := s[start:i]; piece != "" {
				out = append(out, piece)
			}
			start = i + 1
		}
	}
	if piece := s[start:]; piece != "" {
		out = append(out, piece)
	}
	return out
}

func TestDecodeResult_UnknownMethod(t *testing.T) {
	_, err := DecodeResult(MethodSend, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestDisconnectCodes_SharedWireValue(t *testing.T) {
	assert.Equal(t, DisconnectConnectionLimit, DisconnectChannelLimit)
	assert.EqualValues(t, 3013, DisconnectConnectionLimit)
}
