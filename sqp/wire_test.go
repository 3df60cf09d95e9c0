package sqp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeader_RejectsShortDatagram(t *testing.T) {
	_, _, err := decodeHeader([]byte{0, 1, 2})
	assert.Error(t, err)
}

func TestDecodeHeader_RoundTrip(t *testing.T) {
	var buf []byte
	{
		var b [5]byte
		b[0] = byte(typeQuery)
		binary.BigEndian.PutUint32(b[1:], 0x01020304)
		buf = b[:]
	}

	h, rest, err := decodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, typeQuery, h.Type)
	assert.Equal(t, uint32(0x01020304), h.ChallengeToken)
	assert.Empty(t, rest)
}

func TestDecodeQueryRequest(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(typeQuery))
	tok := make([]byte, 4)
	binary.BigEndian.PutUint32(tok, 42)
	buf = append(buf, tok...)
	version := make([]byte, 2)
	binary.BigEndian.PutUint16(version, 3)
	buf = append(buf, version...)
	buf = append(buf, chunkServerInfo)

	req, err := decodeQueryRequest(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), req.ChallengeToken)
	assert.Equal(t, uint16(3), req.Version)
	assert.Equal(t, chunkServerInfo, req.RequestedChunks)
}

func TestEncodeQueryResponse_ServerInfoLayout(t *testing.T) {
	info := serverInfo{
		CurrentPlayers: 4,
		MaxPlayers:     16,
		ServerName:     "my server",
		GameType:       "ctf",
		BuildID:        "1.0.0",
		Map:            "de_dust",
		GamePort:       7777,
	}

	resp, err := encodeQueryResponse(99, 3, chunkServerInfo, info)
	require.NoError(t, err)

	h, rest, err := decodeHeader(resp)
	require.NoError(t, err)
	assert.Equal(t, typeQuery, h.Type)
	assert.Equal(t, uint32(99), h.ChallengeToken)

	version := binary.BigEndian.Uint16(rest[0:2])
	currentPacket := rest[2]
	lastPacket := rest[3]
	packetLength := binary.BigEndian.Uint16(rest[4:6])
	body := rest[6:]

	assert.Equal(t, uint16(3), version)
	assert.Equal(t, byte(0), currentPacket)
	assert.Equal(t, byte(0), lastPacket)
	assert.Equal(t, int(packetLength), len(body))

	chunkLen := binary.BigEndian.Uint32(body[0:4])
	chunk := body[4:]
	assert.Equal(t, int(chunkLen), len(chunk))

	assert.Equal(t, uint16(4), binary.BigEndian.Uint16(chunk[0:2]))
	assert.Equal(t, uint16(16), binary.BigEndian.Uint16(chunk[2:4]))

	pos := 4
	for _, want := range []string{"my server", "ctf", "1.0.0", "de_dust"} {
		n := int(chunk[pos])
		pos++
		assert.Equal(t, want, string(chunk[pos:pos+n]))
		pos += n
	}
	assert.Equal(t, uint16(7777), binary.BigEndian.Uint16(chunk[pos:pos+2]))
}

func TestEncodeQueryResponse_UnsupportedChunksIgnored(t *testing.T) {
	resp, err := encodeQueryResponse(1, 1, chunkServerRules|chunkPlayerInfo|chunkTeamInfo, serverInfo{})
	require.NoError(t, err)

	_, rest, err := decodeHeader(resp)
	require.NoError(t, err)
	packetLength := binary.BigEndian.Uint16(rest[4:6])
	assert.Equal(t, uint16(0), packetLength)
}

func TestWriteLstr_RejectsOversizedString(t *testing.T) {
	long := make([]byte, maxLstrLen+1)
	for i := range long {
		long[i] = 'a'
	}

	info := serverInfo{ServerName: string(long)}
	_, err := encodeServerInfoBody(info)
	assert.Error(t, err)
}

func TestEncodeChallengeResponse(t *testing.T) {
	resp := encodeChallengeResponse(7)
	h, rest, err := decodeHeader(resp)
	require.NoError(t, err)
	assert.Equal(t, typeChallenge, h.Type)
	assert.Equal(t, uint32(7), h.ChallengeToken)
	assert.Empty(t, rest)
}
