package sqp

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startResponder(t *testing.T) (*Responder, *net.UDPConn) {
	t.Helper()
	r := New("127.0.0.1:0", nil)
	require.True(t, r.Connect())
	t.Cleanup(func() { _ = r.Close() })

	clientConn, err := net.DialUDP("udp", nil, r.conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientConn.Close() })
	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))

	return r, clientConn
}

func challengeRequest() []byte {
	return encodeChallengeResponse(0) // same 5-byte layout, token ignored by the server
}

func TestChallengeThenQuery_FullRoundTrip(t *testing.T) {
	r, conn := startResponder(t)
	require.NoError(t, r.SetCurrentPlayers(2))
	require.NoError(t, r.SetMaxPlayers(10))
	require.NoError(t, r.SetServerName("test server"))
	require.NoError(t, r.SetGameType("deathmatch"))
	require.NoError(t, r.SetBuildID("abc123"))
	require.NoError(t, r.SetMap("arena"))
	require.NoError(t, r.SetGamePort(7777))

	_, err := conn.Write(challengeRequest())
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	h, _, err := decodeHeader(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, typeChallenge, h.Type)
	token := h.ChallengeToken

	var query []byte
	query = append(query, byte(typeQuery))
	tok := make([]byte, 4)
	binary.BigEndian.PutUint32(tok, token)
	query = append(query, tok...)
	version := make([]byte, 2)
	binary.BigEndian.PutUint16(version, 1)
	query = append(query, version...)
	query = append(query, chunkServerInfo)

	_, err = conn.Write(query)
	require.NoError(t, err)

	n, err = conn.Read(buf)
	require.NoError(t, err)
	rh, rest, err := decodeHeader(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, typeQuery, rh.Type)
	assert.Equal(t, token, rh.ChallengeToken)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(rest[0:2]))

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.ChallengesIssued)
	assert.Equal(t, uint64(1), stats.QueriesAnswered)
}

func TestChallenge_SecondRequestFromSamePeerIsSilentlyDropped(t *testing.T) {
	_, conn := startResponder(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(500*time.Millisecond)))

	_, err := conn.Write(challengeRequest())
	require.NoError(t, err)
	buf := make([]byte, 512)
	_, err = conn.Read(buf)
	require.NoError(t, err)

	_, err = conn.Write(challengeRequest())
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err = conn.Read(buf)
	assert.Error(t, err, "expected a read timeout since the second challenge is dropped silently")
}

func TestQuery_WrongTokenIsSilentlyDropped(t *testing.T) {
	r, conn := startResponder(t)

	_, err := conn.Write(challengeRequest())
	require.NoError(t, err)
	buf := make([]byte, 512)
	_, err = conn.Read(buf)
	require.NoError(t, err)

	var query []byte
	query = append(query, byte(typeQuery))
	query = append(query, []byte{0, 0, 0, 0}...) // wrong token
	query = append(query, []byte{0, 1}...)
	query = append(query, chunkServerInfo)

	_, err = conn.Write(query)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err = conn.Read(buf)
	assert.Error(t, err)

	assert.Equal(t, uint64(1), r.Stats().DatagramsDropped)
}

func TestQuery_WithoutPriorChallengeIsSilentlyDropped(t *testing.T) {
	r, conn := startResponder(t)

	var query []byte
	query = append(query, byte(typeQuery))
	query = append(query, []byte{0, 0, 0, 1}...)
	query = append(query, []byte{0, 1}...)
	query = append(query, chunkServerInfo)

	_, err := conn.Write(query)
	require.NoError(t, err)

	buf := make([]byte, 512)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err = conn.Read(buf)
	assert.Error(t, err)
	assert.Equal(t, uint64(1), r.Stats().DatagramsDropped)
}

func TestShortDatagram_IsDroppedNotPanicked(t *testing.T) {
	r, conn := startResponder(t)
	_, err := conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, uint64(1), r.Stats().DatagramsDropped)
}

func TestConnect_BindFailureReturnsFalse(t *testing.T) {
	blocker, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer blocker.Close()

	r := New(blocker.LocalAddr().String(), nil)
	assert.False(t, r.Connect())
}

func TestSetters_RejectOutOfRangeValues(t *testing.T) {
	r := New("127.0.0.1:0", nil)

	err := r.SetCurrentPlayers(70000)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "currentPlayers", verr.Field)

	longName := make([]byte, maxLstrLen+1)
	for i := range longName {
		longName[i] = 'x'
	}
	err = r.SetServerName(string(longName))
	require.Error(t, err)
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "serverName", verr.Field)
}
