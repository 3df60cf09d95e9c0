// Package sqp implements the UDP challenge/query responder game clients
// and server browsers use to discover a server's current player count and
// metadata without holding a game connection open.
package sqp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// messageType is the shared wire tag for both directions of a phase: 0 for
// challenge request/response, 1 for query request/response.
type messageType uint8

const (
	typeChallenge messageType = 0
	typeQuery     messageType = 1
)

const (
	headerSize  = 5 // type:u8 + challengeToken:u32
	maxLstrLen  = 255
)

// requestedChunk bits in a QueryRequest.
const (
	chunkServerInfo uint8 = 1 << 0
	chunkServerRules uint8 = 1 << 1
	chunkPlayerInfo uint8 = 1 << 2
	chunkTeamInfo   uint8 = 1 << 3
)

type header struct {
	Type           messageType
	ChallengeToken uint32
}

func decodeHeader(data []byte) (header, []byte, error) {
	if len(data) < headerSize {
		return header{}, nil, fmt.Errorf("sqp: datagram too short (%d bytes)", len(data))
	}
	h := header{
		Type:           messageType(data[0]),
		ChallengeToken: binary.BigEndian.Uint32(data[1:5]),
	}
	return h, data[headerSize:], nil
}

func (h header) encode(buf *bytes.Buffer) {
	buf.WriteByte(byte(h.Type))
	var tok [4]byte
	binary.BigEndian.PutUint32(tok[:], h.ChallengeToken)
	buf.Write(tok[:])
}

type queryRequest struct {
	header
	Version         uint16
	RequestedChunks uint8
}

func decodeQueryRequest(data []byte) (queryRequest, error) {
	h, rest, err := decodeHeader(data)
	if err != nil {
		return queryRequest{}, err
	}
	if len(rest) < 3 {
		return queryRequest{}, fmt.Errorf("sqp: query request too short")
	}
	return queryRequest{
		header:          h,
		Version:         binary.BigEndian.Uint16(rest[0:2]),
		RequestedChunks: rest[2],
	}, nil
}

// serverInfo is the mutable, setter-validated state surfaced in a
// ServerInfo chunk.
type serverInfo struct {
	CurrentPlayers uint16
	MaxPlayers     uint16
	ServerName     string
	GameType       string
	BuildID        string
	Map            string
	GamePort       uint16
}

func writeLstr(buf *bytes.Buffer, s string) error {
	if len(s) > maxLstrLen {
		return fmt.Errorf("sqp: string %q exceeds %d bytes", s, maxLstrLen)
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

// encodeServerInfoBody serializes the ServerInfo chunk body (not including
// its own length prefix).
func encodeServerInfoBody(info serverInfo) ([]byte, error) {
	var buf bytes.Buffer
	var u16 [2]byte

	binary.BigEndian.PutUint16(u16[:], info.CurrentPlayers)
	buf.Write(u16[:])
	binary.BigEndian.PutUint16(u16[:], info.MaxPlayers)
	buf.Write(u16[:])

	for _, s := range []string{info.ServerName, info.GameType, info.BuildID, info.Map} {
		if err := writeLstr(&buf, s); err != nil {
			return nil, err
		}
	}

	binary.BigEndian.PutUint16(u16[:], info.GamePort)
	buf.Write(u16[:])

	return buf.Bytes(), nil
}

// encodeQueryResponse builds the full QueryResponse datagram for a request,
// back-patching packetLength and (if present) serverInfoChunkLength after
// serializing the body they describe.
func encodeQueryResponse(token uint32, version uint16, requestedChunks uint8, info serverInfo) ([]byte, error) {
	var buf bytes.Buffer

	hdr := header{Type: typeQuery, ChallengeToken: token}
	hdr.encode(&buf)

	var versionBytes [2]byte
	binary.BigEndian.PutUint16(versionBytes[:], version)
	buf.Write(versionBytes[:])

	buf.WriteByte(0) // currentPacket
	buf.WriteByte(0) // lastPacket

	packetLengthOffset := buf.Len()
	buf.Write([]byte{0, 0}) // packetLength placeholder
	bodyStart := buf.Len()

	if requestedChunks&chunkServerInfo != 0 {
		chunk, err := encodeServerInfoBody(info)
		if err != nil {
			return nil, err
		}
		var chunkLen [4]byte
		binary.BigEndian.PutUint32(chunkLen[:], uint32(len(chunk)))
		buf.Write(chunkLen[:])
		buf.Write(chunk)
	}
	// ServerRules, PlayerInfo, TeamInfo bits are accepted but unanswered;
	// the core only implements the ServerInfo chunk.

	out := buf.Bytes()
	packetLength := len(out) - bodyStart
	binary.BigEndian.PutUint16(out[packetLengthOffset:packetLengthOffset+2], uint16(packetLength))

	return out, nil
}

func encodeChallengeResponse(token uint32) []byte {
	var buf bytes.Buffer
	header{Type: typeChallenge, ChallengeToken: token}.encode(&buf)
	return buf.Bytes()
}
