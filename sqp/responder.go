package sqp

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
)

// Stats is a snapshot of the responder's lifetime counters.
type Stats struct {
	ChallengesIssued uint64
	QueriesAnswered  uint64
	DatagramsDropped uint64
}

// Responder is a UDP challenge/query server. Connect binds the socket and
// starts the receive loop; Close stops it. ServerInfo fields are safe to
// update concurrently with an active responder via the Set* methods.
type Responder struct {
	addr   string
	logger *slog.Logger

	conn   net.PacketConn
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	tokens map[string]uint32
	info   serverInfo

	challengesIssued uint64
	queriesAnswered  uint64
	datagramsDropped uint64
}

// New constructs a Responder bound to addr (e.g. "0.0.0.0:7779") once
// Connect is called. logger may be nil.
func New(addr string, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Responder{
		addr:   addr,
		logger: logger,
		tokens: make(map[string]uint32),
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Connect binds the UDP socket and starts the receive loop. It returns
// false, leaving the responder disconnected, if the bind fails.
func (r *Responder) Connect() bool {
	conn, err := listenUDP(r.addr)
	if err != nil {
		r.logger.Error("sqp: bind failed", "addr", r.addr, "error", err)
		return false
	}
	r.conn = conn
	r.stopCh = make(chan struct{})

	r.wg.Add(1)
	go r.receiveLoop()
	return true
}

// Close stops the receive loop and closes the socket.
func (r *Responder) Close() error {
	if r.conn == nil {
		return nil
	}
	close(r.stopCh)
	err := r.conn.Close()
	r.wg.Wait()
	return err
}

func (r *Responder) receiveLoop() {
	defer r.wg.Done()
	buf := make([]byte, 2048)
	for {
		n, peer, err := r.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-r.stopCh:
				return
			default:
				r.logger.Warn("sqp: read error", "error", err)
				return
			}
		}
		r.handleDatagram(peer, append([]byte(nil), buf[:n]...))
	}
}

func (r *Responder) handleDatagram(peer net.Addr, data []byte) {
	if len(data) < headerSize {
		atomic.AddUint64(&r.datagramsDropped, 1)
		r.logger.Warn("sqp: datagram too short", "bytes", len(data), "peer", peer.String())
		return
	}

	switch messageType(data[0]) {
	case typeChallenge:
		r.handleChallenge(peer, data)
	case typeQuery:
		r.handleQuery(peer, data)
	default:
		atomic.AddUint64(&r.datagramsDropped, 1)
		r.logger.Warn("sqp: unknown message type", "type", data[0], "peer", peer.String())
	}
}

func (r *Responder) handleChallenge(peer net.Addr, data []byte) {
	if _, _, err := decodeHeader(data); err != nil {
		atomic.AddUint64(&r.datagramsDropped, 1)
		r.logger.Warn("sqp: malformed challenge request", "error", err)
		return
	}

	key := peer.String()

	r.mu.Lock()
	_, exists := r.tokens[key]
	var token uint32
	if !exists {
		token = newChallengeToken()
		r.tokens[key] = token
	}
	r.mu.Unlock()

	if exists {
		return
	}

	atomic.AddUint64(&r.challengesIssued, 1)
	if _, err := r.conn.WriteTo(encodeChallengeResponse(token), peer); err != nil {
		r.logger.Warn("sqp: writing challenge response failed", "error", err, "peer", key)
	}
}

func (r *Responder) handleQuery(peer net.Addr, data []byte) {
	req, err := decodeQueryRequest(data)
	if err != nil {
		atomic.AddUint64(&r.datagramsDropped, 1)
		r.logger.Warn("sqp: malformed query request", "error", err)
		return
	}

	key := peer.String()

	r.mu.Lock()
	stored, ok := r.tokens[key]
	if ok {
		delete(r.tokens, key)
	}
	info := r.info
	r.mu.Unlock()

	if !ok {
		atomic.AddUint64(&r.datagramsDropped, 1)
		return
	}
	if stored != req.ChallengeToken {
		atomic.AddUint64(&r.datagramsDropped, 1)
		return
	}

	resp, err := encodeQueryResponse(req.ChallengeToken, req.Version, req.RequestedChunks, info)
	if err != nil {
		atomic.AddUint64(&r.datagramsDropped, 1)
		r.logger.Warn("sqp: encoding query response failed", "error", err)
		return
	}

	atomic.AddUint64(&r.queriesAnswered, 1)
	if _, err := r.conn.WriteTo(resp, peer); err != nil {
		r.logger.Warn("sqp: writing query response failed", "error", err, "peer", key)
	}
}

func newChallengeToken() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	// Mask to 31 bits: the protocol requires a non-negative token, and this
	// keeps the value representable as a signed 32-bit integer on the wire.
	return binary.BigEndian.Uint32(b[:]) &^ (1 << 31)
}

// Stats returns a snapshot of the responder's lifetime counters.
func (r *Responder) Stats() Stats {
	return Stats{
		ChallengesIssued: atomic.LoadUint64(&r.challengesIssued),
		QueriesAnswered:  atomic.LoadUint64(&r.queriesAnswered),
		DatagramsDropped: atomic.LoadUint64(&r.datagramsDropped),
	}
}

// SetCurrentPlayers updates the ServerInfo current-player count.
func (r *Responder) SetCurrentPlayers(n int) error {
	if err := validateU16("currentPlayers", n); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.CurrentPlayers = uint16(n)
	r.mu.Unlock()
	return nil
}

// SetMaxPlayers updates the ServerInfo max-player count.
func (r *Responder) SetMaxPlayers(n int) error {
	if err := validateU16("maxPlayers", n); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.MaxPlayers = uint16(n)
	r.mu.Unlock()
	return nil
}

// SetServerName updates the ServerInfo server name.
func (r *Responder) SetServerName(name string) error {
	if err := validateLstr("serverName", name); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.ServerName = name
	r.mu.Unlock()
	return nil
}

// SetGameType updates the ServerInfo game type.
func (r *Responder) SetGameType(gameType string) error {
	if err := validateLstr("gameType", gameType); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.GameType = gameType
	r.mu.Unlock()
	return nil
}

// SetBuildID updates the ServerInfo build id.
func (r *Responder) SetBuildID(buildID string) error {
	if err := validateLstr("buildId", buildID); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.BuildID = buildID
	r.mu.Unlock()
	return nil
}

// SetMap updates the ServerInfo map name.
func (r *Responder) SetMap(mapName string) error {
	if err := validateLstr("map", mapName); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.Map = mapName
	r.mu.Unlock()
	return nil
}

// SetGamePort updates the ServerInfo game port.
func (r *Responder) SetGamePort(port int) error {
	if err := validateU16("gamePort", port); err != nil {
		r.logger.Warn("sqp: rejected setter", "error", err)
		return err
	}
	r.mu.Lock()
	r.info.GamePort = uint16(port)
	r.mu.Unlock()
	return nil
}
