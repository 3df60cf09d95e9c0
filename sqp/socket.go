package sqp

import (
	"context"
	"net"
)

const socketBufferBytes = 2 * 1024 * 1024 // 2 MiB send/receive buffers

// listenUDP opens the responder's UDP socket with reuse-address and
// enlarged send/receive buffers applied via the platform-specific Control
// hook in socket_unix.go / socket_windows.go.
func listenUDP(addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: controlSocket}
	return lc.ListenPacket(context.Background(), "udp", addr)
}
