//go:build windows

package sqp

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// controlSocket sets SO_REUSEADDR and enlarges the send/receive buffers on
// the raw socket handle before the UDP socket is bound.
func controlSocket(network, address string, c syscall.RawConn) error {
	var setErr error
	err := c.Control(func(fd uintptr) {
		h := windows.Handle(fd)
		if setErr = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); setErr != nil {
			return
		}
		if setErr = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_RCVBUF, socketBufferBytes); setErr != nil {
			return
		}
		setErr = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_SNDBUF, socketBufferBytes)
	})
	if err != nil {
		return err
	}
	return setErr
}
