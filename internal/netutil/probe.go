package netutil

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"time"
)

// DefaultProbeTimeout bounds a single Listening call when the caller passes
// a non-positive timeout.
const DefaultProbeTimeout = time.Second

// LoopbackAddr returns the loopback address for port, e.g. "127.0.0.1:2181".
func LoopbackAddr(port int) string {
	return netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), uint16(port)).String() //nolint:gosec // port validated by config
}

// Listening reports whether a TCP connection to addr can be established
// within timeout. Dial errors are logged at debug level and reported as
// false.
func Listening(ctx context.Context, addr string, timeout time.Duration, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		logger.Debug("probe failed", "addr", addr, "error", err)
		return false
	}
	if closeErr := conn.Close(); closeErr != nil {
		logger.Debug("close probe connection", "addr", addr, "error", closeErr)
	}
	return true
}
