package relay

import (
	"context"
	"net"
)

// Dialer opens the transport connection to a printer. The production
// implementation is a plain net.Dialer; tests substitute the in-memory
// MemoryDialer so every outcome path runs without real sockets.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NetDialer returns the standard TCP dialer
func NetDialer() Dialer {
	return &net.Dialer{}
}
