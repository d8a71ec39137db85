package relay

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/printbridge/printbridge/internal/logging"
)

// DialTimeout bounds one whole relay attempt, connect through close
const DialTimeout = 10 * time.Second

const (
	msgSent            = "Print job sent successfully"
	msgTimeout         = "Connection timeout - printer may be offline or unreachable"
	msgClosedEarly     = "Connection closed unexpectedly"
	msgConnectFallback = "Connection failed"
)

// Outcome is the result of one relay attempt. Message holds the success
// detail or the failure reason depending on Success.
type Outcome struct {
	Success bool
	Message string
}

func failure(msg string) Outcome {
	return Outcome{Success: false, Message: msg}
}

// Relay delivers single print jobs over a Dialer. It is stateless across
// calls; every Send owns its own connection and timer.
type Relay struct {
	dialer  Dialer
	timeout time.Duration
	logger  *logging.Logger
}

// Options configures a Relay
type Options struct {
	// Dialer opens printer connections. Defaults to a real TCP dialer.
	Dialer Dialer

	// Timeout bounds one attempt. Defaults to DialTimeout.
	Timeout time.Duration

	// Logger receives per-attempt diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
}

// New creates a Relay
func New(opts *Options) *Relay {
	if opts == nil {
		opts = &Options{}
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = NetDialer()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DialTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Relay{dialer: dialer, timeout: timeout, logger: logger}
}

// settlement is a one-shot latch shared by every event source of an
// attempt. The first resolve wins; later resolves are no-ops. The channel
// is buffered so a resolve never blocks the losing goroutine.
type settlement struct {
	once    sync.Once
	settled atomic.Bool
	ch      chan Outcome
}

func newSettlement() *settlement {
	return &settlement{ch: make(chan Outcome, 1)}
}

func (s *settlement) resolve(o Outcome) {
	s.once.Do(func() {
		s.settled.Store(true)
		s.ch <- o
	})
}

// Send relays one validated request to the printer: dial, write the full
// payload, half-close, then wait for the remote end to hang up. Exactly one
// Outcome is produced no matter which of the racing events (dial error,
// write error, remote close, timeout) fires first, and the connection is
// torn down before Send returns.
func (r *Relay) Send(ctx context.Context, req Request) Outcome {
	latch := newSettlement()

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The attempt goroutine hands its connection back through here so the
	// timeout path can destroy it.
	var (
		connMu sync.Mutex
		conn   net.Conn
	)
	register := func(c net.Conn) {
		connMu.Lock()
		conn = c
		connMu.Unlock()
		// The dial may have completed after the timeout already settled
		// the attempt; the late connection must not leak.
		if latch.settled.Load() {
			_ = c.Close()
		}
	}
	closeConn := func() {
		connMu.Lock()
		c := conn
		connMu.Unlock()
		if c != nil {
			_ = c.Close()
		}
	}

	timer := time.AfterFunc(r.timeout, func() {
		latch.resolve(failure(msgTimeout))
		closeConn()
		cancel()
	})
	defer timer.Stop()

	go r.attempt(dialCtx, req, latch, register)

	out := <-latch.ch
	closeConn()

	if out.Success {
		r.logger.Debug("Print job relayed",
			logging.String("printer", req.Address),
			logging.Int("port", req.Port),
			logging.Int("bytes", len(req.Payload)),
		)
	} else {
		r.logger.Warn("Print job failed",
			logging.String("printer", req.Address),
			logging.Int("port", req.Port),
			logging.String("reason", out.Message),
		)
	}
	return out
}

func (r *Relay) attempt(ctx context.Context, req Request, latch *settlement, register func(net.Conn)) {
	// A broken Dialer implementation must surface as a failed attempt,
	// not a crashed process.
	defer func() {
		if p := recover(); p != nil {
			latch.resolve(failure(fmt.Sprintf("Failed to connect: %v", p)))
		}
	}()

	addr := net.JoinHostPort(req.Address, strconv.Itoa(req.Port))
	conn, err := r.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = msgConnectFallback
		}
		latch.resolve(failure(msg))
		return
	}
	register(conn)

	// sent flips once the whole payload has been written. The close
	// watcher uses it to decide whether the remote hang-up means the job
	// went through or the printer bailed early.
	var sent atomic.Bool

	go func() {
		buf := make([]byte, 512)
		for {
			if _, err := conn.Read(buf); err != nil {
				break
			}
		}
		if sent.Load() {
			latch.resolve(Outcome{Success: true, Message: msgSent})
		} else {
			latch.resolve(failure(msgClosedEarly))
		}
	}()

	if _, err := conn.Write(req.Payload); err != nil {
		latch.resolve(failure(fmt.Sprintf("Failed to send data: %v", err)))
		_ = conn.Close()
		return
	}
	sent.Store(true)

	// Half-close for write so the printer sees end of job; the close
	// watcher resolves once the remote side hangs up.
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}
