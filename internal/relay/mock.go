package relay

import (
	"context"
	"io"
	"net"
	"sync"
	"time"
)

// MemoryDialer is an in-memory Dialer for tests. It either fails dials
// with a fixed error, blocks until the context expires, or hands the caller
// one side of an in-memory pipe while exposing the printer side through
// Remote. It also counts dial attempts so tests can assert that validation
// failures never touch the transport.
type MemoryDialer struct {
	mu     sync.Mutex
	err    error
	block  bool
	dials  int
	addrs  []string
	remote chan *MemoryConn
}

// NewMemoryDialer creates a MemoryDialer that completes dials with pipes
func NewMemoryDialer() *MemoryDialer {
	return &MemoryDialer{
		remote: make(chan *MemoryConn, 4),
	}
}

// FailWith makes subsequent dials return err
func (d *MemoryDialer) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Block makes subsequent dials hang until their context is canceled
func (d *MemoryDialer) Block() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.block = true
}

// Dials reports how many dial attempts were made
func (d *MemoryDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// DialedAddresses reports the addresses passed to DialContext, in order
func (d *MemoryDialer) DialedAddresses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.addrs...)
}

// Remote returns the printer side of the next established connection
func (d *MemoryDialer) Remote() <-chan *MemoryConn {
	return d.remote
}

// DialContext implements Dialer
func (d *MemoryDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	d.addrs = append(d.addrs, address)
	err := d.err
	block := d.block
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	local, remote := NewMemoryConnPair()
	d.remote <- remote
	return local, nil
}

// MemoryConn is one side of an in-memory bidirectional pipe implementing
// net.Conn plus the CloseWrite half-close used by the relay.
type MemoryConn struct {
	reader *io.PipeReader
	writer *io.PipeWriter
	mu     sync.Mutex
	closed bool
}

// NewMemoryConnPair creates two connected MemoryConns; bytes written to one
// side are read from the other
func NewMemoryConnPair() (*MemoryConn, *MemoryConn) {
	aReader, bWriter := io.Pipe()
	bReader, aWriter := io.Pipe()
	a := &MemoryConn{reader: aReader, writer: aWriter}
	b := &MemoryConn{reader: bReader, writer: bWriter}
	return a, b
}

// Read reads data from the connection
func (c *MemoryConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Write writes data to the connection
func (c *MemoryConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	c.mu.Unlock()
	return c.writer.Write(p)
}

// CloseWrite half-closes the connection: the peer's reads see EOF while
// this side can keep reading
func (c *MemoryConn) CloseWrite() error {
	return c.writer.Close()
}

// Close closes both directions. Closing twice is a no-op.
func (c *MemoryConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.writer.Close()
	_ = c.reader.Close()
	return nil
}

// LocalAddr implements net.Conn
func (c *MemoryConn) LocalAddr() net.Addr { return memoryAddr("local") }

// RemoteAddr implements net.Conn
func (c *MemoryConn) RemoteAddr() net.Addr { return memoryAddr("remote") }

// SetDeadline implements net.Conn; deadlines are not supported in-memory
func (c *MemoryConn) SetDeadline(t time.Time) error { return nil }

// SetReadDeadline implements net.Conn
func (c *MemoryConn) SetReadDeadline(t time.Time) error { return nil }

// SetWriteDeadline implements net.Conn
func (c *MemoryConn) SetWriteDeadline(t time.Time) error { return nil }

type memoryAddr string

func (a memoryAddr) Network() string { return "mem" }
func (a memoryAddr) String() string  { return string(a) }
