package httpd

import (
	"net"
	"time"
)

// DefaultSendBuffer is the per-connection send window, one TCP segment.
const DefaultSendBuffer = 1460

// connTransport adapts a net.Conn to the Transport interface. Writes are
// synchronous, so every written byte counts as sent once the server loop
// collects it with takeSent.
type connTransport struct {
	conn         net.Conn
	window       int
	writeTimeout time.Duration
	unreported   int
}

func newConnTransport(conn net.Conn, window int, writeTimeout time.Duration) *connTransport {
	if window <= 0 {
		window = DefaultSendBuffer
	}
	return &connTransport{conn: conn, window: window, writeTimeout: writeTimeout}
}

func (c *connTransport) Write(p []byte) (int, error) {
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	n, err := c.conn.Write(p)
	c.unreported += n
	return n, err
}

func (c *connTransport) SendBuffer() int {
	return c.window - c.unreported
}

func (c *connTransport) Close() error {
	return c.conn.Close()
}

// takeSent returns the bytes written since the last call.
func (c *connTransport) takeSent() int {
	n := c.unreported
	c.unreported = 0
	return n
}
