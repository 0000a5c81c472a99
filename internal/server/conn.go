package server

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Default write queue / timeout constants.
// Overridden by config values when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 5 * time.Second
)

// conn is the write half of one client connection. The reactor is the only
// producer; a dedicated writePump goroutine is the only writer on the socket.
type conn struct {
	nc net.Conn
	ip string

	sendCh    chan []byte // encoded packets, pool-backed
	closeCh   chan struct{}
	closeOnce sync.Once

	pool         *BytePool
	writeTimeout time.Duration
}

func newConn(nc net.Conn, pool *BytePool, queueSize int, writeTimeout time.Duration) *conn {
	host, _, err := net.SplitHostPort(nc.RemoteAddr().String())
	if err != nil {
		host = nc.RemoteAddr().String()
	}
	if queueSize <= 0 {
		queueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &conn{
		nc:           nc,
		ip:           host,
		sendCh:       make(chan []byte, queueSize),
		closeCh:      make(chan struct{}),
		pool:         pool,
		writeTimeout: writeTimeout,
	}
}

// writePump is the dedicated writer goroutine for this connection.
// Drains sendCh, writes each packet with a deadline, and returns the
// buffers to the pool.
func (c *conn) writePump() {
	defer func() {
		for {
			select {
			case pkt := <-c.sendCh:
				c.pool.Put(pkt)
			default:
				return
			}
		}
	}()

	for {
		select {
		case pkt, ok := <-c.sendCh:
			if !ok {
				return
			}
			if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", c.ip, "error", err)
				c.pool.Put(pkt)
				return
			}
			_, err := c.nc.Write(pkt)
			c.pool.Put(pkt)
			if err != nil {
				slog.Warn("write failed", "client", c.ip, "error", err)
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// send queues an encoded packet for async delivery.
// Non-blocking: a full queue means a slow client, which is disconnected.
// OWNERSHIP: takes ownership of pkt (pool buffer); writePump returns it.
func (c *conn) send(pkt []byte) error {
	select {
	case c.sendCh <- pkt:
		return nil
	default:
		c.pool.Put(pkt)
		slog.Warn("send queue full, disconnecting slow client", "client", c.ip)
		c.closeAsync()
		return fmt.Errorf("send queue full")
	}
}

// closeAsync signals the writePump to stop without blocking.
// Safe to call multiple times.
func (c *conn) closeAsync() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
	})
}

// close closes the connection and stops the writePump.
func (c *conn) close() error {
	c.closeAsync()
	return c.nc.Close()
}
