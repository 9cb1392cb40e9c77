// Package transport implements payment.Transport over plain TCP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/tkpay/internal/payment"
)

const (
	DefaultDrainTimeout    = 500 * time.Millisecond
	DefaultWriteTimeout    = 10 * time.Second
	DefaultMaxMessageBytes = 64 * 1024
	readChunk              = 4096
)

var ErrConnClosed = errors.New("transport: connection closed")

// Config tunes socket behavior.
type Config struct {
	// DrainTimeout is the secondary wait used to collect the rest of a
	// message after its first bytes arrive.
	DrainTimeout    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
}

func DefaultConfig() Config {
	return Config{
		DrainTimeout:    DefaultDrainTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		MaxMessageBytes: DefaultMaxMessageBytes,
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = def.DrainTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = def.MaxMessageBytes
	}
	return c
}

// TCP dials terminals over TCP.
type TCP struct {
	cfg Config
}

var _ payment.Transport = (*TCP)(nil)

func NewTCP(cfg Config) *TCP {
	return &TCP{cfg: cfg.WithDefaults()}
}

func (t *TCP) Open(ctx context.Context, host string, port int, timeout time.Duration) (payment.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: connect %s: %w", addr, err)
	}
	return Wrap(raw, t.cfg), nil
}

// Wrap adopts an established connection, e.g. one accepted by a listener.
func Wrap(conn net.Conn, cfg Config) *Conn {
	return &Conn{conn: conn, cfg: cfg.WithDefaults()}
}

// Conn is one TCP terminal connection.
type Conn struct {
	conn net.Conn
	cfg  Config

	mu     sync.Mutex
	closed bool
}

var _ payment.Conn = (*Conn)(nil)

func (c *Conn) Send(ctx context.Context, payload []byte) error {
	if c.isClosed() {
		return ErrConnClosed
	}
	if err := c.conn.SetWriteDeadline(deadline(ctx, c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetWriteDeadline(time.Now())
	})
	defer stop()
	if _, err := c.conn.Write(payload); err != nil {
		return wrapIOError(ctx, "send", err)
	}
	return nil
}

// Receive waits up to timeout for the first bytes, then keeps reading while
// more data arrives within DrainTimeout. One logical message can span
// several TCP segments and the protocol carries no outer length.
func (c *Conn) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrConnClosed
	}
	if err := c.conn.SetReadDeadline(deadline(ctx, timeout)); err != nil {
		return nil, fmt.Errorf("transport: receive: %w", err)
	}
	defer func() {
		_ = c.conn.SetReadDeadline(time.Time{})
	}()
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()
	buf := make([]byte, readChunk)
	n, err := c.conn.Read(buf)
	if n == 0 {
		if err == nil {
			err = errors.New("empty read")
		}
		return nil, wrapIOError(ctx, "receive", err)
	}
	out := append(make([]byte, 0, n), buf[:n]...)

	for err == nil && len(out) < c.cfg.MaxMessageBytes && ctx.Err() == nil {
		if err = c.conn.SetReadDeadline(time.Now().Add(c.cfg.DrainTimeout)); err != nil {
			break
		}
		n, err = c.conn.Read(buf)
		out = append(out, buf[:n]...)
	}
	if len(out) > c.cfg.MaxMessageBytes {
		out = out[:c.cfg.MaxMessageBytes]
	}
	return out, nil
}

// Close never fails from the caller's point of view; repeated calls are safe.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.Close()
	return nil
}

func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		d = ctxDeadline
	}
	return d
}

func wrapIOError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("transport: %s: %w", op, ctxErr)
	}
	return fmt.Errorf("transport: %s: %w", op, err)
}
