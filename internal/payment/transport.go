package payment

import (
	"context"
	"time"
)

// Transport opens connections to the terminal.
type Transport interface {
	Open(ctx context.Context, host string, port int, timeout time.Duration) (Conn, error)
}

// Conn is one open terminal connection owned by a single transaction.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
	// Receive blocks until at least one byte arrives or timeout elapses, then
	// drains whatever else is immediately available.
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	// Close is best effort; callers discard its error.
	Close() error
}

func closeQuietly(c Conn) {
	if c == nil {
		return
	}
	_ = c.Close()
}
