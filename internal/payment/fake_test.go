package payment

import (
	"context"
	"errors"
	"sync"
	"time"
)

type reply struct {
	data []byte
	err  error
}

// fakeConn replays scripted replies. With no replies left, Receive blocks
// until the connection is closed.
type fakeConn struct {
	mu       sync.Mutex
	replies  []reply
	sent     [][]byte
	timeouts []time.Duration
	sendErr  error
	closed   bool
	closedCh chan struct{}
}

func newFakeConn(replies ...reply) *fakeConn {
	return &fakeConn{replies: replies, closedCh: make(chan struct{})}
}

func (c *fakeConn) Send(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.sent = append(c.sent, buf)
	return nil
}

func (c *fakeConn) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	c.timeouts = append(c.timeouts, timeout)
	if len(c.replies) > 0 {
		r := c.replies[0]
		c.replies = c.replies[1:]
		c.mu.Unlock()
		return r.data, r.err
	}
	c.mu.Unlock()
	select {
	case <-c.closedCh:
		return nil, errors.New("read tcp: use of closed network connection")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.closedCh)
	}
	return errors.New("close always fails in tests")
}

func (c *fakeConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeTransport struct {
	mu      sync.Mutex
	conns   []*fakeConn
	opens   int
	openErr error
	opened  chan *fakeConn
}

func newFakeTransport(conns ...*fakeConn) *fakeTransport {
	return &fakeTransport{conns: conns, opened: make(chan *fakeConn, len(conns)+1)}
}

func (t *fakeTransport) Open(context.Context, string, int, time.Duration) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opens++
	if t.openErr != nil {
		return nil, t.openErr
	}
	if len(t.conns) == 0 {
		return nil, errors.New("dial tcp 127.0.0.1:6000: connect: connection refused")
	}
	c := t.conns[0]
	t.conns = t.conns[1:]
	t.opened <- c
	return c, nil
}

func (t *fakeTransport) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opens
}

type recordingNotifier struct {
	events chan Event
	err    error
	block  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan Event, 8)}
}

func (n *recordingNotifier) Notify(ctx context.Context, ev Event) error {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	n.events <- ev
	return n.err
}
