package payment

import "fmt"

const maxSequence = 999999

// NextSequence returns the current counter formatted to 6 digits and advances
// it, wrapping from 999999 back to 1. Each Client owns its own counter.
func (c *Client) NextSequence() string {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	v := c.seq
	c.seq++
	if c.seq > maxSequence {
		c.seq = 1
	}
	return fmt.Sprintf("%06d", v)
}

// SetSequence positions the counter, e.g. to resume after a restart.
// Values outside 1..999999 reset it to 1.
func (c *Client) SetSequence(v int) {
	if v < 1 || v > maxSequence {
		v = 1
	}
	c.seqMu.Lock()
	c.seq = v
	c.seqMu.Unlock()
}
