package payment

// State is the orchestrator phase of the client's current transaction.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingAuthorization State = "awaiting_authorization"
	StateAwaitingConfirmation  State = "awaiting_confirmation"
	StateCompleted             State = "completed"
)

// State reports the phase of the most recent transaction.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	prev := c.state
	c.state = s
	c.stateMu.Unlock()
	c.logger.Debug().Str("from", string(prev)).Str("to", string(s)).Msg("payment state")
}
