package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrTransportRequired = errors.New("payment: transport required")

const (
	phaseAuthorization = "authorization"
	phaseConfirmation  = "confirmation"
)

// Client runs payment transactions against one terminal. It carries the
// sequence counter for its till; separate clients count independently.
type Client struct {
	cfg       Config
	transport Transport
	notifier  Notifier
	logger    zerolog.Logger
	now       func() time.Time

	seqMu sync.Mutex
	seq   int

	connMu sync.Mutex
	active Conn

	stateMu sync.Mutex
	state   State

	notifyWG sync.WaitGroup
}

type Option func(*Client)

// WithNotifier sets the completion notifier. Without one no events are sent.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the clock used for request date/time fields.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:       cfg,
		transport: transport,
		logger:    log.Logger,
		now:       time.Now,
		seq:       1,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "payment").Str("terminal", cfg.Address()).Logger()
	return c, nil
}

type transaction struct {
	id       string
	amount   string
	minor    int64
	wire     string
	ncai     string
	sequence string
}

// ProcessPayment runs one full transaction: authorization, then confirmation.
// A decline is reported through the result; transport and protocol failures
// are returned as *Error and no result is produced.
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return PaymentResult{}, err
	}
	txn := transaction{
		id:       uuid.NewString(),
		amount:   req.Amount.StringFixed(2),
		minor:    req.MinorUnits(),
		wire:     req.MinorUnitsString(),
		ncai:     req.NCAI(),
		sequence: req.Sequence,
	}
	if txn.sequence == "" {
		txn.sequence = c.NextSequence()
	}
	logger := c.logger.With().
		Str("transaction_id", txn.id).
		Str("ncai", txn.ncai).
		Str("sequence", txn.sequence).
		Logger()
	logger.Info().Str("amount", txn.amount).Msg("payment started")

	res, err := c.run(ctx, logger, txn)
	c.setState(StateCompleted)

	outcome := "failed"
	switch {
	case err != nil:
		logger.Error().Str("code", string(CodeOf(err))).Err(err).Msg("payment failed")
		observability.RecordTransaction(outcome, string(CodeOf(err)))
	case res.Success:
		outcome = "approved"
		logger.Info().Str("stan", res.STAN).Str("card", res.CardNumber).Msg("payment approved")
		observability.RecordTransaction(outcome, res.ResponseCode)
	default:
		outcome = "declined"
		logger.Warn().Str("response_code", res.ResponseCode).Str("reason", res.ErrorMessage).Msg("payment declined")
		observability.RecordTransaction(outcome, res.ResponseCode)
	}
	c.dispatch(c.buildEvent(txn, res, err))
	if err != nil {
		return PaymentResult{}, err
	}
	return res, nil
}

func (c *Client) run(ctx context.Context, logger zerolog.Logger, txn transaction) (PaymentResult, error) {
	conn, err := c.open(ctx)
	if err != nil {
		return PaymentResult{}, classifyTransportError("connect", err)
	}
	defer c.release(conn)

	c.setState(StateAwaitingAuthorization)
	authReq := protocol.NewMessage(protocol.MsgPaymentRequest).
		Add(protocol.TagAmount, txn.wire).
		Add(protocol.TagNCAI, txn.ncai).
		Add(protocol.TagSequence, txn.sequence).
		Add(protocol.TagCurrency, protocol.CurrencyMAD).
		AddTimestamp(c.now())
	auth, err := c.exchange(ctx, logger, conn, authReq, c.cfg.RequestTimeout, phaseAuthorization)
	if err != nil {
		return PaymentResult{}, err
	}

	res := PaymentResult{TransactionID: txn.id, NCAI: txn.ncai, Sequence: txn.sequence}
	code, ok := auth.Get(protocol.TagResponseCode)
	if !ok {
		return PaymentResult{}, invalidResponse("authorization response missing response code")
	}
	if code != protocol.ResponseApproved {
		res.STAN = auth.Value(protocol.TagSTAN)
		res.decline(code)
		return res, nil
	}
	stan := auth.Value(protocol.TagSTAN)
	if stan == "" {
		return PaymentResult{}, invalidResponse("approved authorization response missing stan")
	}

	c.setState(StateAwaitingConfirmation)
	confirmReq := protocol.NewMessage(protocol.MsgConfirmationRequest).
		Add(protocol.TagSTAN, stan).
		Add(protocol.TagNCAI, txn.ncai).
		Add(protocol.TagSequence, txn.sequence).
		AddTimestamp(c.now())
	confirm, err := c.exchange(ctx, logger, conn, confirmReq, c.cfg.ConfirmationTimeout, phaseConfirmation)
	if err != nil {
		return PaymentResult{}, err
	}

	res.STAN = stan
	res.applyConfirmation(confirm)
	if confirmCode, ok := confirm.Get(protocol.TagResponseCode); ok {
		code = confirmCode
	}
	if code != protocol.ResponseApproved {
		res.decline(code)
		return res, nil
	}
	res.Success = true
	res.ResponseCode = code
	return res, nil
}

// exchange sends msg and waits up to timeout for the terminal's answer.
func (c *Client) exchange(
	ctx context.Context,
	logger zerolog.Logger,
	conn Conn,
	msg *protocol.Message,
	timeout time.Duration,
	phase string,
) (protocol.Fields, error) {
	payload, err := msg.Encode()
	if err != nil {
		return nil, validationError("encode %s request: %v", phase, err)
	}
	start := time.Now()
	defer func() {
		observability.RecordPhase(phase, time.Since(start))
	}()

	if err := conn.Send(ctx, payload); err != nil {
		return nil, classifyTransportError(phase+" send", err)
	}
	logger.Debug().Str("phase", phase).Int("bytes", len(payload)).Msg("request sent")

	raw, err := conn.Receive(ctx, timeout)
	if err != nil {
		return nil, classifyTransportError(phase+" receive", err)
	}
	fields := protocol.Decode(raw)
	logger.Debug().
		Str("phase", phase).
		Int("bytes", len(raw)).
		Strs("tags", fields.Tags()).
		Msg("response received")
	return fields, nil
}

// open force-closes any connection still held by a previous transaction
// before dialing a new one.
func (c *Client) open(ctx context.Context) (Conn, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.active != nil {
		c.logger.Warn().Msg("closing connection held by previous transaction")
		closeQuietly(c.active)
		c.active = nil
	}
	conn, err := c.transport.Open(ctx, c.cfg.Host, c.cfg.Port, c.cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	c.active = conn
	return conn, nil
}

func (c *Client) release(conn Conn) {
	c.connMu.Lock()
	if c.active == conn {
		c.active = nil
	}
	c.connMu.Unlock()
	closeQuietly(conn)
}

// Close drops any active connection and waits for pending notifications.
func (c *Client) Close() error {
	c.connMu.Lock()
	closeQuietly(c.active)
	c.active = nil
	c.connMu.Unlock()
	c.notifyWG.Wait()
	return nil
}
