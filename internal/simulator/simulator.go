// Package simulator plays the terminal side of the M2M exchange for local
// development and integration tests.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/payment"
	"github.com/danmuck/tkpay/internal/protocol"
	"github.com/danmuck/tkpay/internal/protocol/receipt"
	"github.com/danmuck/tkpay/internal/protocol/tlv"
	"github.com/danmuck/tkpay/internal/transport"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Requests come from the SDK in a single write, so the drain window can be
// much tighter than a real terminal's.
const requestDrainTimeout = 50 * time.Millisecond

var ErrAddrRequired = errors.New("simulator: terminal addr required")

// Config shapes the simulated terminal's answers.
type Config struct {
	ID        string
	Addr      string
	AdminAddr string

	// ResponseCode answers phase one; ConfirmCode answers phase two.
	ResponseCode string
	ConfirmCode  string
	// OmitSTAN drops the STAN from an approved phase-one answer.
	OmitSTAN bool
	// Delay is applied before every answer, standing in for the cardholder.
	Delay       time.Duration
	IdleTimeout time.Duration
	CORSOrigins []string
	// APIKey, when set, is required as a bearer token on notification posts.
	APIKey string

	CardNumber     string
	CardExpiry     string
	EntryMode      string
	CardholderName string
	MerchantName   string
}

func DefaultConfig() Config {
	return Config{
		ID:             "termsim",
		Addr:           "127.0.0.1:6000",
		ResponseCode:   protocol.ResponseApproved,
		ConfirmCode:    protocol.ResponseApproved,
		IdleTimeout:    60 * time.Second,
		CardNumber:     "5167940123453315",
		CardExpiry:     "2812",
		EntryMode:      "C",
		CardholderName: "CLIENT TKPAY",
		MerchantName:   "TKPAY DEMO SHOP",
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = def.ID
	}
	if c.ResponseCode == "" {
		c.ResponseCode = def.ResponseCode
	}
	if c.ConfirmCode == "" {
		c.ConfirmCode = def.ConfirmCode
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.CardNumber == "" {
		c.CardNumber = def.CardNumber
	}
	if c.CardExpiry == "" {
		c.CardExpiry = def.CardExpiry
	}
	if c.EntryMode == "" {
		c.EntryMode = def.EntryMode
	}
	if c.CardholderName == "" {
		c.CardholderName = def.CardholderName
	}
	if c.MerchantName == "" {
		c.MerchantName = def.MerchantName
	}
	return c
}

// Terminal is a single-connection M2M terminal.
type Terminal struct {
	cfg    Config
	logger zerolog.Logger

	stan      atomic.Uint32
	exchanges atomic.Uint64
	started   time.Time

	mu            sync.Mutex
	notifications []payment.Event
}

func New(cfg Config, logger zerolog.Logger) *Terminal {
	cfg = cfg.WithDefaults()
	return &Terminal{
		cfg:     cfg,
		logger:  logger.With().Str("node", cfg.ID).Logger(),
		started: time.Now(),
	}
}

// Run serves the terminal listener and, when AdminAddr is set, the admin
// HTTP API until ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	if strings.TrimSpace(t.cfg.Addr) == "" {
		return ErrAddrRequired
	}
	ln, err := net.Listen("tcp", strings.TrimSpace(t.cfg.Addr))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Serve(ctx, ln)
	})
	if addr := strings.TrimSpace(t.cfg.AdminAddr); addr != "" {
		srv := &http.Server{Addr: addr, Handler: t.Handler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			t.logger.Info().Str("addr", addr).Msg("simulator admin listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

// Serve accepts terminal connections on ln one at a time.
func (t *Terminal) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	t.logger.Info().Str("addr", ln.Addr().String()).Msg("simulator terminal listening")

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		t.handleConn(ctx, transport.Wrap(raw, transport.Config{DrainTimeout: requestDrainTimeout}))
	}
}

// handleConn answers requests until the client hangs up or goes idle.
func (t *Terminal) handleConn(ctx context.Context, conn *transport.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr()
	t.logger.Info().Str("remote", remote).Msg("simulator client connected")
	defer t.logger.Info().Str("remote", remote).Msg("simulator client disconnected")

	var amount string
	for {
		raw, err := conn.Receive(ctx, t.cfg.IdleTimeout)
		if err != nil {
			return
		}
		req := protocol.Decode(raw)
		msgType := req.Value(protocol.TagMessageType)

		var resp *protocol.Message
		switch msgType {
		case protocol.MsgPaymentRequest:
			amount = req.Value(protocol.TagAmount)
			resp = t.authorizationResponse()
		case protocol.MsgConfirmationRequest:
			resp = t.confirmationResponse(req, amount)
		default:
			t.logger.Warn().Str("message_type", msgType).Msg("simulator unknown message type")
			return
		}

		if t.cfg.Delay > 0 {
			timer := time.NewTimer(t.cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		payload, err := resp.Encode()
		if err != nil {
			t.logger.Error().Err(err).Msg("simulator encode response")
			return
		}
		if err := conn.Send(ctx, payload); err != nil {
			t.logger.Warn().Err(err).Msg("simulator send response")
			return
		}
		t.exchanges.Add(1)
		t.logger.Info().
			Str("message_type", msgType).
			Str("ncai", req.Value(protocol.TagNCAI)).
			Str("sequence", req.Value(protocol.TagSequence)).
			Msg("simulator answered")
	}
}

func (t *Terminal) authorizationResponse() *protocol.Message {
	code := t.cfg.ResponseCode
	resp := protocol.NewMessage(protocol.MsgPaymentRequest).Add(protocol.TagResponseCode, code)
	if code != protocol.ResponseApproved || !t.cfg.OmitSTAN {
		resp.Add(protocol.TagSTAN, fmt.Sprintf("%06d", t.stan.Add(1)))
	}
	observability.RecordTerminalExchange(protocol.MsgPaymentRequest, code)
	return resp
}

func (t *Terminal) confirmationResponse(req protocol.Fields, amount string) *protocol.Message {
	code := t.cfg.ConfirmCode
	stan := req.Value(protocol.TagSTAN)
	resp := protocol.NewMessage(protocol.MsgConfirmationRequest).
		Add(protocol.TagResponseCode, code).
		Add(protocol.TagSTAN, stan)
	if code == protocol.ResponseApproved {
		resp.Add(protocol.TagCardNumber, t.cfg.CardNumber).
			Add(protocol.TagCardExpiry, t.cfg.CardExpiry).
			Add(protocol.TagEntryMode, t.cfg.EntryMode).
			Add(protocol.TagAuthNumber, "A"+stan).
			Add(protocol.TagCardholderName, t.cfg.CardholderName)
		if data, err := t.printData(req, stan, amount); err == nil {
			resp.Add(protocol.TagPrintData, data)
		} else {
			t.logger.Warn().Err(err).Msg("simulator print data dropped")
		}
	}
	observability.RecordTerminalExchange(protocol.MsgConfirmationRequest, code)
	return resp
}

// printData renders the receipt sub-stream. The card number is written in
// clear on purpose; the SDK masks it.
func (t *Terminal) printData(req protocol.Fields, stan, amount string) (string, error) {
	lines := []struct {
		format, align, text string
	}{
		{receipt.FormatBold, receipt.AlignCodeCenter, t.cfg.MerchantName},
		{receipt.FormatStandard, receipt.AlignCodeCenter, "NAPS TERMINAL"},
		{receipt.FormatStandard, receipt.AlignCodeLeft, "DATE " + req.Value(protocol.TagDate) + " " + req.Value(protocol.TagTime)},
		{receipt.FormatStandard, receipt.AlignCodeLeft, "CARTE " + t.cfg.CardNumber},
		{receipt.FormatStandard, receipt.AlignCodeLeft, "STAN " + stan},
		{receipt.FormatBold, receipt.AlignCodeRight, formatAmount(amount) + " MAD"},
		{receipt.FormatStandard, receipt.AlignCodeCenter, "TRANSACTION APPROUVEE"},
	}
	fields := make([]tlv.Field, 0, len(lines)*4)
	for i, l := range lines {
		fields = append(fields,
			tlv.Field{Tag: receipt.SubTagLineNumber, Value: fmt.Sprintf("%02d", (i+1)*2)},
			tlv.Field{Tag: receipt.SubTagFormat, Value: l.format},
			tlv.Field{Tag: receipt.SubTagAlignment, Value: l.align},
			tlv.Field{Tag: receipt.SubTagContent, Value: l.text},
		)
	}
	b, err := tlv.EncodeFields(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatAmount(minor string) string {
	minor = strings.TrimLeft(minor, "0")
	for len(minor) < 3 {
		minor = "0" + minor
	}
	return minor[:len(minor)-2] + "." + minor[len(minor)-2:]
}

// Notifications returns the events collected by the admin API.
func (t *Terminal) Notifications() []payment.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]payment.Event, len(t.notifications))
	copy(out, t.notifications)
	return out
}

func (t *Terminal) addNotification(ev payment.Event) {
	t.mu.Lock()
	t.notifications = append(t.notifications, ev)
	t.mu.Unlock()
}
