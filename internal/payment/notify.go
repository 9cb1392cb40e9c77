package payment

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/pan"
	"github.com/google/uuid"
)

const (
	SDKName    = "tkpay-go"
	SDKVersion = "0.1.0"
)

type EventType string

const (
	EventApproved EventType = "payment.approved"
	EventDeclined EventType = "payment.declined"
	EventFailed   EventType = "payment.failed"
)

// Event is the completion record handed to a Notifier. It never carries a
// raw PAN.
type Event struct {
	EventID       string    `json:"event_id"`
	Type          EventType `json:"event_type"`
	TransactionID string    `json:"transaction_id"`
	Success       bool      `json:"success"`
	Amount        string    `json:"amount"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	NCAI          string    `json:"ncai"`
	Sequence      string    `json:"sequence"`
	STAN          string    `json:"stan,omitempty"`
	ResponseCode  string    `json:"response_code,omitempty"`
	AuthNumber    string    `json:"auth_number,omitempty"`
	MaskedCard    string    `json:"masked_card,omitempty"`
	EntryMode     string    `json:"entry_mode,omitempty"`
	ErrorCode     ErrorCode `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	SDKName       string    `json:"sdk_name"`
	SDKVersion    string    `json:"sdk_version"`
	Platform      string    `json:"platform"`
	Timestamp     string    `json:"timestamp"`
}

// Notifier delivers completion events to an external gateway.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

func (c *Client) buildEvent(txn transaction, res PaymentResult, err error) Event {
	ev := Event{
		EventID:       uuid.NewString(),
		TransactionID: txn.id,
		Amount:        txn.amount,
		AmountMinor:   txn.minor,
		Currency:      "MAD",
		NCAI:          txn.ncai,
		Sequence:      txn.sequence,
		SDKName:       SDKName,
		SDKVersion:    SDKVersion,
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		Timestamp:     c.now().Format(time.RFC3339),
	}
	if err != nil {
		ev.Type = EventFailed
		ev.ErrorCode = CodeOf(err)
		ev.ErrorMessage = err.Error()
		return ev
	}
	ev.Success = res.Success
	ev.STAN = res.STAN
	ev.ResponseCode = res.ResponseCode
	ev.AuthNumber = res.AuthNumber
	ev.MaskedCard = pan.Mask(res.CardNumber)
	ev.EntryMode = res.EntryMode
	ev.ErrorCode = res.ErrorCode
	ev.ErrorMessage = res.ErrorMessage
	if res.Success {
		ev.Type = EventApproved
	} else {
		ev.Type = EventDeclined
	}
	return ev
}

// dispatch hands ev to the notifier on its own goroutine. The transaction
// never waits on it and its failures stop here.
func (c *Client) dispatch(ev Event) {
	if c.notifier == nil {
		return
	}
	c.notifyWG.Add(1)
	go func() {
		defer c.notifyWG.Done()
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("payment: notifier panic: %v", r)
			}
			observability.RecordNotification(err == nil)
			if err != nil {
				c.logger.Warn().
					Str("transaction_id", ev.TransactionID).
					Str("event_type", string(ev.Type)).
					Err(err).
					Msg("payment notification failed")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.NotifyTimeout)
		defer cancel()
		err = c.notifier.Notify(ctx, ev)
	}()
}
