package config

import (
	"strings"

	"github.com/danmuck/tkpay/internal/simulator"
)

// Simulator maps the file onto runtime settings. Unset keys keep the
// simulator defaults.
func (c SimulatorConfig) Simulator() (simulator.Config, error) {
	delay, err := parseDuration("delay", c.Delay)
	if err != nil {
		return simulator.Config{}, err
	}
	idle, err := parseDuration("idle_timeout", c.IdleTimeout)
	if err != nil {
		return simulator.Config{}, err
	}
	cfg := simulator.Config{
		ID:             strings.TrimSpace(c.ID),
		Addr:           strings.TrimSpace(c.Addr),
		AdminAddr:      strings.TrimSpace(c.AdminAddr),
		CORSOrigins:    c.CorsOrigins,
		APIKey:         strings.TrimSpace(c.APIKey),
		ResponseCode:   c.ResponseCode,
		ConfirmCode:    c.ConfirmCode,
		OmitSTAN:       c.OmitSTAN,
		Delay:          delay,
		IdleTimeout:    idle,
		CardNumber:     c.Card.Number,
		CardExpiry:     c.Card.Expiry,
		EntryMode:      c.Card.EntryMode,
		CardholderName: c.Card.Cardholder,
		MerchantName:   c.Card.Merchant,
	}
	return cfg.WithDefaults(), nil
}
