package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tkpay/internal/notify"
	"github.com/danmuck/tkpay/internal/payment"
	"github.com/danmuck/tkpay/internal/transport"
)

// tkpayctl config.toml key mapping to client runtime settings.
type fileConfig struct {
	Host                  string `toml:"host"`
	Port                  int    `toml:"port"`
	ConnectTimeout        string `toml:"connect_timeout"`
	ConnectTimeoutMS      int64  `toml:"connect_timeout_ms"`
	RequestTimeout        string `toml:"request_timeout"`
	RequestTimeoutMS      int64  `toml:"request_timeout_ms"`
	ConfirmationTimeout   string `toml:"confirmation_timeout"`
	ConfirmationTimeoutMS int64  `toml:"confirmation_timeout_ms"`
	DrainTimeoutMS        int64  `toml:"drain_timeout_ms"`
	Register              string `toml:"register"`
	Cashier               string `toml:"cashier"`
	NotifyEndpoint        string `toml:"notify_endpoint"`
	NotifyAPIKey          string `toml:"notify_api_key"`
	NotifyTimeout         string `toml:"notify_timeout"`
}

type clientConfig struct {
	Payment   payment.Config
	Transport transport.Config
	Notify    notify.Config
	Register  string
	Cashier   string
}

func defaultClientConfig() clientConfig {
	pcfg := payment.DefaultConfig()
	pcfg.Host = "127.0.0.1"
	return clientConfig{
		Payment:   pcfg,
		Transport: transport.DefaultConfig(),
		Notify:    notify.Config{Timeout: pcfg.NotifyTimeout},
		Register:  "01",
		Cashier:   "00001",
	}
}

// tkpayctl loader for TOML config with default overlay.
func loadClientConfig(path string) (clientConfig, error) {
	cfg := defaultClientConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return clientConfig{}, fmt.Errorf("load tkpayctl config: %w", err)
	}

	if meta.IsDefined("host") {
		cfg.Payment.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Payment.Port = raw.Port
	}
	if err := overlayDuration(meta, "connect_timeout", raw.ConnectTimeout, raw.ConnectTimeoutMS, &cfg.Payment.ConnectTimeout); err != nil {
		return clientConfig{}, err
	}
	if err := overlayDuration(meta, "request_timeout", raw.RequestTimeout, raw.RequestTimeoutMS, &cfg.Payment.RequestTimeout); err != nil {
		return clientConfig{}, err
	}
	if err := overlayDuration(meta, "confirmation_timeout", raw.ConfirmationTimeout, raw.ConfirmationTimeoutMS, &cfg.Payment.ConfirmationTimeout); err != nil {
		return clientConfig{}, err
	}
	if meta.IsDefined("drain_timeout_ms") {
		cfg.Transport.DrainTimeout = time.Duration(raw.DrainTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("register") {
		cfg.Register = strings.TrimSpace(raw.Register)
	}
	if meta.IsDefined("cashier") {
		cfg.Cashier = strings.TrimSpace(raw.Cashier)
	}
	if meta.IsDefined("notify_endpoint") {
		cfg.Notify.Endpoint = strings.TrimSpace(raw.NotifyEndpoint)
	}
	if meta.IsDefined("notify_api_key") {
		cfg.Notify.APIKey = strings.TrimSpace(raw.NotifyAPIKey)
	}
	if meta.IsDefined("notify_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.NotifyTimeout))
		if err != nil {
			return clientConfig{}, fmt.Errorf("parse notify_timeout: %w", err)
		}
		cfg.Notify.Timeout = d
		cfg.Payment.NotifyTimeout = d
	}

	if err := cfg.Payment.Validate(); err != nil {
		return clientConfig{}, err
	}
	return cfg, nil
}

// overlayDuration applies key as a duration string, then key_ms as
// milliseconds, so the _ms form wins when both are set.
func overlayDuration(meta toml.MetaData, key, text string, ms int64, out *time.Duration) error {
	if meta.IsDefined(key) {
		d, err := time.ParseDuration(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*out = d
	}
	if meta.IsDefined(key + "_ms") {
		*out = time.Duration(ms) * time.Millisecond
	}
	return nil
}
