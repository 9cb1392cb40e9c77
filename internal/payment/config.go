package payment

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

var (
	ErrHostRequired   = errors.New("payment: terminal host required")
	ErrInvalidPort    = errors.New("payment: invalid terminal port")
	ErrInvalidTimeout = errors.New("payment: invalid timeout")
)

// Config defines terminal addressing and per-phase time budgets.
type Config struct {
	Host string
	Port int

	ConnectTimeout time.Duration
	// RequestTimeout bounds phase one, which waits on the cardholder.
	RequestTimeout time.Duration
	// ConfirmationTimeout bounds phase two, which only waits on the terminal.
	ConfirmationTimeout time.Duration
	NotifyTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Port:                6000,
		ConnectTimeout:      10 * time.Second,
		RequestTimeout:      90 * time.Second,
		ConfirmationTimeout: 15 * time.Second,
		NotifyTimeout:       10 * time.Second,
	}
}

// WithDefaults fills zero values from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.ConfirmationTimeout <= 0 {
		c.ConfirmationTimeout = def.ConfirmationTimeout
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = def.NotifyTimeout
	}
	return c
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrHostRequired
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	for name, d := range map[string]time.Duration{
		"connect":      c.ConnectTimeout,
		"request":      c.RequestTimeout,
		"confirmation": c.ConfirmationTimeout,
		"notify":       c.NotifyTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidTimeout, name, d)
		}
	}
	return nil
}

// Address returns host:port for logging.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
