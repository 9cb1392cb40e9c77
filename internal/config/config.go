package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danmuck/tkpay/internal/protocol/tlv"
	"github.com/pelletier/go-toml/v2"
)

// SimulatorConfig is the termsim node file.
type SimulatorConfig struct {
	ID          string   `toml:"id"`
	Addr        string   `toml:"addr"`
	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`

	ResponseCode string `toml:"response_code"`
	ConfirmCode  string `toml:"confirm_code"`
	OmitSTAN     bool   `toml:"omit_stan"`
	Delay        string `toml:"delay"`
	IdleTimeout  string `toml:"idle_timeout"`

	Card SimulatorCardConfig `toml:"card"`
}

type SimulatorCardConfig struct {
	Number     string `toml:"number"`
	Expiry     string `toml:"expiry"`
	EntryMode  string `toml:"entry_mode"`
	Cardholder string `toml:"cardholder"`
	Merchant   string `toml:"merchant"`
}

func LoadSimulatorConfig(path string) (SimulatorConfig, error) {
	var cfg SimulatorConfig
	if err := loadToml(path, &cfg); err != nil {
		return SimulatorConfig{}, err
	}
	if cfg.ID == "" {
		cfg.ID = "termsim"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6000"
	}
	if err := ValidateSimulatorConfig(cfg); err != nil {
		return SimulatorConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateSimulatorConfig(cfg SimulatorConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("simulator config missing id")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("simulator config missing addr")
	}
	if err := validateResponseCode("response_code", cfg.ResponseCode); err != nil {
		return err
	}
	if err := validateResponseCode("confirm_code", cfg.ConfirmCode); err != nil {
		return err
	}
	if _, err := parseDuration("delay", cfg.Delay); err != nil {
		return err
	}
	if _, err := parseDuration("idle_timeout", cfg.IdleTimeout); err != nil {
		return err
	}
	if n := cfg.Card.Number; n != "" && !digitsOnly(n) {
		return fmt.Errorf("card.number must be digits")
	}
	if l := len(cfg.Card.Cardholder); l > tlv.MaxValueLen {
		return fmt.Errorf("card.cardholder too long: %d", l)
	}
	return nil
}

// Response codes are three digits; empty means approved.
func validateResponseCode(key, code string) error {
	if code == "" {
		return nil
	}
	if len(code) != 3 || !digitsOnly(code) {
		return fmt.Errorf("%s must be three digits, got %q", key, code)
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
