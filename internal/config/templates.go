package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "client":
		return clientTemplate, nil
	case "simulator":
		return simulatorTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const clientTemplate = `host = "127.0.0.1"
port = 6000
connect_timeout = "10s"
request_timeout = "90s"
confirmation_timeout = "15s"
drain_timeout_ms = 500
register = "01"
cashier = "00001"

notify_endpoint = ""
notify_api_key = ""
notify_timeout = "10s"
`

const simulatorTemplate = `id = "termsim"
addr = "127.0.0.1:6000"
admin_addr = "127.0.0.1:6080"
cors_origins = ["http://localhost:3000"]
api_key = ""

response_code = "000"
confirm_code = "000"
omit_stan = false
delay = "0s"
idle_timeout = "60s"

[card]
number = "5167940123453315"
expiry = "2812"
entry_mode = "C"
cardholder = "CLIENT TKPAY"
merchant = "TKPAY DEMO SHOP"
`
