package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tkpay/internal/notify"
	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/payment"
	"github.com/danmuck/tkpay/internal/protocol/receipt"
	"github.com/danmuck/tkpay/internal/transport"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "path to tkpayctl config.toml (defaults apply when empty)")
	amount := flag.String("amount", "", "amount in MAD, e.g. 100.50")
	register := flag.String("register", "", "two-digit register id (overrides config)")
	cashier := flag.String("cashier", "", "five-digit cashier id (overrides config)")
	sequence := flag.String("sequence", "", "six-digit sequence (generated when empty)")
	check := flag.Bool("check", false, "validate config and exit")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	flag.Parse()

	logger := observability.InitLogger("tkpayctl")

	cfg := defaultClientConfig()
	if *configPath != "" {
		loaded, err := loadClientConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	if *check {
		logger.Info().Str("terminal", cfg.Payment.Address()).Msg("config ok")
		return
	}

	if *register != "" {
		cfg.Register = *register
	}
	if *cashier != "" {
		cfg.Cashier = *cashier
	}
	value, err := decimal.NewFromString(*amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tkpayctl: invalid -amount %q: %v\n", *amount, err)
		os.Exit(2)
	}

	opts := []payment.Option{payment.WithLogger(logger)}
	if cfg.Notify.Endpoint != "" {
		notifier, err := notify.NewHTTPNotifier(cfg.Notify)
		if err != nil {
			logger.Fatal().Err(err).Msg("configure notifier")
		}
		opts = append(opts, payment.WithNotifier(notifier))
	}
	client, err := payment.NewClient(cfg.Payment, transport.NewTCP(cfg.Transport), opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("create client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := client.ProcessPayment(ctx, payment.PaymentRequest{
		Amount:     value,
		RegisterID: cfg.Register,
		CashierID:  cfg.Cashier,
		Sequence:   *sequence,
	})
	stop()
	_ = client.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tkpayctl: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Fatal().Err(err).Msg("encode result")
		}
	} else {
		printResult(os.Stdout, res)
	}
	if !res.Success {
		os.Exit(3)
	}
}

func printResult(w io.Writer, res payment.PaymentResult) {
	status := "APPROVED"
	if !res.Success {
		status = "DECLINED"
	}
	fmt.Fprintf(w, "%s code=%s stan=%s ncai=%s sequence=%s\n",
		status, res.ResponseCode, res.STAN, res.NCAI, res.Sequence)
	if res.ErrorMessage != "" {
		fmt.Fprintf(w, "reason: %s (%s)\n", res.ErrorMessage, res.ErrorCode)
	}
	if res.CardNumber != "" {
		fmt.Fprintf(w, "card=%s expiry=%s entry=%s auth=%s\n",
			res.CardNumber, res.CardExpiry, res.EntryMode, res.AuthNumber)
	}
	if res.CustomerReceipt != nil {
		fmt.Fprintln(w)
		fmt.Fprint(w, res.CustomerReceipt.Text(receipt.DefaultWidth))
	}
}
