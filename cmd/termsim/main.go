package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tkpay/internal/config"
	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/simulator"
)

func main() {
	path := flag.String("config", "cmd/termsim/config.toml", "path to simulator config.toml")
	flag.Parse()

	logger := observability.InitLogger("termsim")

	fileCfg, err := config.LoadSimulatorConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termsim: %v\n", err)
		os.Exit(1)
	}
	cfg, err := fileCfg.Simulator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "termsim: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("addr", cfg.Addr).
		Str("admin_addr", cfg.AdminAddr).
		Str("response_code", cfg.ResponseCode).
		Str("confirm_code", cfg.ConfirmCode).
		Msg("termsim starting")
	if err := simulator.New(cfg, logger).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "termsim: %v\n", err)
		os.Exit(1)
	}
}
