package main

import (
	"flag"

	"github.com/danmuck/tkpay/internal/config"
	"github.com/danmuck/tkpay/internal/observability"
)

var defaultPaths = map[string]string{
	"client":    "cmd/tkpayctl/config.toml",
	"simulator": "cmd/termsim/config.toml",
}

func main() {
	kind := flag.String("kind", "client", "config kind: client|simulator")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing simulator config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	logger := observability.InitLogger("configgen")

	defaultPath, ok := defaultPaths[*kind]
	if !ok {
		logger.Fatal().Str("kind", *kind).Msg("unknown kind")
	}

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath
		}
		if *kind != "simulator" {
			logger.Fatal().Str("kind", *kind).Msg("validation supports the simulator kind only; run tkpayctl -check for client configs")
		}
		if _, err := config.LoadSimulatorConfig(path); err != nil {
			logger.Fatal().Err(err).Msg("validate config")
		}
		logger.Info().Str("kind", *kind).Str("path", path).Msg("validated config")
		return
	}

	target := *output
	if target == "" {
		target = defaultPath
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		logger.Fatal().Err(err).Msg("write template")
	}
	logger.Info().Str("kind", *kind).Str("path", target).Msg("wrote config template")
}
