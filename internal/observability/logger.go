package observability

import (
	"github.com/danmuck/tkpay/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the runtime logging profile and tags every line with
// app, including lines written through the global logger.
func InitLogger(app string) zerolog.Logger {
	logger := logging.ConfigureRuntime().With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
