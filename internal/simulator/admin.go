package simulator

import (
	"net/http"
	"time"

	"github.com/danmuck/tkpay/internal/auth"
	"github.com/danmuck/tkpay/internal/observability"
	"github.com/danmuck/tkpay/internal/payment"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the simulator admin API. POST /notifications doubles as a
// sink for the SDK's HTTP notifier.
func (t *Terminal) Handler() http.Handler {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(t.logger, t.cfg.ID))
	r.Use(observability.RequestMetricsMiddleware(t.cfg.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(t.cfg.CORSOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"id":            t.cfg.ID,
			"addr":          t.cfg.Addr,
			"exchanges":     t.exchanges.Load(),
			"response_code": t.cfg.ResponseCode,
			"confirm_code":  t.cfg.ConfirmCode,
			"uptime":        time.Since(t.started).Round(time.Second).String(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/notifications", func(c *gin.Context) {
		events := t.Notifications()
		c.JSON(http.StatusOK, gin.H{"count": len(events), "notifications": events})
	})
	r.POST("/notifications", t.requireToken(), func(c *gin.Context) {
		var ev payment.Event
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if ev.EventID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_id required"})
			return
		}
		t.addNotification(ev)
		t.logger.Info().
			Str("event_id", ev.EventID).
			Str("type", string(ev.Type)).
			Str("transaction_id", ev.TransactionID).
			Msg("simulator notification received")
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	})
	return r
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

func (t *Terminal) requireToken() gin.HandlerFunc {
	if t.cfg.APIKey == "" {
		return func(c *gin.Context) { c.Next() }
	}
	validator := auth.StaticToken{Token: t.cfg.APIKey}
	return func(c *gin.Context) {
		if err := auth.CheckHeader(validator, c.GetHeader("Authorization")); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
