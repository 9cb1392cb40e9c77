package simulator

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/tkpay/internal/notify"
	"github.com/danmuck/tkpay/internal/payment"
	"github.com/danmuck/tkpay/internal/protocol"
	"github.com/danmuck/tkpay/internal/protocol/receipt"
	"github.com/danmuck/tkpay/internal/testutil/testlog"
	"github.com/danmuck/tkpay/internal/transport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTerminal(t *testing.T, cfg Config) (*Terminal, payment.Config) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	term := New(cfg, testlog.Start(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("terminal did not stop")
		}
	})

	addr := ln.Addr().(*net.TCPAddr)
	pcfg := payment.DefaultConfig()
	pcfg.Host = addr.IP.String()
	pcfg.Port = addr.Port
	pcfg.ConnectTimeout = time.Second
	pcfg.RequestTimeout = 2 * time.Second
	pcfg.ConfirmationTimeout = 2 * time.Second
	return term, pcfg
}

func newClient(t *testing.T, cfg payment.Config, opts ...payment.Option) *payment.Client {
	t.Helper()
	tcp := transport.NewTCP(transport.Config{DrainTimeout: 20 * time.Millisecond})
	opts = append(opts, payment.WithLogger(testlog.Start(t)))
	client, err := payment.NewClient(cfg, tcp, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func request(amount string) payment.PaymentRequest {
	return payment.PaymentRequest{
		Amount:     decimal.RequireFromString(amount),
		RegisterID: "01",
		CashierID:  "00001",
	}
}

func TestApprovedPaymentAgainstSimulator(t *testing.T) {
	_, cfg := startTerminal(t, Config{})
	client := newClient(t, cfg)

	res, err := client.ProcessPayment(context.Background(), request("100.50"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, protocol.ResponseApproved, res.ResponseCode)
	assert.Equal(t, "000001", res.STAN)
	assert.Equal(t, "A000001", res.AuthNumber)
	assert.Equal(t, "516794******3315", res.CardNumber)
	assert.Equal(t, "0100001", res.NCAI)
	assert.Equal(t, payment.StateCompleted, client.State())

	require.NotNil(t, res.MerchantReceipt)
	require.NotNil(t, res.CustomerReceipt)
	text := res.CustomerReceipt.Text(receipt.DefaultWidth)
	assert.Contains(t, text, "TKPAY")
	assert.Contains(t, text, "Powered by NAPS")
	assert.Contains(t, text, "CARTE 516794******3315")
	assert.Contains(t, text, "100.50 MAD")
	assert.NotContains(t, text, "5167940123453315")
}

func TestSimulatorStanAdvancesAcrossConnections(t *testing.T) {
	_, cfg := startTerminal(t, Config{})
	client := newClient(t, cfg)

	first, err := client.ProcessPayment(context.Background(), request("1"))
	require.NoError(t, err)
	second, err := client.ProcessPayment(context.Background(), request("2"))
	require.NoError(t, err)

	assert.Equal(t, "000001", first.STAN)
	assert.Equal(t, "000002", second.STAN)
	assert.Equal(t, "000001", first.Sequence)
	assert.Equal(t, "000002", second.Sequence)
}

func TestSimulatorDeclines(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		code    string
		errCode payment.ErrorCode
	}{
		{name: "terminal down", cfg: Config{ResponseCode: "909"}, code: "909", errCode: payment.CodeTerminalDown},
		{name: "authorization decline", cfg: Config{ResponseCode: "116"}, code: "116", errCode: payment.CodePaymentDeclined},
		{name: "confirmation decline", cfg: Config{ConfirmCode: "480"}, code: "480", errCode: payment.CodePaymentDeclined},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, cfg := startTerminal(t, tc.cfg)
			client := newClient(t, cfg)

			res, err := client.ProcessPayment(context.Background(), request("10"))
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tc.code, res.ResponseCode)
			assert.Equal(t, tc.errCode, res.ErrorCode)
			assert.Nil(t, res.CustomerReceipt)
		})
	}
}

func TestSimulatorOmitSTANIsInvalidResponse(t *testing.T) {
	_, cfg := startTerminal(t, Config{OmitSTAN: true})
	client := newClient(t, cfg)

	_, err := client.ProcessPayment(context.Background(), request("10"))
	require.Error(t, err)
	assert.Equal(t, payment.CodeInvalidResponse, payment.CodeOf(err))
}

func TestSimulatorDelayTriggersTimeout(t *testing.T) {
	_, cfg := startTerminal(t, Config{Delay: time.Second})
	cfg.RequestTimeout = 100 * time.Millisecond
	client := newClient(t, cfg)

	_, err := client.ProcessPayment(context.Background(), request("10"))
	require.Error(t, err)
	assert.Equal(t, payment.CodeTimeout, payment.CodeOf(err))
}

func TestNotificationsReachSimulatorAdmin(t *testing.T) {
	term, cfg := startTerminal(t, Config{})
	admin := httptest.NewServer(term.Handler())
	defer admin.Close()

	notifier, err := notify.NewHTTPNotifier(notify.Config{Endpoint: admin.URL + "/notifications"})
	require.NoError(t, err)
	client := newClient(t, cfg, payment.WithNotifier(notifier))

	res, err := client.ProcessPayment(context.Background(), request("42"))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	events := term.Notifications()
	require.Len(t, events, 1)
	assert.Equal(t, payment.EventApproved, events[0].Type)
	assert.Equal(t, res.TransactionID, events[0].TransactionID)
	assert.Equal(t, "516794******3315", events[0].MaskedCard)
	assert.Equal(t, int64(4200), events[0].AmountMinor)

	resp, err := http.Get(admin.URL + "/notifications")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
}

func TestAdminRoutes(t *testing.T) {
	term := New(Config{ID: "sim-a"}, testlog.Start(t))
	h := term.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"sim-a"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tkpay_")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, term.Notifications())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.50", formatAmount("10050"))
	assert.Equal(t, "0.05", formatAmount("5"))
	assert.Equal(t, "0.00", formatAmount(""))
}

func TestRunRequiresAddr(t *testing.T) {
	term := New(Config{}, testlog.Start(t))
	term.cfg.Addr = ""
	assert.ErrorIs(t, term.Run(context.Background()), ErrAddrRequired)
}

func TestNotificationSinkRequiresToken(t *testing.T) {
	term := New(Config{APIKey: "sim-key"}, testlog.Start(t))
	admin := httptest.NewServer(term.Handler())
	defer admin.Close()

	ev := payment.Event{EventID: "evt-1", Type: payment.EventApproved}
	for _, key := range []string{"", "wrong"} {
		n, err := notify.NewHTTPNotifier(notify.Config{Endpoint: admin.URL + "/notifications", APIKey: key})
		require.NoError(t, err)
		assert.Error(t, n.Notify(context.Background(), ev), "key %q", key)
	}
	assert.Empty(t, term.Notifications())

	n, err := notify.NewHTTPNotifier(notify.Config{Endpoint: admin.URL + "/notifications", APIKey: "sim-key"})
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), ev))
	assert.Len(t, term.Notifications(), 1)
}
