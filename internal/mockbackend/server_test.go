package mockbackend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/tracewalk/internal/catalog"
	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/mockbackend"
	"github.com/jask/tracewalk/internal/session"
)

func do(t *testing.T, h http.Handler, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func TestUserRouterEchoes(t *testing.T) {
	h := mockbackend.UserRouter(zap.NewNop())
	resp, body := do(t, h, http.MethodPost, "/users", `{"username":"Vaish","userid":"42","account":"savings"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"username": "Vaish", "userid": "42", "account": "savings", "status": "ok"}, body)
}

func TestPaymentRouterAddsPathUser(t *testing.T) {
	h := mockbackend.PaymentRouter(zap.NewNop())
	resp, body := do(t, h, http.MethodPut, "/payments/transfer/id/42", `{"amount":10000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(10000), body["amount"])
	require.Equal(t, "42", body["userid"])
	require.Equal(t, "ok", body["status"])
}

func TestRoutesEnforceMethods(t *testing.T) {
	resp, _ := do(t, mockbackend.OrderRouter(zap.NewNop()), http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = do(t, mockbackend.PaymentRouter(zap.NewNop()), http.MethodPost, "/payments/transfer/id/1", `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestInvalidJSONIsBadRequest(t *testing.T) {
	resp, body := do(t, mockbackend.OrderRouter(zap.NewNop()), http.MethodPost, "/orders", `{"userid":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, body["message"])

	resp, _ = do(t, mockbackend.OrderRouter(zap.NewNop()), http.MethodPost, "/orders", `null`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	mockbackend.UserRouter(zap.NewNop()).ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWalkthroughAgainstMockServices(t *testing.T) {
	users := httptest.NewServer(mockbackend.UserRouter(zap.NewNop()))
	payments := httptest.NewServer(mockbackend.PaymentRouter(zap.NewNop()))
	orders := httptest.NewServer(mockbackend.OrderRouter(zap.NewNop()))
	t.Cleanup(func() { users.Close(); payments.Close(); orders.Close() })

	cfg := config.Default()
	cfg.Services = config.ServicesConfig{UserURL: users.URL, PaymentURL: payments.URL, OrderURL: orders.URL}
	c := session.New(cfg, session.Options{
		Opener:     session.OpenerFunc(func(string) error { return nil }),
		NextUserID: func() int { return 42 },
	})
	ctx := context.Background()

	_, err := c.CreateUser(ctx)
	require.NoError(t, err)
	payment, err := c.TransferFunds(ctx)
	require.NoError(t, err)
	require.Equal(t, "42", payment.Value.String("userid"))

	p, err := catalog.Select(2)
	require.NoError(t, err)
	c.SelectProduct(p)
	order, err := c.PlaceOrder(ctx)
	require.NoError(t, err)

	require.Equal(t, "ok", order.Value.String("status"))
	price, ok := order.Value.Int("price")
	require.True(t, ok)
	require.EqualValues(t, 599, price)
	require.Equal(t, "Mac Mini", order.Value.String("product_name"))
	require.Equal(t, session.OrderPlaced, c.Snapshot().State)
}

func TestServeFailsWhenAddressTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { taken.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = mockbackend.Serve(ctx, config.MockConfig{
		UserAddr:    "127.0.0.1:0",
		PaymentAddr: taken.Addr().String(),
		OrderAddr:   "127.0.0.1:0",
	}, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), taken.Addr().String())
}

func TestServeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mockbackend.Serve(ctx, config.MockConfig{
		UserAddr:    "127.0.0.1:0",
		PaymentAddr: "127.0.0.1:0",
		OrderAddr:   "127.0.0.1:0",
	}, zap.NewNop())
	require.NoError(t, err)
}
