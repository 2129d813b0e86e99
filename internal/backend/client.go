package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/logging"
)

// RequestIDHeader carries a per-request id the services echo into their logs.
const RequestIDHeader = "requestId"

// Client talks to the user, payment and order services.
type Client struct {
	services config.ServicesConfig
	http     *http.Client
	log      *zap.Logger
}

// NewClient builds a client for the configured services. A nil httpClient
// gets a traced transport with the configured timeout (zero means none).
func NewClient(cfg config.Config, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.HTTP.Timeout,
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{services: cfg.Services, http: httpClient, log: log}
}

// CreateUser posts a new user to the user service.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (Record, error) {
	return c.send(ctx, http.MethodPost, c.services.UserURL, "/users", u)
}

// Transfer credits amount to userID through the payment service.
func (c *Client) Transfer(ctx context.Context, userID string, t Transfer) (Record, error) {
	path := "/payments/transfer/id/" + url.PathEscape(userID)
	return c.send(ctx, http.MethodPut, c.services.PaymentURL, path, t)
}

// PlaceOrder posts an order to the order service.
func (c *Client) PlaceOrder(ctx context.Context, o OrderRequest) (Record, error) {
	return c.send(ctx, http.MethodPost, c.services.OrderURL, "/orders", o)
}

func (c *Client) send(ctx context.Context, method, base, path string, body any) (Record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	target := strings.TrimRight(base, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	log := logging.Ctx(ctx, c.log).With(
		zap.String("requestId", reqID),
		zap.String("requestMethod", method),
		zap.String("requestPath", path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log = log.With(zap.Int("statusCode", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
		log.Warn("service returned error", zap.String("message", se.Message))
		return nil, se
	}

	rec, err := decodeRecord(data)
	if err != nil {
		log.Error("decode response", zap.Error(err))
		return nil, err
	}
	log.Info("request completed")
	return rec, nil
}

// decodeRecord parses a JSON object body. An empty body decodes to an empty record.
func decodeRecord(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rec == nil {
		return nil, errors.New("decode response: not a JSON object")
	}
	return rec, nil
}

// errorMessage pulls the message out of the services' {"message": ...} envelope.
func errorMessage(data []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return strings.TrimSpace(string(data))
}
