package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/tracewalk/internal/catalog"
	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/journal"
	"github.com/jask/tracewalk/internal/mockbackend"
	"github.com/jask/tracewalk/internal/session"
)

func mockConfig(t *testing.T) config.Config {
	t.Helper()
	users := httptest.NewServer(mockbackend.UserRouter(zap.NewNop()))
	payments := httptest.NewServer(mockbackend.PaymentRouter(zap.NewNop()))
	orders := httptest.NewServer(mockbackend.OrderRouter(zap.NewNop()))
	t.Cleanup(func() {
		users.Close()
		payments.Close()
		orders.Close()
	})
	cfg := config.Default()
	cfg.Services = config.ServicesConfig{UserURL: users.URL, PaymentURL: payments.URL, OrderURL: orders.URL}
	return cfg
}

func TestRunHeadlessPrintsEachStep(t *testing.T) {
	cfg := mockConfig(t)
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := session.New(cfg, session.Options{
		Recorder:   journal.NewRepo(db),
		NextUserID: func() int { return 7 },
	})
	p, err := catalog.Lookup("mac mini")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runHeadless(context.Background(), ctrl, p, &out))

	text := out.String()
	require.Contains(t, text, "1. User Creation")
	require.Contains(t, text, `    "userid": "7"`)
	require.Contains(t, text, `    "amount": 10000`)
	require.Contains(t, text, `    "price": 599`)
	require.True(t, strings.HasSuffix(text, "Order Placed!\n"))

	var hist bytes.Buffer
	require.NoError(t, printHistory(context.Background(), db, 10, &hist))
	lines := strings.Split(strings.TrimSpace(hist.String()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		require.Contains(t, l, "ok")
	}
}

func TestRunHeadlessStopsAtFailedStep(t *testing.T) {
	cfg := config.Default()
	// nothing listens here
	cfg.Services.UserURL = "http://127.0.0.1:1"
	cfg.HTTP.Timeout = 2 * time.Second
	ctrl := session.New(cfg, session.Options{})

	var out bytes.Buffer
	err := runHeadless(context.Background(), ctrl, catalog.Product{Name: "Mac Mini", Price: "599"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1. User Creation")
	require.NotContains(t, out.String(), "2. Transfer amount")
	require.Equal(t, session.Init, ctrl.Snapshot().State)
}

func TestRunInitConfigWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, runInitConfig([]string{"-path", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[services]")
	require.Contains(t, string(data), `user_url = "http://localhost:8080"`)

	err = runInitConfig([]string{"-path", path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}
