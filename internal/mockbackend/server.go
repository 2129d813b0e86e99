// Package mockbackend serves stand-ins for the user, payment and order
// services. Each route echoes its JSON body back with "status": "ok".
package mockbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/logging"
)

// UserRouter serves POST /users.
func UserRouter(log *zap.Logger) http.Handler {
	router := newRouter(log)
	router.Handle("/users", otelhttp.NewHandler(echo(log, "createUser", nil), "createuser")).Methods(http.MethodPost)
	return withCORS(router)
}

// PaymentRouter serves PUT /payments/transfer/id/{userID}.
func PaymentRouter(log *zap.Logger) http.Handler {
	router := newRouter(log)
	router.Handle("/payments/transfer/id/{userID}", otelhttp.NewHandler(echo(log, "transferAmount", func(r *http.Request, body map[string]any) {
		body["userid"] = mux.Vars(r)["userID"]
	}), "transferamount")).Methods(http.MethodPut)
	return withCORS(router)
}

// OrderRouter serves POST /orders.
func OrderRouter(log *zap.Logger) http.Handler {
	router := newRouter(log)
	router.Handle("/orders", otelhttp.NewHandler(echo(log, "createOrder", nil), "CreateOrder")).Methods(http.MethodPost)
	return withCORS(router)
}

// Serve runs the three services on the configured addresses until ctx is
// cancelled or one of them fails. All addresses are bound before any request
// is served.
func Serve(ctx context.Context, cfg config.MockConfig, log *zap.Logger) error {
	var lns []net.Listener
	for _, addr := range []string{cfg.UserAddr, cfg.PaymentAddr, cfg.OrderAddr} {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			for _, l := range lns {
				_ = l.Close()
			}
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		lns = append(lns, ln)
	}
	return serve(ctx, lns, log)
}

// serve takes the user, payment and order listeners in that order.
func serve(ctx context.Context, lns []net.Listener, log *zap.Logger) error {
	services := []struct {
		name   string
		router func(*zap.Logger) http.Handler
	}{
		{"user-service", UserRouter},
		{"payment-service", PaymentRouter},
		{"order-service", OrderRouter},
	}

	g, gctx := errgroup.WithContext(ctx)
	servers := make([]*http.Server, len(lns))
	for i, ln := range lns {
		srv := &http.Server{
			Handler:     services[i].router(log.With(zap.String("serviceName", services[i].name))),
			BaseContext: func(net.Listener) context.Context { return gctx },
		}
		servers[i] = srv
		g.Go(func() error {
			log.Info("mock service listening", zap.String("service", services[i].name), zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func newRouter(log *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMW(log))
	router.Use(requestIDMW)
	return router
}

func withCORS(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost},
	})
	return c.Handler(h)
}

type errResponse struct {
	Message string `json:"message"`
}

// echo decodes a JSON object, lets decorate add path values, and writes it
// back with "status": "ok".
func echo(log *zap.Logger, method string, decorate func(*http.Request, map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logging.Ctx(r.Context(), log).With(
			zap.String("requestId", r.Header.Get("requestId")),
			zap.String("methodName", method),
		)
		l.Info("controller called")

		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil || body == nil {
			if err == nil {
				err = errors.New("body must be a JSON object")
			}
			l.Warn("bad request", zap.Error(err))
			writeResponse(w, http.StatusBadRequest, errResponse{Message: err.Error()})
			return
		}
		if decorate != nil {
			decorate(r, body)
		}
		body["status"] = "ok"
		writeResponse(w, http.StatusOK, body)
	}
}

func writeResponse(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// loggingMW logs one line per request with status, body and duration.
func loggingMW(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			var buf bytes.Buffer
			r.Body = io.NopCloser(io.TeeReader(r.Body, &buf))
			next.ServeHTTP(rw, r)
			logging.Ctx(r.Context(), log).Info("Request completed",
				zap.String("requestMethod", r.Method),
				zap.String("requestPath", r.URL.Path),
				zap.Int("statusCode", rw.statusCode),
				zap.String("requestBody", buf.String()),
				zap.Int64("duration", time.Since(start).Milliseconds()),
			)
		})
	}
}

// requestIDMW keeps a caller-supplied requestId and assigns one otherwise.
func requestIDMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("requestId") == "" {
			r.Header.Set("requestId", uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}
