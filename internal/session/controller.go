package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jask/tracewalk/internal/backend"
	"github.com/jask/tracewalk/internal/catalog"
	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/journal"
	"github.com/jask/tracewalk/internal/logging"
)

const (
	// DemoUsername and DemoAccount are sent with every created user.
	DemoUsername = "Vaish"
	DemoAccount  = "savings"
	// TransferAmount is credited in minor units.
	TransferAmount = 10000
	// MaxUserID bounds generated ids to [1, MaxUserID).
	MaxUserID = 10000
)

// Backend is the set of service calls the walkthrough drives.
type Backend interface {
	CreateUser(ctx context.Context, u backend.NewUser) (backend.Record, error)
	Transfer(ctx context.Context, userID string, t backend.Transfer) (backend.Record, error)
	PlaceOrder(ctx context.Context, o backend.OrderRequest) (backend.Record, error)
}

// Recorder stores action attempts. journal.Repo satisfies it.
type Recorder interface {
	Insert(ctx context.Context, e journal.Entry) error
}

// Options wires collaborators into a Controller. Nil fields get defaults.
type Options struct {
	Backend  Backend
	Opener   Opener
	Recorder Recorder
	// NextUserID returns the numeric id for the next created user.
	NextUserID func() int
	Logger     *zap.Logger
}

// Controller owns the session and runs the three steps against the backends.
// It is safe for concurrent use; the lock is never held across a request.
type Controller struct {
	backend    Backend
	opener     Opener
	recorder   Recorder
	nextUserID func() int
	log        *zap.Logger
	tracer     trace.Tracer

	mu         sync.Mutex
	sess       Session
	generation uint64
	inFlight   map[Action]uint64
}

// New builds a controller from cfg. Unless opts.Backend is set, requests go
// to the service URLs in cfg.
func New(cfg config.Config, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Backend == nil {
		opts.Backend = backend.NewClient(cfg, nil, opts.Logger)
	}
	if opts.Opener == nil {
		opts.Opener = BrowserOpener{}
	}
	if opts.NextUserID == nil {
		opts.NextUserID = RandomUserID
	}
	return &Controller{
		backend:    opts.Backend,
		opener:     opts.Opener,
		recorder:   opts.Recorder,
		nextUserID: opts.NextUserID,
		log:        opts.Logger,
		tracer:     otel.Tracer("github.com/jask/tracewalk/internal/session"),
		sess: Session{
			ID:           uuid.NewString(),
			State:        Init,
			DashboardURL: cfg.Dashboard.URL,
		},
		inFlight: make(map[Action]uint64),
	}
}

// RandomUserID returns a uniformly distributed id in [1, MaxUserID).
// Collisions with existing users are possible and left to the service.
func RandomUserID() int {
	return 1 + rand.IntN(MaxUserID-1)
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.sess
	out.Pending = make(map[Action]bool, len(c.inFlight))
	for a := range c.inFlight {
		out.Pending[a] = true
	}
	return out
}

// CreateUser registers a demo user with a freshly generated id. A failure is
// kept as an error result and the session stays in Init.
func (c *Controller) CreateUser(ctx context.Context) (Result, error) {
	gen, _, err := c.begin(ctx, ActionCreateUser, func(s Session) error {
		return requireState(s, Init)
	})
	if err != nil {
		return Result{}, err
	}

	req := backend.NewUser{
		Username: DemoUsername,
		UserID:   strconv.Itoa(c.nextUserID()),
		Account:  DemoAccount,
	}
	res := c.run(ctx, gen, ActionCreateUser, attribute.String("userid", req.UserID), func(ctx context.Context) (backend.Record, error) {
		rec, err := c.backend.CreateUser(ctx, req)
		if err != nil {
			return nil, err
		}
		return mergeUser(req, rec), nil
	})
	return res.result, c.finish(ctx, gen, ActionCreateUser, res, func(s *Session) {
		s.User = res.result
		if res.result.IsOK() {
			s.State = UserCreated
		}
	})
}

// TransferFunds credits TransferAmount to the created user.
func (c *Controller) TransferFunds(ctx context.Context) (Result, error) {
	gen, snap, err := c.begin(ctx, ActionTransfer, func(s Session) error {
		return requireState(s, UserCreated)
	})
	if err != nil {
		return Result{}, err
	}

	userID := snap.User.Value.String("userid")
	res := c.run(ctx, gen, ActionTransfer, attribute.String("userid", userID), func(ctx context.Context) (backend.Record, error) {
		return c.backend.Transfer(ctx, userID, backend.Transfer{Amount: TransferAmount})
	})
	return res.result, c.finish(ctx, gen, ActionTransfer, res, func(s *Session) {
		s.Payment = res.result
		if res.result.IsOK() {
			s.State = FundsTransferred
		}
	})
}

// PlaceOrder orders the selected product for the created user.
func (c *Controller) PlaceOrder(ctx context.Context) (Result, error) {
	var price int
	gen, snap, err := c.begin(ctx, ActionPlaceOrder, func(s Session) error {
		if err := requireState(s, FundsTransferred); err != nil {
			return err
		}
		if !s.HasProduct() {
			return ErrNoProduct
		}
		p, err := s.Product.PriceValue()
		if err != nil {
			return err
		}
		price = p
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	req := backend.OrderRequest{
		UserID:      snap.User.Value.String("userid"),
		ProductName: snap.Product.Name,
		Price:       price,
	}
	res := c.run(ctx, gen, ActionPlaceOrder, attribute.String("product", req.ProductName), func(ctx context.Context) (backend.Record, error) {
		return c.backend.PlaceOrder(ctx, req)
	})
	return res.result, c.finish(ctx, gen, ActionPlaceOrder, res, func(s *Session) {
		s.Order = res.result
		if res.result.IsOK() {
			s.State = OrderPlaced
		}
	})
}

// SelectProduct records the picked product. It has no network effect and is
// accepted in every state.
func (c *Controller) SelectProduct(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.Product = p
}

// Reset clears the step results and product and returns to Init. The
// dashboard URL is kept. Requests still in flight are superseded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.inFlight = make(map[Action]uint64)
	c.sess.State = Init
	c.sess.User = Result{}
	c.sess.Payment = Result{}
	c.sess.Order = Result{}
	c.sess.Product = catalog.Product{}
	c.log.Info("session reset", zap.String("session_id", c.sess.ID))
}

// SetDashboardURL stores the dashboard address as given.
func (c *Controller) SetDashboardURL(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.DashboardURL = v
}

// OpenDashboard opens the configured dashboard address.
func (c *Controller) OpenDashboard() error {
	c.mu.Lock()
	u := c.sess.DashboardURL
	c.mu.Unlock()
	if err := c.opener.Open(u); err != nil {
		return fmt.Errorf("open dashboard %s: %w", u, err)
	}
	return nil
}

type outcome struct {
	result  Result
	traceID string
	started time.Time
	elapsed time.Duration
}

// begin validates the step against the current session and marks it in flight.
func (c *Controller) begin(ctx context.Context, a Action, allowed func(Session) error) (uint64, Session, error) {
	c.mu.Lock()
	snap := c.sess
	var err error
	if _, busy := c.inFlight[a]; busy {
		err = fmt.Errorf("%s: %w", a, ErrInFlight)
	} else if verr := allowed(snap); verr != nil {
		err = fmt.Errorf("%s: %w", a, verr)
	} else {
		c.inFlight[a] = c.generation
	}
	gen := c.generation
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("action rejected", zap.String("action", string(a)), zap.String("state", snap.State.String()), zap.Error(err))
		c.record(ctx, snap.ID, a, outcome{started: time.Now()}, journal.OutcomeRejected, err.Error())
		return 0, Session{}, err
	}
	return gen, snap, nil
}

// run performs the request inside a span and converts the reply into a Result.
func (c *Controller) run(ctx context.Context, gen uint64, a Action, attr attribute.KeyValue, call func(context.Context) (backend.Record, error)) outcome {
	ctx, span := c.tracer.Start(ctx, "session."+string(a), trace.WithAttributes(attr))
	defer span.End()

	out := outcome{started: time.Now()}
	if sc := span.SpanContext(); sc.IsValid() {
		out.traceID = sc.TraceID().String()
	}
	log := logging.Ctx(ctx, c.log).With(zap.String("action", string(a)), zap.Uint64("generation", gen))
	log.Info("action started")

	rec, err := call(ctx)
	out.elapsed = time.Since(out.started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("action failed", zap.Error(err), zap.Duration("duration", out.elapsed))
		out.result = Failed(err.Error())
		return out
	}
	log.Info("action completed", zap.Duration("duration", out.elapsed))
	out.result = OK(rec)
	return out
}

// finish clears the in-flight mark and applies the result unless a reset
// happened in the meantime.
func (c *Controller) finish(ctx context.Context, gen uint64, a Action, out outcome, apply func(*Session)) error {
	c.mu.Lock()
	if g, ok := c.inFlight[a]; ok && g == gen {
		delete(c.inFlight, a)
	}
	superseded := gen != c.generation
	if !superseded {
		apply(&c.sess)
	}
	id := c.sess.ID
	c.mu.Unlock()

	if superseded {
		c.log.Info("discarding superseded response", zap.String("action", string(a)))
		c.record(ctx, id, a, out, journal.OutcomeSuperseded, ErrSuperseded.Error())
		return fmt.Errorf("%s: %w", a, ErrSuperseded)
	}
	if out.result.IsOK() {
		c.record(ctx, id, a, out, journal.OutcomeOK, "")
	} else {
		c.record(ctx, id, a, out, journal.OutcomeError, out.result.Message)
	}
	return nil
}

func (c *Controller) record(ctx context.Context, sessionID string, a Action, out outcome, result, msg string) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.Insert(context.WithoutCancel(ctx), journal.Entry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Action:    string(a),
		Outcome:   result,
		Message:   msg,
		TraceID:   out.traceID,
		StartedAt: out.started,
		Duration:  out.elapsed,
	})
	if err != nil {
		c.log.Warn("journal insert failed", zap.Error(err))
	}
}

func requireState(s Session, want State) error {
	if s.State != want {
		return fmt.Errorf("%w: need %s, session is %s", ErrWrongState, want, s.State)
	}
	return nil
}

// mergeUser overlays the service reply on the fields that were sent, so the
// user keeps its id even when the service echoes less.
func mergeUser(sent backend.NewUser, reply backend.Record) backend.Record {
	out := backend.Record{
		"username": sent.Username,
		"userid":   sent.UserID,
		"account":  sent.Account,
	}
	for k, v := range reply {
		out[k] = v
	}
	return out
}

// IsRejection reports whether err is a guard rejection rather than a failed request.
func IsRejection(err error) bool {
	return errors.Is(err, ErrWrongState) || errors.Is(err, ErrInFlight) || errors.Is(err, ErrNoProduct)
}
