package session

import (
	"errors"

	"github.com/jask/tracewalk/internal/backend"
	"github.com/jask/tracewalk/internal/catalog"
)

// State is the step the walkthrough has reached.
type State int

const (
	Init State = iota
	UserCreated
	FundsTransferred
	OrderPlaced
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case UserCreated:
		return "UserCreated"
	case FundsTransferred:
		return "FundsTransferred"
	case OrderPlaced:
		return "OrderPlaced"
	default:
		return "Unknown"
	}
}

// Action names one of the network steps.
type Action string

const (
	ActionCreateUser Action = "create_user"
	ActionTransfer   Action = "transfer_funds"
	ActionPlaceOrder Action = "place_order"
)

// Kind tags a Result.
type Kind int

const (
	KindUnset Kind = iota
	KindOK
	KindError
)

// Result is the outcome of one step. The zero value means the step has not
// produced anything yet.
type Result struct {
	Kind    Kind
	Value   backend.Record
	Message string
}

// OK wraps a successful response.
func OK(v backend.Record) Result { return Result{Kind: KindOK, Value: v} }

// Failed wraps an error message.
func Failed(msg string) Result { return Result{Kind: KindError, Message: msg} }

// IsSet reports whether the step has produced a result.
func (r Result) IsSet() bool { return r.Kind != KindUnset }

// IsOK reports whether the step succeeded.
func (r Result) IsOK() bool { return r.Kind == KindOK }

// Session is a point-in-time copy of the walkthrough state.
type Session struct {
	ID           string
	State        State
	User         Result
	Payment      Result
	Order        Result
	Product      catalog.Product
	DashboardURL string
	Pending      map[Action]bool
}

// HasProduct reports whether a product has been picked.
func (s Session) HasProduct() bool { return !s.Product.IsZero() }

var (
	// ErrWrongState rejects a step invoked before its predecessor succeeded
	// or after it already ran.
	ErrWrongState = errors.New("action not allowed in current state")
	// ErrInFlight rejects a step while the same step is still waiting on the network.
	ErrInFlight = errors.New("action already in flight")
	// ErrSuperseded is returned to a step whose session was reset while it ran.
	// Its response is discarded.
	ErrSuperseded = errors.New("session was reset while the request was in flight")
	// ErrNoProduct rejects placing an order before a product was picked.
	ErrNoProduct = errors.New("no product selected")
)
