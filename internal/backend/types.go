package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a JSON object returned by one of the services. Numbers are kept
// as json.Number so values round-trip unchanged.
type Record map[string]any

// String returns the field as text, formatting numbers in their JSON form.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the field as an integer when it is a JSON number or a numeric string.
func (r Record) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	case float64:
		return int64(v), v == float64(int64(v))
	}
	return 0, false
}

// NewUser is the body of POST /users.
type NewUser struct {
	Username string `json:"username"`
	UserID   string `json:"userid"`
	Account  string `json:"account"`
}

// Transfer is the body of PUT /payments/transfer/id/{userid}.
type Transfer struct {
	Amount int `json:"amount"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	UserID      string `json:"userid"`
	ProductName string `json:"product_name"`
	Price       int    `json:"price"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}
