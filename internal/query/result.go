package query

import "time"

// State is the observable status of a query.
type State string

const (
	// StateIdle means the key has never been fetched.
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

// Result is what a consumer renders for a key.
type Result[T any] struct {
	State     State
	Data      T
	Err       error
	UpdatedAt time.Time
	// FromCache is set when no fetch ran for this call.
	FromCache bool
	// Stale is set when Data is the last good value and the refresh failed.
	Stale bool
}

// Unpack returns the data for a successful result and the error otherwise.
func (r Result[T]) Unpack() (T, error) {
	if r.State == StateSuccess {
		return r.Data, nil
	}
	var zero T
	if r.Err == nil {
		return zero, errNoData
	}
	return zero, r.Err
}
