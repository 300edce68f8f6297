package dialog

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

// State is the lifecycle position of a dialog.
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

// ErrNotOpen is returned by Submit when the dialog is closed or busy.
var ErrNotOpen = appErrors.New("DIALOG_NOT_OPEN", http.StatusConflict, "formulário não está aberto")

const invalidMessage = "Verifique os campos destacados."

// Normalizer is implemented by forms that clean their values (trimming and
// the like) before validation.
type Normalizer interface {
	Normalize()
}

// Snapshot is the externally visible dialog state.
type Snapshot struct {
	State    State             `json:"state"`
	EntityID string            `json:"entityId,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// SubmitFunc performs the side effect for a validated form.
type SubmitFunc[F any] func(ctx context.Context, entityID string, values F) error

// Controller owns one form of type F.
type Controller[F any] struct {
	mu       sync.Mutex
	validate *validator.Validate
	state    State
	entityID string
	values   F
	errors   map[string]string
}

// New returns a closed controller. A nil validator gets NewValidator().
func New[F any](validate *validator.Validate) *Controller[F] {
	if validate == nil {
		validate = NewValidator()
	}
	return &Controller[F]{validate: validate, state: StateClosed}
}

// Open targets an existing entity and pre-populates the form from it.
func (c *Controller[F]) Open(entityID string, values F) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateOpen
	c.entityID = entityID
	c.values = values
	c.errors = nil
}

// OpenNew starts an empty form from defaults.
func (c *Controller[F]) OpenNew(defaults F) {
	c.Open("", defaults)
}

// Set replaces the values of an open form.
func (c *Controller[F]) Set(values F) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateOpen {
		c.values = values
	}
}

// Close discards the form.
func (c *Controller[F]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero F
	c.state = StateClosed
	c.entityID = ""
	c.values = zero
	c.errors = nil
}

// Values returns the current form values.
func (c *Controller[F]) Values() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Submit validates the form and, only if it passes, calls fn. Success closes
// the dialog. Validation failures and fn errors leave it open with the values
// intact.
func (c *Controller[F]) Submit(ctx context.Context, fn SubmitFunc[F]) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if n, ok := any(&c.values).(Normalizer); ok {
		n.Normalize()
	}
	if err := c.validate.Struct(c.values); err != nil {
		fields := FieldErrors(err)
		if fields == nil {
			c.mu.Unlock()
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, invalidMessage)
		}
		c.errors = fields
		c.mu.Unlock()
		return appErrors.WithFields(invalidMessage, fields)
	}
	c.state = StateSubmitting
	c.errors = nil
	entityID, values := c.entityID, c.values
	c.mu.Unlock()

	err := fn(ctx, entityID, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateOpen
		if apiErr := appErrors.FromError(err); len(apiErr.Fields) > 0 {
			c.errors = apiErr.Fields
		}
		return err
	}
	var zero F
	c.state = StateClosed
	c.entityID = ""
	c.values = zero
	return nil
}

// Snapshot reports the current state.
func (c *Controller[F]) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state, EntityID: c.entityID}
	if len(c.errors) > 0 {
		snap.Errors = make(map[string]string, len(c.errors))
		for k, v := range c.errors {
			snap.Errors[k] = v
		}
	}
	return snap
}
