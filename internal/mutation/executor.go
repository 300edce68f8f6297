package mutation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/middleware/requestid"
)

const defaultLockTTL = 30 * time.Second

// Outcomes reported to the Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeInFlight = "in_flight"
)

// Invalidator marks query keys stale. *query.Client satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...query.Key)
}

// Notifier delivers toasts to a user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Locker is a cross-instance lock. Acquire reports false when another holder
// owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// AuditRecorder persists mutation outcomes.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Observer receives mutation metrics.
type Observer interface {
	ObserveMutation(name, outcome string, duration time.Duration)
}

// Message is the text of a toast.
type Message struct {
	Title       string
	Description string
}

// Failure describes the toast shown when an operation fails. Fallback is used
// when the error carries no server message.
type Failure struct {
	Title    string
	Fallback string
}

// Spec describes one operation.
type Spec struct {
	Name string
	// LockKey identifies the target; a second call with the same key while one
	// is running fails with ErrMutationInFlight. Empty disables the lock.
	LockKey     string
	Guard       func(ctx context.Context) error
	Invalidates []query.Key
	Success     Message
	Failure     Failure
	Actor       session.Session
	Resource    string
	ResourceID  string
	// Silent suppresses the toast for background side effects.
	Silent bool
}

// Executor runs operations. Cached data is never patched; success only
// invalidates.
type Executor struct {
	invalidator Invalidator
	notifier    Notifier
	locker      Locker
	audit       AuditRecorder
	observer    Observer
	logger      *zap.Logger
	lockTTL     time.Duration
	fallback    string
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Option customises an Executor.
type Option func(*Executor)

func WithNotifier(n Notifier) Option { return func(e *Executor) { e.notifier = n } }

func WithLocker(l Locker) Option { return func(e *Executor) { e.locker = l } }

func WithAudit(a AuditRecorder) Option { return func(e *Executor) { e.audit = a } }

func WithObserver(o Observer) Option { return func(e *Executor) { e.observer = o } }

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
func WithLockTTL(d time.Duration) Option { return func(e *Executor) { e.lockTTL = d } }

// WithFallbackMessage sets the generic failure text.
func WithFallbackMessage(msg string) Option { return func(e *Executor) { e.fallback = msg } }

// NewExecutor constructs an Executor.
func NewExecutor(invalidator Invalidator, logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		invalidator: invalidator,
		logger:      logger,
		lockTTL:     defaultLockTTL,
		fallback:    "Ocorreu um erro inesperado. Tente novamente.",
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Execute runs fn under spec. fn is the only call that reaches the backend.
func Execute[T any](ctx context.Context, e *Executor, spec Spec, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := e.now()

	release, err := e.acquire(ctx, spec.LockKey)
	if err != nil {
		e.observe(spec.Name, OutcomeInFlight, start)
		return zero, err
	}
	defer release()

	if spec.Guard != nil {
		if err := spec.Guard(ctx); err != nil {
			err = asNotAllowed(err)
			e.finish(ctx, spec, models.AuditOutcomeRejected, err)
			e.observe(spec.Name, OutcomeRejected, start)
			return zero, err
		}
	}

	value, err := fn(ctx)
	if err != nil {
		e.finish(ctx, spec, models.AuditOutcomeFailure, err)
		e.observe(spec.Name, OutcomeFailure, start)
		return zero, err
	}

	if e.invalidator != nil && len(spec.Invalidates) > 0 {
		e.invalidator.Invalidate(context.WithoutCancel(ctx), query.Dedupe(spec.Invalidates)...)
	}
	e.finish(ctx, spec, models.AuditOutcomeSuccess, nil)
	e.observe(spec.Name, OutcomeSuccess, start)
	return value, nil
}

// Run is Execute for operations without a result value.
func Run(ctx context.Context, e *Executor, spec Spec, fn func(ctx context.Context) error) error {
	_, err := Execute(ctx, e, spec, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// InFlight reports whether an operation holds lockKey on this instance.
func (e *Executor) InFlight(lockKey string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[lockKey]
	return ok
}

func (e *Executor) acquire(ctx context.Context, lockKey string) (func(), error) {
	if lockKey == "" {
		return func() {}, nil
	}
	e.mu.Lock()
	if _, busy := e.inFlight[lockKey]; busy {
		e.mu.Unlock()
		return nil, appErrors.ErrMutationInFlight
	}
	e.inFlight[lockKey] = struct{}{}
	e.mu.Unlock()

	releaseLocal := func() {
		e.mu.Lock()
		delete(e.inFlight, lockKey)
		e.mu.Unlock()
	}

	if e.locker == nil {
		return releaseLocal, nil
	}
	ok, err := e.locker.Acquire(ctx, lockKey, e.lockTTL)
	if err != nil {
		// the local lock still guards this instance
		e.logger.Warn("distributed lock unavailable", zap.String("lock", lockKey), zap.Error(err))
		return releaseLocal, nil
	}
	if !ok {
		releaseLocal()
		return nil, appErrors.ErrMutationInFlight
	}
	return func() {
		if err := e.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			e.logger.Warn("release distributed lock", zap.String("lock", lockKey), zap.Error(err))
		}
		releaseLocal()
	}, nil
}

func asNotAllowed(err error) error {
	var apiErr *appErrors.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrMutationNotAllowed.Code, appErrors.ErrMutationNotAllowed.Status, err.Error())
}

// FailureMessage picks the text shown for err: the server or domain message
// when there is one, else fallback.
func FailureMessage(err error, fallback string) string {
	var apiErr *appErrors.Error
	if !errors.As(err, &apiErr) || apiErr.Message == "" {
		return fallback
	}
	if apiErr.Code == appErrors.ErrInternal.Code && apiErr.Message == appErrors.ErrInternal.Message {
		return fallback
	}
	return apiErr.Message
}

func (e *Executor) finish(ctx context.Context, spec Spec, outcome string, err error) {
	detached := context.WithoutCancel(ctx)
	var note models.Notification
	if err == nil {
		note = models.Notification{
			Variant:     models.NotificationSuccess,
			Title:       spec.Success.Title,
			Description: spec.Success.Description,
		}
	} else {
		fallback := spec.Failure.Fallback
		if fallback == "" {
			fallback = e.fallback
		}
		title := spec.Failure.Title
		if title == "" {
			title = "Erro"
		}
		note = models.Notification{
			Variant:     models.NotificationError,
			Title:       title,
			Description: FailureMessage(err, fallback),
		}
		e.logger.Info("mutation failed",
			zap.String("mutation", spec.Name),
			zap.String("resource_id", spec.ResourceID),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	}

	if e.notifier != nil && !spec.Silent && spec.Actor.Authenticated() && note.Title != "" {
		note.ID = uuid.NewString()
		note.UserID = spec.Actor.UserID()
		note.CreatedAt = e.now().UTC()
		e.notifier.Notify(detached, note)
	}

	if e.audit == nil {
		return
	}
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		Portal:    string(spec.Actor.CurrentPortal),
		Action:    spec.Name,
		Resource:  spec.Resource,
		Outcome:   outcome,
		Message:   note.Description,
		RequestID: requestid.FromContext(ctx),
		CreatedAt: e.now().UTC(),
	}
	if id := spec.Actor.UserID(); id != "" {
		entry.UserID = &id
	}
	if spec.ResourceID != "" {
		rid := spec.ResourceID
		entry.ResourceID = &rid
	}
	if err := e.audit.Record(detached, entry); err != nil {
		e.logger.Warn("record mutation audit", zap.String("mutation", spec.Name), zap.Error(err))
	}
}

func (e *Executor) observe(name, outcome string, start time.Time) {
	if e.observer != nil {
		e.observer.ObserveMutation(name, outcome, e.now().Sub(start))
	}
}
