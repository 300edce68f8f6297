package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type recordingObserver struct {
	mu            sync.Mutex
	outcomes      []string
	invalidations []string
}

func (r *recordingObserver) ObserveQuery(resource, outcome string, _ time.Duration) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, outcome)
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveInvalidation(resource string) {
	r.mu.Lock()
	r.invalidations = append(r.invalidations, resource)
	r.mu.Unlock()
}

type memoryStore struct {
	mu       sync.Mutex
	values   map[string]interface{}
	patterns []string
}

func (m *memoryStore) Enabled() bool { return true }

func (m *memoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return false, nil
	}
	ptr, ok := dest.(*[]string)
	if !ok {
		return false, nil
	}
	*ptr = v.([]string)
	return true, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]interface{}{}
	}
	m.values[key] = value
	return nil
}

func (m *memoryStore) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	return nil
}

func newTestClient(opts ...Option) (*Client, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewClient(Config{StaleTime: time.Minute, FetchTimeout: time.Second}, nil, opts...), clock
}

func TestFetchServesFreshEntryWithoutRefetch(t *testing.T) {
	client, clock := newTestClient()
	key := NewKey("/api/courses")
	var calls int32
	fn := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"go"}, nil
	}

	first := Fetch(context.Background(), client, key, fn)
	second := Fetch(context.Background(), client, key, fn)

	require.Equal(t, StateSuccess, first.State)
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.Advance(2 * time.Minute)
	third := Fetch(context.Background(), client, key, fn)
	assert.False(t, third.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchPerQueryStaleTime(t *testing.T) {
	client, clock := newTestClient()
	key := NewKey("/api/payments/summary")
	var calls int32
	fn := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	Fetch(context.Background(), client, key, fn, WithStaleTime(5*time.Second))
	clock.Advance(10 * time.Second)
	res := Fetch(context.Background(), client, key, fn, WithStaleTime(5*time.Second))

	assert.Equal(t, 2, res.Data)
}

func TestFetchSharesSingleInFlightCall(t *testing.T) {
	client, _ := newTestClient()
	key := NewKey("/api/student-documents")
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	var calls int32
	fn := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-release
		return []string{"rg"}, nil
	}

	const callers = 5
	results := make(chan Result[[]string], callers)
	go func() { results <- Fetch(context.Background(), client, key, fn) }()
	<-started
	assert.Equal(t, StateLoading, Peek[[]string](client, key).State)

	for i := 1; i < callers; i++ {
		go func() { results <- Fetch(context.Background(), client, key, fn) }()
	}
	// give the joiners time to attach to the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		res := <-results
		assert.Equal(t, StateSuccess, res.State)
		assert.Equal(t, []string{"rg"}, res.Data)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchErrorWithoutPriorData(t *testing.T) {
	client, _ := newTestClient()
	boom := errors.New("backend down")

	res := Fetch(context.Background(), client, NewKey("/api/contracts"), func(ctx context.Context) ([]string, error) {
		return nil, boom
	})

	assert.Equal(t, StateError, res.State)
	assert.ErrorIs(t, res.Err, boom)
	_, err := res.Unpack()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateError, Peek[[]string](client, NewKey("/api/contracts")).State)
}

func TestFetchServesPriorDataWhenRefreshFails(t *testing.T) {
	obs := &recordingObserver{}
	client, clock := newTestClient(WithObserver(obs))
	key := NewKey("/api/payments")

	Fetch(context.Background(), client, key, func(ctx context.Context) ([]string, error) {
		return []string{"p1"}, nil
	})
	clock.Advance(2 * time.Minute)
	res := Fetch(context.Background(), client, key, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("timeout")
	})

	assert.Equal(t, StateSuccess, res.State)
	assert.True(t, res.Stale)
	assert.Equal(t, []string{"p1"}, res.Data)
	assert.Equal(t, []string{OutcomeMiss, OutcomeStale}, obs.outcomes)
}

func TestInvalidateForcesRefetchForPrefixAcrossScopes(t *testing.T) {
	client, _ := newTestClient()
	var calls int32
	fn := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"x"}, nil
	}
	list := NewKey("/api/payments").Scoped("user-1")
	other := NewKey("/api/payments").Scoped("user-2")
	summary := NewKey("/api/payments", "summary").Scoped("user-1")
	courses := NewKey("/api/courses").Scoped("user-1")
	for _, k := range []Key{list, other, summary, courses} {
		Fetch(context.Background(), client, k, fn)
	}
	require.Equal(t, int32(4), calls)

	client.Invalidate(context.Background(), NewKey("/api/payments"))

	assert.True(t, Peek[[]string](client, list).Stale)
	assert.True(t, Peek[[]string](client, other).Stale)
	assert.True(t, Peek[[]string](client, summary).Stale)
	assert.False(t, Peek[[]string](client, courses).Stale)

	Fetch(context.Background(), client, list, fn)
	Fetch(context.Background(), client, courses, fn)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestInvalidateNotifiesOncePerKey(t *testing.T) {
	obs := &recordingObserver{}
	client, _ := newTestClient(WithObserver(obs))
	var seen []string
	client.OnInvalidate(func(ctx context.Context, key Key) {
		seen = append(seen, key.String())
	})

	client.Invalidate(context.Background(), NewKey("/api/payments"), NewKey("/api/payments"), NewKey("/api/payments", "summary"))

	assert.Equal(t, []string{"/api/payments", "/api/payments|summary"}, seen)
	assert.Len(t, obs.invalidations, 2)
}

func TestFetchStartedBeforeInvalidationDoesNotOverwrite(t *testing.T) {
	client, _ := newTestClient()
	key := NewKey("/api/certification-requests")
	release := make(chan struct{})
	started := make(chan struct{})

	done := make(chan Result[string], 1)
	go func() {
		done <- Fetch(context.Background(), client, key, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()
	<-started
	client.Invalidate(context.Background(), key)

	fresh := Fetch(context.Background(), client, key, func(ctx context.Context) (string, error) {
		return "new", nil
	})
	require.Equal(t, "new", fresh.Data)

	close(release)
	old := <-done
	assert.Equal(t, "old", old.Data)

	cached := Fetch(context.Background(), client, key, func(ctx context.Context) (string, error) {
		t.Error("entry should still be fresh")
		return "", nil
	})
	assert.Equal(t, "new", cached.Data)
	assert.True(t, cached.FromCache)
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	client, _ := newTestClient()
	key := NewKey("/api/messages")
	release := make(chan struct{})
	started := make(chan struct{})
	var fetchCtxErr error
	fn := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		fetchCtxErr = ctx.Err()
		return "inbox", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan Result[string], 1)
	go func() { first <- Fetch(ctx, client, key, fn) }()
	<-started

	second := make(chan Result[string], 1)
	go func() { second <- Fetch(context.Background(), client, key, fn) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	cancelled := <-first
	assert.Equal(t, StateError, cancelled.State)
	assert.ErrorIs(t, cancelled.Err, context.Canceled)

	close(release)
	ok := <-second
	assert.Equal(t, StateSuccess, ok.State)
	assert.Equal(t, "inbox", ok.Data)
	assert.NoError(t, fetchCtxErr)
}

func TestSharedStoreBacksMemory(t *testing.T) {
	store := &memoryStore{}
	client, _ := newTestClient(WithSharedStore(store))
	key := NewKey("/api/courses").Scoped("u1")

	Fetch(context.Background(), client, key, func(ctx context.Context) ([]string, error) {
		return []string{"go"}, nil
	})
	require.Contains(t, store.values, "query:/api/courses#u1")

	other, _ := newTestClient(WithSharedStore(store))
	res := Fetch(context.Background(), other, key, func(ctx context.Context) ([]string, error) {
		t.Error("shared hit expected")
		return nil, nil
	})
	assert.True(t, res.FromCache)
	assert.Equal(t, []string{"go"}, res.Data)

	other.Invalidate(context.Background(), NewKey("/api/courses"))
	assert.Equal(t, []string{"query:/api/courses#*", "query:/api/courses|*#*"}, store.patterns)
}

func TestPrune(t *testing.T) {
	client, clock := newTestClient()
	Fetch(context.Background(), client, NewKey("a"), func(ctx context.Context) (int, error) { return 1, nil })
	clock.Advance(time.Hour)
	Fetch(context.Background(), client, NewKey("b"), func(ctx context.Context) (int, error) { return 2, nil })

	removed := client.Prune(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, client.Len())
	assert.Equal(t, StateIdle, Peek[int](client, NewKey("a")).State)
}
