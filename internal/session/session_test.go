package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestRegistry(store Store) (*Registry, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(store, time.Hour, testLogger())
	r.now = c.now
	return r, c
}

func TestRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r, c := newTestRegistry(store)
	alice := Principal{UserID: 1, Username: "alice"}

	s, err := r.Create(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, s.Token, 64)
	assert.Equal(t, c.t.Add(time.Hour), s.ExpiresAt)

	p, ok, err := r.Validate(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alice, p)

	t.Run("Multiple sessions per user", func(t *testing.T) {
		other, err := r.Create(ctx, alice)
		require.NoError(t, err)
		assert.NotEqual(t, s.Token, other.Token)

		_, ok, _ := r.Validate(ctx, s.Token)
		assert.True(t, ok)
		_, ok, _ = r.Validate(ctx, other.Token)
		assert.True(t, ok)
	})

	t.Run("Unknown token", func(t *testing.T) {
		_, ok, err := r.Validate(ctx, "nope")
		assert.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = r.Validate(ctx, "")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Destroy is idempotent", func(t *testing.T) {
		assert.NoError(t, r.Destroy(ctx, s.Token))
		assert.NoError(t, r.Destroy(ctx, s.Token))
		assert.NoError(t, r.Destroy(ctx, "never-existed"))

		_, ok, _ := r.Validate(ctx, s.Token)
		assert.False(t, ok)
	})
}

func TestRegistry_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r, c := newTestRegistry(store)

	s, err := r.Create(ctx, Principal{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Minute)
	_, ok, _ := r.Validate(ctx, s.Token)
	assert.True(t, ok, "validation does not extend the session")

	c.t = c.t.Add(time.Minute)
	_, ok, _ = r.Validate(ctx, s.Token)
	assert.False(t, ok)
	assert.Zero(t, store.Len(), "expired session is dropped on access")
}

func TestRegistry_DefaultTTL(t *testing.T) {
	r := NewRegistry(NewMemoryStore(), 0, testLogger())
	assert.Equal(t, DefaultTTL, r.TTL())
}

func TestRegistry_TokenFailure(t *testing.T) {
	r, _ := newTestRegistry(NewMemoryStore())
	r.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := r.Create(context.Background(), Principal{UserID: 1})
	assert.Error(t, err)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, s Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStore) Get(ctx context.Context, token string) (Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Session), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestRegistry_StoreErrors(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	r, _ := newTestRegistry(store)
	boom := errors.New("store down")

	store.On("Put", ctx, mock.AnythingOfType("session.Session")).Return(boom).Once()
	_, err := r.Create(ctx, Principal{UserID: 1})
	assert.ErrorIs(t, err, boom)

	store.On("Get", ctx, "tok").Return(Session{}, boom).Once()
	_, ok, err := r.Validate(ctx, "tok")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)

	store.On("Delete", ctx, "tok").Return(boom).Once()
	assert.ErrorIs(t, r.Destroy(ctx, "tok"), boom)

	store.AssertExpectations(t)
}

func TestRegistry_StartCleanup(t *testing.T) {
	store := new(mockStore)
	r := NewRegistry(store, time.Hour, testLogger())

	swept := make(chan struct{}, 1)
	store.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return(int64(2), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.StartCleanup(ctx, 5*time.Millisecond)

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not run")
	}
}
