package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/store"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Clock is a deterministic clock that advances by Step on every reading.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// UseClock installs a Clock as the model clock for the duration of the test.
func UseClock(t *testing.T, start time.Time, step time.Duration) *Clock {
	t.Helper()

	c := &Clock{current: start, Step: step}
	orig := model.Now
	model.Now = c.Now
	t.Cleanup(func() { model.Now = orig })
	return c
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.current
	c.current = c.current.Add(c.Step)
	return now
}
