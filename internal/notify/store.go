// Package notify keeps the short-lived notifications shown to the user and
// removes them once their display time is over.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-tracker/internal/model"
)

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Store is an ordered collection of active notifications. It is safe for
// concurrent use; expiry callbacks run on timer goroutines.
type Store struct {
	scheduler Scheduler
	newID     func() string
	now       func() time.Time

	mu      sync.Mutex
	items   []model.Notification
	timers  map[string]Timer
	subs    map[int]chan []model.Notification
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithScheduler replaces the timer source used for auto-removal.
func WithScheduler(s Scheduler) Option {
	return func(st *Store) { st.scheduler = s }
}

// WithIDFunc replaces the notification id generator.
func WithIDFunc(f func() string) Option {
	return func(st *Store) { st.newID = f }
}

// WithClock replaces the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// NewStore creates an empty notification store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		scheduler: realScheduler{},
		newID:     newID,
		now:       time.Now,
		timers:    make(map[string]Timer),
		subs:      make(map[int]chan []model.Notification),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a time-ordered id with random low bits.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Error adds an error notification. An optional duration overrides the
// default error duration.
func (s *Store) Error(message string, duration ...time.Duration) string {
	return s.Add(model.NotificationError, message, durationFor(model.NotificationError, duration))
}

// Success adds a success notification. An optional duration overrides the
// default success duration.
func (s *Store) Success(message string, duration ...time.Duration) string {
	return s.Add(model.NotificationSuccess, message, durationFor(model.NotificationSuccess, duration))
}

// Warning adds a warning notification. An optional duration overrides the
// default warning duration.
func (s *Store) Warning(message string, duration ...time.Duration) string {
	return s.Add(model.NotificationWarning, message, durationFor(model.NotificationWarning, duration))
}

// Info adds an info notification. An optional duration overrides the
// default info duration.
func (s *Store) Info(message string, duration ...time.Duration) string {
	return s.Add(model.NotificationInfo, message, durationFor(model.NotificationInfo, duration))
}

func durationFor(typ model.NotificationType, duration []time.Duration) time.Duration {
	if len(duration) > 0 {
		return duration[0]
	}
	return model.DefaultDuration(typ)
}

// Add appends a notification and returns its id. A positive duration
// schedules its removal; zero or negative keeps it until removed.
func (s *Store) Add(typ model.NotificationType, message string, duration time.Duration) string {
	n := model.Notification{
		ID:        s.newID(),
		Type:      typ,
		Message:   message,
		Duration:  duration,
		Closable:  true,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.items = append(s.items, n)
	if duration > 0 {
		id := n.ID
		s.timers[id] = s.scheduler.AfterFunc(duration, func() { s.expire(id) })
	}
	s.publishLocked()
	s.mu.Unlock()

	return n.ID
}

// Remove deletes the notification with id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	if s.removeLocked(id) {
		s.publishLocked()
	}
}

// Clear removes every notification immediately.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.items = nil
	s.publishLocked()
}

// List returns a copy of the active notifications in insertion order.
func (s *Store) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the current notifications
// immediately and after every change. Slow readers only see the latest
// state. The returned cancel func closes the channel.
func (s *Store) Subscribe() (<-chan []model.Notification, func()) {
	ch := make(chan []model.Notification, 1)

	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, key)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// expire is the scheduled removal. The notification may already be gone.
func (s *Store) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.timers, id)
	if s.removeLocked(id) {
		s.publishLocked()
	}
}

func (s *Store) removeLocked(id string) bool {
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() []model.Notification {
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		snapshot := s.snapshotLocked()
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending state.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
