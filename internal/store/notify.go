package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// DefaultSweepInterval is how often the expiry sweep runs. The sweep
// catches items whose auto-dismiss timer never fired, so staleness is
// bounded by one interval.
const DefaultSweepInterval = time.Minute

// NotificationStore keeps the active ephemeral notifications, most
// recent first, and guarantees every one of them eventually leaves the
// list: manual dismissal, per-item auto-dismiss timer, or the periodic
// expiry sweep. All mutations serialize on one mutex, so a sweep and a
// concurrent Show cannot lose each other's effects.
type NotificationStore struct {
	mu     sync.Mutex
	log    *logger.Logger
	items  []model.Notification
	timers map[string]*time.Timer

	sweepEvery time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewNotificationStore starts the sweep loop immediately. A zero
// sweepEvery selects the default minute interval.
func NewNotificationStore(log *logger.Logger, sweepEvery time.Duration) *NotificationStore {
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepInterval
	}
	s := &NotificationStore{
		log:        log,
		timers:     make(map[string]*time.Timer),
		sweepEvery: sweepEvery,
		done:       make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Show inserts the notification at the front and returns its id. If
// AutoDismissMs is set, removal is scheduled that far from now.
func (s *NotificationStore) Show(n model.Notification) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.items = append([]model.Notification{n}, s.items...)

	if n.AutoDismissMs > 0 {
		id := n.ID
		s.timers[id] = time.AfterFunc(time.Duration(n.AutoDismissMs)*time.Millisecond, func() {
			s.Dismiss(id)
		})
	}
	return n.ID
}

// Dismiss removes the notification. Unknown ids are a no-op, so calling
// it twice is the same as calling it once.
func (s *NotificationStore) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *NotificationStore) removeLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Active returns a copy of the current list, most recent first.
func (s *NotificationStore) Active() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Reset drops everything and cancels all per-item timers.
func (s *NotificationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.items = nil
}

// Close stops the sweep loop and all pending timers.
func (s *NotificationStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.Reset()
	})
}

func (s *NotificationStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *NotificationStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for _, n := range s.items {
		if n.ExpiresAt != nil && n.ExpiresAt.Before(now) {
			expired = append(expired, n.ID)
		}
	}
	for _, id := range expired {
		s.removeLocked(id)
	}
	if len(expired) > 0 {
		s.log.Debugw("swept expired notifications", "count", len(expired))
	}
}
