package app

import (
	"sync"
	"time"

	"laptop-request-catalog/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 5 * time.Second

// Notifier holds at most one notification. Showing a new one replaces the
// current one and restarts the clear timer; each timer only clears the
// notification it was started for.
type Notifier struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	current *models.Notification
	timer   clockwork.Timer
}

// NewNotifier creates a notifier using clock for its timers.
func NewNotifier(clock clockwork.Clock, ttl time.Duration) *Notifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = NotificationTTL
	}
	return &Notifier{clock: clock, ttl: ttl}
}

// Show replaces the current notification and schedules its clearing.
func (n *Notifier) Show(kind models.NotificationKind, message string) models.Notification {
	note := models.Notification{
		ID:      uuid.New(),
		Kind:    kind,
		Message: message,
		ShownAt: n.clock.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = &note
	id := note.ID
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.clear(id) })
	return note
}

func (n *Notifier) clear(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.ID == id {
		n.current = nil
		n.timer = nil
	}
}

// Current returns the visible notification and the time left before it
// clears itself.
func (n *Notifier) Current() (models.Notification, time.Duration, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return models.Notification{}, 0, false
	}
	remaining := n.current.ExpiresAt(n.ttl).Sub(n.clock.Now())
	return *n.current, remaining, true
}

// Dismiss clears the notification immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = nil
	n.timer = nil
}
