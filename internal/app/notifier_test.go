package app

import (
	"testing"
	"time"

	"laptop-request-catalog/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visible(n *Notifier) bool {
	_, _, ok := n.Current()
	return ok
}

func TestNotifier_ClearsAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := NewNotifier(clock, NotificationTTL)

	shown := n.Show(models.NotificationSuccess, "saved")

	cur, remaining, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, shown.ID, cur.ID)
	assert.Equal(t, NotificationTTL, remaining)

	clock.Advance(NotificationTTL - time.Millisecond)
	assert.True(t, visible(n), "cleared before the display window elapsed")

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return !visible(n) }, time.Second, 5*time.Millisecond)
}

func TestNotifier_ReplacementRestartsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := NewNotifier(clock, NotificationTTL)

	n.Show(models.NotificationError, "first")
	clock.Advance(3 * time.Second)
	second := n.Show(models.NotificationSuccess, "second")

	// The first notification's deadline passes; it must not clear the second.
	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	cur, _, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)
	assert.Equal(t, "second", cur.Message)

	clock.Advance(3 * time.Second)
	assert.Eventually(t, func() bool { return !visible(n) }, time.Second, 5*time.Millisecond)
}

func TestNotifier_StaleClearIgnored(t *testing.T) {
	n := NewNotifier(clockwork.NewFakeClock(), NotificationTTL)

	first := n.Show(models.NotificationError, "first")
	n.Show(models.NotificationSuccess, "second")

	n.clear(first.ID)
	cur, _, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Message)
}

func TestNotifier_Dismiss(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := NewNotifier(clock, NotificationTTL)

	n.Show(models.NotificationSuccess, "saved")
	n.Dismiss()
	assert.False(t, visible(n))

	clock.Advance(NotificationTTL)
	assert.False(t, visible(n))
}
