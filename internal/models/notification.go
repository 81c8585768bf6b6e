package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes success from error notifications.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient status message shown after an asynchronous
// operation settles.
type Notification struct {
	ID      uuid.UUID        `json:"id"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	ShownAt time.Time        `json:"shown_at"`
}

// ExpiresAt returns the instant the notification clears itself after ttl.
func (n Notification) ExpiresAt(ttl time.Duration) time.Time {
	return n.ShownAt.Add(ttl)
}
