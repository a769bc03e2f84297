package application

import (
	"context"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

type EventType string

const (
	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserRemoved EventType = "user.removed"
)

// UserEvent describes a committed change to a user.
type UserEvent struct {
	Type       EventType
	User       entity.UserRead
	OccurredAt time.Time
}

// UserObserver is notified after a change has been committed. Errors are logged
// by the service and never undo the change.
type UserObserver interface {
	OnUserEvent(ctx context.Context, ev UserEvent) error
}

// PasswordHasher turns a plaintext credential into its stored form.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}
