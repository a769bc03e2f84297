package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

// ErrDuplicateEmail is returned when the store rejects a write because another
// row already owns the email (unique index violation).
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository defines persistence of user records.
//
// Reads return (nil, nil) when nothing matches. Add and Update stage changes in
// the current unit of work; nothing is durable until Commit returns nil. Add sets
// u.ID no later than Commit. EmailExists and GetByEmail compare the email exactly,
// callers normalize it first.
type UserRepository interface {
	GetAll(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Commit(ctx context.Context) error
}
