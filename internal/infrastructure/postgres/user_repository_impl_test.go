package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

func TestNewUserRepository(t *testing.T) {
	repo := NewUserRepository(nil)

	assert.NotNil(t, repo)
	assert.Nil(t, repo.pool)
	assert.Nil(t, repo.tx)
}

func TestUserRepository_CommitWithoutWrites(t *testing.T) {
	repo := NewUserRepository(nil)

	assert.NoError(t, repo.Commit(context.Background()))
	repo.Rollback(context.Background())
}

func TestWriteErr(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		duplicate bool
	}{
		{
			name:      "unique violation on email index",
			err:       &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"},
			duplicate: true,
		},
		{
			name:      "wrapped unique violation",
			err:       fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"}),
			duplicate: true,
		},
		{
			name: "unique violation on another index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"},
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "users_email_lowercase"},
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writeErr("failed to insert user", tt.err)

			require.Error(t, got)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.duplicate, errors.Is(got, repository.ErrDuplicateEmail))
			assert.Contains(t, got.Error(), "failed to insert user")
		})
	}
}
