package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

const (
	uniqueViolation = "23505"
	emailIndex      = "ux_users_email"
)

var (
	errNotFound = errors.New("not found")
)

const selectUser = `
	SELECT id, name, email, password_hash, birth_date, phone, active, created_at, updated_at
	FROM users`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository is a unit of work over the users table. Add and Update run
// inside a transaction opened on first write; Commit ends it. Build one per
// request.
type UserRepository struct {
	pool *pgxpool.Pool

	mu sync.Mutex
	tx pgx.Tx
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) reader() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *UserRepository) GetAll(ctx context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.reader().Query(ctx, selectUser+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := &entity.User{}
	if err := scanUser(r.reader().QueryRow(ctx, selectUser+` WHERE id = $1`, id), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := &entity.User{}
	if err := scanUser(r.reader().QueryRow(ctx, selectUser+` WHERE email = $1`, email), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var exists bool
	err := r.reader().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Add inserts u in the open transaction and sets u.ID.
func (r *UserRepository) Add(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, birth_date, phone, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, u.Name, u.Email, u.Password, u.BirthDate, u.Phone, u.Active, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		r.rollback(ctx)
		return writeErr("failed to insert user", err)
	}
	return nil
}

// Update writes the mutable columns of u. password_hash and created_at are
// never rewritten.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, birth_date = $3, phone = $4, active = $5, updated_at = $6
		WHERE id = $7
	`, u.Name, u.Email, u.BirthDate, u.Phone, u.Active, u.UpdatedAt, u.ID)
	if err != nil {
		r.rollback(ctx)
		return writeErr("failed to update user", err)
	}
	if res.RowsAffected() == 0 {
		r.rollback(ctx)
		return fmt.Errorf("failed to update user %d: %w", u.ID, errNotFound)
	}
	return nil
}

// Commit makes staged writes durable. It is a no-op when nothing was staged.
func (r *UserRepository) Commit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tx == nil {
		return nil
	}
	tx := r.tx
	r.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return writeErr("failed to commit", err)
	}
	return nil
}

// Rollback discards staged writes. Safe to call after Commit.
func (r *UserRepository) Rollback(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollback(ctx)
}

func (r *UserRepository) begin(ctx context.Context) (pgx.Tx, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	r.tx = tx
	return tx, nil
}

func (r *UserRepository) rollback(ctx context.Context) {
	if r.tx == nil {
		return
	}
	_ = r.tx.Rollback(context.WithoutCancel(ctx))
	r.tx = nil
}

// scanUser reads a users row. pgx decodes timestamptz in the local zone, so
// timestamps are moved back to UTC.
func scanUser(row pgx.Row, u *entity.User) error {
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.BirthDate, &u.Phone,
		&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	if u.UpdatedAt != nil {
		t := u.UpdatedAt.UTC()
		u.UpdatedAt = &t
	}
	return nil
}

func writeErr(msg string, err error) error {
	if isDuplicateEmail(err) {
		return fmt.Errorf("%s: %w: %w", msg, repository.ErrDuplicateEmail, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailIndex
}

var _ repository.UserRepository = (*UserRepository)(nil)
