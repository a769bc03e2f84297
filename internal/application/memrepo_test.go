package application

import (
	"context"
	"sync"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
)

// memRepo is an in-memory UserRepository with a staged unit of work and a
// unique email constraint checked on commit.
type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	order   []int64
	rows    map[int64]entity.User
	pending []pendingOp
	commits int
}

type pendingOp struct {
	insert bool
	u      *entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[int64]entity.User{}}
}

func (r *memRepo) GetAll(ctx context.Context) ([]entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if u := r.rows[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *memRepo) Add(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, pendingOp{insert: true, u: u})
	return nil
}

func (r *memRepo) Update(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, pendingOp{u: u})
	return nil
}

func (r *memRepo) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.pending = nil }()
	for _, op := range r.pending {
		for id, row := range r.rows {
			if row.Email == op.u.Email && (op.insert || id != op.u.ID) {
				return repo.ErrDuplicateEmail
			}
		}
	}
	for _, op := range r.pending {
		if op.insert {
			r.nextID++
			op.u.ID = r.nextID
			r.order = append(r.order, op.u.ID)
		}
		r.rows[op.u.ID] = *op.u
	}
	r.commits++
	return nil
}

var _ repo.UserRepository = (*memRepo)(nil)
