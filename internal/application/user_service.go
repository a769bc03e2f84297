package application

import (
	"context"
	"errors"
	"expvar"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
)

var userStats = expvar.NewMap("user_service")

// UserService enforces the user lifecycle rules on top of a repository.
// A UserService wraps a single unit of work; build one per request.
type UserService struct {
	Repo      repo.UserRepository
	Hasher    PasswordHasher
	Clock     Clock
	Logger    *logrus.Logger
	MinAge    int
	Observers []UserObserver
}

func NewUserService(r repo.UserRepository, hasher PasswordHasher, clock Clock, logger *logrus.Logger, observers ...UserObserver) *UserService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &UserService{
		Repo:      r,
		Hasher:    hasher,
		Clock:     clock,
		Logger:    logger,
		MinAge:    MinimumAge,
		Observers: observers,
	}
}

type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	BirthDate time.Time
	Phone     *string
}

type UpdateUserInput struct {
	Name      string
	Email     string
	BirthDate time.Time
	Phone     *string
	Active    bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

// List returns every user in store order.
func (s *UserService) List(ctx context.Context) ([]entity.UserRead, error) {
	users, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.UserRead, 0, len(users))
	for i := range users {
		out = append(out, users[i].Read())
	}
	return out, nil
}

// Get returns the user with the given id. ok is false when no such user exists.
func (s *UserService) Get(ctx context.Context, id int64) (entity.UserRead, bool, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return entity.UserRead{}, false, err
	}
	if u == nil {
		return entity.UserRead{}, false, nil
	}
	return u.Read(), true, nil
}

// Create registers a new active user.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (entity.UserRead, error) {
	email := normalizeEmail(in.Email)

	if !s.oldEnough(in.BirthDate) {
		userStats.Add("underage", 1)
		s.debug("create rejected: underage", logrus.Fields{"email": email})
		return entity.UserRead{}, ErrUnderage
	}
	if len(in.Password) > MaxPasswordBytes {
		s.debug("create rejected: password too long", logrus.Fields{"email": email})
		return entity.UserRead{}, ErrPasswordTooLong
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return entity.UserRead{}, err
	}
	if exists {
		userStats.Add("email_conflict", 1)
		s.debug("create rejected: email exists", logrus.Fields{"email": email})
		return entity.UserRead{}, ErrEmailConflict
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return entity.UserRead{}, err
	}

	if err := ctx.Err(); err != nil {
		return entity.UserRead{}, err
	}

	u := &entity.User{
		Name:      in.Name,
		Email:     email,
		Password:  hash,
		BirthDate: in.BirthDate,
		Phone:     in.Phone,
		Active:    true,
		CreatedAt: s.now(),
	}

	if err := s.Repo.Add(ctx, u); err != nil {
		return entity.UserRead{}, s.writeErr(err, email)
	}
	if err := s.Repo.Commit(ctx); err != nil {
		return entity.UserRead{}, s.writeErr(err, email)
	}

	userStats.Add("created", 1)
	read := u.Read()
	s.notify(ctx, UserCreated, read)
	return read, nil
}

// Update replaces name, email, birth date, phone and active flag of an existing
// user.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (entity.UserRead, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return entity.UserRead{}, err
	}
	if u == nil {
		return entity.UserRead{}, &NotFoundError{ID: id}
	}

	email := normalizeEmail(in.Email)

	if !s.oldEnough(in.BirthDate) {
		userStats.Add("underage", 1)
		s.debug("update rejected: underage", logrus.Fields{"user_id": id})
		return entity.UserRead{}, ErrUnderage
	}

	other, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return entity.UserRead{}, err
	}
	if other != nil && other.ID != id {
		userStats.Add("email_conflict", 1)
		s.debug("update rejected: email exists", logrus.Fields{"user_id": id, "email": email})
		return entity.UserRead{}, ErrEmailConflict
	}

	if err := ctx.Err(); err != nil {
		return entity.UserRead{}, err
	}

	now := s.now()
	u.Name = in.Name
	u.Email = email
	u.BirthDate = in.BirthDate
	u.Phone = in.Phone
	u.Active = in.Active
	u.UpdatedAt = &now

	if err := s.Repo.Update(ctx, u); err != nil {
		return entity.UserRead{}, s.writeErr(err, email)
	}
	if err := s.Repo.Commit(ctx); err != nil {
		return entity.UserRead{}, s.writeErr(err, email)
	}

	userStats.Add("updated", 1)
	read := u.Read()
	s.notify(ctx, UserUpdated, read)
	return read, nil
}

// Remove deactivates the user. It reports false when no such user exists.
func (s *UserService) Remove(ctx context.Context, id int64) (bool, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := s.now()
	u.Active = false
	u.UpdatedAt = &now

	if err := s.Repo.Update(ctx, u); err != nil {
		return false, err
	}
	if err := s.Repo.Commit(ctx); err != nil {
		return false, err
	}

	userStats.Add("removed", 1)
	s.notify(ctx, UserRemoved, u.Read())
	return true, nil
}

// EmailExists reports whether any user, active or not, owns the email.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Repo.EmailExists(ctx, normalizeEmail(email))
}

// now is the clock time in UTC at the store's microsecond precision.
func (s *UserService) now() time.Time {
	return s.Clock.Now().UTC().Truncate(time.Microsecond)
}

func (s *UserService) oldEnough(birth time.Time) bool {
	return Age(birth, s.Clock.Now()) >= s.MinAge
}

// writeErr maps a unique-index violation raised by the store to ErrEmailConflict.
// The existence check before the write is advisory; two concurrent writers can
// both pass it.
func (s *UserService) writeErr(err error, email string) error {
	if errors.Is(err, repo.ErrDuplicateEmail) {
		userStats.Add("email_conflict", 1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Info("store rejected duplicate email")
		}
		return ErrEmailConflict
	}
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email).Error("user write failed")
	}
	return err
}

func (s *UserService) notify(ctx context.Context, typ EventType, u entity.UserRead) {
	if len(s.Observers) == 0 {
		return
	}
	ev := UserEvent{Type: typ, User: u, OccurredAt: s.Clock.Now().UTC()}

	// the change is already durable, so a caller hanging up must not stop delivery
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	for _, o := range s.Observers {
		if err := o.OnUserEvent(c, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "event": string(typ)}).Warn("user observer failed")
		}
	}
}

func (s *UserService) debug(msg string, fields logrus.Fields) {
	if s.Logger != nil {
		s.Logger.WithFields(fields).Debug(msg)
	}
}
