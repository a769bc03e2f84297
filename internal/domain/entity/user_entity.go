package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash produced by the application layer, never plaintext.
//
// BirthDate is a calendar date; only its year/month/day are meaningful.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	BirthDate time.Time
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// UserRead is the projection exposed to callers. It never carries credentials.
type UserRead struct {
	ID        int64
	Name      string
	Email     string
	BirthDate time.Time
	Phone     *string
	Active    bool
	CreatedAt time.Time
}

// Read projects the user without its password.
func (u *User) Read() UserRead {
	return UserRead{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: u.BirthDate,
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
