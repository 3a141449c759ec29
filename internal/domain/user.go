package domain

import (
	"context"
	"strings"
	"time"
)

// AnonymousAuthor is the byline of an author without a display name.
const AnonymousAuthor = "Anonymous Author"

// User is a registered writer or commenter.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Byline is the name shown on the user's articles and comments.
func (u *User) Byline() string {
	if u == nil {
		return AnonymousAuthor
	}
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return AnonymousAuthor
}

// UserRepository defines persistence operations for users. Emails are
// stored and looked up in lower case.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
