package user

import (
	"context"
	"strings"
	"time"

	"rentflow/internal/domain/shared/fault"
)

type UserID string

// User carries the minimum identity the engine needs for referential checks.
// Profile fields beyond these live outside the engine.
type User struct {
	ID        UserID
	Name      string
	Email     string
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id UserID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        UserID
	Name      string
	Email     string
	CreatedAt time.Time
}

func New(params CreateParams) (*User, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fault.Validation("name", "must not be empty")
	}
	email := strings.TrimSpace(params.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fault.Validation("email", "must be a valid address")
	}
	return &User{
		ID:        params.ID,
		Name:      name,
		Email:     email,
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}
