// Package repository declares the storage contracts used by the services
// and the errors every implementation reports.
package repository

import (
	"context"
	"errors"

	"github.com/adanyl0v/tracklin/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable marks transient storage failures. Callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

type TaskRepository interface {
	// ListByOwner returns the owner's tasks ordered by date, then time,
	// absent values first, then by id.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Task, error)
	// Insert assigns the id and timestamps and returns the stored record.
	Insert(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// Update writes only the fields present in changes and returns the
	// full record.
	Update(ctx context.Context, id string, changes models.TaskChanges) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	// Create returns ErrConflict if the email is taken.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionRepository interface {
	// Replace deletes the sessions matching the user and fingerprint and
	// stores session in a single transaction.
	Replace(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	// Rotate stores a new refresh token and expiry for the session.
	Rotate(ctx context.Context, session *models.Session) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
