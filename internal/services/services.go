package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/tracklin/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrFingerprintMismatch  = errors.New("fingerprint mismatch")

	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskForbidden = errors.New("task belongs to another user")
	ErrTaskMalformed = errors.New("task payload is not a JSON object")
	// ErrStoreUnavailable is the only error a caller may retry on.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It replaces the sessions of the user that share the given
	// fingerprint with a new session and generates a new token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token of the session it belongs to.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given email and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh token pair.
	//
	// It returns ErrUserAlreadyExists if the user
	// with the given email already exists.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// Authenticate resolves an access token to its session.
	//
	// It returns jwt.ErrTokenExpired if the token is expired,
	// ErrSessionNotFound if the session was revoked and
	// ErrFingerprintMismatch if the token is used by another client.
	Authenticate(ctx context.Context, accessToken, fingerprint string) (*models.Session, error)

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

// TaskService is the authorization and validation boundary around the
// task store. Every call names the caller explicitly.
type TaskService interface {
	// CreateTask validates params and stores an uncompleted task owned by
	// ownerID. It returns ValidationErrors without writing anything if
	// params are invalid.
	CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies exactly the fields present in patch.
	//
	// It returns ErrTaskNotFound if the task doesn't exist, ErrTaskForbidden
	// if it belongs to someone other than callerID, then ErrTaskMalformed
	// or ValidationErrors if the patch is unusable. Ownership is always
	// settled before the patch is looked at.
	UpdateTask(ctx context.Context, callerID, taskID string, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask removes the task permanently. Deleting a missing task
	// returns ErrTaskNotFound.
	DeleteTask(ctx context.Context, callerID, taskID string) error

	// ListForOwner returns the owner's tasks ordered by date and time.
	ListForOwner(ctx context.Context, ownerID string) ([]*models.Task, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

// CreateTaskParams holds the raw create payload. An absent or null date
// or time means anytime.
type CreateTaskParams struct {
	Text models.Optional[string]
	Date models.Optional[string]
	Time models.Optional[string]
}
