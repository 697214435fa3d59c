package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type SessionRepository struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewSessionRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		logger: logger,
		pgPool: pgPool,
	}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Replace(ctx context.Context, session *models.Session) error {
	tx, err := r.pgPool.Begin(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteSessionsQuery = `
DELETE FROM sessions
WHERE user_id = $1 AND fingerprint = $2
`
	tag, err := tx.Exec(
		ctx,
		deleteSessionsQuery,
		session.UserID,
		session.Fingerprint,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to delete sessions with the same fingerprint")
		return classify(err)
	}
	r.logger.Debug().
		Str("user_id", session.UserID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted sessions with the same fingerprint")

	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      refresh_token,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = tx.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.Fingerprint,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert session")
		return classify(err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return classify(err)
	}
	r.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	session := &models.Session{ID: id}

	const selectSessionByIDQuery = `
SELECT user_id,
       fingerprint,
       refresh_token,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE id = $1
`
	err := r.pgPool.QueryRow(ctx, selectSessionByIDQuery, id).Scan(
		&session.UserID,
		&session.Fingerprint,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, r.sessionError(err, "failed to select session by id")
	}
	return session, nil
}

func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	session := &models.Session{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	}

	const selectSessionByRefreshTokenQuery = `
SELECT id,
       user_id,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE refresh_token = $1 AND
      fingerprint = $2
`
	err := r.pgPool.QueryRow(ctx, selectSessionByRefreshTokenQuery, refreshToken, fingerprint).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, r.sessionError(err, "failed to select session by refresh token")
	}
	return session, nil
}

func (r *SessionRepository) Rotate(ctx context.Context, session *models.Session) error {
	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $1,
    expires_at = $2,
    updated_at = $3
WHERE id = $4
`
	tag, err := r.pgPool.Exec(
		ctx,
		updateSessionQuery,
		session.RefreshToken,
		session.ExpiresAt,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return r.sessionError(err, "failed to update session")
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("updated session")
	return nil
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
WHERE user_id = $1
`
	tag, err := r.pgPool.Exec(ctx, deleteSessionsByUserIDQuery, userID)
	if err != nil {
		return 0, r.sessionError(err, "failed to delete sessions by user id")
	}
	r.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted sessions by user id")
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) sessionError(err error, msg string) error {
	err = classify(err)
	if !errors.Is(err, repository.ErrNotFound) {
		r.logger.Error().
			Err(err).
			Msg(msg)
	}
	return err
}
