package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type UserRepository struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		logger: logger,
		pgPool: pgPool,
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		err = classify(err)
		if errors.Is(err, repository.ErrConflict) {
			r.logger.Debug().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return err
		}
		r.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{Email: email}

	const selectUserByEmailQuery = `
SELECT id,
       password,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	err := r.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		email,
	).Scan(
		&user.ID,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		err = classify(err)
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Error().
				Err(err).
				Str("email", email).
				Msg("failed to select user by email")
		}
		return nil, err
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user")
	return user, nil
}
