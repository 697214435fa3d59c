package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type TaskRepository struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		logger: logger,
		pgPool: pgPool,
	}
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       text,
       date,
       time,
       completed,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY date ASC NULLS FIRST,
         time COLLATE "C" ASC NULLS FIRST,
         id ASC
`
	rows, err := r.pgPool.Query(ctx, selectTasksByUserIDQuery, ownerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to select tasks by user id")
		err = classify(err)
		if errors.Is(err, repository.ErrNotFound) {
			return []*models.Task{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: ownerID}
		var (
			id   int64
			date pgtype.Date
		)
		err = rows.Scan(
			&id,
			&task.Text,
			&date,
			&task.Time,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, classify(err)
		}
		task.ID = strconv.FormatInt(id, 10)
		task.Date = fromPgDate(date)
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, classify(err)
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := time.Now().UTC()
	stored := task.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   text,
                   date,
                   time,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	var taskID int64
	err := r.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		stored.UserID,
		stored.Text,
		toPgDate(stored.Date),
		stored.Time,
		stored.Completed,
		stored.CreatedAt,
		stored.UpdatedAt,
	).Scan(&taskID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", stored.UserID).
			Msg("failed to insert task")
		return nil, classify(err)
	}
	stored.ID = strconv.FormatInt(taskID, 10)

	r.logger.Debug().
		Str("task_id", stored.ID).
		Msg("inserted task")
	return stored, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT user_id,
       text,
       date,
       time,
       completed,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	task, err := scanTask(id, r.pgPool.QueryRow(ctx, selectTaskByIDQuery, id))
	if err != nil {
		err = classify(err)
		r.logTaskError(err, id, "failed to select task by id")
		return nil, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("selected task by id")
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, changes models.TaskChanges) (*models.Task, error) {
	const updateTaskQuery = `
UPDATE tasks
SET text = CASE WHEN $1::boolean THEN $2::varchar ELSE text END,
    date = CASE WHEN $3::boolean THEN $4::date ELSE date END,
    time = CASE WHEN $5::boolean THEN $6::varchar ELSE time END,
    completed = CASE WHEN $7::boolean THEN $8::boolean ELSE completed END,
    updated_at = $9
WHERE id = $10
RETURNING user_id, text, date, time, completed, created_at, updated_at
`
	task, err := scanTask(id, r.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		changes.Text.Set,
		changes.Text.Value,
		changes.Date.Set,
		optionalPgDate(changes.Date),
		changes.Time.Set,
		changes.Time.Ptr(),
		changes.Completed.Set,
		changes.Completed.Value,
		time.Now().UTC(),
		id,
	))
	if err != nil {
		err = classify(err)
		r.logTaskError(err, id, "failed to update task")
		return nil, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("updated task")
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := r.pgPool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		err = classify(err)
		r.logTaskError(err, id, "failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("task_id", id).
			Msg("task not found")
		return repository.ErrNotFound
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.pgPool.Ping(ctx)
}

func (r *TaskRepository) logTaskError(err error, id, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		r.logger.Debug().
			Str("task_id", id).
			Msg("task not found")
		return
	}
	r.logger.Error().
		Err(err).
		Str("task_id", id).
		Msg(msg)
}

func scanTask(id string, row pgx.Row) (*models.Task, error) {
	task := &models.Task{ID: id}
	var date pgtype.Date
	err := row.Scan(
		&task.UserID,
		&task.Text,
		&date,
		&task.Time,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Date = fromPgDate(date)
	return task, nil
}

func toPgDate(d *models.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}

func optionalPgDate(o models.Optional[models.Date]) pgtype.Date {
	if !o.Set {
		return pgtype.Date{}
	}
	return toPgDate(o.Ptr())
}

func fromPgDate(d pgtype.Date) *models.Date {
	if !d.Valid {
		return nil
	}
	date := models.DateOf(d.Time)
	return &date
}
