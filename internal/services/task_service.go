package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/metrics"
	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type TaskServiceOptions struct {
	// StrictTime rejects times that are not "HH.MM" within 00.00-23.59.
	// Otherwise any string of at most five characters is accepted.
	StrictTime bool
}

type taskServiceImpl struct {
	logger    zerolog.Logger
	tasks     repository.TaskRepository
	validator taskValidator
}

func NewTaskService(
	logger zerolog.Logger,
	tasks repository.TaskRepository,
	opts TaskServiceOptions,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		tasks:     tasks,
		validator: taskValidator{strictTime: opts.StrictTime},
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error) {
	task, errs := s.validator.create(params)
	if len(errs) > 0 {
		s.logger.Debug().
			Str("user_id", ownerID).
			Err(errs).
			Msg("invalid task")
		return nil, errs
	}
	task.UserID = ownerID
	task.Completed = false

	task, err := s.tasks.Insert(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to insert task")
		return nil, storeError(err)
	}

	metrics.TaskOperations.WithLabelValues(metrics.OperationCreate).Inc()
	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", ownerID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, callerID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.ownedTask(ctx, callerID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Malformed {
		s.logger.Debug().
			Str("task_id", taskID).
			Msg("malformed task patch")
		return nil, ErrTaskMalformed
	}

	changes, errs := s.validator.patch(patch)
	if len(errs) > 0 {
		s.logger.Debug().
			Str("task_id", taskID).
			Err(errs).
			Msg("invalid task patch")
		return nil, errs
	}
	if changes.Empty() {
		s.logger.Warn().
			Str("task_id", taskID).
			Msg("no fields to update")
		return task, nil
	}

	task, err = s.tasks.Update(ctx, taskID, changes)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, storeError(err)
	}

	metrics.TaskOperations.WithLabelValues(metrics.OperationUpdate).Inc()
	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", callerID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, callerID, taskID string) error {
	_, err := s.ownedTask(ctx, callerID, taskID)
	if err != nil {
		return err
	}

	err = s.tasks.Delete(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return storeError(err)
	}

	metrics.TaskOperations.WithLabelValues(metrics.OperationDelete).Inc()
	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", callerID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ListForOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to list tasks")
		return nil, storeError(err)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("listed tasks")
	return tasks, nil
}

// ownedTask loads the task and checks it belongs to callerID before the
// caller gets to touch any field.
func (s *taskServiceImpl) ownedTask(ctx context.Context, callerID, taskID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info().
				Str("task_id", taskID).
				Msg("task not found")
		} else {
			s.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("failed to find task")
		}
		return nil, storeError(err)
	}

	if task.UserID != callerID {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", callerID).
			Msg("task belongs to another user")
		return nil, ErrTaskForbidden
	}
	return task, nil
}

func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
