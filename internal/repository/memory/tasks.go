// Package memory keeps records in process memory. It backs local runs with
// STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[string]*models.Task
	now    func() time.Time
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[string]*models.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			tasks = append(tasks, t.Clone())
		}
	}
	slices.SortFunc(tasks, CompareTasks)
	return tasks, nil
}

func (r *TaskRepository) Insert(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := task.Clone()
	stored.ID = strconv.FormatInt(r.nextID, 10)
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.tasks[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepository) Update(_ context.Context, id string, changes models.TaskChanges) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	changes.Apply(t)
	t.UpdatedAt = r.now()
	return t.Clone(), nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// CompareTasks orders tasks by date, then time, absent values first, then
// by numeric id. Times compare byte-wise, as the postgres ORDER BY does
// with COLLATE "C".
func CompareTasks(a, b *models.Task) int {
	if c := compareNullable(a.Date, b.Date, models.Date.Compare); c != 0 {
		return c
	}
	if c := compareNullable(a.Time, b.Time, cmp.Compare[string]); c != 0 {
		return c
	}
	ai, _ := strconv.ParseInt(a.ID, 10, 64)
	bi, _ := strconv.ParseInt(b.ID, 10, 64)
	return cmp.Compare(ai, bi)
}

func compareNullable[T any](a, b *T, compare func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compare(*a, *b)
	}
}
