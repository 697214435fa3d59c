package memory

import (
	"context"
	"sync"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]models.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	r.byEmail[user.Email] = *user
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}
