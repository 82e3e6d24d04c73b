package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-taskboard/internal/model"
)

// MemoryUserRepository is a process-local credential store for development
// and tests. Data is lost on restart.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	seq     int64
	byID    map[int64]model.User
	byEmail map[string]int64
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    map[int64]model.User{},
		byEmail: map[string]int64{},
	}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return model.User{}, model.ErrUserAlreadyExists
	}

	r.seq++
	u.ID = r.seq
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return u, nil
}

// Update replaces a stored record; the email index follows renames.
func (r *MemoryUserRepository) Update(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}

	delete(r.byEmail, emailKey(existing.Email))
	u.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = u
	r.byEmail[emailKey(u.Email)] = u.ID
	return nil
}

func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
