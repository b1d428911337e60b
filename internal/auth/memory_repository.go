package auth

import (
	"context"
	"sync"
	"time"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
)

// MemoryUserRepository keeps accounts in process. It backs the memory and
// mongo drivers when no postgres database is configured.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	nextID  int
	byID    map[int]models.User
	byEmail map[string]int
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, byID: map[int]models.User{}, byEmail: map[string]int{}}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, custom_error.New(custom_error.CodeNotFound, "user not found")
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, custom_error.New(custom_error.CodeNotFound, "user not found")
	}
	return &user, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, custom_error.New(custom_error.CodeConflict, "email already registered")
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.nextID++
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return &user, nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return custom_error.New(custom_error.CodeNotFound, "user not found")
	}
	user.PasswordHash = passwordHash
	r.byID[id] = user
	return nil
}
