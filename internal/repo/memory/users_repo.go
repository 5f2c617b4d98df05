package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/weatherhub/internal/domain/user"
	"github.com/geocoder89/weatherhub/internal/repo/postgres"
)

// UsersRepo is the in-memory twin of the postgres repo, used in tests
// and DB-less dev runs. It enforces the same uniqueness semantics,
// including the duplicate error on racing inserts.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int
	items  map[string]user.User // keyed by username
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[username]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.items[username]; ok {
		return true, nil
	}

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) Create(_ context.Context, email, username, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[username]; ok {
		return user.User{}, postgres.ErrDuplicateUser
	}

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, email) {
			return user.User{}, postgres.ErrDuplicateUser
		}
	}

	u := user.User{
		ID:           r.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	r.nextID++
	r.items[username] = u

	return u, nil
}
