// Package memory holds mutex-guarded map implementations of the storage
// interfaces, used by the service and API tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
)

type Storage struct {
	mu       sync.RWMutex
	users    map[string]models.User         // by id
	tokens   map[string]models.RefreshToken // by user id
	blogs    map[string]models.Blog
	comments map[string]models.Comment
	nextID   int64
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[string]models.User),
		tokens:   make(map[string]models.RefreshToken),
		blogs:    make(map[string]models.Blog),
		comments: make(map[string]models.Comment),
	}
}

func (m *Storage) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return &user, nil
}

func (m *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &user, nil
}

func (m *Storage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *Storage) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Storage) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *Storage) ReplaceRefreshToken(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rt, ok := m.tokens[userID]
	if !ok {
		m.nextID++
		rt = models.RefreshToken{ID: m.nextID, UserID: userID, CreatedAt: now}
	}
	rt.Token = token
	rt.UpdatedAt = now
	m.tokens[userID] = rt
	return nil
}

func (m *Storage) GetRefreshToken(_ context.Context, userID string) (*models.RefreshToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.tokens[userID]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return &rt, nil
}

func (m *Storage) DeleteRefreshTokenByValue(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, rt := range m.tokens {
		if rt.Token == token {
			delete(m.tokens, userID)
		}
	}
	return nil
}

func (m *Storage) RegisterTx(ctx context.Context, user models.User, refreshToken string) (*models.User, error) {
	created, err := m.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := m.ReplaceRefreshToken(ctx, created.ID, refreshToken); err != nil {
		return nil, err
	}
	return created, nil
}
