package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
)

// Users is an in-memory users.Repository.
type Users struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUsers() *Users {
	return &Users{users: map[string]models.User{}}
}

func (r *Users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	user.CreatedAt = time.Now()
	r.users[user.UserName] = *user
	return user, nil
}

func (r *Users) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// RefreshTokens is an in-memory refreshtokens.Repository.
type RefreshTokens struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func NewRefreshTokens() *RefreshTokens {
	return &RefreshTokens{tokens: map[string]models.RefreshToken{}}
}

func (r *RefreshTokens) Create(ctx context.Context, userName string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = models.RefreshToken{UserName: userName, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *RefreshTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *RefreshTokens) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.tokens, token)
	return nil
}
