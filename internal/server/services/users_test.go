package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/dmitrijs2005/stickyhabits/internal/server/config"
	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.RefreshTokenValidityDuration = 2 * time.Hour
	return cfg
}

func newUserService(t *testing.T) (*UserService, *memory.RefreshTokens) {
	t.Helper()
	rt := memory.NewRefreshTokens()
	return NewUserService(memory.NewUsers(), rt, testConfig(), logging.NewDiscardLogger()), rt
}

type failingUsers struct{}

func (failingUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errBoom }
func (failingUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, errBoom
}

type failingRefreshTokens struct{ memory.RefreshTokens }

func (*failingRefreshTokens) Create(context.Context, string, string, time.Duration) error {
	return errBoom
}

func TestRegister(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "alice.near", []byte("s"), []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, "alice.near", u.UserName)

	_, err = s.Register(ctx, "alice.near", []byte("s"), []byte("v"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Register(ctx, "", []byte("s"), []byte("v"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = s.Register(ctx, "bob.near", nil, []byte("v"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	broken := NewUserService(failingUsers{}, memory.NewRefreshTokens(), testConfig(), logging.NewDiscardLogger())
	_, err = broken.Register(ctx, "bob.near", []byte("s"), []byte("v"))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "error creating user")
}

func TestGetSalt(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice.near", []byte("alice-salt"), []byte("v"))
	require.NoError(t, err)

	salt, err := s.GetSalt(ctx, "alice.near")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice-salt"), salt)

	r1, err := s.GetSalt(ctx, "ghost.near")
	require.NoError(t, err)
	r2, err := s.GetSalt(ctx, "ghost.near")
	require.NoError(t, err)
	assert.Len(t, r1, saltSize)
	assert.NotEqual(t, r1, r2)

	broken := NewUserService(failingUsers{}, memory.NewRefreshTokens(), testConfig(), logging.NewDiscardLogger())
	_, err = broken.GetSalt(ctx, "alice.near")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice.near", []byte("s"), []byte("verifier"))
	require.NoError(t, err)

	pair, err := s.Login(ctx, "alice.near", []byte("verifier"))
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	account, err := s.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", account)

	_, err = s.Login(ctx, "alice.near", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(ctx, "ghost.near", []byte("verifier"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	broken := NewUserService(failingUsers{}, memory.NewRefreshTokens(), testConfig(), logging.NewDiscardLogger())
	_, err = broken.Login(ctx, "alice.near", []byte("verifier"))
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_RefreshTokenStoreFails(t *testing.T) {
	users := memory.NewUsers()
	_, err := users.Create(context.Background(), &models.User{UserName: "alice.near", Salt: []byte("s"), Verifier: []byte("v")})
	require.NoError(t, err)

	s := NewUserService(users, &failingRefreshTokens{}, testConfig(), logging.NewDiscardLogger())
	_, err = s.Login(context.Background(), "alice.near", []byte("v"))
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken(t *testing.T) {
	s, rt := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice.near", []byte("s"), []byte("v"))
	require.NoError(t, err)
	first, err := s.Login(ctx, "alice.near", []byte("v"))
	require.NoError(t, err)

	second, err := s.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	account, err := s.Authenticate(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", account)

	_, err = s.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "refresh tokens are single use")

	require.NoError(t, rt.Create(ctx, "alice.near", "stale", -time.Minute))
	_, err = s.RefreshToken(ctx, "stale")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	_, err = rt.Find(ctx, "stale")
	assert.ErrorIs(t, err, common.ErrorNotFound, "expired tokens are removed")
}
