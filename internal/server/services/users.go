// Package services holds the server-side use cases behind the gRPC
// handlers: accounts, the escrow facade, evidence storage and payouts.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/cryptox"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/dmitrijs2005/stickyhabits/internal/server/auth"
	"github.com/dmitrijs2005/stickyhabits/internal/server/config"
	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/users"
)

const saltSize = 32

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService registers accounts and issues token pairs. The account id
// embedded in access tokens is the username.
type UserService struct {
	users                        users.Repository
	refreshTokens                refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger
}

func NewUserService(u users.Repository, rt refreshtokens.Repository, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		users:                        u,
		refreshTokens:                rt,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       logger.With("module", "users"),
	}
}

func (s *UserService) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return nil, common.ErrInvalidArgument
	}

	user, err := s.users.Create(ctx, &models.User{UserName: username, Salt: salt, Verifier: verifier})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "account registered", "user", username)
	return user, nil
}

// GetSalt returns the stored salt, or a random one for unknown usernames so
// that the answer does not reveal which accounts exist.
func (s *UserService) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	user, err := s.users.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.GenerateRandByteArray(saltSize), nil
		}
		s.logger.Error(ctx, "salt lookup failed", "user", userName, "error", err)
		return nil, common.ErrorInternal
	}
	return user.Salt, nil
}

func (s *UserService) Login(ctx context.Context, userName string, verifierCandidate []byte) (*TokenPair, error) {
	user, err := s.users.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "user", userName, "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifierMatches(user.Verifier, verifierCandidate) {
		s.logger.Warn(ctx, "login rejected", "user", userName)
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.UserName)
}

// RefreshToken redeems a refresh token for a new pair. Each refresh token
// works once.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.refreshTokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if err := s.refreshTokens.Delete(ctx, refreshToken); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error deleting refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return s.generateTokenPair(ctx, token.UserName)
}

// Authenticate resolves an access token to its account id.
func (s *UserService) Authenticate(accessToken string) (string, error) {
	return auth.AccountFromToken(accessToken, s.jwtSecret)
}

func (s *UserService) generateTokenPair(ctx context.Context, userName string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokens.Create(ctx, userName, refreshToken, s.refreshTokenValidityDuration); err != nil {
		s.logger.Error(ctx, "storing refresh token failed", "user", userName, "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
