// Package services contains application services for the stickyhabits
// client: authentication and the habit commands built on top of Client.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/cryptox"
)

const saltSize = 32

// AuthService defines authentication operations for the CLI.
//
// The password never leaves the client. Register and Login send only the
// salt and the verifier derived from (password, salt).
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
}

func NewAuthService(client client.Client) AuthService {
	return &authService{client: client}
}

// Login fetches the account salt, derives the verifier and authenticates.
// The client keeps the issued tokens.
func (a *authService) Login(ctx context.Context, userName string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	masterKey := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(masterKey)

	if err := a.client.Login(ctx, userName, cryptox.MakeVerifier(masterKey)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

// Register creates a new account on the server with a fresh random salt.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
