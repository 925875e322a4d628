// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
)

type Repository interface {
	// Create returns common.ErrorAlreadyExists when the username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound for unknown usernames.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
