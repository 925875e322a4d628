// Package refreshtokens stores the opaque refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
)

type Repository interface {
	// Create stores token for userName, expiring at now+validity.
	Create(ctx context.Context, userName string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete returns common.ErrorNotFound when no row was removed, so a
	// token can be redeemed only once.
	Delete(ctx context.Context, token string) error
}
