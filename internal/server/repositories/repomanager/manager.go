// Package repomanager bundles the repositories of one storage backend behind
// a single value the server wires at startup.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/users"
)

// Ledger is the escrow ledger together with its transfer outbox.
type Ledger interface {
	escrow.Ledger
	escrow.Outbox
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Ledger() Ledger
	Close() error
}
