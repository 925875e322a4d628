package repomanager

import (
	"context"

	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/memory"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. State is lost
// on restart.
type MemoryRepositoryManager struct {
	users         *memory.Users
	refreshTokens *memory.RefreshTokens
	ledger        *memory.Ledger
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         memory.NewUsers(),
		refreshTokens: memory.NewRefreshTokens(),
		ledger:        memory.NewLedger(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }

func (m *MemoryRepositoryManager) Ledger() Ledger { return m.ledger }

func (m *MemoryRepositoryManager) Close() error { return nil }
