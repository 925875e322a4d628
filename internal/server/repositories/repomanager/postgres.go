package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/dbx"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/server/migrations"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/beneficiaries"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/contract"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/habits"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/transfers"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager serves every repository from one *sql.DB.
type PostgresRepositoryManager struct {
	db *sql.DB
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db}
}

// OpenPostgres opens dsn with the pgx driver and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Ledger() Ledger {
	return &postgresLedger{db: m.db}
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

// postgresLedger runs each unit in its own transaction. Repositories inside
// the unit share that transaction; the contract row lock taken by
// contract.Load serializes units across server instances.
type postgresLedger struct {
	db *sql.DB
}

func (l *postgresLedger) Atomically(ctx context.Context, fn func(ctx context.Context, s escrow.Store) error) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, postgresStore{tx: tx})
	})
}

func (l *postgresLedger) Pending(ctx context.Context, limit int) ([]escrow.Transfer, error) {
	return transfers.NewPostgresRepository(l.db).Pending(ctx, limit)
}

func (l *postgresLedger) MarkDelivered(ctx context.Context, id string) error {
	return transfers.NewPostgresRepository(l.db).MarkDelivered(ctx, id)
}

func (l *postgresLedger) MarkFailed(ctx context.Context, id string, reason string) error {
	return transfers.NewPostgresRepository(l.db).MarkFailed(ctx, id, reason)
}

type postgresStore struct {
	tx dbx.DBTX
}

func (s postgresStore) State() escrow.StateRepository {
	return contract.NewPostgresRepository(s.tx)
}

func (s postgresStore) Habits() escrow.HabitRepository {
	return habits.NewPostgresRepository(s.tx)
}

func (s postgresStore) Beneficiaries() escrow.BeneficiaryRepository {
	return beneficiaries.NewPostgresRepository(s.tx)
}

func (s postgresStore) Transfers() escrow.TransferRepository {
	return transfers.NewPostgresRepository(s.tx)
}
