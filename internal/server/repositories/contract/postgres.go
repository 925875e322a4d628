// Package contract persists the escrow contract singleton in postgres.
package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/dbx"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectState = `
	SELECT owner, dev_fee_percent, acquisition_period_ns, grace_period_ns, balance
	FROM contract_state
	WHERE id = 1
`

// Load reads the contract row and locks it until the surrounding
// transaction ends.
func (r *PostgresRepository) Load(ctx context.Context) (*escrow.State, error) {
	return r.load(ctx, selectState+"FOR UPDATE")
}

// Peek reads the contract row without locking it.
func (r *PostgresRepository) Peek(ctx context.Context) (*escrow.State, error) {
	return r.load(ctx, selectState)
}

func (r *PostgresRepository) load(ctx context.Context, query string) (*escrow.State, error) {
	var (
		s           escrow.State
		acquisition int64
		grace       int64
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&s.Owner, &s.DevFeePercent, &acquisition, &grace, &s.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, escrow.ErrUninitialized
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.AcquisitionPeriod = time.Duration(acquisition)
	s.GracePeriod = time.Duration(grace)
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *escrow.State) error {
	query := `
		INSERT INTO contract_state (id, owner, dev_fee_percent, acquisition_period_ns, grace_period_ns, balance)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		s.Owner, int64(s.DevFeePercent), int64(s.AcquisitionPeriod), int64(s.GracePeriod), dbx.Numeric(s.Balance))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return escrow.ErrAlreadyInitialized
	}
	return nil
}

func (r *PostgresRepository) UpdateBalance(ctx context.Context, balance uint64) error {
	query := `
		UPDATE contract_state SET balance = $1
		WHERE id = 1
	`

	res, err := r.db.ExecContext(ctx, query, dbx.Numeric(balance))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return escrow.ErrUninitialized
	}
	return nil
}
