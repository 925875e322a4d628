// Package transfers persists the outgoing transfer queue in postgres.
package transfers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/dbx"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, t *escrow.Transfer) error {
	query := `
		INSERT INTO transfers (id, receiver, amount, kind, user_id, habit_idx, status, failure, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Receiver, dbx.Numeric(t.Amount), string(t.Kind), t.User, t.HabitIndex, string(t.Status), t.Failure, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Pending returns up to limit pending transfers in queue order.
func (r *PostgresRepository) Pending(ctx context.Context, limit int) ([]escrow.Transfer, error) {
	query := `
		SELECT id, receiver, amount, kind, user_id, habit_idx, status, failure, created_at
		FROM transfers
		WHERE status = $1
		ORDER BY seq
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, string(escrow.TransferPending), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []escrow.Transfer
	for rows.Next() {
		var t escrow.Transfer
		var kind, status string
		if err := rows.Scan(&t.ID, &t.Receiver, &t.Amount, &kind, &t.User, &t.HabitIndex, &status, &t.Failure, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.Kind = escrow.TransferKind(kind)
		t.Status = escrow.TransferStatus(status)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, escrow.TransferDelivered, "")
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.setStatus(ctx, id, escrow.TransferFailed, reason)
}

func (r *PostgresRepository) setStatus(ctx context.Context, id string, status escrow.TransferStatus, reason string) error {
	query := `
		UPDATE transfers SET status = $2, failure = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, string(status), reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transfer %s: %w", id, common.ErrorNotFound)
	}
	return nil
}
