// Package habits persists per-user habit lists in postgres.
package habits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/dbx"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

const habitColumns = `description, deadline, deposit, beneficiary, evidence, approved`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Count(ctx context.Context, user string) (int, error) {
	query := `SELECT COUNT(*) FROM habits WHERE user_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, user).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, user string, index int) (*escrow.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 AND idx = $2`

	h, err := scanHabit(r.db.QueryRowContext(ctx, query, user, index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, escrow.ErrIndexOutOfRange
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

func (r *PostgresRepository) List(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY idx OFFSET $2 LIMIT $3`
	return r.query(ctx, query, user, from, limit)
}

func (r *PostgresRepository) All(ctx context.Context, user string) ([]escrow.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY idx`
	return r.query(ctx, query, user)
}

// Append stores h at the end of the user's list. The caller must hold the
// contract row lock so that no other unit appends concurrently.
func (r *PostgresRepository) Append(ctx context.Context, user string, h *escrow.Habit) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(idx) + 1, 0) FROM habits WHERE user_id = $1`, user).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		INSERT INTO habits (user_id, idx, ` + habitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		user, next, h.Description, h.Deadline, dbx.Numeric(h.Deposit), h.Beneficiary, h.Evidence, h.Approved)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return next, nil
}

func (r *PostgresRepository) Replace(ctx context.Context, user string, index int, h *escrow.Habit) error {
	query := `
		UPDATE habits
		SET description = $3, deadline = $4, deposit = $5, beneficiary = $6, evidence = $7, approved = $8
		WHERE user_id = $1 AND idx = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		user, index, h.Description, h.Deadline, dbx.Numeric(h.Deposit), h.Beneficiary, h.Evidence, h.Approved)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return escrow.ErrIndexOutOfRange
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]escrow.Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	habits := []escrow.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return habits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (*escrow.Habit, error) {
	var h escrow.Habit
	if err := row.Scan(&h.Description, &h.Deadline, &h.Deposit, &h.Beneficiary, &h.Evidence, &h.Approved); err != nil {
		return nil, err
	}
	return &h, nil
}
