// Package beneficiaries persists the beneficiary -> users reverse index.
package beneficiaries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Users lists the users linked to beneficiary in registration order.
func (r *PostgresRepository) Users(ctx context.Context, beneficiary string) ([]string, error) {
	query := `SELECT user_id FROM beneficiary_users WHERE beneficiary = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, beneficiary)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// Append links user under beneficiary at the next position. An existing link
// is left untouched.
func (r *PostgresRepository) Append(ctx context.Context, beneficiary, user string) error {
	query := `
		INSERT INTO beneficiary_users (beneficiary, user_id, position)
		SELECT $1::text, $2::text, COUNT(*) FROM beneficiary_users WHERE beneficiary = $1
		ON CONFLICT (beneficiary, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, beneficiary, user); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
