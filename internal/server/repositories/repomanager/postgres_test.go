package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestManagers_SatisfyInterface(t *testing.T) {
	db, _ := newDB(t)

	var _ RepositoryManager = NewPostgresRepositoryManager(db)
	var _ RepositoryManager = NewMemoryRepositoryManager()

	m := NewPostgresRepositoryManager(db)
	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.RefreshTokens())
	assert.NotNil(t, m.Ledger())
}

func TestRunMigrations(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		assert.Same(t, db, got)
		assert.Equal(t, ".", dir)
		return nil
	}
	require.NoError(t, NewPostgresRepositoryManager(db).RunMigrations(context.Background()))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, NewPostgresRepositoryManager(db).RunMigrations(context.Background()), "boom")
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestPostgresLedger_AddHabitRunsInOneTransaction(t *testing.T) {
	db, mock := newDB(t)
	engine := escrow.NewEngine(NewPostgresRepositoryManager(db).Ledger(), fixedClock{time.Unix(0, 1000)}, logging.NewDiscardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+contract_state\s+WHERE\s+id\s*=\s*1\s+FOR\s+UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"owner", "dev_fee_percent", "acquisition_period_ns", "grace_period_ns", "balance"}).
			AddRow("owner.near", int64(5), int64(100), int64(15), "0"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM habits`).WithArgs("alice.near").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`COALESCE\(MAX\(idx\)`).WithArgs("alice.near").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(0))
	mock.ExpectExec(`INSERT\s+INTO\s+habits`).
		WithArgs("alice.near", 0, "run", int64(1100), "1000000", "bob.near", "", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+contract_state\s+SET\s+balance`).WithArgs("1000000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM beneficiary_users`).WithArgs("bob.near").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec(`INSERT\s+INTO\s+beneficiary_users`).WithArgs("bob.near", "alice.near").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	idx, err := engine.AddHabit(context.Background(), "alice.near", 2*escrow.StorageCost, escrow.AddHabitRequest{
		Description: "run",
		Beneficiary: "bob.near",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_FailureRollsBack(t *testing.T) {
	db, mock := newDB(t)
	engine := escrow.NewEngine(NewPostgresRepositoryManager(db).Ledger(), fixedClock{time.Unix(0, 1000)}, logging.NewDiscardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+contract_state`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := engine.AddHabit(context.Background(), "alice.near", 2*escrow.StorageCost, escrow.AddHabitRequest{Beneficiary: "bob.near"})
	assert.ErrorIs(t, err, escrow.ErrUninitialized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_BalanceReadsWithoutLock(t *testing.T) {
	db, mock := newDB(t)
	engine := escrow.NewEngine(NewPostgresRepositoryManager(db).Ledger(), fixedClock{time.Unix(0, 1000)}, logging.NewDiscardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+contract_state\s+WHERE\s+id\s*=\s*1\s*$`).WillReturnRows(
		sqlmock.NewRows([]string{"owner", "dev_fee_percent", "acquisition_period_ns", "grace_period_ns", "balance"}).
			AddRow("owner.near", int64(5), int64(time.Hour), int64(time.Minute), "7"))
	mock.ExpectCommit()

	balance, err := engine.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Outbox(t *testing.T) {
	db, mock := newDB(t)
	ledger := NewPostgresRepositoryManager(db).Ledger()

	mock.ExpectQuery(`FROM\s+transfers`).WithArgs("pending", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "receiver", "amount", "kind", "user_id", "habit_idx", "status", "failure", "created_at"}))
	mock.ExpectExec(`UPDATE\s+transfers`).WithArgs("t-1", "delivered", "").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+transfers`).WithArgs("t-2", "failed", "nope").WillReturnResult(sqlmock.NewResult(0, 1))

	pending, err := ledger.Pending(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, pending)
	require.NoError(t, ledger.MarkDelivered(context.Background(), "t-1"))
	require.NoError(t, ledger.MarkFailed(context.Background(), "t-2", "nope"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
