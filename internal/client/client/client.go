package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type Client interface {
	Close() error
	Register(ctx context.Context, username string, salt []byte, key []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, key []byte) error
	Ping(ctx context.Context) error

	AddHabit(ctx context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error)
	UpdateEvidence(ctx context.Context, index int, evidence string) error
	ApproveHabit(ctx context.Context, user string, index int) error
	UnlockDeposit(ctx context.Context, user string, index int) (string, error)
	HabitsOfUser(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error)
	HabitsOfBeneficiary(ctx context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error)
	Balance(ctx context.Context) (uint64, error)
	Contract(ctx context.Context) (*Contract, error)
	EvidenceUploadURL(ctx context.Context, index int) (uri string, url string, err error)
	EvidenceDownloadURL(ctx context.Context, user string, index int) (url string, text string, err error)
}

// Contract is the public contract configuration and balance.
type Contract struct {
	escrow.State
	StorageCost uint64
}
