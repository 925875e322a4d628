package escrow

import "context"

// StateRepository persists the contract singleton.
type StateRepository interface {
	// Load returns ErrUninitialized when no contract record exists. Ledgers
	// that support row locking lock the record for the rest of the unit.
	Load(ctx context.Context) (*State, error)
	// Peek reads the record like Load without locking it.
	Peek(ctx context.Context) (*State, error)
	// Create returns ErrAlreadyInitialized when a record already exists.
	Create(ctx context.Context, s *State) error
	UpdateBalance(ctx context.Context, balance uint64) error
}

// HabitRepository persists per-user habit lists. Indexes are stable: habits
// are appended or replaced in place, never removed.
type HabitRepository interface {
	Count(ctx context.Context, user string) (int, error)
	// Get returns ErrIndexOutOfRange when index is not in the list.
	Get(ctx context.Context, user string, index int) (*Habit, error)
	// List returns up to limit habits starting at from. A missing list is
	// reported as an empty slice.
	List(ctx context.Context, user string, from, limit int) ([]Habit, error)
	// All returns the full list, or an empty slice.
	All(ctx context.Context, user string) ([]Habit, error)
	Append(ctx context.Context, user string, h *Habit) (int, error)
	Replace(ctx context.Context, user string, index int, h *Habit) error
}

// BeneficiaryRepository persists the reverse index beneficiary -> users in
// registration order.
type BeneficiaryRepository interface {
	Users(ctx context.Context, beneficiary string) ([]string, error)
	Append(ctx context.Context, beneficiary, user string) error
}

// TransferRepository queues transfer commands.
type TransferRepository interface {
	Enqueue(ctx context.Context, t *Transfer) error
}

// Store groups the repositories visible inside one atomic unit.
type Store interface {
	State() StateRepository
	Habits() HabitRepository
	Beneficiaries() BeneficiaryRepository
	Transfers() TransferRepository
}

// Ledger runs fn against a Store as one all-or-nothing unit: either every
// write made through the Store becomes visible, or none does.
type Ledger interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// Outbox is the delivery side of the transfer queue.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]Transfer, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
