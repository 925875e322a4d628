// Package memory provides an in-process escrow ledger for development runs
// and tests. Each unit works on a private copy of the data which replaces the
// committed copy only when the unit succeeds.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type data struct {
	state         *escrow.State
	habits        map[string][]escrow.Habit
	beneficiaries map[string][]string
	transfers     []escrow.Transfer
}

func (d *data) clone() *data {
	c := &data{
		habits:        make(map[string][]escrow.Habit, len(d.habits)),
		beneficiaries: make(map[string][]string, len(d.beneficiaries)),
		transfers:     append([]escrow.Transfer(nil), d.transfers...),
	}
	if d.state != nil {
		s := *d.state
		c.state = &s
	}
	for k, v := range d.habits {
		c.habits[k] = append([]escrow.Habit(nil), v...)
	}
	for k, v := range d.beneficiaries {
		c.beneficiaries[k] = append([]string(nil), v...)
	}
	return c
}

// Ledger implements escrow.Ledger and escrow.Outbox in memory.
type Ledger struct {
	mu   sync.Mutex
	data *data
}

func NewLedger() *Ledger {
	return &Ledger{data: &data{
		habits:        map[string][]escrow.Habit{},
		beneficiaries: map[string][]string{},
	}}
}

func (l *Ledger) Atomically(ctx context.Context, fn func(ctx context.Context, s escrow.Store) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := l.data.clone()
	if err := fn(ctx, &store{d: work}); err != nil {
		return err
	}
	l.data = work
	return nil
}

// Pending returns up to limit undelivered transfers in queue order.
func (l *Ledger) Pending(ctx context.Context, limit int) ([]escrow.Transfer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []escrow.Transfer
	for _, t := range l.data.transfers {
		if len(out) == limit {
			break
		}
		if t.Status == escrow.TransferPending {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *Ledger) MarkDelivered(ctx context.Context, id string) error {
	return l.setStatus(id, escrow.TransferDelivered, "")
}

func (l *Ledger) MarkFailed(ctx context.Context, id string, reason string) error {
	return l.setStatus(id, escrow.TransferFailed, reason)
}

func (l *Ledger) setStatus(id string, status escrow.TransferStatus, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.data.transfers {
		if l.data.transfers[i].ID == id {
			l.data.transfers[i].Status = status
			l.data.transfers[i].Failure = reason
			return nil
		}
	}
	return fmt.Errorf("transfer %s: %w", id, common.ErrorNotFound)
}

// Transfers returns a copy of every queued transfer regardless of status.
func (l *Ledger) Transfers() []escrow.Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]escrow.Transfer(nil), l.data.transfers...)
}

type store struct {
	d *data
}

func (s *store) State() escrow.StateRepository { return stateRepo{s.d} }
func (s *store) Habits() escrow.HabitRepository { return habitRepo{s.d} }
func (s *store) Beneficiaries() escrow.BeneficiaryRepository { return beneficiaryRepo{s.d} }
func (s *store) Transfers() escrow.TransferRepository { return transferRepo{s.d} }

type stateRepo struct{ d *data }

func (r stateRepo) Load(ctx context.Context) (*escrow.State, error) {
	if r.d.state == nil {
		return nil, escrow.ErrUninitialized
	}
	s := *r.d.state
	return &s, nil
}

func (r stateRepo) Peek(ctx context.Context) (*escrow.State, error) {
	return r.Load(ctx)
}

func (r stateRepo) Create(ctx context.Context, s *escrow.State) error {
	if r.d.state != nil {
		return escrow.ErrAlreadyInitialized
	}
	c := *s
	r.d.state = &c
	return nil
}

func (r stateRepo) UpdateBalance(ctx context.Context, balance uint64) error {
	if r.d.state == nil {
		return escrow.ErrUninitialized
	}
	r.d.state.Balance = balance
	return nil
}

type habitRepo struct{ d *data }

func (r habitRepo) Count(ctx context.Context, user string) (int, error) {
	return len(r.d.habits[user]), nil
}

func (r habitRepo) Get(ctx context.Context, user string, index int) (*escrow.Habit, error) {
	list := r.d.habits[user]
	if index < 0 || index >= len(list) {
		return nil, escrow.ErrIndexOutOfRange
	}
	h := list[index]
	return &h, nil
}

func (r habitRepo) List(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	list := r.d.habits[user]
	if from >= len(list) {
		return []escrow.Habit{}, nil
	}
	end := min(from+limit, len(list))
	return append([]escrow.Habit{}, list[from:end]...), nil
}

func (r habitRepo) All(ctx context.Context, user string) ([]escrow.Habit, error) {
	return append([]escrow.Habit{}, r.d.habits[user]...), nil
}

func (r habitRepo) Append(ctx context.Context, user string, h *escrow.Habit) (int, error) {
	r.d.habits[user] = append(r.d.habits[user], *h)
	return len(r.d.habits[user]) - 1, nil
}

func (r habitRepo) Replace(ctx context.Context, user string, index int, h *escrow.Habit) error {
	list := r.d.habits[user]
	if index < 0 || index >= len(list) {
		return escrow.ErrIndexOutOfRange
	}
	list[index] = *h
	return nil
}

type beneficiaryRepo struct{ d *data }

func (r beneficiaryRepo) Users(ctx context.Context, beneficiary string) ([]string, error) {
	return append([]string{}, r.d.beneficiaries[beneficiary]...), nil
}

func (r beneficiaryRepo) Append(ctx context.Context, beneficiary, user string) error {
	r.d.beneficiaries[beneficiary] = append(r.d.beneficiaries[beneficiary], user)
	return nil
}

type transferRepo struct{ d *data }

func (r transferRepo) Enqueue(ctx context.Context, t *escrow.Transfer) error {
	r.d.transfers = append(r.d.transfers, *t)
	return nil
}
