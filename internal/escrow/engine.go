package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stickyhabits/internal/logging"
)

// Engine enforces the habit state machine on top of a Ledger.
//
// Every call runs to completion inside one Ledger unit. Mutating calls are
// additionally serialized by the engine, so two calls never interleave on the
// same habit list or on the balance.
type Engine struct {
	mu     sync.Mutex
	ledger Ledger
	clock  Clock
	logger logging.Logger
}

func NewEngine(ledger Ledger, clock Clock, logger logging.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		ledger: ledger,
		clock:  clock,
		logger: logger.With("module", "escrow"),
	}
}

func (e *Engine) mutate(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Atomically(ctx, fn)
}

// Init stores the contract configuration. It succeeds exactly once.
func (e *Engine) Init(ctx context.Context, p Params) (*State, error) {
	if p.Owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidConfig)
	}
	if p.DevFeePercent >= 100 {
		return nil, fmt.Errorf("%w: dev fee must be below 100 percent", ErrInvalidConfig)
	}
	if p.AcquisitionPeriod <= 0 || p.GracePeriod <= 0 {
		return nil, fmt.Errorf("%w: periods must be positive", ErrInvalidConfig)
	}

	state := &State{Params: p}
	err := e.mutate(ctx, func(ctx context.Context, s Store) error {
		return s.State().Create(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info(ctx, "contract initialized", "owner", p.Owner, "dev_fee_percent", p.DevFeePercent)
	return state, nil
}

// AddHabit locks deposit for a new habit of caller and returns its index.
func (e *Engine) AddHabit(ctx context.Context, caller string, deposit uint64, req AddHabitRequest) (int, error) {
	if req.Beneficiary == "" || caller == req.Beneficiary {
		return 0, ErrInvalidParty
	}
	if req.DeadlineExtension < 0 {
		return 0, ErrInvalidDeadline
	}

	var index int
	var locked uint64
	err := e.mutate(ctx, func(ctx context.Context, s Store) error {
		state, err := s.State().Load(ctx)
		if err != nil {
			return err
		}

		count, err := s.Habits().Count(ctx, caller)
		if err != nil {
			return err
		}

		deadline, err := habitDeadline(e.clock.Now().UnixNano(), state.AcquisitionPeriod, req.DeadlineExtension, state.GracePeriod)
		if err != nil {
			return err
		}

		locked, err = lockedAmount(count, deposit)
		if err != nil {
			return err
		}
		if err := state.lock(locked); err != nil {
			return err
		}

		h := &Habit{
			Description: req.Description,
			Deadline:    deadline,
			Deposit:     locked,
			Beneficiary: req.Beneficiary,
		}

		index, err = s.Habits().Append(ctx, caller, h)
		if err != nil {
			return err
		}
		if err := s.State().UpdateBalance(ctx, state.Balance); err != nil {
			return err
		}
		return registerBeneficiary(ctx, s.Beneficiaries(), req.Beneficiary, caller)
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info(ctx, "habit added", "user", caller, "index", index, "locked", locked, "beneficiary", req.Beneficiary)
	return index, nil
}

// UpdateEvidence overwrites the evidence of an undistributed habit. Only the
// owning user may call it.
func (e *Engine) UpdateEvidence(ctx context.Context, caller, user string, index int, evidence string) error {
	if caller != user {
		return ErrPermissionDenied
	}

	return e.mutate(ctx, func(ctx context.Context, s Store) error {
		if _, err := s.State().Load(ctx); err != nil {
			return err
		}

		h, err := loadHabit(ctx, s.Habits(), user, index)
		if err != nil {
			return err
		}
		if h.Settled() {
			return ErrHabitSettled
		}

		h.Evidence = evidence
		return s.Habits().Replace(ctx, user, index, h)
	})
}

// ApproveHabit marks a habit as done. Only the beneficiary may call it, and
// it takes effect only strictly inside (deadline, deadline+grace). Outside the
// window the call succeeds without changing anything.
func (e *Engine) ApproveHabit(ctx context.Context, caller, user string, index int) error {
	approved := false
	err := e.mutate(ctx, func(ctx context.Context, s Store) error {
		state, err := s.State().Load(ctx)
		if err != nil {
			return err
		}

		h, err := loadHabit(ctx, s.Habits(), user, index)
		if err != nil {
			return err
		}
		if caller != h.Beneficiary {
			return ErrPermissionDenied
		}

		if h.Approved || !h.approvalOpen(e.clock.Now().UnixNano(), state.GracePeriod) {
			return nil
		}

		h.Approved = true
		approved = true
		return s.Habits().Replace(ctx, user, index, h)
	})
	if err != nil {
		return err
	}

	if approved {
		e.logger.Info(ctx, "habit approved", "user", user, "index", index, "beneficiary", caller)
	}
	return nil
}

// UnlockDeposit distributes a habit deposit once the grace period is over.
//
// The user collects an approved deposit in full. The beneficiary collects an
// unapproved one, split with the owner. Every other combination, including a
// repeated unlock and calls from unrelated accounts, is a no-op that returns
// an empty receiver and no error.
//
// Bookkeeping and the transfer commands are written in the same unit; the
// transfers are delivered later and their outcome is never consulted.
func (e *Engine) UnlockDeposit(ctx context.Context, caller, user string, index int) (string, error) {
	var receiver string
	var released uint64

	err := e.mutate(ctx, func(ctx context.Context, s Store) error {
		state, err := s.State().Load(ctx)
		if err != nil {
			return err
		}

		h, err := loadHabit(ctx, s.Habits(), user, index)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		if h.Settled() || !h.unlockOpen(now.UnixNano(), state.GracePeriod) {
			return nil
		}

		var transfers []*Transfer
		switch {
		case caller == user && h.Approved:
			amount, err := state.release(h)
			if err != nil {
				return err
			}
			transfers = append(transfers, newTransfer(TransferRefund, user, amount, user, index, now))
			receiver, released = user, amount

		case caller == h.Beneficiary && !h.Approved:
			beneficiary := h.Beneficiary
			amount, err := state.release(h)
			if err != nil {
				return err
			}
			toBeneficiary, toDeveloper := SplitForfeit(amount, state.DevFeePercent)
			transfers = append(transfers,
				newTransfer(TransferForfeit, beneficiary, toBeneficiary, user, index, now),
				newTransfer(TransferDevFee, state.Owner, toDeveloper, user, index, now),
			)
			receiver, released = beneficiary, amount

		default:
			return nil
		}

		if err := s.Habits().Replace(ctx, user, index, h); err != nil {
			return err
		}
		if err := s.State().UpdateBalance(ctx, state.Balance); err != nil {
			return err
		}
		for _, t := range transfers {
			if t.Amount == 0 {
				continue
			}
			if err := s.Transfers().Enqueue(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if receiver != "" {
		e.logger.Info(ctx, "deposit unlocked", "user", user, "index", index, "receiver", receiver, "amount", released)
	}
	return receiver, nil
}

// HabitsOfUser returns a page of the user's habit list.
func (e *Engine) HabitsOfUser(ctx context.Context, user string, page Page) ([]Habit, error) {
	page = page.normalize()
	var habits []Habit
	err := e.ledger.Atomically(ctx, func(ctx context.Context, s Store) error {
		var err error
		habits, err = s.Habits().List(ctx, user, page.From, page.Limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []Habit{}
	}
	return habits, nil
}

// HabitsOfBeneficiary returns, for every user who ever named beneficiary,
// a page of that user's habits adjudicated by beneficiary.
func (e *Engine) HabitsOfBeneficiary(ctx context.Context, beneficiary string, page Page) (map[string][]Habit, error) {
	result := make(map[string][]Habit)
	err := e.ledger.Atomically(ctx, func(ctx context.Context, s Store) error {
		users, err := s.Beneficiaries().Users(ctx, beneficiary)
		if err != nil {
			return err
		}
		for _, user := range users {
			all, err := s.Habits().All(ctx, user)
			if err != nil {
				return err
			}
			var own []Habit
			for _, h := range all {
				if h.Beneficiary == beneficiary {
					own = append(own, h)
				}
			}
			result[user] = page.slice(own)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Habit returns one habit of user.
func (e *Engine) Habit(ctx context.Context, user string, index int) (*Habit, error) {
	var h *Habit
	err := e.ledger.Atomically(ctx, func(ctx context.Context, s Store) error {
		var err error
		h, err = loadHabit(ctx, s.Habits(), user, index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Balance returns the sum of all currently locked deposits.
func (e *Engine) Balance(ctx context.Context) (uint64, error) {
	state, err := e.State(ctx)
	if err != nil {
		return 0, err
	}
	return state.Balance, nil
}

// State returns a copy of the contract singleton.
func (e *Engine) State(ctx context.Context) (*State, error) {
	var state *State
	err := e.ledger.Atomically(ctx, func(ctx context.Context, s Store) error {
		var err error
		state, err = s.State().Peek(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func loadHabit(ctx context.Context, repo HabitRepository, user string, index int) (*Habit, error) {
	count, err := repo.Count(ctx, user)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoHabits
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, count)
	}

	h, err := repo.Get(ctx, user, index)
	if err != nil {
		if errors.Is(err, ErrIndexOutOfRange) {
			return nil, err
		}
		return nil, fmt.Errorf("load habit: %w", err)
	}
	return h, nil
}
