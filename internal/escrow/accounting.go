package escrow

import (
	"fmt"
	"math"
)

// lockedAmount computes how much of an attached deposit gets locked. The
// first habit of a user pays StorageCost out of the deposit and must cover
// it strictly; later habits lock the full deposit.
func lockedAmount(existing int, deposit uint64) (uint64, error) {
	if existing == 0 {
		if deposit <= StorageCost {
			return 0, fmt.Errorf("%w: attach more than %d for the first habit", ErrInsufficientDeposit, StorageCost)
		}
		return deposit - StorageCost, nil
	}
	if deposit == 0 {
		return 0, fmt.Errorf("%w: deposit must be positive", ErrInsufficientDeposit)
	}
	return deposit, nil
}

// lock adds amount to the aggregate balance. The caller writes the habit with
// the same amount in the same unit.
func (s *State) lock(amount uint64) error {
	if s.Balance > math.MaxUint64-amount {
		return ErrAmountOverflow
	}
	s.Balance += amount
	return nil
}

// release zeroes the habit deposit and removes it from the aggregate balance.
// It returns the released amount.
func (s *State) release(h *Habit) (uint64, error) {
	amount := h.Deposit
	if amount > s.Balance {
		return 0, fmt.Errorf("balance %d below habit deposit %d", s.Balance, amount)
	}
	h.Deposit = 0
	s.Balance -= amount
	return amount, nil
}
