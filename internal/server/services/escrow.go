package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
)

// Kicker is notified when new transfers may be waiting for delivery.
type Kicker interface {
	Kick()
}

// EscrowService exposes the engine to the transport and wakes the payout
// dispatcher after every effective unlock.
type EscrowService struct {
	engine  *escrow.Engine
	payouts Kicker
	logger  logging.Logger
}

func NewEscrowService(engine *escrow.Engine, payouts Kicker, logger logging.Logger) *EscrowService {
	return &EscrowService{engine: engine, payouts: payouts, logger: logger.With("module", "escrow_service")}
}

// EnsureInitialized initializes the contract with p unless it already is.
// An existing contract keeps its stored parameters.
func (s *EscrowService) EnsureInitialized(ctx context.Context, p escrow.Params) (*escrow.State, error) {
	state, err := s.engine.Init(ctx, p)
	if errors.Is(err, escrow.ErrAlreadyInitialized) {
		state, err = s.engine.State(ctx)
		if err != nil {
			return nil, err
		}
		if state.Params != p {
			s.logger.Warn(ctx, "stored contract parameters differ from configuration; keeping stored ones",
				"owner", state.Owner, "dev_fee_percent", state.DevFeePercent)
		}
		return state, nil
	}
	return state, err
}

func (s *EscrowService) AddHabit(ctx context.Context, caller string, deposit uint64, req escrow.AddHabitRequest) (int, error) {
	return s.engine.AddHabit(ctx, caller, deposit, req)
}

func (s *EscrowService) UpdateEvidence(ctx context.Context, caller string, index int, evidence string) error {
	return s.engine.UpdateEvidence(ctx, caller, caller, index, evidence)
}

func (s *EscrowService) ApproveHabit(ctx context.Context, caller, user string, index int) error {
	return s.engine.ApproveHabit(ctx, caller, user, index)
}

func (s *EscrowService) UnlockDeposit(ctx context.Context, caller, user string, index int) (string, error) {
	receiver, err := s.engine.UnlockDeposit(ctx, caller, user, index)
	if err != nil {
		return "", err
	}
	if receiver != "" && s.payouts != nil {
		s.payouts.Kick()
	}
	return receiver, nil
}

func (s *EscrowService) HabitsOfUser(ctx context.Context, user string, page escrow.Page) ([]escrow.Habit, error) {
	return s.engine.HabitsOfUser(ctx, user, page)
}

func (s *EscrowService) HabitsOfBeneficiary(ctx context.Context, beneficiary string, page escrow.Page) (map[string][]escrow.Habit, error) {
	return s.engine.HabitsOfBeneficiary(ctx, beneficiary, page)
}

func (s *EscrowService) Balance(ctx context.Context) (uint64, error) {
	return s.engine.Balance(ctx)
}

func (s *EscrowService) Contract(ctx context.Context) (*escrow.State, error) {
	return s.engine.State(ctx)
}
