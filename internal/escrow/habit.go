// Package escrow implements the habit escrow lifecycle: deposit intake and
// accounting, evidence recording, time-windowed approval by the beneficiary
// and distribution of the locked deposit on unlock.
//
// The package owns the rules only. Persistence is reached through the Ledger
// and Store interfaces, time through Clock, and fund movement is expressed as
// Transfer commands queued for an external gateway.
package escrow

import (
	"math"
	"time"
)

// StorageCost is withheld from a user's first deposit. It is never refunded
// and never counted in the contract balance.
const StorageCost uint64 = 1_000_000

const (
	// DefaultPageLimit is used when a query does not specify a limit.
	DefaultPageLimit = 7
	// MaxPageLimit caps a single page.
	MaxPageLimit = 100
)

// Habit is one escrowed commitment.
//
// Deposit is the amount currently locked. It is set once at creation and
// only ever moves to zero on unlock; a zero deposit marks the habit as
// settled. Deadline is an absolute Unix timestamp in nanoseconds.
type Habit struct {
	Description string `json:"description"`
	Deadline    int64  `json:"deadline"`
	Deposit     uint64 `json:"deposit"`
	Beneficiary string `json:"beneficiary"`
	Evidence    string `json:"evidence"`
	Approved    bool   `json:"approved"`
}

// Settled reports whether the deposit has already been distributed.
func (h Habit) Settled() bool {
	return h.Deposit == 0
}

// approvalOpen reports whether now lies strictly inside the approval window.
func (h Habit) approvalOpen(now int64, grace time.Duration) bool {
	return h.Deadline < now && now < h.Deadline+int64(grace)
}

// unlockOpen reports whether the grace period has fully elapsed.
func (h Habit) unlockOpen(now int64, grace time.Duration) bool {
	return now > h.Deadline+int64(grace)
}

// habitDeadline returns now+acquisition+extension. The sum plus grace must
// fit an int64 so that neither the deadline nor the end of the approval
// window can wrap around.
func habitDeadline(now int64, acquisition, extension, grace time.Duration) (int64, error) {
	if now < 0 || extension < 0 {
		return 0, ErrInvalidDeadline
	}
	room := math.MaxInt64 - now
	for _, d := range []time.Duration{acquisition, grace, extension} {
		if int64(d) > room {
			return 0, ErrInvalidDeadline
		}
		room -= int64(d)
	}
	return now + int64(acquisition) + int64(extension), nil
}

// Params is the immutable contract configuration set at initialization.
type Params struct {
	Owner             string        `json:"owner"`
	DevFeePercent     uint8         `json:"dev_fee_percent"`
	AcquisitionPeriod time.Duration `json:"acquisition_period"`
	GracePeriod       time.Duration `json:"grace_period"`
}

// State is the contract singleton: configuration plus the aggregate of all
// currently locked deposits.
type State struct {
	Params
	Balance uint64 `json:"balance"`
}

// AddHabitRequest carries the user supplied part of a new habit. The deposit
// travels separately because it is attached value, not an argument.
type AddHabitRequest struct {
	Description       string
	DeadlineExtension time.Duration
	Beneficiary       string
}

// Page selects a window of an ordered habit list.
type Page struct {
	From  int
	Limit int
}

func (p Page) normalize() Page {
	if p.From < 0 {
		p.From = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// slice returns the page window of habits. Offsets past the end yield an
// empty, non-nil slice.
func (p Page) slice(habits []Habit) []Habit {
	p = p.normalize()
	if p.From >= len(habits) {
		return []Habit{}
	}
	end := p.From + p.Limit
	if end > len(habits) {
		end = len(habits)
	}
	out := make([]Habit, end-p.From)
	copy(out, habits[p.From:end])
	return out
}
