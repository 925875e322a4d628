package escrow

import (
	"time"

	"github.com/google/uuid"
)

// TransferKind tells why funds leave the escrow.
type TransferKind string

const (
	// TransferRefund returns an approved deposit to its user.
	TransferRefund TransferKind = "refund"
	// TransferForfeit pays the beneficiary share of an unapproved deposit.
	TransferForfeit TransferKind = "forfeit"
	// TransferDevFee pays the owner share of an unapproved deposit.
	TransferDevFee TransferKind = "dev_fee"
)

// TransferStatus is the delivery state of a queued transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferDelivered TransferStatus = "delivered"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is a fire-and-forget payment command. It is written in the same
// unit as the bookkeeping that justifies it; its delivery outcome never feeds
// back into the escrow.
type Transfer struct {
	ID         string         `json:"id"`
	Receiver   string         `json:"receiver"`
	Amount     uint64         `json:"amount"`
	Kind       TransferKind   `json:"kind"`
	User       string         `json:"user"`
	HabitIndex int            `json:"habit_index"`
	Status     TransferStatus `json:"status"`
	Failure    string         `json:"failure,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func newTransfer(kind TransferKind, receiver string, amount uint64, user string, index int, now time.Time) *Transfer {
	return &Transfer{
		ID:         uuid.NewString(),
		Receiver:   receiver,
		Amount:     amount,
		Kind:       kind,
		User:       user,
		HabitIndex: index,
		Status:     TransferPending,
		CreatedAt:  now,
	}
}

// SplitForfeit divides an unapproved deposit between beneficiary and owner.
// The beneficiary share is deposit / (100 - devFeePercent); the owner keeps
// the remainder, so the two parts always sum to deposit.
func SplitForfeit(deposit uint64, devFeePercent uint8) (toBeneficiary, toDeveloper uint64) {
	toBeneficiary = deposit / uint64(100-devFeePercent)
	toDeveloper = deposit - toBeneficiary
	return toBeneficiary, toDeveloper
}
