package model

import (
	"time"

	"music-payment-service/internal/domain"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"   // created; user redirected to gateway
	TransactionStatusCompleted TransactionStatus = "completed" // gateway reported success, signature verified
	TransactionStatusFailed    TransactionStatus = "failed"    // gateway reported failure, signature verified
)

// IsTerminal reports whether the status can never change again.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction records one payment attempt in the ledger. PlanName and Amount
// are snapshots taken at creation time: a later plan price change must never
// alter a historical transaction.
type Transaction struct {
	Ref           string // externally visible reference, shared with the gateway
	UserID        int64
	PlanID        int64
	PlanName      string
	Amount        int64 // whole VND, frozen copy of the plan price
	Status        TransactionStatus
	PaymentMethod string
	CreatedAt     time.Time
}

// NewTransaction constructs a pending ledger entry for a payment attempt,
// snapshotting the plan's current name and price.
func NewTransaction(ref string, userID int64, plan *Plan, paymentMethod string) (*Transaction, error) {
	if ref == "" || userID <= 0 || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Transaction{
		Ref:           ref,
		UserID:        userID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Amount:        plan.Price,
		Status:        TransactionStatusPending,
		PaymentMethod: paymentMethod,
		CreatedAt:     time.Now(),
	}, nil
}
