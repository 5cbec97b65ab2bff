package repository

import (
	"context"
	"time"

	"music-payment-service/internal/domain/model"
)

// TransactionRepository is the port for the payment ledger.
type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByRef(ctx context.Context, tx Tx, ref string) (*model.Transaction, error)

	// UpdateStatusIfPending atomically moves a transaction from pending to the
	// given terminal status. It reports false when the row was not pending
	// anymore, which is how concurrent callback deliveries are serialized.
	UpdateStatusIfPending(ctx context.Context, tx Tx, ref string, status model.TransactionStatus) (bool, error)

	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Transaction, error)
	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
