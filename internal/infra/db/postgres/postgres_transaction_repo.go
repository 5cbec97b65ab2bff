package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  ref, user_id, plan_id, plan_name, amount, status, payment_method, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
);`

	_, err := execSQL(ctx, r.pool, tx, q, t.Ref, t.UserID, t.PlanID, t.PlanName, t.Amount, t.Status, t.PaymentMethod, t.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) FindByRef(ctx context.Context, tx repository.Tx, ref string) (*model.Transaction, error) {
	q := `SELECT ref, user_id, plan_id, plan_name, amount, status, payment_method, created_at FROM transactions WHERE ref=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, ref)
	if err != nil {
		return nil, err
	}

	t := &model.Transaction{}
	if err := row.Scan(&t.Ref, &t.UserID, &t.PlanID, &t.PlanName, &t.Amount, &t.Status, &t.PaymentMethod, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}

	return t, nil
}

// UpdateStatusIfPending atomically updates status only when the row is still
// 'pending'. The returned bool is the settlement decision: false means some
// other delivery of the same callback already finalized the transaction.
func (r *transactionRepo) UpdateStatusIfPending(
	ctx context.Context, tx repository.Tx, ref string, status model.TransactionStatus,
) (bool, error) {
	const q = `
    UPDATE transactions
       SET status = $2
     WHERE ref = $1
       AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, ref, string(status))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *transactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ref, user_id, plan_id, plan_name, amount, status, payment_method, created_at FROM transactions WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t := new(model.Transaction)
		if err := rows.Scan(&t.Ref, &t.UserID, &t.PlanID, &t.PlanName, &t.Amount, &t.Status, &t.PaymentMethod, &t.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *transactionRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM transactions WHERE status='completed' AND created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}

	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}

	return sum, nil
}
