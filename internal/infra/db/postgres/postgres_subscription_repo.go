package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_id, payment_status, duration_days, created_at, expires_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
);`

	_, err := execSQL(ctx, r.pool, tx, q, sub.ID, sub.UserID, sub.PlanID, sub.PaymentStatus, sub.DurationDays, sub.CreatedAt, sub.ExpiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID int64) (*model.Subscription, error) {
	const q = `SELECT id, user_id, plan_id, payment_status, duration_days, created_at, expires_at FROM subscriptions WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.PaymentStatus, &s.DurationDays, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}

	return s, nil
}

func (r *subscriptionRepo) CountByPlan(ctx context.Context, tx repository.Tx) (map[int64]int, error) {
	const q = `SELECT plan_id, COUNT(*) FROM subscriptions GROUP BY plan_id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var planID int64
		var n int
		if err := rows.Scan(&planID, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[planID] = n
	}
	return out, nil
}
