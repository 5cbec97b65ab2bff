package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
	"music-payment-service/internal/infra/metrics"
	"music-payment-service/internal/infra/vnpay"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentGateway is the slice of the gateway the payment flow needs. The
// concrete implementation lives in infra/vnpay.
type PaymentGateway interface {
	Name() string
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	VerifyCallback(raw vnpay.Params) (*vnpay.CallbackData, error)
}

// SettlementOutcome tells the transport layer how to acknowledge a callback.
type SettlementOutcome string

const (
	OutcomeCompleted SettlementOutcome = "completed"
	OutcomeFailed    SettlementOutcome = "failed"
	// OutcomeDuplicate means the transaction was already terminal when the
	// callback arrived. The delivery is acknowledged without touching state.
	OutcomeDuplicate SettlementOutcome = "duplicate"
)

// SettlementResult is the answer to one verified callback delivery.
type SettlementResult struct {
	Transaction *model.Transaction
	Outcome     SettlementOutcome
}

type PaymentUseCase interface {
	// CreatePaymentURL records a pending transaction and returns it together
	// with the signed redirect URL. The ledger row is committed before the URL
	// is handed out.
	CreatePaymentURL(ctx context.Context, userID, planID int64, clientIP string) (*model.Transaction, string, error)
	// Settle verifies an inbound gateway callback and finalizes the referenced
	// transaction exactly once.
	Settle(ctx context.Context, raw vnpay.Params) (*SettlementResult, error)
	// SumCompletedByPeriod totals settled revenue for stats.
	SumCompletedByPeriod(ctx context.Context, period string) (int64, error)
}

type paymentUC struct {
	transactions  repository.TransactionRepository
	subscriptions repository.SubscriptionRepository
	plans         repository.PlanRepository
	txm           repository.TransactionManager
	gateway       PaymentGateway
	log           *zerolog.Logger
}

func NewPaymentUseCase(
	transactions repository.TransactionRepository,
	subscriptions repository.SubscriptionRepository,
	plans repository.PlanRepository,
	txm repository.TransactionManager,
	gateway PaymentGateway,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		transactions:  transactions,
		subscriptions: subscriptions,
		plans:         plans,
		txm:           txm,
		gateway:       gateway,
		log:           logger,
	}
}

// newTxnRef builds a reference that is unique and sortable by creation time.
// The gateway echoes it back verbatim in callbacks.
func newTxnRef(createdAt time.Time) string {
	return createdAt.Format(vnpay.TimestampLayout) + "-" + ulid.Make().String()
}

func (u *paymentUC) CreatePaymentURL(ctx context.Context, userID, planID int64, clientIP string) (*model.Transaction, string, error) {
	if userID <= 0 || planID <= 0 {
		return nil, "", domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByID(ctx, nil, planID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	txn, err := model.NewTransaction(newTxnRef(now), userID, plan, u.gateway.Name())
	if err != nil {
		return nil, "", err
	}

	// The pending row must exist before the user can reach the gateway,
	// otherwise a fast callback would reference an unknown transaction.
	if err := u.transactions.Save(ctx, nil, txn); err != nil {
		return nil, "", err
	}

	payURL, err := u.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    txn.Ref,
		Amount:    txn.Amount,
		OrderInfo: fmt.Sprintf("Thanh toan goi %s - user %d", plan.Name, userID),
		ClientIP:  clientIP,
		CreatedAt: now,
	})
	if err != nil {
		return nil, "", err
	}

	metrics.IncPayment(string(model.TransactionStatusPending))
	u.log.Info().Str("txn_ref", txn.Ref).Int64("user_id", userID).Int64("plan_id", planID).
		Int64("amount", txn.Amount).Msg("payment initiated")
	return txn, payURL, nil
}

func (u *paymentUC) Settle(ctx context.Context, raw vnpay.Params) (*SettlementResult, error) {
	data, err := u.gateway.VerifyCallback(raw)
	if err != nil {
		metrics.IncCallback("invalid_signature")
		u.log.Warn().Err(err).Msg("callback rejected")
		return nil, err
	}

	txn, err := u.transactions.FindByRef(ctx, nil, data.TxnRef)
	if err != nil {
		metrics.IncCallback("unknown_ref")
		return nil, err
	}

	// Amount must match the frozen ledger value. A mismatch is a protocol
	// violation, not a failed payment: the row stays pending.
	if data.Amount != txn.Amount {
		metrics.IncCallback("amount_mismatch")
		u.log.Warn().Str("txn_ref", txn.Ref).Int64("expected", txn.Amount).
			Int64("got", data.Amount).Msg("callback amount mismatch")
		return nil, fmt.Errorf("amount mismatch for %s: %w", txn.Ref, domain.ErrInvalidArgument)
	}

	if txn.Status.IsTerminal() {
		metrics.IncCallback("duplicate")
		return &SettlementResult{Transaction: txn, Outcome: OutcomeDuplicate}, nil
	}

	if !data.Succeeded() {
		return u.settleFailed(ctx, txn, data.ResponseCode)
	}
	return u.settleCompleted(ctx, txn, data)
}

func (u *paymentUC) settleFailed(ctx context.Context, txn *model.Transaction, code string) (*SettlementResult, error) {
	updated, err := u.transactions.UpdateStatusIfPending(ctx, nil, txn.Ref, model.TransactionStatusFailed)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race against another delivery.
		metrics.IncCallback("duplicate")
		final, err := u.transactions.FindByRef(ctx, nil, txn.Ref)
		if err != nil {
			return nil, err
		}
		return &SettlementResult{Transaction: final, Outcome: OutcomeDuplicate}, nil
	}

	txn.Status = model.TransactionStatusFailed
	metrics.IncPayment(string(model.TransactionStatusFailed))
	metrics.IncCallback("failed")
	u.log.Info().Str("txn_ref", txn.Ref).Str("response_code", code).Msg("payment failed")
	return &SettlementResult{Transaction: txn, Outcome: OutcomeFailed}, nil
}

func (u *paymentUC) settleCompleted(ctx context.Context, txn *model.Transaction, data *vnpay.CallbackData) (*SettlementResult, error) {
	var sub *model.Subscription
	duplicate := false

	// Status flip and subscription insert commit or roll back together.
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.txm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		updated, err := u.transactions.UpdateStatusIfPending(ctx, tx, txn.Ref, model.TransactionStatusCompleted)
		if err != nil {
			return err
		}
		if !updated {
			duplicate = true
			return nil
		}

		// Duration comes from the plan as it is now; the charged amount stays
		// the frozen transaction snapshot.
		plan, err := u.plans.FindByID(ctx, tx, txn.PlanID)
		if err != nil {
			return err
		}
		sub, err = model.NewSubscription(uuid.NewString(), txn.UserID, plan)
		if err != nil {
			return err
		}
		return u.subscriptions.Save(ctx, tx, sub)
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		metrics.IncCallback("duplicate")
		final, err := u.transactions.FindByRef(ctx, nil, txn.Ref)
		if err != nil {
			return nil, err
		}
		return &SettlementResult{Transaction: final, Outcome: OutcomeDuplicate}, nil
	}

	txn.Status = model.TransactionStatusCompleted
	metrics.IncPayment(string(model.TransactionStatusCompleted))
	metrics.IncCallback("settled")
	metrics.AddPaymentRevenue(vnpay.CurrencyVND, txn.Amount)
	u.log.Info().Str("txn_ref", txn.Ref).Str("subscription_id", sub.ID).
		Str("bank_code", data.BankCode).Int64("amount", txn.Amount).Msg("payment settled")
	return &SettlementResult{Transaction: txn, Outcome: OutcomeCompleted}, nil
}

func (u *paymentUC) SumCompletedByPeriod(ctx context.Context, period string) (int64, error) {
	return u.transactions.SumCompletedByPeriod(ctx, nil, period)
}
