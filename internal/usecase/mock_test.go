//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- In-memory TransactionRepository ----

type MockTransactionRepo struct {
	mu    sync.Mutex
	byRef map[string]*model.Transaction

	SaveFunc                  func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
	FindByRefFunc             func(ctx context.Context, tx repository.Tx, ref string) (*model.Transaction, error)
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, ref string, status model.TransactionStatus) (bool, error)
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{byRef: make(map[string]*model.Transaction)}
}

func (m *MockTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byRef[t.Ref] = &cp
	return nil
}

func (m *MockTransactionRepo) FindByRef(ctx context.Context, tx repository.Tx, ref string) (*model.Transaction, error) {
	if m.FindByRefFunc != nil {
		return m.FindByRefFunc(ctx, tx, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byRef[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, ref string, status model.TransactionStatus) (bool, error) {
	if m.UpdateStatusIfPendingFunc != nil {
		return m.UpdateStatusIfPendingFunc(ctx, tx, ref, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byRef[ref]
	if !ok {
		return false, domain.ErrOperationFailed
	}
	if t.Status != model.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	return true, nil
}

func (m *MockTransactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, t := range m.byRef {
		if t.Status == model.TransactionStatusPending && t.CreatedAt.Before(olderThan) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTransactionRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, t := range m.byRef {
		if t.Status == model.TransactionStatusCompleted {
			sum += t.Amount
		}
	}
	return sum, nil
}

// Get returns the stored transaction for assertions.
func (m *MockTransactionRepo) Get(ref string) *model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byRef[ref]
}

// ---- In-memory PlanRepository ----

type MockPlanRepo struct {
	mu    sync.Mutex
	plans map[int64]*model.Plan

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id int64) (*model.Plan, error)
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo(plans ...*model.Plan) *MockPlanRepo {
	m := &MockPlanRepo{plans: make(map[int64]*model.Plan)}
	for _, p := range plans {
		cp := *p
		m.plans[p.ID] = &cp
	}
	return m
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Plan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- In-memory SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	Subs []*model.Subscription

	SaveFunc func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.Subs = append(m.Subs, &cp)
	return nil
}

func (m *MockSubscriptionRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID int64) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Subscription
	for _, s := range m.Subs {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockSubscriptionRepo) CountByPlan(ctx context.Context, tx repository.Tx) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]int)
	for _, s := range m.Subs {
		out[s.PlanID]++
	}
	return out, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx provides a way to control transaction behavior during tests.
// By default, it runs the function immediately without a real transaction.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}
