package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	beginErr error
	txs      []*fakeTx
}

func (m *fakeTxManager) Begin(ctx context.Context) (Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	tx := &fakeTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *fakeTxManager) lastTx() *fakeTx {
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

type fakeTransactionRepo struct {
	created         []*domain.Transaction
	expenses        []domain.Transaction
	topups          []domain.Transaction
	deletedUsers    []string
	createErr       error
	listExpensesErr error
	listTopupsErr   error
	deleteErr       error
}

func (r *fakeTransactionRepo) CreateTx(ctx context.Context, tx Transaction, record *domain.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, record)
	return nil
}

func (r *fakeTransactionRepo) ListExpenses(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return r.expenses, r.listExpensesErr
}

func (r *fakeTransactionRepo) ListTopups(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return r.topups, r.listTopupsErr
}

func (r *fakeTransactionRepo) DeleteByUserTx(ctx context.Context, tx Transaction, userID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedUsers = append(r.deletedUsers, userID)
	return nil
}

type balanceIncrement struct {
	userID string
	delta  decimal.Decimal
}

type fakeProfileRepo struct {
	profiles     map[string]*domain.Profile
	created      []*domain.Profile
	increments   []balanceIncrement
	resetUsers   []string
	getErr       error
	createErr    error
	incrementErr error
	settingsErr  error
	autoAdd      []*domain.Profile
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.profiles == nil {
		r.profiles = make(map[string]*domain.Profile)
	}
	r.profiles[profile.ID] = profile
	r.created = append(r.created, profile)
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	profile, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (r *fakeProfileRepo) IncrementBalanceTx(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.increments = append(r.increments, balanceIncrement{userID: id, delta: delta})
	return nil
}

func (r *fakeProfileRepo) UpdateSettings(ctx context.Context, id string, monthlyPocketMoney decimal.Decimal, autoAdd bool, updatedAt time.Time) error {
	if r.settingsErr != nil {
		return r.settingsErr
	}
	if profile, ok := r.profiles[id]; ok {
		profile.MonthlyPocketMoney = monthlyPocketMoney
		profile.AutoAddEnabled = autoAdd
	}
	return nil
}

func (r *fakeProfileRepo) ResetBalanceTx(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error {
	r.resetUsers = append(r.resetUsers, id)
	return nil
}

func (r *fakeProfileRepo) ListAutoAddEnabled(ctx context.Context) ([]*domain.Profile, error) {
	return r.autoAdd, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, collection, userID string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, collection+":"+userID)
	return nil
}

type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}
