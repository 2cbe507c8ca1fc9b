package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type recordingPublisher struct {
	mu      sync.Mutex
	created []core.Transaction
	deleted []int64
	err     error
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, t core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, t)
	return p.err
}

func (p *recordingPublisher) PublishTransactionDeleted(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewService(repo, opts)
}

func add(t *testing.T, svc *Service, desc string, amount float64, typ core.TransactionType, category string, date core.Date) int64 {
	t.Helper()
	id, err := svc.AddTransaction(context.Background(), core.NewTransaction{
		Description: desc,
		Amount:      amount,
		Type:        typ,
		Category:    category,
		Date:        date,
	})
	require.NoError(t, err)
	return id
}

func TestAddTransaction_DefaultsDateToToday(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	id := add(t, svc, "Coffee", 3.5, core.Expense, "Food", core.Date{})
	assert.Positive(t, id)

	txs, err := svc.ListTransactions(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, core.Today().String(), txs[0].Date.String())
}

func TestAddTransaction_AcceptsUnseededCategoryByDefault(t *testing.T) {
	svc := newTestService(t, Options{})
	add(t, svc, "Garden", 40, core.Expense, "Gardening", core.NewDate(2024, 4, 1))

	cats, err := svc.GetCategories(context.Background(), core.Expense)
	require.NoError(t, err)
	assert.NotContains(t, cats, "Gardening")
}

func TestAddTransaction_StrictCategories(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{StrictCategories: true})

	_, err := svc.AddTransaction(ctx, core.NewTransaction{
		Description: "Garden",
		Amount:      40,
		Type:        core.Expense,
		Category:    "Gardening",
		Date:        core.NewDate(2024, 4, 1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	// Food exists only as an expense category.
	_, err = svc.AddTransaction(ctx, core.NewTransaction{
		Description: "Refund",
		Amount:      5,
		Type:        core.Income,
		Category:    "Food",
		Date:        core.NewDate(2024, 4, 1),
	})
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	add(t, svc, "Lunch", 12, core.Expense, "Food", core.NewDate(2024, 4, 1))

	txs, err := svc.ListTransactions(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	b, err := svc.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Balance{}, b)

	d := core.NewDate(2024, 1, 10)
	add(t, svc, "Salary", 1000, core.Income, "Salary", d)
	add(t, svc, "Rent", 400, core.Expense, "Bills", d)
	add(t, svc, "Lunch", 25.5, core.Expense, "Food", d)

	b, err = svc.GetBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1000, b.Income, 1e-9)
	assert.InDelta(t, 425.5, b.Expenses, 1e-9)
	assert.InDelta(t, 574.5, b.Balance, 1e-9)
	assert.InDelta(t, b.Income-b.Expenses, b.Balance, 1e-9)
}

func TestDeleteTransaction_UpdatesAggregates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	d := core.NewDate(2024, 1, 10)

	add(t, svc, "Lunch", 30, core.Expense, "Food", d)
	id := add(t, svc, "Power", 10, core.Expense, "Bills", d)

	deleted, err := svc.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	b, err := svc.GetBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 30, b.Expenses, 1e-9)

	breakdown, err := svc.GetExpenseBreakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.CategoryAmount{{Category: "Food", Amount: 30}}, breakdown)
}

func TestListTransactions_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	for day := 1; day <= 5; day++ {
		add(t, svc, "Snack", float64(day), core.Expense, "Food", core.NewDate(2024, 6, day))
	}
	add(t, svc, "Gift", 50, core.Income, "Gift", core.NewDate(2024, 6, 3))

	txs, err := svc.ListTransactions(ctx, ListFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i := 1; i < len(txs); i++ {
		assert.False(t, txs[i].Date.After(txs[i-1].Date.Time), "dates must be non-increasing")
	}

	expenses, err := svc.ListTransactions(ctx, ListFilter{Type: core.Expense})
	require.NoError(t, err)
	assert.Len(t, expenses, 5)
	for _, tx := range expenses {
		assert.Equal(t, core.Expense, tx.Type)
	}
}

func TestPublisherNotifications(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, Options{Publisher: pub})

	id := add(t, svc, "Book", 15, core.Expense, "Education", core.NewDate(2024, 7, 1))
	_, err := svc.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	_, err = svc.DeleteTransaction(ctx, id)
	require.NoError(t, err)

	require.Len(t, pub.created, 1)
	assert.Equal(t, id, pub.created[0].ID)
	assert.Equal(t, "Book", pub.created[0].Description)
	assert.Equal(t, []int64{id}, pub.deleted, "missing rows are not announced")
}

func TestPublisherFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, Options{Publisher: pub})

	id := add(t, svc, "Book", 15, core.Expense, "Education", core.NewDate(2024, 7, 1))

	deleted, err := svc.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	for day := 1; day <= 12; day++ {
		add(t, svc, "Snack", 1, core.Expense, "Food", core.NewDate(2024, 8, day))
	}
	add(t, svc, "Pay", 100, core.Income, "Salary", core.NewDate(2024, 8, 1))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Len(t, d.Recent, RecentLimit)
	assert.Equal(t, "2024-08-12", d.Recent[0].Date.String())
	assert.InDelta(t, 88, d.Balance.Balance, 1e-9)
	assert.Equal(t, []core.CategoryAmount{{Category: "Food", Amount: 12}}, d.Breakdown)
	assert.Len(t, d.Categories.Income, 5)
	assert.Len(t, d.Categories.Expense, 8)
}

func TestDashboard_CancelledContext(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Dashboard(ctx)
	assert.Error(t, err)
}

type countingStore struct {
	*storage.SQLiteRepository
	mu     sync.Mutex
	lookup int
}

func (c *countingStore) CategoryNames(ctx context.Context, t core.TransactionType) ([]string, error) {
	c.mu.Lock()
	c.lookup++
	c.mu.Unlock()
	return c.SQLiteRepository.CategoryNames(ctx, t)
}

func (c *countingStore) CategoryExists(ctx context.Context, name string, t core.TransactionType) (bool, error) {
	c.mu.Lock()
	c.lookup++
	c.mu.Unlock()
	return c.SQLiteRepository.CategoryExists(ctx, name, t)
}

func TestCategoryCache(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store := &countingStore{SQLiteRepository: repo}
	svc := NewService(store, Options{StrictCategories: true, CategoryCacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		names, err := svc.GetCategories(ctx, core.Expense)
		require.NoError(t, err)
		assert.Contains(t, names, "Food")
		add(t, svc, "Lunch", 9, core.Expense, "Food", core.NewDate(2024, 1, 2))
	}
	assert.Equal(t, 2, store.lookup, "one names lookup and one existence lookup")

	_, err = svc.AddTransaction(ctx, core.NewTransaction{Description: "x", Amount: 1, Type: core.Income, Category: "Food"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestPublishedTransactionMatchesStoredRow(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	pub := &recordingPublisher{}
	svc := NewService(repo, Options{Publisher: pub})
	id := add(t, svc, "  Rent ", 800, core.Expense, "Housing", core.NewDate(2024, 3, 1))

	stored, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	require.Len(t, pub.created, 1)
	assert.Equal(t, stored, pub.created[0])
	assert.False(t, pub.created[0].CreatedAt.IsZero())
}
