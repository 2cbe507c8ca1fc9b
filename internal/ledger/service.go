// Package ledger exposes the domain operations of the tracker on top of the
// SQLite store: recording and removing transactions, and the read-side
// aggregates (balance, category listing, expense breakdown).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 10

// ErrUnknownCategory is returned in strict mode when the category is not
// part of the seeded vocabulary for the transaction's type.
var ErrUnknownCategory = errors.New("unknown category")

// Store is the persistence surface the service needs.
type Store interface {
	InsertTransaction(ctx context.Context, t core.NewTransaction) (int64, error)
	ListTransactions(ctx context.Context, opts storage.ListOptions) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	SumByType(ctx context.Context) (income, expenses float64, err error)
	ExpenseBreakdown(ctx context.Context) ([]core.CategoryAmount, error)
	CategoryNames(ctx context.Context, t core.TransactionType) ([]string, error)
	AllCategories(ctx context.Context) (core.CategoriesByType, error)
	CategoryExists(ctx context.Context, name string, t core.TransactionType) (bool, error)
}

// EventPublisher receives notifications after successful writes.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, t core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, id int64) error
}

// Options tunes optional service behavior.
type Options struct {
	// StrictCategories rejects categories outside the seeded vocabulary.
	StrictCategories bool
	// Publisher is notified after adds and deletes. Nil disables events.
	Publisher EventPublisher
	// CategoryCacheTTL keeps category lookups in memory for this long.
	// Categories are only written at startup. Zero disables the cache.
	CategoryCacheTTL time.Duration
}

// ListFilter narrows ListTransactions. Zero values mean no filter.
type ListFilter struct {
	Type  core.TransactionType
	Limit int
}

// Dashboard is the read-only composition rendered on the index page.
type Dashboard struct {
	Balance    core.Balance
	Recent     []core.Transaction
	Breakdown  []core.CategoryAmount
	Categories core.CategoriesByType
}

type Service struct {
	store     Store
	publisher EventPublisher
	strict    bool

	// nil when category caching is off
	names  *cache.LRU[[]string]
	all    *cache.LRU[core.CategoriesByType]
	exists *cache.LRU[bool]
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:     store,
		publisher: opts.Publisher,
		strict:    opts.StrictCategories,
	}
	if opts.CategoryCacheTTL > 0 {
		s.names = cache.NewLRU[[]string](2, opts.CategoryCacheTTL)
		s.all = cache.NewLRU[core.CategoriesByType](1, opts.CategoryCacheTTL)
		s.exists = cache.NewLRU[bool](256, opts.CategoryCacheTTL)
	}
	return s
}

// AddTransaction records t and returns its id. A zero date defaults to
// today. Type validity is left to the store constraint.
func (s *Service) AddTransaction(ctx context.Context, t core.NewTransaction) (int64, error) {
	t = t.WithDefaults()

	if s.strict {
		ok, err := s.categoryExists(ctx, t.Category, t.Type)
		if err != nil {
			return 0, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return 0, fmt.Errorf("%w: %q is not a %s category", ErrUnknownCategory, t.Category, t.Type)
		}
	}

	id, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	if s.publisher != nil {
		s.publishCreated(ctx, id, t)
	}

	return id, nil
}

// publishCreated announces the stored row, so the event carries the
// store-assigned created_at. If the read-back fails the submitted fields are
// sent without it.
func (s *Service) publishCreated(ctx context.Context, id int64, t core.NewTransaction) {
	created, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read back created transaction", "id", id, "error", err)
		created = core.Transaction{
			ID:          id,
			Description: t.Description,
			Amount:      t.Amount,
			Type:        t.Type,
			Category:    t.Category,
			Date:        t.Date,
		}
	}
	if err := s.publisher.PublishTransactionCreated(ctx, created); err != nil {
		// The row is committed; the event is best effort.
		slog.ErrorContext(ctx, "Failed to publish transaction created event", "id", id, "error", err)
	}
}

// ListTransactions returns transactions newest date first.
func (s *Service) ListTransactions(ctx context.Context, f ListFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, storage.ListOptions{Type: f.Type, Limit: f.Limit})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes a transaction and reports whether it existed.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}

	if deleted && s.publisher != nil {
		if err := s.publisher.PublishTransactionDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction deleted event", "id", id, "error", err)
		}
	}

	return deleted, nil
}

// GetBalance recomputes the totals over every stored transaction.
func (s *Service) GetBalance(ctx context.Context) (core.Balance, error) {
	income, expenses, err := s.store.SumByType(ctx)
	if err != nil {
		return core.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return core.NewBalance(income, expenses), nil
}

// GetCategories returns the alphabetical names for one type.
func (s *Service) GetCategories(ctx context.Context, t core.TransactionType) ([]string, error) {
	load := func() ([]string, error) { return s.store.CategoryNames(ctx, t) }
	var (
		names []string
		err   error
	)
	if s.names != nil {
		names, err = s.names.GetOrLoad(string(t), load)
	} else {
		names, err = load()
	}
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return names, nil
}

// GetAllCategories returns the names for both types.
func (s *Service) GetAllCategories(ctx context.Context) (core.CategoriesByType, error) {
	load := func() (core.CategoriesByType, error) { return s.store.AllCategories(ctx) }
	var (
		all core.CategoriesByType
		err error
	)
	if s.all != nil {
		all, err = s.all.GetOrLoad("all", load)
	} else {
		all, err = load()
	}
	if err != nil {
		return core.CategoriesByType{}, fmt.Errorf("get categories: %w", err)
	}
	return all, nil
}

func (s *Service) categoryExists(ctx context.Context, name string, t core.TransactionType) (bool, error) {
	load := func() (bool, error) { return s.store.CategoryExists(ctx, name, t) }
	if s.exists == nil {
		return load()
	}
	return s.exists.GetOrLoad(string(t)+"/"+name, load)
}

// GetExpenseBreakdown sums expenses per category, largest first.
func (s *Service) GetExpenseBreakdown(ctx context.Context) ([]core.CategoryAmount, error) {
	breakdown, err := s.store.ExpenseBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("get expense breakdown: %w", err)
	}
	return breakdown, nil
}

// Dashboard gathers everything the index page shows. The reads run
// concurrently and the first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := s.GetBalance(gctx)
		d.Balance = b
		return err
	})
	g.Go(func() error {
		recent, err := s.ListTransactions(gctx, ListFilter{Limit: RecentLimit})
		d.Recent = recent
		return err
	})
	g.Go(func() error {
		breakdown, err := s.GetExpenseBreakdown(gctx)
		d.Breakdown = breakdown
		return err
	})
	g.Go(func() error {
		cats, err := s.GetAllCategories(gctx)
		d.Categories = cats
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}
