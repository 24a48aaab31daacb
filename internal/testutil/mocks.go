package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// MockLedgerStore is an in-memory implementation of domain.LedgerStore and its repositories
type MockLedgerStore struct {
	mu sync.RWMutex

	TxByID        map[int64]*domain.Transaction
	CategoryByKey map[string]*domain.Category
	BudgetByKey   map[string]*domain.Budget
	NextID        int64

	// Hooks let tests inject failures
	ViewFn   func(fn func(domain.LedgerReader) error) error
	CreateFn func(tx *domain.Transaction) (*domain.Transaction, error)
	StatsFn  func() (*domain.TransactionStats, error)

	DeleteCategoryFn func(name string) error

	// Views counts how many snapshots were opened
	Views int
}

// NewMockLedgerStore creates an empty store
func NewMockLedgerStore() *MockLedgerStore {
	return &MockLedgerStore{
		TxByID:        make(map[int64]*domain.Transaction),
		CategoryByKey: make(map[string]*domain.Category),
		BudgetByKey:   make(map[string]*domain.Budget),
		NextID:        1,
	}
}

// NewSeededMockLedgerStore creates a store holding the default categories
func NewSeededMockLedgerStore() *MockLedgerStore {
	m := NewMockLedgerStore()
	for _, c := range domain.DefaultCategories {
		m.AddCategory(&domain.Category{Name: c.Name, Description: c.Description, Color: c.Color})
	}
	return m
}

// AddTransaction stores tx as-is, assigning an ID (helper for tests)
func (m *MockLedgerStore) AddTransaction(tx *domain.Transaction) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = m.NextID
	m.NextID++
	if tx.PaymentMethod == "" {
		tx.PaymentMethod = domain.PaymentMethodCash
	}
	m.TxByID[tx.ID] = tx
	return tx
}

// AddExpense stores a plain expense (helper for tests)
func (m *MockLedgerStore) AddExpense(amount string, category string, date time.Time) *domain.Transaction {
	return m.AddTransaction(&domain.Transaction{
		Amount:     decimal.RequireFromString(amount),
		Category:   category,
		OccurredOn: date,
	})
}

// AddCategory stores a category (helper for tests)
func (m *MockLedgerStore) AddCategory(c *domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Color == "" {
		c.Color = domain.DefaultCategoryColor
	}
	m.CategoryByKey[c.Key()] = c
}

// AddBudget stores a budget (helper for tests)
func (m *MockLedgerStore) AddBudget(b *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.AlertThreshold.IsZero() {
		b.AlertThreshold = domain.DefaultAlertThreshold
	}
	m.BudgetByKey[budgetKey(b.ScopeKey(), b.Cadence)] = b
}

func budgetKey(scope string, cadence domain.BudgetCadence) string {
	return scope + "|" + string(cadence)
}

// View runs fn against the current contents under a read lock
func (m *MockLedgerStore) View(ctx context.Context, fn func(domain.LedgerReader) error) error {
	m.mu.Lock()
	m.Views++
	m.mu.Unlock()
	if m.ViewFn != nil {
		return m.ViewFn(fn)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(mockReader{m})
}

func (m *MockLedgerStore) Transactions() domain.TransactionRepository {
	return mockTransactionRepo{m}
}

func (m *MockLedgerStore) Categories() domain.CategoryRepository {
	return mockCategoryRepo{m}
}

func (m *MockLedgerStore) Budgets() domain.BudgetRepository {
	return mockBudgetRepo{m}
}

func (m *MockLedgerStore) Close() error { return nil }

// sortedTransactions returns stored transactions ordered by date then ID; callers hold the lock
func (m *MockLedgerStore) sortedTransactions() []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(m.TxByID))
	for _, tx := range m.TxByID {
		result = append(result, tx)
	}
	slices.SortFunc(result, func(a, b *domain.Transaction) int {
		if c := a.OccurredOn.Compare(b.OccurredOn); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return result
}

func copyTx(tx *domain.Transaction) *domain.Transaction {
	c := *tx
	c.Tags = slices.Clone(tx.Tags)
	return &c
}

type mockReader struct{ m *MockLedgerStore }

func (r mockReader) QueryTransactions(_ context.Context, dr domain.DateRange, categoryKey string) ([]*domain.Transaction, error) {
	key := domain.NormalizeCategoryName(categoryKey)
	result := make([]*domain.Transaction, 0)
	for _, tx := range r.m.sortedTransactions() {
		if !dr.Contains(tx.OccurredOn) {
			continue
		}
		if key != "" && tx.CategoryKey() != key {
			continue
		}
		result = append(result, copyTx(tx))
	}
	return result, nil
}

func (r mockReader) ListRecurringTransactions(_ context.Context, before time.Time) ([]*domain.Transaction, error) {
	result := make([]*domain.Transaction, 0)
	for _, tx := range r.m.sortedTransactions() {
		if tx.IsRecurring && tx.OccurredOn.Before(before) {
			result = append(result, copyTx(tx))
		}
	}
	return result, nil
}

func (r mockReader) ListCategories(context.Context) ([]*domain.Category, error) {
	return r.m.listCategories(), nil
}

func (r mockReader) ListBudgets(context.Context) ([]*domain.Budget, error) {
	return r.m.listBudgets(), nil
}

func (m *MockLedgerStore) listCategories() []*domain.Category {
	result := make([]*domain.Category, 0, len(m.CategoryByKey))
	for _, c := range m.CategoryByKey {
		cp := *c
		result = append(result, &cp)
	}
	slices.SortFunc(result, func(a, b *domain.Category) int { return strings.Compare(a.Key(), b.Key()) })
	return result
}

func (m *MockLedgerStore) listBudgets() []*domain.Budget {
	result := make([]*domain.Budget, 0, len(m.BudgetByKey))
	for _, b := range m.BudgetByKey {
		cp := *b
		result = append(result, &cp)
	}
	slices.SortFunc(result, func(a, b *domain.Budget) int {
		return strings.Compare(budgetKey(a.ScopeKey(), a.Cadence), budgetKey(b.ScopeKey(), b.Cadence))
	})
	return result
}

type mockTransactionRepo struct{ m *MockLedgerStore }

func (r mockTransactionRepo) Create(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if r.m.CreateFn != nil {
		return r.m.CreateFn(tx)
	}
	stored := copyTx(tx)
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.m.AddTransaction(stored)
	return copyTx(stored), nil
}

func (r mockTransactionRepo) GetByID(_ context.Context, id int64) (*domain.Transaction, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if tx, ok := r.m.TxByID[id]; ok {
		return copyTx(tx), nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (r mockTransactionRepo) List(_ context.Context, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	key := domain.NormalizeCategoryName(filters.Category)
	sorted := r.m.sortedTransactions()
	slices.Reverse(sorted)

	matched := make([]*domain.Transaction, 0)
	for _, tx := range sorted {
		if filters.Range != nil && !filters.Range.Contains(tx.OccurredOn) {
			continue
		}
		if key != "" && tx.CategoryKey() != key {
			continue
		}
		matched = append(matched, copyTx(tx))
	}
	return page(matched, filters.Offset, filters.Limit), nil
}

func (r mockTransactionRepo) Search(_ context.Context, keyword string, limit int) ([]*domain.Transaction, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	needle := strings.ToLower(keyword)
	sorted := r.m.sortedTransactions()
	slices.Reverse(sorted)

	matched := make([]*domain.Transaction, 0)
	for _, tx := range sorted {
		if strings.Contains(strings.ToLower(tx.Description), needle) {
			matched = append(matched, copyTx(tx))
		}
	}
	return page(matched, 0, limit), nil
}

func page(txs []*domain.Transaction, offset, limit int) []*domain.Transaction {
	if offset >= len(txs) {
		return []*domain.Transaction{}
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}

func (r mockTransactionRepo) Update(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.TxByID[tx.ID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	stored := copyTx(tx)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	r.m.TxByID[tx.ID] = stored
	return copyTx(stored), nil
}

func (r mockTransactionRepo) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.TxByID[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(r.m.TxByID, id)
	return nil
}


func (r mockTransactionRepo) Stats(context.Context) (*domain.TransactionStats, error) {
	if r.m.StatsFn != nil {
		return r.m.StatsFn()
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	stats := &domain.TransactionStats{
		TotalAmount:   decimal.Zero,
		CategoryCount: len(r.m.CategoryByKey),
		BudgetCount:   len(r.m.BudgetByKey),
	}
	for _, tx := range r.m.sortedTransactions() {
		stats.Count++
		stats.TotalAmount = stats.TotalAmount.Add(tx.Amount)
		date := tx.OccurredOn
		if stats.FirstDate == nil {
			stats.FirstDate = &date
		}
		stats.LastDate = &date
	}
	return stats, nil
}

type mockCategoryRepo struct{ m *MockLedgerStore }

func (r mockCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.CategoryByKey[c.Key()]; ok {
		return nil, domain.ErrCategoryAlreadyExists
	}
	stored := *c
	stored.CreatedAt = time.Now().UTC()
	r.m.CategoryByKey[c.Key()] = &stored
	result := stored
	return &result, nil
}

func (r mockCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if c, ok := r.m.CategoryByKey[domain.NormalizeCategoryName(name)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r mockCategoryRepo) List(context.Context) ([]*domain.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.m.listCategories(), nil
}

func (r mockCategoryRepo) Update(_ context.Context, key string, c *domain.Category) (*domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	oldKey := domain.NormalizeCategoryName(key)
	existing, ok := r.m.CategoryByKey[oldKey]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if c.Key() != oldKey {
		if _, taken := r.m.CategoryByKey[c.Key()]; taken {
			return nil, domain.ErrCategoryAlreadyExists
		}
	}
	stored := *c
	stored.CreatedAt = existing.CreatedAt
	delete(r.m.CategoryByKey, oldKey)
	r.m.CategoryByKey[stored.Key()] = &stored
	result := stored
	return &result, nil
}

// Delete applies the relabel and the delete together: a hook or lookup failure changes nothing.
func (r mockCategoryRepo) Delete(_ context.Context, name, reassignTo string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.DeleteCategoryFn != nil {
		if err := r.m.DeleteCategoryFn(name); err != nil {
			return 0, err
		}
	}
	key := domain.NormalizeCategoryName(name)
	if _, ok := r.m.CategoryByKey[key]; !ok {
		return 0, domain.ErrCategoryNotFound
	}

	var moved int64
	if domain.NormalizeCategoryName(reassignTo) != "" {
		for _, tx := range r.m.TxByID {
			if tx.CategoryKey() == key {
				tx.Category = reassignTo
				moved++
			}
		}
	}
	delete(r.m.CategoryByKey, key)
	return moved, nil
}

type mockBudgetRepo struct{ m *MockLedgerStore }

func (r mockBudgetRepo) Upsert(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := budgetKey(b.ScopeKey(), b.Cadence)
	stored := *b
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	if existing, ok := r.m.BudgetByKey[key]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.m.BudgetByKey[key] = &stored
	result := stored
	return &result, nil
}

func (r mockBudgetRepo) List(context.Context) ([]*domain.Budget, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.m.listBudgets(), nil
}

func (r mockBudgetRepo) Delete(_ context.Context, categoryKey string, cadence domain.BudgetCadence) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := budgetKey(domain.NormalizeCategoryName(categoryKey), cadence)
	if _, ok := r.m.BudgetByKey[key]; !ok {
		return domain.ErrBudgetNotFound
	}
	delete(r.m.BudgetByKey, key)
	return nil
}
