package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/testutil"
	"github.com/shopspring/decimal"
)

func newTransactionService(store *testutil.MockLedgerStore) *TransactionService {
	svc := NewTransactionService(store.Transactions(), store.Categories())
	svc.now = func() time.Time { return time.Date(2024, 3, 14, 22, 15, 0, 0, time.UTC) }
	return svc
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12.50", "12.5"},
		{"$1,234.50", "1234.5"},
		{" 7 ", "7"},
		{"$ 3", "3"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q) returned error %v", tt.input, err)
		}
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"", "abc", "0", "-5", "$-1.00"} {
		if _, err := ParseAmount(bad); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestCreateTransaction_Success(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	svc := newTransactionService(store)

	tx, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		Amount:        decimal.RequireFromString("42.10"),
		Category:      "food  & DINING",
		Description:   "  Lunch with team ",
		Tags:          []string{"work", " ", "Work", "team"},
		PaymentMethod: "CARD",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tx.Category != "Food & Dining" {
		t.Errorf("Expected canonical category name, got %q", tx.Category)
	}
	if tx.Description != "Lunch with team" {
		t.Errorf("Expected trimmed description, got %q", tx.Description)
	}
	if strings.Join(tx.Tags, ",") != "work,team" {
		t.Errorf("Expected deduplicated tags, got %v", tx.Tags)
	}
	if tx.PaymentMethod != domain.PaymentMethodCard {
		t.Errorf("Expected card, got %s", tx.PaymentMethod)
	}
	if !tx.OccurredOn.Equal(date(2024, 3, 14)) {
		t.Errorf("Expected date to default to today, got %s", tx.OccurredOn)
	}
	if tx.ID == 0 {
		t.Error("Expected an assigned ID")
	}
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	svc := newTransactionService(store)

	tests := []struct {
		name  string
		input CreateTransactionInput
		want  error
	}{
		{"zero amount", CreateTransactionInput{Amount: decimal.Zero, Category: "Travel"}, domain.ErrInvalidAmount},
		{"negative amount", CreateTransactionInput{Amount: decimal.NewFromInt(-3), Category: "Travel"}, domain.ErrInvalidAmount},
		{"unknown category", CreateTransactionInput{Amount: decimal.NewFromInt(3), Category: "Yachts"}, domain.ErrCategoryNotFound},
		{"missing category", CreateTransactionInput{Amount: decimal.NewFromInt(3)}, domain.ErrNameRequired},
		{"bad payment method", CreateTransactionInput{Amount: decimal.NewFromInt(3), Category: "Travel", PaymentMethod: "crypto"}, domain.ErrInvalidPaymentMethod},
		{"long description", CreateTransactionInput{Amount: decimal.NewFromInt(3), Category: "Travel", Description: strings.Repeat("x", domain.MaxDescriptionLength+1)}, domain.ErrInvalidInput},
		{"long tag", CreateTransactionInput{Amount: decimal.NewFromInt(3), Category: "Travel", Tags: []string{strings.Repeat("t", domain.MaxTagLength+1)}}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(store.TxByID) != 0 {
		t.Errorf("Expected nothing stored, got %d transactions", len(store.TxByID))
	}
}

func TestCreateTransaction_RepositoryError(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	failure := errors.New("disk full")
	store.CreateFn = func(*domain.Transaction) (*domain.Transaction, error) { return nil, failure }

	_, err := newTransactionService(store).CreateTransaction(context.Background(), CreateTransactionInput{
		Amount: decimal.NewFromInt(1), Category: "Travel",
	})
	if !errors.Is(err, failure) {
		t.Errorf("Expected repository error, got %v", err)
	}
}

func TestListTransactions_AppliesDefaultsAndBounds(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	for i := 1; i <= 3; i++ {
		store.AddExpense("1", "Travel", date(2024, 1, i))
	}
	svc := newTransactionService(store)

	filters := &domain.TransactionFilters{Limit: 5000, Offset: -2, Category: " TRAVEL "}
	txs, err := svc.ListTransactions(context.Background(), filters)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if filters.Limit != domain.MaxTransactionPageLength || filters.Offset != 0 || filters.Category != "travel" {
		t.Errorf("Unexpected normalized filters %+v", filters)
	}
	if len(txs) != 3 || !txs[0].OccurredOn.Equal(date(2024, 1, 3)) {
		t.Errorf("Expected 3 transactions newest first, got %d", len(txs))
	}

	txs, err = svc.ListTransactions(context.Background(), nil)
	if err != nil || len(txs) != 3 {
		t.Errorf("Expected defaults to list everything, got %d (%v)", len(txs), err)
	}
}

func TestSearchTransactions(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	store.AddTransaction(&domain.Transaction{Amount: decimal.NewFromInt(5), Category: "Food & Dining", OccurredOn: date(2024, 1, 1), Description: "Morning Coffee"})
	store.AddTransaction(&domain.Transaction{Amount: decimal.NewFromInt(9), Category: "Travel", OccurredOn: date(2024, 1, 2), Description: "Train"})
	svc := newTransactionService(store)

	found, err := svc.SearchTransactions(context.Background(), "coffee", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(found) != 1 || found[0].Description != "Morning Coffee" {
		t.Errorf("Expected coffee transaction, got %v", found)
	}

	if _, err := svc.SearchTransactions(context.Background(), "   ", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank keyword, got %v", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	existing := store.AddExpense("10", "Travel", date(2024, 1, 5))
	svc := newTransactionService(store)

	amount := decimal.NewFromInt(25)
	category := "health"
	recurring := true
	updated, err := svc.UpdateTransaction(context.Background(), existing.ID, domain.TransactionUpdate{
		Amount:      &amount,
		Category:    &category,
		IsRecurring: &recurring,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.Amount.Equal(amount) || updated.Category != "Health" || !updated.IsRecurring {
		t.Errorf("Unexpected update result %+v", updated)
	}
	if !updated.OccurredOn.Equal(date(2024, 1, 5)) {
		t.Errorf("Expected date unchanged, got %s", updated.OccurredOn)
	}

	zero := decimal.Zero
	if _, err := svc.UpdateTransaction(context.Background(), existing.ID, domain.TransactionUpdate{Amount: &zero}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.UpdateTransaction(context.Background(), 999, domain.TransactionUpdate{}); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	existing := store.AddExpense("10", "Travel", date(2024, 1, 5))
	svc := newTransactionService(store)

	if err := svc.DeleteTransaction(context.Background(), existing.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), existing.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	store.AddExpense("10.25", "Travel", date(2024, 1, 5))
	store.AddExpense("4.75", "Travel", date(2024, 2, 5))

	stats, err := newTransactionService(store).Stats(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.Count != 2 || stats.TotalAmount.String() != "15" {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.CategoryCount != len(domain.DefaultCategories) {
		t.Errorf("Expected %d categories, got %d", len(domain.DefaultCategories), stats.CategoryCount)
	}
}
