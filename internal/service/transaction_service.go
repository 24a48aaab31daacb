package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		now:             time.Now,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Amount        decimal.Decimal
	Category      string
	OccurredOn    *time.Time
	Description   string
	Tags          []string
	PaymentMethod string
	IsRecurring   bool
}

// ParseAmount accepts user-typed amounts such as "$1,234.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

// CreateTransaction validates and records a transaction. The category must exist;
// its current display name is frozen onto the transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	category, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	description, err := cleanDescription(input.Description)
	if err != nil {
		return nil, err
	}

	tags, err := cleanTags(input.Tags)
	if err != nil {
		return nil, err
	}

	occurredOn := util.DateOf(s.now())
	if input.OccurredOn != nil && !input.OccurredOn.IsZero() {
		occurredOn = util.DateOf(*input.OccurredOn)
	}

	created, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		Amount:        input.Amount,
		Category:      category.Name,
		OccurredOn:    occurredOn,
		Description:   description,
		Tags:          tags,
		PaymentMethod: method,
		IsRecurring:   input.IsRecurring,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("transaction_id", created.ID).
		Str("category", created.Category).
		Str("amount", created.Amount.StringFixed(2)).
		Msg("Transaction recorded")

	return created, nil
}

// GetTransaction retrieves a single transaction
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

// ListTransactions lists transactions newest first
func (s *TransactionService) ListTransactions(ctx context.Context, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Limit <= 0 {
		filters.Limit = domain.DefaultListLimit
	}
	if filters.Limit > domain.MaxTransactionPageLength {
		filters.Limit = domain.MaxTransactionPageLength
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.Category = domain.NormalizeCategoryName(filters.Category)
	return s.transactionRepo.List(ctx, filters)
}

// SearchTransactions finds transactions whose description contains keyword
func (s *TransactionService) SearchTransactions(ctx context.Context, keyword string, limit int) ([]*domain.Transaction, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: search keyword is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	return s.transactionRepo.Search(ctx, keyword, limit)
}

// UpdateTransaction applies the non-nil fields of update
func (s *TransactionService) UpdateTransaction(ctx context.Context, id int64, update domain.TransactionUpdate) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		tx.Amount = *update.Amount
	}
	if update.Category != nil {
		category, err := s.resolveCategory(ctx, *update.Category)
		if err != nil {
			return nil, err
		}
		tx.Category = category.Name
	}
	if update.OccurredOn != nil {
		if update.OccurredOn.IsZero() {
			return nil, domain.ErrInvalidDate
		}
		tx.OccurredOn = util.DateOf(*update.OccurredOn)
	}
	if update.Description != nil {
		description, err := cleanDescription(*update.Description)
		if err != nil {
			return nil, err
		}
		tx.Description = description
	}
	if update.Tags != nil {
		tags, err := cleanTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		tx.Tags = tags
	}
	if update.PaymentMethod != nil {
		method, err := domain.ParsePaymentMethod(string(*update.PaymentMethod))
		if err != nil {
			return nil, err
		}
		tx.PaymentMethod = method
	}
	if update.IsRecurring != nil {
		tx.IsRecurring = *update.IsRecurring
	}

	updated, err := s.transactionRepo.Update(ctx, tx)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("transaction_id", id).Msg("Transaction updated")
	return updated, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("transaction_id", id).Msg("Transaction deleted")
	return nil
}

// Stats returns ledger-wide statistics
func (s *TransactionService) Stats(ctx context.Context) (*domain.TransactionStats, error) {
	return s.transactionRepo.Stats(ctx)
}

func (s *TransactionService) resolveCategory(ctx context.Context, name string) (*domain.Category, error) {
	if domain.NormalizeCategoryName(name) == "" {
		return nil, domain.ErrNameRequired
	}
	category, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, domain.CleanCategoryName(name))
		}
		return nil, err
	}
	return category, nil
}

func cleanDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > domain.MaxDescriptionLength {
		return "", fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}
	return s, nil
}

// cleanTags trims tags, drops empty ones and removes duplicates while keeping order.
func cleanTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > domain.MaxTagLength {
			return nil, fmt.Errorf("%w: tag %q exceeds %d characters", domain.ErrInvalidInput, tag, domain.MaxTagLength)
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out, nil
}
