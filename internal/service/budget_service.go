package service

import (
	"context"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget business logic
type BudgetService struct {
	budgetRepo       domain.BudgetRepository
	categoryRepo     domain.CategoryRepository
	defaultThreshold decimal.Decimal
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:       budgetRepo,
		categoryRepo:     categoryRepo,
		defaultThreshold: domain.DefaultAlertThreshold,
	}
}

// WithDefaultThreshold overrides the threshold applied when none is given
func (s *BudgetService) WithDefaultThreshold(threshold decimal.Decimal) *BudgetService {
	if domain.ValidThreshold(threshold) {
		s.defaultThreshold = threshold
	}
	return s
}

// SetBudgetInput holds the input for setting a budget. An empty Category sets the overall budget.
type SetBudgetInput struct {
	Category       string
	Amount         decimal.Decimal
	Cadence        string
	AlertThreshold *decimal.Decimal
}

// SetBudget creates the budget for a scope and cadence, replacing any existing one
func (s *BudgetService) SetBudget(ctx context.Context, input SetBudgetInput) (*domain.Budget, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	cadence, err := domain.ParseBudgetCadence(input.Cadence)
	if err != nil {
		return nil, err
	}

	threshold := s.defaultThreshold
	if input.AlertThreshold != nil {
		if !domain.ValidThreshold(*input.AlertThreshold) {
			return nil, domain.ErrInvalidThreshold
		}
		threshold = *input.AlertThreshold
	}

	var categoryName string
	if domain.NormalizeCategoryName(input.Category) != "" {
		category, err := s.categoryRepo.GetByName(ctx, input.Category)
		if err != nil {
			return nil, err
		}
		categoryName = category.Name
	}

	budget, err := s.budgetRepo.Upsert(ctx, &domain.Budget{
		Category:       categoryName,
		Amount:         input.Amount,
		Cadence:        cadence,
		AlertThreshold: threshold,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("scope", budget.ScopeLabel()).
		Str("cadence", string(budget.Cadence)).
		Str("amount", budget.Amount.StringFixed(2)).
		Msg("Budget set")

	return budget, nil
}

// GetBudgets lists budgets, overall first then by category
func (s *BudgetService) GetBudgets(ctx context.Context) ([]*domain.Budget, error) {
	budgets, err := s.budgetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortBudgets(budgets)
	return budgets, nil
}

// DeleteBudget removes the budget for a scope and cadence. An empty category
// addresses the overall budget; the category need not exist any more.
func (s *BudgetService) DeleteBudget(ctx context.Context, category, cadence string) error {
	c, err := domain.ParseBudgetCadence(cadence)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(ctx, domain.NormalizeCategoryName(category), c); err != nil {
		return err
	}

	log.Info().Str("category", category).Str("cadence", string(c)).Msg("Budget deleted")
	return nil
}
