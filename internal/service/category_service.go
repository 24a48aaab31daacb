package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
	}
}

// CategoryInput holds the fields for creating or updating a category
type CategoryInput struct {
	Name          string
	Description   string
	Color         string
	DefaultBudget *decimal.Decimal
}

// CreateCategory creates a new category with a unique normalized name
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, err
	}

	log.Info().Str("category", created.Name).Msg("Category created")
	return created, nil
}

// GetCategories returns all categories ordered by name
func (s *CategoryService) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory looks up a category by name, case-insensitively
func (s *CategoryService) GetCategory(ctx context.Context, name string) (*domain.Category, error) {
	return s.categoryRepo.GetByName(ctx, name)
}

// UpdateCategory replaces a category's fields. Renaming does not touch the
// labels already recorded on transactions.
func (s *CategoryService) UpdateCategory(ctx context.Context, name string, input CategoryInput) (*domain.Category, error) {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		input.Name = existing.Name
	}
	category, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}
	category.CreatedAt = existing.CreatedAt

	if category.Key() != existing.Key() {
		if _, err := s.categoryRepo.GetByName(ctx, category.Name); err == nil {
			return nil, domain.ErrCategoryAlreadyExists
		} else if !errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, err
		}
	}

	updated, err := s.categoryRepo.Update(ctx, existing.Key(), category)
	if err != nil {
		return nil, err
	}

	log.Info().Str("category", updated.Name).Str("previous", existing.Name).Msg("Category updated")
	return updated, nil
}

// DeleteCategory removes a category. Transactions keep their label unless
// reassignTo names another existing category, in which case they are relabelled.
func (s *CategoryService) DeleteCategory(ctx context.Context, name, reassignTo string) (int64, error) {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}

	var targetName string
	if strings.TrimSpace(reassignTo) != "" {
		target, err := s.categoryRepo.GetByName(ctx, reassignTo)
		if err != nil {
			return 0, err
		}
		if target.Key() == existing.Key() {
			return 0, fmt.Errorf("%w: cannot reassign a category to itself", domain.ErrInvalidInput)
		}
		targetName = target.Name
	}

	moved, err := s.categoryRepo.Delete(ctx, existing.Name, targetName)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("category", existing.Name).
		Int64("reassigned", moved).
		Msg("Category deleted")
	return moved, nil
}

func validateCategoryInput(input CategoryInput) (*domain.Category, error) {
	name := domain.CleanCategoryName(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	description, err := cleanDescription(input.Description)
	if err != nil {
		return nil, err
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	if !domain.ValidColor(color) {
		return nil, domain.ErrInvalidColor
	}

	if input.DefaultBudget != nil && !input.DefaultBudget.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	return &domain.Category{
		Name:          name,
		Description:   description,
		Color:         strings.ToLower(color),
		DefaultBudget: input.DefaultBudget,
	}, nil
}
