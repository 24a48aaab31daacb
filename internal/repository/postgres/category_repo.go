package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a category; the normalized name must be unused
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	defaultBudget, err := optionalNumeric(c.DefaultBudget)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name_key, name, description, color, default_budget)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Key(), c.Name, c.Description, c.Color, defaultBudget,
	)
	created, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByName retrieves a category by case-insensitive name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name_key = $1`,
		domain.NormalizeCategoryName(name))
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return listCategories(ctx, r.pool)
}

// Update replaces the category stored under key
func (r *CategoryRepository) Update(ctx context.Context, key string, c *domain.Category) (*domain.Category, error) {
	defaultBudget, err := optionalNumeric(c.DefaultBudget)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name_key = $1, name = $2, description = $3, color = $4, default_budget = $5
		WHERE name_key = $6
		RETURNING `+categoryColumns,
		c.Key(), c.Name, c.Description, c.Color, defaultBudget, domain.NormalizeCategoryName(key),
	)
	updated, err := scanCategory(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrCategoryNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a category, relabelling its transactions to reassignTo when set.
// Both statements commit together.
func (r *CategoryRepository) Delete(ctx context.Context, name, reassignTo string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin category delete: %w", err)
	}
	defer tx.Rollback(ctx)

	key := domain.NormalizeCategoryName(name)
	var moved int64
	if domain.NormalizeCategoryName(reassignTo) != "" {
		tag, err := tx.Exec(ctx,
			`UPDATE transactions SET category = $1, category_key = $2, updated_at = now() WHERE category_key = $3`,
			reassignTo, domain.NormalizeCategoryName(reassignTo), key,
		)
		if err != nil {
			return 0, err
		}
		moved = tag.RowsAffected()
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE name_key = $1`, key)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, domain.ErrCategoryNotFound
	}
	return moved, tx.Commit(ctx)
}
