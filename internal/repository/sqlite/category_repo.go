package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using SQLite
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category; the normalized name must be unused
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name_key, name, description, color, default_budget, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name_key) DO NOTHING`,
		c.Key(), c.Name, c.Description, c.Color, nullDecimal(c), formatTimestamp(time.Now()),
	)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, domain.ErrCategoryAlreadyExists); err != nil {
		return nil, err
	}
	return r.GetByName(ctx, c.Name)
}

// GetByName retrieves a category by case-insensitive name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name_key = ?`,
		domain.NormalizeCategoryName(name))
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return listCategories(ctx, r.db)
}

// Update replaces the category stored under key
func (r *CategoryRepository) Update(ctx context.Context, key string, c *domain.Category) (*domain.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name_key = ?, name = ?, description = ?, color = ?, default_budget = ?
		WHERE name_key = ?`,
		c.Key(), c.Name, c.Description, c.Color, nullDecimal(c), domain.NormalizeCategoryName(key),
	)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, domain.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return r.GetByName(ctx, c.Name)
}

// Delete removes a category, relabelling its transactions to reassignTo when set.
// Both statements commit together.
func (r *CategoryRepository) Delete(ctx context.Context, name, reassignTo string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin category delete: %w", err)
	}
	defer tx.Rollback()

	key := domain.NormalizeCategoryName(name)
	var moved int64
	if domain.NormalizeCategoryName(reassignTo) != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category = ?, category_key = ?, updated_at = ? WHERE category_key = ?`,
			reassignTo, domain.NormalizeCategoryName(reassignTo), formatTimestamp(time.Now()), key,
		)
		if err != nil {
			return 0, err
		}
		if moved, err = res.RowsAffected(); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name_key = ?`, key)
	if err != nil {
		return 0, err
	}
	if err := expectAffected(res, domain.ErrCategoryNotFound); err != nil {
		return 0, err
	}
	return moved, tx.Commit()
}

func nullDecimal(c *domain.Category) sql.NullString {
	if c.DefaultBudget == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.DefaultBudget.String(), Valid: true}
}
