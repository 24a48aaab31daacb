package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCategoryColor = "#6366f1"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Category struct {
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Color         string           `json:"color"`
	DefaultBudget *decimal.Decimal `json:"defaultBudget,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Key is the unique, case-normalized identity of the category.
func (c *Category) Key() string {
	return NormalizeCategoryName(c.Name)
}

// NormalizeCategoryName lowercases the name and collapses inner whitespace so
// "Food  &  Dining" and "food & dining" resolve to the same category.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CleanCategoryName trims and collapses whitespace but keeps the caller's casing.
func CleanCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidColor reports whether s is a #rrggbb hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	// Update replaces the category stored under key, which may change its name.
	Update(ctx context.Context, key string, category *Category) (*Category, error)
	// Delete removes a category. When reassignTo is set, the category's
	// transactions are relabelled to it in the same transaction and the count
	// is returned; otherwise they keep their label.
	Delete(ctx context.Context, name, reassignTo string) (int64, error)
}

// DefaultCategories seeds a fresh ledger.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Description: "Restaurants, groceries, and food delivery", Color: "#ef4444"},
	{Name: "Transportation", Description: "Gas, public transit, rideshare, parking", Color: "#f97316"},
	{Name: "Housing", Description: "Rent, mortgage, utilities, maintenance", Color: "#eab308"},
	{Name: "Entertainment", Description: "Movies, games, subscriptions, hobbies", Color: "#22c55e"},
	{Name: "Shopping", Description: "Clothing, electronics, household items", Color: "#06b6d4"},
	{Name: "Health", Description: "Medical, pharmacy, fitness, insurance", Color: "#3b82f6"},
	{Name: "Personal", Description: "Personal care, gifts, donations", Color: "#8b5cf6"},
	{Name: "Education", Description: "Books, courses, tuition", Color: "#ec4899"},
	{Name: "Travel", Description: "Flights, hotels, vacation expenses", Color: "#14b8a6"},
	{Name: "Savings", Description: "Emergency fund, investments, retirement", Color: "#10b981"},
}
