package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodOther    PaymentMethod = "other"
)

// ParsePaymentMethod accepts the method name in any case. An empty value means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return PaymentMethodCash, nil
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodOther:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

// Transaction is a single recorded expense. Category holds the category's display
// name as it was when the transaction was recorded and is not rewritten when the
// category is renamed or deleted.
type Transaction struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	OccurredOn    time.Time       `json:"occurredOn"`
	Description   string          `json:"description,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	IsRecurring   bool            `json:"isRecurring"`
	IsProjected   bool            `json:"isProjected,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CategoryKey returns the normalized form of the frozen category label.
func (t *Transaction) CategoryKey() string {
	return NormalizeCategoryName(t.Category)
}

type TransactionFilters struct {
	Range    *DateRange
	Category string
	Limit    int
	Offset   int
}

const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
)

// TransactionUpdate carries the fields to change; nil fields are left untouched.
type TransactionUpdate struct {
	Amount        *decimal.Decimal
	Category      *string
	OccurredOn    *time.Time
	Description   *string
	Tags          *[]string
	PaymentMethod *PaymentMethod
	IsRecurring   *bool
}

type TransactionStats struct {
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CategoryCount int             `json:"categoryCount"`
	BudgetCount   int             `json:"budgetCount"`
	FirstDate     *time.Time      `json:"firstDate,omitempty"`
	LastDate      *time.Time      `json:"lastDate,omitempty"`
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	// List returns matching transactions newest first.
	List(ctx context.Context, filters *TransactionFilters) ([]*Transaction, error)
	Search(ctx context.Context, keyword string, limit int) ([]*Transaction, error)
	Update(ctx context.Context, tx *Transaction) (*Transaction, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*TransactionStats, error)
}
