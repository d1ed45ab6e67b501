package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金额以 JSON 数字输出，而不是字符串
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Value       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"value"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Category    string          `gorm:"size:32;index;not null" json:"category"`
	Subcategory string          `gorm:"size:64;not null" json:"subcategory"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionFilter bounds are inclusive; nil means unbounded.
type TransactionFilter struct {
	Category    string
	Subcategory string
	Start       *time.Time
	End         *time.Time
}

type SummaryFilter struct {
	Start *time.Time
	End   *time.Time
}

// GroupTotal is one (category, subcategory) partition produced by the store.
type GroupTotal struct {
	Category    string
	Subcategory string
	TotalAmount decimal.Decimal
	Count       int64
}

type SubcategorySummary struct {
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

type CategorySummary struct {
	Category      string               `json:"category"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Subcategories []SubcategorySummary `json:"subcategories"`
}

// TransactionRepository is the transaction store. Get/Delete return ErrNotFound
// for an unknown id. List orders by date descending.
type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	Save(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f TransactionFilter) ([]Transaction, error)
	GroupTotals(ctx context.Context, f SummaryFilter) ([]GroupTotal, error)
}
