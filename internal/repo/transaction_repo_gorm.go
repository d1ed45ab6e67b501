package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finance-tracker/internal/domain"
)

type TransactionRepo struct{ db *gorm.DB }

func NewTransactionRepo(db *gorm.DB) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// Save 整条记录覆盖写
func (r *TransactionRepo) Save(ctx context.Context, t *domain.Transaction) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	q = dateRange(q, f.Start, f.End)

	out := []domain.Transaction{}
	if err := q.Order("date DESC").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type groupKey struct{ category, subcategory string }

// GroupTotals is the first aggregation stage: one row per (category, subcategory),
// ordered by key. Amounts are added with decimal in Go; SQL SUM on sqlite runs
// in floating point.
func (r *TransactionRepo) GroupTotals(ctx context.Context, f domain.SummaryFilter) ([]domain.GroupTotal, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("category, subcategory, value")
	q = dateRange(q, f.Start, f.End)

	rows, err := q.Order("category, subcategory").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.GroupTotal{}
	idx := map[groupKey]int{}
	for rows.Next() {
		var (
			k groupKey
			v decimal.Decimal
		)
		if err := rows.Scan(&k.category, &k.subcategory, &v); err != nil {
			return nil, err
		}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.GroupTotal{Category: k.category, Subcategory: k.subcategory, TotalAmount: decimal.Zero})
		}
		out[i].TotalAmount = out[i].TotalAmount.Add(v)
		out[i].Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// dateRange 闭区间
func dateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", start.UTC())
	}
	if end != nil {
		q = q.Where("date <= ?", end.UTC())
	}
	return q
}
