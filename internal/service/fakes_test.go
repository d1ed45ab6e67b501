package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
)

type memTransactions struct {
	mu   sync.Mutex
	rows map[string]domain.Transaction
	err  error
}

func newMemTransactions() *memTransactions {
	return &memTransactions{rows: map[string]domain.Transaction{}}
}

func (m *memTransactions) Create(_ context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTransactions) Get(_ context.Context, id string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTransactions) Save(_ context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTransactions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTransactions) match(t domain.Transaction, f domain.TransactionFilter) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && t.Subcategory != f.Subcategory {
		return false
	}
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}

func (m *memTransactions) List(_ context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Transaction{}
	for _, t := range m.rows {
		if m.match(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memTransactions) GroupTotals(_ context.Context, f domain.SummaryFilter) ([]domain.GroupTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	idx := map[string]int{}
	var out []domain.GroupTotal
	for _, t := range m.rows {
		if !m.match(t, domain.TransactionFilter{Start: f.Start, End: f.End}) {
			continue
		}
		k := t.Category + "\x00" + t.Subcategory
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.GroupTotal{Category: t.Category, Subcategory: t.Subcategory, TotalAmount: decimal.Zero})
		}
		out[i].TotalAmount = out[i].TotalAmount.Add(t.Value)
		out[i].Count++
	}
	return out, nil
}

type countingCache struct {
	noCache
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]domain.User{}} }

func (m *memUsers) conflict(u *domain.User) bool {
	for id, o := range m.rows {
		if id != u.ID && (o.Email == u.Email || o.APIToken == u.APIToken) {
			return true
		}
	}
	return false
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict(u) {
		return domain.ErrConflict
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) find(pred func(domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if pred(u) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return m.find(func(u domain.User) bool { return u.Email == email })
}

func (m *memUsers) FindByAPIToken(_ context.Context, token string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.APIToken == token })
}

func (m *memUsers) ExistsWithRole(_ context.Context, role string) (bool, error) {
	_, err := m.find(func(u domain.User) bool { return u.Role == role })
	return err == nil, nil
}

func (m *memUsers) List(_ context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.User
	for _, u := range m.rows {
		if q == "" || strings.Contains(u.Email, q) || strings.Contains(u.Name, q) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if m.conflict(u) {
		return domain.ErrConflict
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
