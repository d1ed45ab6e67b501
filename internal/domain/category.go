package domain

import "sort"

// CategoryKey 一级分类
type CategoryKey string

const (
	CategoryComida     CategoryKey = "comida"
	CategoryMoradia    CategoryKey = "moradia"
	CategoryTransporte CategoryKey = "transporte"
	CategoryLazer      CategoryKey = "lazer"
	CategoryTrabalho   CategoryKey = "trabalho"
	CategoryFinanceiro CategoryKey = "financeiro"
)

// taxonomy is the only copy of the category -> subcategory table. Validation,
// aggregation and the /categories endpoint all read it through the functions below.
var taxonomy = map[CategoryKey][]string{
	CategoryComida:     {"mercado", "restaurante", "delivery"},
	CategoryMoradia:    {"aluguel", "energia", "agua", "internet", "gás", "agua de beber", "imprevistos"},
	CategoryTransporte: {"gasolina", "oficina"},
	CategoryLazer:      {"cigarro", "bebedeira", "roupas", "cabelereiro", "academia"},
	CategoryTrabalho:   {"ferramentas"},
	CategoryFinanceiro: {"cartão de credito", "agiota"},
}

// Category 对外展示用
type Category struct {
	Key           CategoryKey `json:"key"`
	Subcategories []string    `json:"subcategories"`
}

// Categories returns the taxonomy sorted by key. The slices are copies.
func Categories() []Category {
	out := make([]Category, 0, len(taxonomy))
	for k, subs := range taxonomy {
		out = append(out, Category{Key: k, Subcategories: append([]string(nil), subs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CategoryKeys 排序后的一级分类
func CategoryKeys() []string {
	keys := make([]string, 0, len(taxonomy))
	for k := range taxonomy {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

func IsCategory(category string) bool {
	_, ok := taxonomy[CategoryKey(category)]
	return ok
}

// IsSubcategoryOf reports whether sub is allowed under category. An unknown
// category has no valid subcategories.
func IsSubcategoryOf(category, sub string) bool {
	for _, s := range taxonomy[CategoryKey(category)] {
		if s == sub {
			return true
		}
	}
	return false
}

// Subcategories returns a copy of the allowed subcategories of category.
func Subcategories(category string) []string {
	return append([]string(nil), taxonomy[CategoryKey(category)]...)
}
