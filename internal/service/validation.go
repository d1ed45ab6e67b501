package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
)

const (
	MsgValueRequired       = "value is required"
	MsgValueNegative       = "value must be greater than or equal to 0"
	MsgValueInvalid        = "value must be a number"
	MsgValuePrecision      = "value must have at most 4 decimal places"
	MsgValueTooLarge       = "value must be less than 100000000000000"
	MsgCategoryRequired    = "category is required"
	MsgSubcategoryRequired = "subcategory is required"
	MsgDateInvalid         = "date is invalid, use RFC 3339 or YYYY-MM-DD"

	maxDescription = 255
	// 与列类型 decimal(18,4) 对齐
	valueScale = 4
)

var maxValue = decimal.New(1, 14)

const dateOnly = "2006-01-02"

// TransactionInput is a create body or an update patch. Nil fields were not sent.
type TransactionInput struct {
	Value       *decimal.Decimal `json:"value"`
	Date        *string          `json:"date"`
	Category    *string          `json:"category"`
	Subcategory *string          `json:"subcategory"`
	Description *string          `json:"description"`

	// value 存在但不是数字；在 apply 里和其它字段一起报
	valueInvalid bool
}

// UnmarshalJSON decodes value leniently: a non-numeric value is recorded as a
// violation instead of failing the whole body.
func (in *TransactionInput) UnmarshalJSON(b []byte) error {
	type plain TransactionInput
	var aux struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*in = TransactionInput(aux.plain)
	in.Value, in.valueInvalid = nil, false

	raw := bytes.TrimSpace(aux.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v decimal.Decimal
	if err := v.UnmarshalJSON(raw); err != nil {
		in.valueInvalid = true
		return nil
	}
	in.Value = &v
	return nil
}

func msgCategoryInvalid(c string) string {
	return fmt.Sprintf("category %q is not allowed, must be one of: %s", c, strings.Join(domain.CategoryKeys(), ", "))
}

func msgSubcategoryInvalid(sub, c string) string {
	return fmt.Sprintf("subcategory %q is not valid for category %q", sub, c)
}

// apply merges in onto base and checks the merged record. With creating set,
// value, category and subcategory must be present. Every violation is collected.
func apply(in TransactionInput, base domain.Transaction, creating bool, now time.Time) (domain.Transaction, error) {
	verr := &domain.ValidationError{}
	t := base

	switch {
	case in.valueInvalid:
		verr.Add(MsgValueInvalid)
	case in.Value != nil && in.Value.IsNegative():
		verr.Add(MsgValueNegative)
	case in.Value != nil && !in.Value.Equal(in.Value.Round(valueScale)):
		verr.Add(MsgValuePrecision)
	case in.Value != nil && in.Value.GreaterThanOrEqual(maxValue):
		verr.Add(MsgValueTooLarge)
	case in.Value != nil:
		t.Value = *in.Value
	case creating:
		verr.Add(MsgValueRequired)
	}

	// catOK: t.Category 是合法分类，可用于校验子分类
	catOK := !creating
	switch {
	case in.Category != nil:
		c := strings.TrimSpace(*in.Category)
		catOK = false
		switch {
		case c == "":
			verr.Add(MsgCategoryRequired)
		case !domain.IsCategory(c):
			verr.Add(msgCategoryInvalid(c))
		default:
			t.Category = c
			catOK = true
		}
	case creating:
		verr.Add(MsgCategoryRequired)
	}

	subOK := !creating
	switch {
	case in.Subcategory != nil:
		s := strings.TrimSpace(*in.Subcategory)
		subOK = s != ""
		if subOK {
			t.Subcategory = s
		} else {
			verr.Add(MsgSubcategoryRequired)
		}
	case creating:
		verr.Add(MsgSubcategoryRequired)
	}
	if catOK && subOK && !domain.IsSubcategoryOf(t.Category, t.Subcategory) {
		verr.Add(msgSubcategoryInvalid(t.Subcategory, t.Category))
	}

	switch {
	case in.Date != nil && strings.TrimSpace(*in.Date) != "":
		d, err := ParseDate(*in.Date)
		if err != nil {
			verr.Add(MsgDateInvalid)
		} else {
			t.Date = d
		}
	case creating:
		t.Date = now
	}

	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(t.Description) > maxDescription {
			verr.Add(fmt.Sprintf("description must be at most %d characters", maxDescription))
		}
	}

	if err := verr.Err(); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

// ParseDate accepts RFC 3339 or YYYY-MM-DD and returns UTC. A date-only value
// is midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseBound parses an optional range bound. A date-only upper bound is moved
// to the last instant of that day so the whole day is included.
func parseBound(raw, name string, upper bool, verr *domain.ValidationError) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		verr.Add(name + " is invalid, use RFC 3339 or YYYY-MM-DD")
		return nil
	}
	if upper && len(raw) == len(dateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

// ListQuery is the raw query string of GET /transactions and /transactions/summary.
type ListQuery struct {
	Category    string `form:"category"`
	Subcategory string `form:"subcategory"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
}

func (q ListQuery) TransactionFilter() (domain.TransactionFilter, error) {
	verr := &domain.ValidationError{}
	f := domain.TransactionFilter{
		Category:    strings.TrimSpace(q.Category),
		Subcategory: strings.TrimSpace(q.Subcategory),
		Start:       parseBound(q.StartDate, "startDate", false, verr),
		End:         parseBound(q.EndDate, "endDate", true, verr),
	}
	return f, verr.Err()
}

func (q ListQuery) SummaryFilter() (domain.SummaryFilter, error) {
	f, err := q.TransactionFilter()
	return domain.SummaryFilter{Start: f.Start, End: f.End}, err
}

var emailRe = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

const minPassword = 6

// validateRegistration normalizes and checks a registration, collecting every problem.
func validateRegistration(in *RegisterInput) error {
	verr := &domain.ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		verr.Add("name is required")
	}
	switch {
	case in.Email == "":
		verr.Add("email is required")
	case !emailRe.MatchString(in.Email):
		verr.Add("email is invalid")
	}
	switch {
	case in.Password == "":
		verr.Add("password is required")
	case utf8.RuneCountInString(in.Password) < minPassword:
		verr.Add(fmt.Sprintf("password must be at least %d characters", minPassword))
	}
	return verr.Err()
}
