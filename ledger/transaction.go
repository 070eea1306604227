package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// A Kind says which way money moved.
type Kind string

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// Valid asserts the Kind is a known one.
func (k Kind) Valid() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrNotValid, k)
	}
}

// A Transaction is one movement of money, in cents.
type Transaction struct {
	ID        string
	Kind      Kind
	Category  string
	Amount    int64
	Note      string
	Date      time.Time
	CreatedAt time.Time
}

// Valid asserts t can be stored.
func (t Transaction) Valid() error {
	if err := t.Kind.Valid(); err != nil {
		return err
	}

	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrNotValid)
	}

	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrNotValid)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrNotValid)
	}

	return nil
}

// Month is the "2006-01" month t falls in.
func (t Transaction) Month() string { return t.Date.Format(monthLayout) }

// Signed is the Amount, negative for expenses.
func (t Transaction) Signed() int64 {
	if t.Kind == Expense {
		return -t.Amount
	}

	return t.Amount
}

// MaxAmount is the largest amount, in dollars, ParseAmount accepts.
const MaxAmount = 1e12

// ParseAmount turns a decimal amount such as "12.5" or "1,200.00" into cents.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: amount %q", ErrNotValid, s)
	}

	if math.Abs(f) > MaxAmount {
		return 0, fmt.Errorf("%w: amount %q is too large", ErrNotValid, s)
	}

	return int64(math.Round(f * 100)), nil
}

// FormatCents renders cents as a dollar amount, e.g., -1250 as "-$12.50".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}

	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
