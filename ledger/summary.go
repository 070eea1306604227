package ledger

import "sort"

// A Summary totals transactions, in cents.
type Summary struct {
	Income  int64
	Expense int64
	Balance int64

	// Expenses by category, largest first.
	Categories []CategoryTotal

	// Totals by month, oldest first.
	Months []MonthTotal
}

type CategoryTotal struct {
	Category string
	Amount   int64
	Percent  int
}

type MonthTotal struct {
	Month   string
	Income  int64
	Expense int64
}

// Net is what was left over that month.
func (m MonthTotal) Net() int64 { return m.Income - m.Expense }

// Summarize totals txs overall, by expense category and by month.
func Summarize(txs []Transaction) Summary {
	var s Summary
	byCategory := make(map[string]int64)
	byMonth := make(map[string]*MonthTotal)

	for _, t := range txs {
		m, ok := byMonth[t.Month()]
		if !ok {
			m = &MonthTotal{Month: t.Month()}
			byMonth[t.Month()] = m
		}

		switch t.Kind {
		case Income:
			s.Income += t.Amount
			m.Income += t.Amount
		case Expense:
			s.Expense += t.Amount
			m.Expense += t.Amount
			byCategory[t.Category] += t.Amount
		}
	}

	s.Balance = s.Income - s.Expense

	for c, amt := range byCategory {
		ct := CategoryTotal{Category: c, Amount: amt}
		if s.Expense > 0 {
			ct.Percent = int(amt * 100 / s.Expense)
		}

		s.Categories = append(s.Categories, ct)
	}

	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Amount == s.Categories[j].Amount {
			return s.Categories[i].Category < s.Categories[j].Category
		}

		return s.Categories[i].Amount > s.Categories[j].Amount
	})

	for _, m := range byMonth {
		s.Months = append(s.Months, *m)
	}

	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Month < s.Months[j].Month })

	return s
}

// InMonth keeps the transactions dated in month, formatted "2006-01".
func InMonth(txs []Transaction, month string) []Transaction {
	kept := make([]Transaction, 0)
	for _, t := range txs {
		if t.Month() == month {
			kept = append(kept, t)
		}
	}

	return kept
}
