package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget/ledger"
)

func TestSummarize(t *testing.T) {
	// Arrange
	txs := []ledger.Transaction{
		{Kind: ledger.Income, Category: "salary", Amount: 300000, Date: day("2024-01-01")},
		{Kind: ledger.Expense, Category: "rent", Amount: 120000, Date: day("2024-01-02")},
		{Kind: ledger.Expense, Category: "groceries", Amount: 30000, Date: day("2024-01-10")},
		{Kind: ledger.Expense, Category: "groceries", Amount: 50000, Date: day("2024-02-10")},
		{Kind: ledger.Income, Category: "salary", Amount: 300000, Date: day("2024-02-01")},
	}

	// Act
	s := ledger.Summarize(txs)

	// Assert
	require.Equal(t, int64(600000), s.Income)
	require.Equal(t, int64(200000), s.Expense)
	require.Equal(t, int64(400000), s.Balance)

	require.Equal(t, []ledger.CategoryTotal{
		{Category: "rent", Amount: 120000, Percent: 60},
		{Category: "groceries", Amount: 80000, Percent: 40},
	}, s.Categories)

	require.Equal(t, []ledger.MonthTotal{
		{Month: "2024-01", Income: 300000, Expense: 150000},
		{Month: "2024-02", Income: 300000, Expense: 50000},
	}, s.Months)
	require.Equal(t, int64(150000), s.Months[0].Net())
}

func TestSummarizeEmpty(t *testing.T) {
	// Act
	s := ledger.Summarize(nil)

	// Assert
	require.Zero(t, s.Balance)
	require.Empty(t, s.Categories)
	require.Empty(t, s.Months)
}

func TestInMonth(t *testing.T) {
	// Arrange
	txs := []ledger.Transaction{
		{Date: day("2024-01-31")},
		{Date: day("2024-02-01")},
	}

	// Act
	actual := ledger.InMonth(txs, "2024-02")

	// Assert
	require.Len(t, actual, 1)
	require.Equal(t, "2024-02", actual[0].Month())
}

func TestParseAmount(t *testing.T) {
	tcs := []struct {
		in       string
		expected int64
		err      error
	}{
		{"12.50", 1250, nil},
		{"12.5", 1250, nil},
		{"$1,200", 120000, nil},
		{" 0.125 ", 13, nil},
		{"twelve", 0, ledger.ErrNotValid},
		{"NaN", 0, ledger.ErrNotValid},
		{"1000000000000", 100000000000000, nil},
		{"1e20", 0, ledger.ErrNotValid},
		{"-1e20", 0, ledger.ErrNotValid},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			actual, err := ledger.ParseAmount(tc.in)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestFormatCents(t *testing.T) {
	require.Equal(t, "$12.50", ledger.FormatCents(1250))
	require.Equal(t, "-$0.05", ledger.FormatCents(-5))
	require.Equal(t, "$0.00", ledger.FormatCents(0))
}
