package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget/ledger"
	"google.golang.org/api/firestore/v1"
)

const parent = "projects/p/databases/(default)/documents/users/abc"

// memDocuments keeps documents per collection in memory.
type memDocuments struct {
	docs map[string][]*firestore.Document
	err  error
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: make(map[string][]*firestore.Document)}
}

func (m *memDocuments) Create(ctx context.Context, p, collection string, doc *firestore.Document) (*firestore.Document, error) {
	if m.err != nil {
		return nil, m.err
	}

	key := p + "/" + collection
	doc.Name = fmt.Sprintf("%s/doc-%d", key, len(m.docs[key])+1)
	m.docs[key] = append(m.docs[key], doc)
	return doc, nil
}

func (m *memDocuments) List(ctx context.Context, p, collection string) ([]*firestore.Document, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.docs[p+"/"+collection], nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}

	return t
}

func fixedNow() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestLedgerAdd(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	l := ledger.NewLedger(docs, parent, fixedNow)
	tx := ledger.Transaction{
		Kind:     ledger.Expense,
		Category: "groceries",
		Amount:   1250,
		Note:     "market",
		Date:     day("2024-02-14"),
	}

	// Act
	actual, err := l.Add(context.Background(), tx)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "doc-1", actual.ID)
	require.Equal(t, tx.Kind, actual.Kind)
	require.Equal(t, tx.Category, actual.Category)
	require.Equal(t, tx.Amount, actual.Amount)
	require.Equal(t, tx.Note, actual.Note)
	require.True(t, tx.Date.Equal(actual.Date))
	require.True(t, fixedNow().Equal(actual.CreatedAt))
	require.Len(t, docs.docs[parent+"/transactions"], 1)
}

func TestLedgerAddInvalid(t *testing.T) {
	valid := ledger.Transaction{Kind: ledger.Income, Category: "salary", Amount: 100, Date: day("2024-01-01")}
	tcs := []struct {
		name string
		fn   func(*ledger.Transaction)
	}{
		{"Kind", func(t *ledger.Transaction) { t.Kind = "transfer" }},
		{"Category", func(t *ledger.Transaction) { t.Category = " " }},
		{"Amount", func(t *ledger.Transaction) { t.Amount = 0 }},
		{"Date", func(t *ledger.Transaction) { t.Date = time.Time{} }},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			docs := newMemDocuments()
			l := ledger.NewLedger(docs, parent, fixedNow)
			tx := valid
			tc.fn(&tx)

			// Act
			_, err := l.Add(context.Background(), tx)

			// Assert
			require.ErrorIs(t, err, ledger.ErrNotValid)
			require.Empty(t, docs.docs)
		})
	}
}

func TestLedgerList(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	l := ledger.NewLedger(docs, parent, fixedNow)
	for _, d := range []string{"2024-01-05", "2024-02-10", "2023-12-31"} {
		_, err := l.Add(context.Background(), ledger.Transaction{Kind: ledger.Expense, Category: "rent", Amount: 100, Date: day(d)})
		require.Nil(t, err)
	}

	// Act
	txs, err := l.List(context.Background())

	// Assert
	require.Nil(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, "2024-02", txs[0].Month())
	require.Equal(t, "2024-01", txs[1].Month())
	require.Equal(t, "2023-12", txs[2].Month())
}

func TestLedgerListLooseDocuments(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	docs.docs[parent+"/transactions"] = []*firestore.Document{{
		Name: parent + "/transactions/xyz",
		Fields: map[string]firestore.Value{
			"kind":     {StringValue: "income"},
			"category": {StringValue: "gift"},
			"amount":   {DoubleValue: 20.5},
			"date":     {TimestampValue: "2024-01-02T00:00:00Z"},
		},
	}}
	l := ledger.NewLedger(docs, parent, fixedNow)

	// Act
	txs, err := l.List(context.Background())

	// Assert
	require.Nil(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "xyz", txs[0].ID)
	require.Equal(t, int64(2050), txs[0].Amount)
	require.Equal(t, ledger.Income, txs[0].Kind)
	require.True(t, txs[0].CreatedAt.IsZero())
}

func TestLedgerListBadTimestamp(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	docs.docs[parent+"/transactions"] = []*firestore.Document{{
		Name:   parent + "/transactions/xyz",
		Fields: map[string]firestore.Value{"date": {TimestampValue: "yesterday"}},
	}}
	l := ledger.NewLedger(docs, parent, fixedNow)

	// Act
	_, err := l.List(context.Background())

	// Assert
	require.ErrorIs(t, err, ledger.ErrNotValid)
}

func TestLedgerDocumentsFail(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	docs.err = errors.New("permission denied")
	l := ledger.NewLedger(docs, parent, fixedNow)

	// Act
	_, addErr := l.Add(context.Background(), ledger.Transaction{Kind: ledger.Income, Category: "salary", Amount: 1, Date: day("2024-01-01")})
	_, listErr := l.List(context.Background())
	_, goalsErr := l.Goals(context.Background())

	// Assert
	require.ErrorIs(t, addErr, docs.err)
	require.ErrorIs(t, listErr, docs.err)
	require.ErrorIs(t, goalsErr, docs.err)
}

func TestLedgerGoals(t *testing.T) {
	// Arrange
	docs := newMemDocuments()
	l := ledger.NewLedger(docs, parent, fixedNow)
	g := ledger.Goal{Name: "emergency fund", Target: 100000, Saved: 25000, Deadline: day("2024-12-31")}

	// Act
	added, err := l.AddGoal(context.Background(), g)
	require.Nil(t, err)
	_, invalid := l.AddGoal(context.Background(), ledger.Goal{Name: "nothing"})
	goals, listErr := l.Goals(context.Background())

	// Assert
	require.Equal(t, "doc-1", added.ID)
	require.ErrorIs(t, invalid, ledger.ErrNotValid)
	require.Nil(t, listErr)
	require.Len(t, goals, 1)
	require.Equal(t, g.Name, goals[0].Name)
	require.Equal(t, 25, goals[0].Progress())
	require.True(t, g.Deadline.Equal(goals[0].Deadline))
}
