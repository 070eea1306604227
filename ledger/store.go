package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xy-planning-network/budget/identity"
	"google.golang.org/api/firestore/v1"
)

const (
	goalsCollection        = "goals"
	transactionsCollection = "transactions"
	pageSize               = 300
)

// Documents is the slice of the Firestore API a Ledger uses.
type Documents interface {
	Create(ctx context.Context, parent, collection string, doc *firestore.Document) (*firestore.Document, error)
	List(ctx context.Context, parent, collection string) ([]*firestore.Document, error)
}

// A Store opens Ledgers on behalf of signed-in users.
type Store struct {
	db  *identity.Database
	now func() time.Time
}

// NewStore constructs a *Store over db.
func NewStore(db *identity.Database) *Store {
	return &Store{db: db, now: time.Now}
}

// For opens uid's Ledger, acting with idToken.
func (s *Store) For(ctx context.Context, uid, idToken string) (*Ledger, error) {
	if idToken == "" {
		return nil, ErrNoToken
	}

	svc, err := s.db.Service(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("opening firestore: %w", err)
	}

	return NewLedger(firestoreDocuments{svc}, s.db.UserPath(uid), s.now), nil
}

// A Ledger reads and writes one user's documents.
type Ledger struct {
	docs   Documents
	parent string
	now    func() time.Time
}

// NewLedger constructs a *Ledger keeping documents under parent.
func NewLedger(docs Documents, parent string, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}

	return &Ledger{docs: docs, parent: parent, now: now}
}

// Add stores t, returning it as stored.
func (l *Ledger) Add(ctx context.Context, t Transaction) (Transaction, error) {
	if err := t.Valid(); err != nil {
		return Transaction{}, err
	}

	t.CreatedAt = l.now().UTC()
	doc, err := l.docs.Create(ctx, l.parent, transactionsCollection, transactionDocument(t))
	if err != nil {
		return Transaction{}, fmt.Errorf("adding transaction: %w", err)
	}

	return transactionFromDocument(doc)
}

// List returns every transaction, most recent first.
func (l *Ledger) List(ctx context.Context) ([]Transaction, error) {
	docs, err := l.docs.List(ctx, l.parent, transactionsCollection)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs := make([]Transaction, 0, len(docs))
	for _, doc := range docs {
		t, err := transactionFromDocument(doc)
		if err != nil {
			return nil, err
		}

		txs = append(txs, t)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}

		return txs[i].Date.After(txs[j].Date)
	})

	return txs, nil
}

// AddGoal stores g, returning it as stored.
func (l *Ledger) AddGoal(ctx context.Context, g Goal) (Goal, error) {
	if err := g.Valid(); err != nil {
		return Goal{}, err
	}

	g.CreatedAt = l.now().UTC()
	doc, err := l.docs.Create(ctx, l.parent, goalsCollection, goalDocument(g))
	if err != nil {
		return Goal{}, fmt.Errorf("adding goal: %w", err)
	}

	return goalFromDocument(doc)
}

// Goals returns every goal, oldest first.
func (l *Ledger) Goals(ctx context.Context) ([]Goal, error) {
	docs, err := l.docs.List(ctx, l.parent, goalsCollection)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	goals := make([]Goal, 0, len(docs))
	for _, doc := range docs {
		g, err := goalFromDocument(doc)
		if err != nil {
			return nil, err
		}

		goals = append(goals, g)
	}

	sort.SliceStable(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

// firestoreDocuments implements Documents with the Firestore REST API.
type firestoreDocuments struct {
	svc *firestore.Service
}

func (f firestoreDocuments) Create(ctx context.Context, parent, collection string, doc *firestore.Document) (*firestore.Document, error) {
	return f.svc.Projects.Databases.Documents.CreateDocument(parent, collection, doc).Context(ctx).Do()
}

func (f firestoreDocuments) List(ctx context.Context, parent, collection string) ([]*firestore.Document, error) {
	var docs []*firestore.Document
	err := f.svc.Projects.Databases.Documents.List(parent, collection).
		PageSize(pageSize).
		Pages(ctx, func(res *firestore.ListDocumentsResponse) error {
			docs = append(docs, res.Documents...)
			return nil
		})

	return docs, err
}
