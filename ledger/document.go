package ledger

import (
	"fmt"
	"path"
	"strconv"
	"time"

	"google.golang.org/api/firestore/v1"
)

const monthLayout = "2006-01"

// Values marshal zero fields only when forced to.
// A Value inside a Document's Fields map is marshaled without its ForceSendFields,
// so documents leave out optional fields that hold their zero value.

func stringValue(s string) firestore.Value {
	return firestore.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func integerValue(i int64) firestore.Value {
	return firestore.Value{IntegerValue: i, ForceSendFields: []string{"IntegerValue"}}
}

func timestampValue(t time.Time) firestore.Value {
	return firestore.Value{TimestampValue: t.UTC().Format(time.RFC3339Nano)}
}

func transactionDocument(t Transaction) *firestore.Document {
	fields := map[string]firestore.Value{
		"kind":      stringValue(string(t.Kind)),
		"category":  stringValue(t.Category),
		"amount":    integerValue(t.Amount),
		"date":      timestampValue(t.Date),
		"createdAt": timestampValue(t.CreatedAt),
	}
	if t.Note != "" {
		fields["note"] = stringValue(t.Note)
	}

	return &firestore.Document{Fields: fields}
}

func goalDocument(g Goal) *firestore.Document {
	fields := map[string]firestore.Value{
		"name":      stringValue(g.Name),
		"target":    integerValue(g.Target),
		"createdAt": timestampValue(g.CreatedAt),
	}
	if g.Saved != 0 {
		fields["saved"] = integerValue(g.Saved)
	}
	if !g.Deadline.IsZero() {
		fields["deadline"] = timestampValue(g.Deadline)
	}

	return &firestore.Document{Fields: fields}
}

func transactionFromDocument(doc *firestore.Document) (Transaction, error) {
	f := fields(doc.Fields)
	t := Transaction{
		ID:       path.Base(doc.Name),
		Kind:     Kind(f.str("kind")),
		Category: f.str("category"),
		Amount:   f.cents("amount"),
		Note:     f.str("note"),
	}

	var err error
	if t.Date, err = f.time("date"); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	if t.CreatedAt, err = f.time("createdAt"); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	return t, nil
}

func goalFromDocument(doc *firestore.Document) (Goal, error) {
	f := fields(doc.Fields)
	g := Goal{
		ID:     path.Base(doc.Name),
		Name:   f.str("name"),
		Target: f.cents("target"),
		Saved:  f.cents("saved"),
	}

	var err error
	if g.Deadline, err = f.time("deadline"); err != nil {
		return Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}

	if g.CreatedAt, err = f.time("createdAt"); err != nil {
		return Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}

	return g, nil
}

// fields reads typed values out of a document,
// tolerating documents written by other clients with looser types.
// A missing key reads as the zero value.
type fields map[string]firestore.Value

func (f fields) str(key string) string {
	return f[key].StringValue
}

// cents accepts integers as cents and doubles as dollars.
func (f fields) cents(key string) int64 {
	v, ok := f[key]
	if !ok {
		return 0
	}

	if v.IntegerValue == 0 && v.DoubleValue != 0 {
		c, _ := ParseAmount(strconv.FormatFloat(v.DoubleValue, 'f', 2, 64))
		return c
	}

	return v.IntegerValue
}

func (f fields) time(key string) (time.Time, error) {
	v, ok := f[key]
	if !ok || v.TimestampValue == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, v.TimestampValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %s", ErrNotValid, key, err)
	}

	return t, nil
}
