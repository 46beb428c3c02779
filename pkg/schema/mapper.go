package schema

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/celerix-dev/celerix-records/pkg/engine"
)

func stringOrNA(res gjson.Result) string {
	if !res.Exists() || res.Type == gjson.Null {
		return NA
	}
	return res.String()
}

func docID(doc engine.Document) (string, error) {
	res := doc.Get(engine.IDField)
	if !res.Exists() || res.String() == "" {
		return "", engine.ErrMissingID
	}
	return res.String(), nil
}

// MapClockIn converts a stored clock-in document to its output shape.
func MapClockIn(doc engine.Document) (ClockIn, error) {
	id, err := docID(doc)
	if err != nil {
		return ClockIn{}, err
	}
	return ClockIn{
		ID:       id,
		Email:    stringOrNA(doc.Get("email")),
		Location: stringOrNA(doc.Get("location")),
		ClockIn:  stringOrNA(doc.Get("clock_in")),
	}, nil
}

// MapClockIns maps every document, keeping their order.
func MapClockIns(docs []engine.Document) ([]ClockIn, error) {
	out := make([]ClockIn, 0, len(docs))
	for i, doc := range docs {
		rec, err := MapClockIn(doc)
		if err != nil {
			return nil, fmt.Errorf("clock-in %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// MapItem converts a stored item document to its output shape.
func MapItem(doc engine.Document) (Item, error) {
	id, err := docID(doc)
	if err != nil {
		return Item{}, err
	}
	var quantity any = NA
	if q := doc.Get("quantity"); q.Type == gjson.Number {
		quantity = q.Int()
	}
	return Item{
		ID:         id,
		Name:       stringOrNA(doc.Get("name")),
		Email:      stringOrNA(doc.Get("email")),
		ItemName:   stringOrNA(doc.Get("item_name")),
		Quantity:   quantity,
		ExpiryDate: stringOrNA(doc.Get("expiry_date")),
		InsertDate: stringOrNA(doc.Get("insert_date")),
	}, nil
}

// MapItems maps every document, keeping their order.
func MapItems(docs []engine.Document) ([]Item, error) {
	out := make([]Item, 0, len(docs))
	for i, doc := range docs {
		rec, err := MapItem(doc)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// MapGroups turns email groups into count rows. Documents without an email are counted under NA.
func MapGroups(groups []engine.Group) []EmailCount {
	out := make([]EmailCount, 0, len(groups))
	for _, g := range groups {
		email := NA
		if g.Key != nil {
			email = fmt.Sprint(g.Key)
		}
		out = append(out, EmailCount{Email: email, Count: g.Count})
	}
	return out
}
