package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// NewID returns a fresh time-ordered identifier, so ids sort in creation order.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// ParseID converts the wire form of an identifier into the native one.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// SortByID orders documents by identifier, which for v7 ids is insertion order.
func SortByID(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Get(IDField).String() < docs[j].Get(IDField).String()
	})
}
