package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Document is a raw stored record: a JSON object kept as bytes.
// Fields are read with gjson paths so loosely-typed records never need a schema.
type Document []byte

// NewDocument encodes fields into a Document.
func NewDocument(fields map[string]any) (Document, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return Document(b), nil
}

// Get returns the value stored under path.
func (d Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d, path)
}

// ID returns the document identifier.
func (d Document) ID() (uuid.UUID, error) {
	res := d.Get(IDField)
	if !res.Exists() {
		return uuid.Nil, ErrMissingID
	}
	return ParseID(res.String())
}

// Valid reports whether the document is a JSON object.
func (d Document) Valid() bool {
	return gjson.ValidBytes(d) && gjson.ParseBytes(d).IsObject()
}

// Fields decodes the document into a map.
func (d Document) Fields() (map[string]any, error) {
	out := map[string]any{}
	if len(d) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// Merge returns a copy of the document with set applied on top, the same way a $set update does.
func (d Document) Merge(set map[string]any) (Document, error) {
	fields, err := d.Fields()
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		if k == IDField {
			continue
		}
		fields[k] = v
	}
	return NewDocument(fields)
}

// WithID returns a copy of the document stamped with id.
func (d Document) WithID(id uuid.UUID) (Document, error) {
	fields, err := d.Fields()
	if err != nil {
		return nil, err
	}
	fields[IDField] = id.String()
	return NewDocument(fields)
}

// Clone returns an independent copy of the document bytes.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	copy(out, d)
	return out
}

// MarshalJSON writes the document as an embedded JSON object.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON keeps a copy of the raw object.
func (d *Document) UnmarshalJSON(b []byte) error {
	if d == nil {
		return fmt.Errorf("engine.Document: UnmarshalJSON on nil pointer")
	}
	*d = append((*d)[0:0], b...)
	return nil
}
