package engine

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Op is a predicate comparison.
type Op int

const (
	// OpEq matches values equal to the operand.
	OpEq Op = iota
	// OpGte matches values greater than or equal to the operand.
	OpGte
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGte:
		return "gte"
	default:
		return "unknown"
	}
}

// Predicate constrains one document field.
// Value is a string, an integer, a float64, a bool or a time.Time.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Filter accumulates predicates that are AND-combined. A nil or empty Filter matches everything.
type Filter struct {
	preds []Predicate
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds an equality predicate.
func (f *Filter) Eq(field string, value any) *Filter {
	f.preds = append(f.preds, Predicate{Field: field, Op: OpEq, Value: value})
	return f
}

// Gte adds an inclusive lower bound.
func (f *Filter) Gte(field string, value any) *Filter {
	f.preds = append(f.preds, Predicate{Field: field, Op: OpGte, Value: value})
	return f
}

// Empty reports whether the filter has no predicates.
func (f *Filter) Empty() bool {
	return f == nil || len(f.preds) == 0
}

// Predicates returns a copy of the accumulated predicates.
func (f *Filter) Predicates() []Predicate {
	if f == nil {
		return nil
	}
	out := make([]Predicate, len(f.preds))
	copy(out, f.preds)
	return out
}

// Match reports whether doc satisfies every predicate.
func (f *Filter) Match(doc Document) bool {
	if f == nil {
		return true
	}
	for _, p := range f.preds {
		if !p.Match(doc) {
			return false
		}
	}
	return true
}

// Apply returns the documents matching the filter, in input order.
func (f *Filter) Apply(docs []Document) []Document {
	if f.Empty() {
		return docs
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// Match reports whether doc satisfies the predicate.
// Values of a different type than the operand never match.
func (p Predicate) Match(doc Document) bool {
	res := doc.Get(p.Field)
	if !res.Exists() {
		return false
	}
	c, ok := compare(res, p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return c == 0
	case OpGte:
		return c >= 0
	default:
		return false
	}
}

func compare(res gjson.Result, operand any) (int, bool) {
	switch v := operand.(type) {
	case string:
		if res.Type != gjson.String {
			return 0, false
		}
		return strings.Compare(res.Str, v), true
	case int:
		return compareNumber(res, float64(v))
	case int32:
		return compareNumber(res, float64(v))
	case int64:
		return compareNumber(res, float64(v))
	case float64:
		return compareNumber(res, v)
	case bool:
		if res.Type != gjson.True && res.Type != gjson.False {
			return 0, false
		}
		if res.Bool() == v {
			return 0, true
		}
		if v {
			return -1, true
		}
		return 1, true
	case time.Time:
		if res.Type != gjson.String {
			return 0, false
		}
		t, err := ParseTime(res.Str)
		if err != nil {
			return 0, false
		}
		return t.Compare(v), true
	default:
		return 0, false
	}
}

func compareNumber(res gjson.Result, v float64) (int, bool) {
	if res.Type != gjson.Number {
		return 0, false
	}
	switch {
	case res.Num < v:
		return -1, true
	case res.Num > v:
		return 1, true
	default:
		return 0, true
	}
}
