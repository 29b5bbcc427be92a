package repository

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Operator is the comparison applied by a Condition.
type Operator int

const (
	OpEqual Operator = iota
	OpContains
	OpPrefix
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpContains:
		return "contains"
	case OpPrefix:
		return "prefix"
	default:
		return fmt.Sprintf("operator(%d)", int(o))
	}
}

// Condition compares one top-level document attribute with a value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Filter is a conjunction of conditions. The zero Filter matches everything.
// Values are always passed to the store as parameters, never spliced into
// query text.
type Filter struct {
	Conditions []Condition
}

// Where starts an empty filter.
func Where() Filter {
	return Filter{}
}

// Equal adds an exact-equality condition.
func (f Filter) Equal(field string, value any) Filter {
	return f.with(Condition{Field: field, Op: OpEqual, Value: value})
}

// Contains adds a substring condition on a string attribute.
func (f Filter) Contains(field, substr string) Filter {
	return f.with(Condition{Field: field, Op: OpContains, Value: substr})
}

// HasPrefix adds a prefix condition on a string attribute.
func (f Filter) HasPrefix(field, prefix string) Filter {
	return f.with(Condition{Field: field, Op: OpPrefix, Value: prefix})
}

func (f Filter) with(c Condition) Filter {
	conds := make([]Condition, 0, len(f.Conditions)+1)
	conds = append(conds, f.Conditions...)
	return Filter{Conditions: append(conds, c)}
}

// Matches reports whether doc satisfies every condition of the filter.
func (f Filter) Matches(doc Document) bool {
	for _, c := range f.Conditions {
		if !c.Matches(doc) {
			return false
		}
	}
	return true
}

// Matches evaluates the condition against doc. Equality follows JSON
// semantics, so 42 and 42.0 are equal while 42 and "42" are not.
func (c Condition) Matches(doc Document) bool {
	got, ok := doc[c.Field]
	switch c.Op {
	case OpEqual:
		if !ok {
			return false
		}
		return jsonEqual(got, c.Value)
	case OpContains, OpPrefix:
		s, isString := got.(string)
		want, wantString := c.Value.(string)
		if !isString || !wantString {
			return false
		}
		if c.Op == OpContains {
			return strings.Contains(s, want)
		}
		return strings.HasPrefix(s, want)
	default:
		return false
	}
}

func (c Condition) stringValue() (string, error) {
	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s condition on %q needs a string value, got %T", c.Op, c.Field, c.Value)
	}
	return s, nil
}

func jsonEqual(a, b any) bool {
	da, err := ToDocument(map[string]any{"v": a})
	if err != nil {
		return false
	}
	db, err := ToDocument(map[string]any{"v": b})
	if err != nil {
		return false
	}
	return reflect.DeepEqual(numeric(da["v"]), numeric(db["v"]))
}

// numeric folds integral floats into int64 so 42.0 compares equal to 42.
func numeric(v any) any {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

func encodeJSONValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter value: %w", err)
	}
	return string(b), nil
}
