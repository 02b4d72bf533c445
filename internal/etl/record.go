package etl

import (
	"fmt"
	"strings"
)

// Item is one source entry. Fields are pointers so a missing key can be told
// apart from a zero value.
type Item struct {
	ID    *int64   `json:"id" yaml:"id"`
	Name  *string  `json:"name" yaml:"name"`
	Value *float64 `json:"value" yaml:"value"`
}

// Record is the payload read from the source service.
type Record struct {
	Items []Item `json:"items" yaml:"items"`
}

// TransformedItem is the value written for one source item.
type TransformedItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TransformedRecord maps each source identifier to its transformed item.
type TransformedRecord map[int64]TransformedItem

// TransformError reports the first malformed item; the transform aborts
// rather than skipping it.
type TransformError struct {
	Index  int
	Field  string
	Reason string
}

func (e *TransformError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("transform item %d: %s %q", e.Index, e.Reason, e.Field)
	}
	return fmt.Sprintf("transform item %d: %s", e.Index, e.Reason)
}

// Transform upper-cases each item's name and doubles its value, keyed by id.
// It performs no I/O.
func Transform(rec Record) (TransformedRecord, error) {
	out := make(TransformedRecord, len(rec.Items))
	for i, item := range rec.Items {
		switch {
		case item.ID == nil:
			return nil, &TransformError{Index: i, Field: "id", Reason: "missing field"}
		case item.Name == nil:
			return nil, &TransformError{Index: i, Field: "name", Reason: "missing field"}
		case item.Value == nil:
			return nil, &TransformError{Index: i, Field: "value", Reason: "missing field"}
		}
		if _, dup := out[*item.ID]; dup {
			return nil, &TransformError{Index: i, Reason: fmt.Sprintf("duplicate id %d", *item.ID)}
		}
		out[*item.ID] = TransformedItem{
			Name:  strings.ToUpper(*item.Name),
			Value: *item.Value * 2,
		}
	}
	return out, nil
}
