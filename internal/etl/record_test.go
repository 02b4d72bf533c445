package etl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestTransformUppercasesAndDoubles(t *testing.T) {
	rec := Record{Items: []Item{
		{ID: ptr[int64](1), Name: ptr("item1"), Value: ptr(10.0)},
		{ID: ptr[int64](2), Name: ptr("café"), Value: ptr(-1.25)},
	}}

	got, err := Transform(rec)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := TransformedRecord{
		1: {Name: "ITEM1", Value: 20},
		2: {Name: "CAFÉ", Value: -2.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected transform (-want +got):\n%s", diff)
	}
}

func TestTransformEmptyRecord(t *testing.T) {
	got, err := Transform(Record{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestTransformRejectsMalformedItems(t *testing.T) {
	cases := map[string]struct {
		item  Item
		field string
	}{
		"missing id":    {item: Item{Name: ptr("a"), Value: ptr(1.0)}, field: "id"},
		"missing name":  {item: Item{ID: ptr[int64](1), Value: ptr(1.0)}, field: "name"},
		"missing value": {item: Item{ID: ptr[int64](1), Name: ptr("a")}, field: "value"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := Record{Items: []Item{
				{ID: ptr[int64](9), Name: ptr("ok"), Value: ptr(1.0)},
				tc.item,
			}}
			_, err := Transform(rec)
			var terr *TransformError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TransformError, got %v", err)
			}
			if terr.Index != 1 || terr.Field != tc.field {
				t.Fatalf("unexpected error detail %+v", terr)
			}
		})
	}
}

func TestTransformRejectsDuplicateIDs(t *testing.T) {
	rec := Record{Items: []Item{
		{ID: ptr[int64](1), Name: ptr("a"), Value: ptr(1.0)},
		{ID: ptr[int64](1), Name: ptr("b"), Value: ptr(2.0)},
	}}
	_, err := Transform(rec)
	var terr *TransformError
	if !errors.As(err, &terr) || terr.Index != 1 {
		t.Fatalf("expected duplicate id TransformError, got %v", err)
	}
}
